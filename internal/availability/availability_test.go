package availability_test

import (
	"testing"
	"time"

	"github.com/metalbroker/metalbroker/internal/availability"
	"github.com/metalbroker/metalbroker/internal/models"
)

func bt(s string) models.BrokerTime {
	parsed, err := time.Parse(models.TimeLayout, s)
	if err != nil {
		panic(err)
	}

	return models.BrokerTime{Time: parsed}
}

func win(start, end string) models.Window {
	return models.Window{Start: bt(start), End: bt(end)}
}

func lease(uuid string, status models.Status, start, end string) models.Lease {
	return models.Lease{
		UUID:      uuid,
		Status:    status,
		StartTime: bt(start),
		EndTime:   bt(end),
	}
}

func TestConflicts(t *testing.T) {
	leases := []models.Lease{
		lease("l1", models.StatusActive, "2030-01-10T00:00:00", "2030-01-15T00:00:00"),
		lease("l2", models.StatusCreated, "2030-01-20T00:00:00", "2030-01-25T00:00:00"),
		lease("l3", models.StatusExpired, "2030-01-01T00:00:00", "2030-02-01T00:00:00"),
	}

	tests := []struct {
		name    string
		window  models.Window
		exclude string
		want    bool
	}{
		{name: "overlaps active lease", window: win("2030-01-12T00:00:00", "2030-01-13T00:00:00"), want: true},
		{name: "overlaps created lease", window: win("2030-01-24T00:00:00", "2030-01-26T00:00:00"), want: true},
		{name: "fits gap between leases", window: win("2030-01-15T00:00:00", "2030-01-20T00:00:00"), want: false},
		{name: "expired lease ignored", window: win("2030-01-26T00:00:00", "2030-01-30T00:00:00"), want: false},
		{name: "excluded lease ignored", window: win("2030-01-12T00:00:00", "2030-01-13T00:00:00"), exclude: "l1", want: false},
		{name: "exclusion only skips named lease", window: win("2030-01-14T00:00:00", "2030-01-21T00:00:00"), exclude: "l1", want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := availability.Conflicts(tc.window, leases, tc.exclude); got != tc.want {
				t.Errorf("Conflicts = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFirstConflict_ReturnsBlockingLease(t *testing.T) {
	leases := []models.Lease{
		lease("l1", models.StatusActive, "2030-01-10T00:00:00", "2030-01-15T00:00:00"),
	}

	got := availability.FirstConflict(win("2030-01-14T00:00:00", "2030-01-16T00:00:00"), leases, "")
	if got == nil || got.UUID != "l1" {
		t.Fatalf("expected conflict with l1, got %v", got)
	}

	if availability.FirstConflict(win("2030-01-15T00:00:00", "2030-01-16T00:00:00"), leases, "") != nil {
		t.Error("expected abutting window to be free")
	}
}

func TestFreeWindows(t *testing.T) {
	bounds := win("2030-01-01T00:00:00", "2030-01-31T00:00:00")

	tests := []struct {
		name   string
		leases []models.Lease
		want   []models.Window
	}{
		{
			name:   "no leases leaves whole window",
			leases: nil,
			want:   []models.Window{bounds},
		},
		{
			name: "single lease splits window",
			leases: []models.Lease{
				lease("l1", models.StatusActive, "2030-01-10T00:00:00", "2030-01-15T00:00:00"),
			},
			want: []models.Window{
				win("2030-01-01T00:00:00", "2030-01-10T00:00:00"),
				win("2030-01-15T00:00:00", "2030-01-31T00:00:00"),
			},
		},
		{
			name: "lease at start leaves tail",
			leases: []models.Lease{
				lease("l1", models.StatusActive, "2030-01-01T00:00:00", "2030-01-10T00:00:00"),
			},
			want: []models.Window{
				win("2030-01-10T00:00:00", "2030-01-31T00:00:00"),
			},
		},
		{
			name: "lease spilling over bounds is clamped",
			leases: []models.Lease{
				lease("l1", models.StatusActive, "2029-12-01T00:00:00", "2030-01-10T00:00:00"),
				lease("l2", models.StatusCreated, "2030-01-25T00:00:00", "2030-02-10T00:00:00"),
			},
			want: []models.Window{
				win("2030-01-10T00:00:00", "2030-01-25T00:00:00"),
			},
		},
		{
			name: "unsorted overlapping leases merge",
			leases: []models.Lease{
				lease("l2", models.StatusActive, "2030-01-12T00:00:00", "2030-01-20T00:00:00"),
				lease("l1", models.StatusActive, "2030-01-05T00:00:00", "2030-01-14T00:00:00"),
			},
			want: []models.Window{
				win("2030-01-01T00:00:00", "2030-01-05T00:00:00"),
				win("2030-01-20T00:00:00", "2030-01-31T00:00:00"),
			},
		},
		{
			name: "fully covered bounds yield nothing",
			leases: []models.Lease{
				lease("l1", models.StatusActive, "2030-01-01T00:00:00", "2030-01-31T00:00:00"),
			},
			want: nil,
		},
		{
			name: "terminal leases do not consume",
			leases: []models.Lease{
				lease("l1", models.StatusDeleted, "2030-01-01T00:00:00", "2030-01-31T00:00:00"),
			},
			want: []models.Window{bounds},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := availability.FreeWindows(bounds, tc.leases)

			if len(got) != len(tc.want) {
				t.Fatalf("expected %d windows, got %d: %v", len(tc.want), len(got), got)
			}

			for i := range got {
				if !got[i].Start.Equal(tc.want[i].Start.Time) || !got[i].End.Equal(tc.want[i].End.Time) {
					t.Errorf("window %d = %v..%v, want %v..%v", i, got[i].Start, got[i].End, tc.want[i].Start, tc.want[i].End)
				}
			}
		})
	}
}
