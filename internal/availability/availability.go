// Package availability implements the pure interval arithmetic behind offer
// and lease scheduling: conflict detection against existing leases and
// computation of the free sub-windows remaining in an offer.
//
// All functions are side-effect free; callers supply lease sets queried
// inside the same locking scope as the mutation they guard.
package availability

import (
	"sort"

	"github.com/metalbroker/metalbroker/internal/models"
)

// Conflicts reports whether the candidate window overlaps any of the given
// leases, skipping leases not in created or active status and the lease
// identified by excludeLeaseUUID (used when checking an offer that descends
// from a parent lease).
func Conflicts(window models.Window, leases []models.Lease, excludeLeaseUUID string) bool {
	return FirstConflict(window, leases, excludeLeaseUUID) != nil
}

// FirstConflict returns the first lease blocking the candidate window, or
// nil when the window is free.
func FirstConflict(window models.Window, leases []models.Lease, excludeLeaseUUID string) *models.Lease {
	for i := range leases {
		l := &leases[i]

		if l.Status != models.StatusCreated && l.Status != models.StatusActive {
			continue
		}

		if excludeLeaseUUID != "" && l.UUID == excludeLeaseUUID {
			continue
		}

		if window.Overlaps(l.TimeWindow()) {
			return l
		}
	}

	return nil
}

// FreeWindows returns the sub-windows of bounds not covered by any created
// or active lease, in chronological order. Leases outside bounds are
// clamped; zero-length gaps are dropped.
func FreeWindows(bounds models.Window, leases []models.Lease) []models.Window {
	busy := make([]models.Window, 0, len(leases))

	for i := range leases {
		l := &leases[i]

		if l.Status != models.StatusCreated && l.Status != models.StatusActive {
			continue
		}

		w := l.TimeWindow()
		if !w.Overlaps(bounds) {
			continue
		}

		if w.Start.Before(bounds.Start.Time) {
			w.Start = bounds.Start
		}

		if w.End.After(bounds.End.Time) {
			w.End = bounds.End
		}

		busy = append(busy, w)
	}

	sort.Slice(busy, func(i, j int) bool {
		return busy[i].Start.Before(busy[j].Start.Time)
	})

	free := make([]models.Window, 0, len(busy)+1)
	cursor := bounds.Start

	for _, w := range busy {
		if cursor.Before(w.Start.Time) {
			free = append(free, models.Window{Start: cursor, End: w.Start})
		}

		if cursor.Before(w.End.Time) {
			cursor = w.End
		}
	}

	if cursor.Before(bounds.End.Time) {
		free = append(free, models.Window{Start: cursor, End: bounds.End})
	}

	return free
}
