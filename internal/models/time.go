package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the external representation of all broker timestamps:
// ISO-8601 without a timezone offset. Values are naive UTC instants.
const TimeLayout = "2006-01-02T15:04:05"

// BrokerTime is a timezone-naive UTC instant. It marshals to and from the
// offset-free ISO-8601 layout and stores as a plain timestamp.
type BrokerTime struct {
	time.Time
}

// NewBrokerTime truncates t to whole seconds and normalizes it to UTC.
func NewBrokerTime(t time.Time) BrokerTime {
	return BrokerTime{t.UTC().Truncate(time.Second)}
}

// MarshalJSON renders the instant in the offset-free layout.
func (t BrokerTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(TimeLayout) + `"`), nil
}

// UnmarshalJSON accepts the offset-free layout, with or without a date-only
// shorthand.
func (t *BrokerTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}

	parsed, err := time.Parse(TimeLayout, s)
	if err != nil {
		parsed, err = time.Parse("2006-01-02", s)
		if err != nil {
			return fmt.Errorf("parsing time %q: expected %s", s, TimeLayout)
		}
	}

	t.Time = parsed.UTC()

	return nil
}

// Scan implements sql.Scanner so pgx can populate BrokerTime columns.
func (t *BrokerTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
		return nil
	case nil:
		t.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into BrokerTime", src)
	}
}

// Value implements driver.Valuer for query parameters.
func (t BrokerTime) Value() (driver.Value, error) {
	return t.UTC(), nil
}

// Window is an inclusive-exclusive [Start, End) time range.
type Window struct {
	Start BrokerTime `json:"start_time"`
	End   BrokerTime `json:"end_time"`
}

// Validate enforces the start-before-end invariant.
func (w Window) Validate() error {
	if !w.Start.Before(w.End.Time) {
		return ErrInvalidWindow
	}

	return nil
}

// Overlaps reports whether two half-open windows intersect.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End.Time) && w.End.After(other.Start.Time)
}

// Contains reports whether other lies entirely within w.
func (w Window) Contains(other Window) bool {
	return !other.Start.Before(w.Start.Time) && !other.End.After(w.End.Time)
}
