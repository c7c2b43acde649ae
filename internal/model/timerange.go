package model

import "time"

// TimeRange is a half-open interval [Start, End). Start is inclusive,
// End exclusive, so a range ending exactly when another begins does not
// overlap it; back-to-back bookings are allowed.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Valid reports whether End is strictly after Start.
func (t TimeRange) Valid() bool {
	return t.End.After(t.Start)
}

// Overlaps reports whether the two half-open intervals intersect:
// t.Start < other.End && other.Start < t.End.
func (t TimeRange) Overlaps(other TimeRange) bool {
	return t.Start.Before(other.End) && other.Start.Before(t.End)
}
