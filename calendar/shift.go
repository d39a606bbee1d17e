// Package calendar provides the cross-midnight day-arithmetic primitives
// spec.md §9 asks implementations to encapsulate rather than inline:
// ShiftDays (circular day-of-week rotation) and ShiftDate (±1 civil day in
// the British zone). The original source (nr_importer.rs's rev_days/
// rev_date) performs these inline at every call site; here they are named
// functions so the association engine can call them directly instead of
// repeating the rotation logic.
package calendar

import (
	"time"

	"github.com/theoremus-urban-solutions/railtimetable/model"
)

// London is the fixed civil zone every CIF/VSTP date and time is
// interpreted in.
var London *time.Location

func init() {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		// Europe/London ships with every standard Go tzdata build; a
		// missing entry means the deployment environment has no tzdata at
		// all, which nothing in this package can recover from.
		panic("calendar: Europe/London not found: " + err.Error())
	}
	London = loc
}

// ShiftDays rotates a day-of-week mask by delta days, circularly. delta
// must be -1, 0, or +1 — any other value panics, matching the panic the
// original source raises on an out-of-range day_diff (an internal
// invariant violation, not a user-facing error).
func ShiftDays(d model.DaysOfWeek, delta int8) model.DaysOfWeek {
	switch delta {
	case 0:
		return d
	case -1:
		// Each day takes on the value of the day after it: Monday becomes
		// what was Tuesday, and so on, wrapping Sunday back to Monday.
		return model.DaysOfWeek{
			Monday:    d.Tuesday,
			Tuesday:   d.Wednesday,
			Wednesday: d.Thursday,
			Thursday:  d.Friday,
			Friday:    d.Saturday,
			Saturday:  d.Sunday,
			Sunday:    d.Monday,
		}
	case 1:
		// Each day takes on the value of the day before it.
		return model.DaysOfWeek{
			Monday:    d.Sunday,
			Tuesday:   d.Monday,
			Wednesday: d.Tuesday,
			Thursday:  d.Wednesday,
			Friday:    d.Thursday,
			Saturday:  d.Friday,
			Sunday:    d.Saturday,
		}
	default:
		panic("calendar: ShiftDays delta must be -1, 0, or 1")
	}
}

// ShiftDate adds delta civil days (in London) to t.
func ShiftDate(t time.Time, delta int8) time.Time {
	if delta == 0 {
		return t
	}
	return t.AddDate(0, 0, int(delta))
}
