// Package civiltime is the single conversion point between the timezone-aware
// time.Time values used internally and the two civil ("wall clock, no zone
// suffix") string representations the registration records carry:
//
//   - the STORED form: what the visitor_registrations table persists, the
//     wall clock shifted -5:30 from IST (a UTC civil string, historically
//     written by clients that subtracted the offset by hand);
//   - the EDITABLE form: the IST wall clock shown in the admin dashboard's
//     datetime-local input.
//
// Nothing outside this package applies the 5.5 hour shift.
package civiltime

import (
	"fmt"
	"strings"
	"time"
)

// IST is the fixed offset the kiosk runs in. Deliberately a fixed zone, not a
// location database lookup: India has no DST and the stored strings encode a
// constant shift.
var IST = time.FixedZone("IST", 5*3600+30*60)

const (
	storedLayout         = "2006-01-02T15:04:05"
	editableLayout       = "2006-01-02T15:04"
	storedFallbackLayout = "2006-01-02T15:04" // older rows were written without seconds
)

// Now returns the current instant in IST.
func Now() time.Time {
	return time.Now().In(IST)
}

// ToStored renders t as the persisted civil string. The shift happens by
// rendering the same instant on a UTC wall clock.
func ToStored(t time.Time) string {
	return t.In(time.UTC).Format(storedLayout)
}

// FromStored parses a persisted civil string back into an IST time.Time.
func FromStored(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty stored time")
	}
	t, err := time.ParseInLocation(storedLayout, s, time.UTC)
	if err != nil {
		t, err = time.ParseInLocation(storedFallbackLayout, s, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid stored time %q: %w", s, err)
		}
	}
	return t.In(IST), nil
}

// ToEditable renders t as the IST wall-clock string the dashboard edits.
func ToEditable(t time.Time) string {
	return t.In(IST).Format(editableLayout)
}

// FromEditable parses a dashboard wall-clock string as IST.
func FromEditable(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty editable time")
	}
	t, err := time.ParseInLocation(editableLayout, s, IST)
	if err != nil {
		t, err = time.ParseInLocation(storedLayout, s, IST)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid editable time %q: %w", s, err)
		}
	}
	return t, nil
}
