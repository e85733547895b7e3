package booking

import (
	"strings"
	"time"

	"github.com/Gentaaaa/MedPal/internal/models"
)

const dateLayout = "2006-01-02"

// weekdayName derives the lowercase full English weekday name used as the
// WorkingHours lookup key ("monday" ... "sunday") from a "YYYY-MM-DD" date.
func weekdayName(date string) (string, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", validationf("invalid date %q, expected YYYY-MM-DD", date)
	}
	return strings.ToLower(t.Weekday().String()), nil
}

// withinWindow reports whether t lies in [start, end]. Zero-padded 24h
// "HH:MM" strings order correctly byte-wise, so plain string comparison is
// exact. Both boundaries are accepted.
func withinWindow(t, start, end string) bool {
	return t >= start && t <= end
}

// checkSchedule validates a slot time against a doctor's weekly schedule:
// hours must be configured, the date's weekday must have a window, and the
// time must fall inside it (inclusive).
func checkSchedule(hours models.WorkingHours, date, slotTime string) error {
	if len(hours) == 0 {
		return validationf("the doctor has no working hours configured")
	}

	day, err := weekdayName(date)
	if err != nil {
		return err
	}

	window, ok := hours[day]
	if !ok || window.Start == "" || window.End == "" {
		return validationf("the doctor does not work on %s", day)
	}

	if !withinWindow(slotTime, window.Start, window.End) {
		return validationf("the doctor's hours on %s are %s to %s", day, window.Start, window.End)
	}

	return nil
}
