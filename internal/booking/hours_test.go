package booking

import (
	"strings"
	"testing"

	"github.com/Gentaaaa/MedPal/internal/models"
)

func TestWeekdayName(t *testing.T) {
	cases := []struct {
		date string
		want string
	}{
		{"2025-01-06", "monday"},
		{"2025-01-07", "tuesday"},
		{"2025-01-08", "wednesday"},
		{"2025-01-09", "thursday"},
		{"2025-01-10", "friday"},
		{"2025-01-11", "saturday"},
		{"2025-01-12", "sunday"},
	}
	for _, c := range cases {
		got, err := weekdayName(c.date)
		if err != nil {
			t.Errorf("%s: unexpected error %v", c.date, err)
			continue
		}
		if got != c.want {
			t.Errorf("%s: got %q, want %q", c.date, got, c.want)
		}
	}
}

func TestWeekdayName_InvalidDate(t *testing.T) {
	for _, date := range []string{"", "06-01-2025", "2025/01/06", "not-a-date", "2025-13-40"} {
		if _, err := weekdayName(date); !isValidation(err) {
			t.Errorf("%q: expected ValidationError, got %v", date, err)
		}
	}
}

func TestWithinWindow(t *testing.T) {
	cases := []struct {
		t    string
		want bool
	}{
		{"08:59", false},
		{"09:00", true},
		{"12:30", true},
		{"17:00", true},
		{"17:01", false},
	}
	for _, c := range cases {
		if got := withinWindow(c.t, "09:00", "17:00"); got != c.want {
			t.Errorf("withinWindow(%q, 09:00, 17:00) = %v, want %v", c.t, got, c.want)
		}
	}
}

func TestCheckSchedule(t *testing.T) {
	hours := models.WorkingHours{
		"monday": {Start: "09:00", End: "17:00"},
	}

	if err := checkSchedule(hours, "2025-01-06", "10:00"); err != nil {
		t.Errorf("in-window slot rejected: %v", err)
	}

	if err := checkSchedule(nil, "2025-01-06", "10:00"); !isValidation(err) {
		t.Errorf("nil hours: expected ValidationError, got %v", err)
	}

	err := checkSchedule(hours, "2025-01-07", "10:00")
	if !isValidation(err) {
		t.Fatalf("day off: expected ValidationError, got %v", err)
	}
	if !strings.Contains(err.Error(), "tuesday") {
		t.Errorf("day-off error should name the weekday, got %q", err.Error())
	}

	err = checkSchedule(hours, "2025-01-06", "18:00")
	if !isValidation(err) {
		t.Fatalf("out of window: expected ValidationError, got %v", err)
	}
	if !strings.Contains(err.Error(), "09:00") || !strings.Contains(err.Error(), "17:00") {
		t.Errorf("out-of-window error should state the window, got %q", err.Error())
	}

	// A day present with empty boundaries counts as a day off
	partial := models.WorkingHours{"monday": {Start: "", End: ""}}
	if err := checkSchedule(partial, "2025-01-06", "10:00"); !isValidation(err) {
		t.Errorf("empty window: expected ValidationError, got %v", err)
	}
}
