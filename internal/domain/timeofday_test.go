package domain

import (
	"errors"
	"strconv"
	"testing"
)

func TestParseTimeOfDay(t *testing.T) {
	valid := []string{"00:00", "08:30", "23:59"}
	for _, s := range valid {
		got, err := ParseTimeOfDay(s)
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q) unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseTimeOfDay(%q) = %q", s, got)
		}
	}

	invalid := []string{"", "24:00", "9:00", "12:60", "noon", "12-30"}
	for _, s := range invalid {
		if _, err := ParseTimeOfDay(s); !errors.Is(err, ErrValidation) {
			t.Errorf("ParseTimeOfDay(%q) expected validation error, got %v", s, err)
		}
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2024-06-01"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, s := range []string{"", "01-06-2024", "2024-13-01", "2024-06-32", "yesterday"} {
		if _, err := ParseDate(s); !errors.Is(err, ErrValidation) {
			t.Errorf("ParseDate(%q) expected validation error, got %v", s, err)
		}
	}
}

func TestMinutes(t *testing.T) {
	cases := map[TimeOfDay]int{
		"00:00": 0,
		"01:30": 90,
		"23:59": 23*60 + 59,
	}
	for in, want := range cases {
		if got := in.Minutes(); got != want {
			t.Errorf("%q.Minutes() = %d, want %d", in, got, want)
		}
	}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd TimeOfDay
		want                       bool
	}{
		{"identical", "10:00", "11:00", "10:00", "11:00", true},
		{"partial", "10:00", "11:00", "10:30", "11:30", true},
		{"contained", "10:00", "12:00", "10:30", "11:00", true},
		{"touching endpoints", "10:00", "11:00", "11:00", "12:00", false},
		{"disjoint", "08:00", "09:00", "10:00", "11:00", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd); got != tc.want {
				t.Errorf("Overlaps(%s-%s, %s-%s) = %v, want %v",
					tc.aStart, tc.aEnd, tc.bStart, tc.bEnd, got, tc.want)
			}
			// Overlap is symmetric.
			if got := Overlaps(tc.bStart, tc.bEnd, tc.aStart, tc.aEnd); got != tc.want {
				t.Errorf("Overlaps reversed = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCreateBookingRequestValidate(t *testing.T) {
	ok := CreateBookingRequest{RoomID: 3, Date: "2024-06-01", StartTime: "10:00", EndTime: "11:00"}
	date, start, end, err := ok.Validate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if date != "2024-06-01" || start != "10:00" || end != "11:00" {
		t.Errorf("unexpected parse result: %s %s %s", date, start, end)
	}

	bad := []CreateBookingRequest{
		{RoomID: 0, Date: "2024-06-01", StartTime: "10:00", EndTime: "11:00"},
		{RoomID: 3, Date: "", StartTime: "10:00", EndTime: "11:00"},
		{RoomID: 3, Date: "2024-06-01", StartTime: "", EndTime: "11:00"},
		{RoomID: 3, Date: "2024-06-01", StartTime: "10:00", EndTime: ""},
		{RoomID: 3, Date: "2024-06-01", StartTime: "11:00", EndTime: "10:00"},
		{RoomID: 3, Date: "2024-06-01", StartTime: "11:00", EndTime: "11:00"},
	}
	for i, req := range bad {
		if _, _, _, err := req.Validate(); !errors.Is(err, ErrValidation) {
			t.Errorf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestGenerateAccessCode(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := GenerateAccessCode()
		if len(code) != 6 {
			t.Fatalf("code %q is not 6 digits", code)
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("code %q is not numeric: %v", code, err)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("code %d out of range", n)
		}
	}
}
