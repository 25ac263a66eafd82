package clock

import (
	"testing"
	"time"
)

func TestFixedSnapshot(t *testing.T) {
	instant := time.Date(2024, 6, 1, 9, 5, 30, 0, time.UTC)
	snap := Fixed(instant).Now()

	if snap.Date != "2024-06-01" {
		t.Errorf("Date = %q", snap.Date)
	}
	if snap.Time != "09:05" {
		t.Errorf("Time = %q", snap.Time)
	}
	if !snap.Wall.Equal(instant) {
		t.Errorf("Wall = %v", snap.Wall)
	}
}

func TestWallClockTimezone(t *testing.T) {
	clk, err := NewWallClock("Asia/Bangkok")
	if err != nil {
		t.Fatalf("load timezone: %v", err)
	}

	snap := clk.Now()
	if _, err := time.Parse("2006-01-02", string(snap.Date)); err != nil {
		t.Errorf("Date %q not in canonical form: %v", snap.Date, err)
	}
	if _, err := time.Parse("15:04", string(snap.Time)); err != nil {
		t.Errorf("Time %q not in canonical form: %v", snap.Time, err)
	}
	if snap.Wall.Location().String() != "Asia/Bangkok" {
		t.Errorf("location = %s", snap.Wall.Location())
	}
}

func TestWallClockBadTimezone(t *testing.T) {
	if _, err := NewWallClock("Not/AZone"); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}
