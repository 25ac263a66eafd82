package clock

import (
	"time"

	"github.com/doorlab/roomkey-bookings/internal/domain"
)

// Snapshot is one consistent reading of the wall clock. Date and time of
// day are derived from the same instant in the same location, so a
// booking-window comparison can never mix two clock sources.
type Snapshot struct {
	Wall time.Time
	Date domain.Date
	Time domain.TimeOfDay
}

type Clock interface {
	Now() Snapshot
}

type WallClock struct {
	loc *time.Location
}

func NewWallClock(timezone string) (*WallClock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return &WallClock{loc: loc}, nil
}

func (c *WallClock) Now() Snapshot {
	now := time.Now().In(c.loc)
	return Snapshot{
		Wall: now,
		Date: domain.Date(now.Format("2006-01-02")),
		Time: domain.TimeOfDay(now.Format("15:04")),
	}
}

// Fixed returns a clock pinned to the given instant, for tests.
func Fixed(t time.Time) Clock {
	return fixedClock{t: t}
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() Snapshot {
	return Snapshot{
		Wall: c.t,
		Date: domain.Date(c.t.Format("2006-01-02")),
		Time: domain.TimeOfDay(c.t.Format("15:04")),
	}
}
