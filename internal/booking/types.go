package booking

import (
	"fmt"
	"time"
)

// slotTimeLayout is the timestamp format the availability grid uses on
// data-start/data-end attributes.
const slotTimeLayout = "2006-01-02 15:04:05"

// RecurrenceRule describes one desired weekly reservation: a weekday plus
// a clock-time window and the number of consecutive 30-minute slots needed
// to cover it.
type RecurrenceRule struct {
	DayName    string
	ISOWeekday int // 1=Monday .. 7=Sunday

	// Local clock times, "15:04:05" form. Both ends inclusive.
	StartTime string
	EndTime   string

	// Number of consecutive 30-minute slots required.
	Slots int
}

// Room is one bookable study room on the site. Rooms are searched in
// priority-tier order; within a tier the listed order is kept.
type Room struct {
	EID      int
	Name     string
	HasTech  bool
	Priority int
}

// Slot is the smallest bookable unit for one room on one date, as
// extracted from the availability grid. Timestamps stay in the site's
// string form so they can be posted back verbatim with the checksum.
type Slot struct {
	Start    string
	End      string
	SeatID   string
	LID      int
	EID      int
	Checksum string
}

// Reservation is a run of contiguous same-room slots covering one rule on
// one date, submitted as a single booking.
type Reservation struct {
	Room  Room
	Slots []Slot
}

// Date returns the calendar date of the reservation, taken from its first
// slot.
func (r Reservation) Date() (time.Time, error) {
	if len(r.Slots) == 0 {
		return time.Time{}, fmt.Errorf("reservation has no slots")
	}
	t, err := time.Parse(slotTimeLayout, r.Slots[0].Start)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse slot start %q: %w", r.Slots[0].Start, err)
	}
	return t, nil
}

// DayIndex returns the reservation date as whole days since 1970-01-01,
// the key used by the dedup ledger.
func (r Reservation) DayIndex() (int, error) {
	d, err := r.Date()
	if err != nil {
		return 0, err
	}
	return DayIndex(d), nil
}

// Outcome classifies the terminal state of one booking submission.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeConfirmed
	OutcomeAlreadyBooked
)

func (o Outcome) String() string {
	switch o {
	case OutcomeConfirmed:
		return "confirmed"
	case OutcomeAlreadyBooked:
		return "already-booked"
	default:
		return "failed"
	}
}
