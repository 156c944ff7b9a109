// Package runner wires the pipeline together: expand each recurrence
// rule into target dates, scrape availability, match a room, drop days
// the ledger already holds, then submit the remainder sequentially over
// one site session.
package runner

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/example/roombooker/internal/booking"
	"github.com/example/roombooker/internal/libcal"
)

// Site is the booking-site surface the runner needs; satisfied by
// *libcal.Client.
type Site interface {
	FetchAvailability(ctx context.Context, date time.Time) ([]booking.Slot, error)
	Submit(ctx context.Context, rsv booking.Reservation) (booking.Outcome, error)
}

// Ledger is the persisted booked-day set; satisfied by *ledger.Store.
type Ledger interface {
	HasBooked(ctx context.Context, dayIndex int) (bool, error)
	RecordBooked(ctx context.Context, dayIndex int) error
}

type Runner struct {
	Site   Site
	Ledger Ledger
	Rules  []booking.RecurrenceRule
	Rooms  [][]booking.Room

	// Cooldown is slept between successive confirmed submissions so the
	// site's confirmation mailer keeps up.
	Cooldown time.Duration

	// Overridable in tests.
	Now   func() time.Time
	Sleep func(time.Duration)
}

// Run executes one full pass. Per-date problems (fetch errors, no match)
// are logged and skipped; submission failures are isolated per
// reservation except a broken SSO chain, which kills the batch since
// every remaining submission shares the session.
func (r *Runner) Run(ctx context.Context) error {
	now := r.now()

	var batch []booking.Reservation
	for _, rule := range r.Rules {
		log.Printf("runner: looking to reserve a room for the following %ss", rule.DayName)
		for _, date := range booking.DatesWithinTwoWeeks(rule, now) {
			day := date.Format("2006-01-02")
			slots, err := r.Site.FetchAvailability(ctx, date)
			if err != nil {
				log.Printf("runner: %s: %v", day, err)
				continue
			}
			rsv, ok := booking.FindReservation(slots, rule, r.Rooms)
			if !ok {
				log.Printf("runner: %s: no room free between %s and %s", day, rule.StartTime, rule.EndTime)
				continue
			}
			log.Printf("runner: %s: %s is free between %s and %s", day, rsv.Room.Name, rule.StartTime, rule.EndTime)
			batch = append(batch, rsv)
		}
	}

	due, err := r.filterBooked(ctx, batch)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		log.Printf("runner: nothing to reserve")
		return nil
	}
	return r.submitAll(ctx, due)
}

// filterBooked drops reservations whose day the ledger already holds.
func (r *Runner) filterBooked(ctx context.Context, batch []booking.Reservation) ([]booking.Reservation, error) {
	var due []booking.Reservation
	for _, rsv := range batch {
		idx, err := rsv.DayIndex()
		if err != nil {
			log.Printf("runner: skipping reservation: %v", err)
			continue
		}
		booked, err := r.Ledger.HasBooked(ctx, idx)
		if err != nil {
			return nil, err
		}
		if booked {
			continue
		}
		due = append(due, rsv)
	}
	return due, nil
}

func (r *Runner) submitAll(ctx context.Context, due []booking.Reservation) error {
	for i, rsv := range due {
		idx, err := rsv.DayIndex()
		if err != nil {
			log.Printf("runner: skipping reservation: %v", err)
			continue
		}
		day := rsv.Slots[0].Start

		outcome, err := r.Site.Submit(ctx, rsv)
		if errors.Is(err, libcal.ErrAuthFailed) {
			return err
		}
		switch outcome {
		case booking.OutcomeConfirmed:
			log.Printf("runner: reserved %s starting %s", rsv.Room.Name, day)
			if err := r.Ledger.RecordBooked(ctx, idx); err != nil {
				return err
			}
			if i < len(due)-1 {
				r.sleep(r.Cooldown)
			}
		case booking.OutcomeAlreadyBooked:
			log.Printf("runner: %s was already reserved, recording it", day)
			if err := r.Ledger.RecordBooked(ctx, idx); err != nil {
				return err
			}
		default:
			// left off the ledger so the next run retries this day
			log.Printf("runner: booking %s starting %s failed: %v", rsv.Room.Name, day, err)
		}
	}
	return nil
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) sleep(d time.Duration) {
	if r.Sleep != nil {
		r.Sleep(d)
		return
	}
	time.Sleep(d)
}
