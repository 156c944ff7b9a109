package booking

import (
	"fmt"
	"strings"
	"time"
)

// FindReservation searches the day's slots for the first room, in
// priority-tier order, that has a run of rule.Slots consecutive slots
// whose start times fall inside the rule's window (inclusive on both
// ends). The first complete run wins; lower tiers are not consulted once
// a match is found and no further runs are explored within a room.
func FindReservation(slots []Slot, rule RecurrenceRule, tiers [][]Room) (Reservation, bool) {
	if rule.Slots <= 0 {
		return Reservation{}, false
	}
	start, err := parseClock(rule.StartTime)
	if err != nil {
		return Reservation{}, false
	}
	end, err := parseClock(rule.EndTime)
	if err != nil {
		return Reservation{}, false
	}
	for _, tier := range tiers {
		for _, room := range tier {
			if run := matchRoom(slots, room.EID, start, end, rule.Slots); run != nil {
				return Reservation{Room: room, Slots: run}, true
			}
		}
	}
	return Reservation{}, false
}

// matchRoom slides over the room's slots in emission order keeping a
// countdown of slots still needed. A slot starting outside the window
// invalidates the whole run so far; a partial run is never returned.
func matchRoom(slots []Slot, eid, start, end, want int) []Slot {
	remaining := want
	var run []Slot
	for _, s := range slots {
		if s.EID != eid {
			continue
		}
		clock, err := slotStartClock(s)
		if err != nil || clock < start || clock > end {
			remaining = want
			run = nil
			continue
		}
		run = append(run, s)
		remaining--
		if remaining == 0 {
			return run
		}
	}
	return nil
}

// parseClock converts a "15:04:05" clock string to seconds since
// midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return 0, fmt.Errorf("parse clock time %q: %w", s, err)
	}
	return t.Hour()*3600 + t.Minute()*60 + t.Second(), nil
}

// slotStartClock extracts the clock-time half of a slot's start
// timestamp ("2006-01-02 15:04:05").
func slotStartClock(s Slot) (int, error) {
	_, clock, ok := strings.Cut(s.Start, " ")
	if !ok {
		return 0, fmt.Errorf("malformed slot start %q", s.Start)
	}
	return parseClock(clock)
}
