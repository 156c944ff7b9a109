package booking

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// halfHourSlots emits n contiguous 30-minute slots for a room starting at
// startHour:startMin on 2024-09-02.
func halfHourSlots(eid, n, startHour, startMin int) []Slot {
	out := make([]Slot, 0, n)
	min := startHour*60 + startMin
	for i := 0; i < n; i++ {
		s := min + 30*i
		e := s + 30
		out = append(out, Slot{
			Start:    fmt.Sprintf("2024-09-02 %02d:%02d:00", s/60, s%60),
			End:      fmt.Sprintf("2024-09-02 %02d:%02d:00", e/60, e%60),
			SeatID:   fmt.Sprintf("seat-%d-%d", eid, i),
			LID:      2161,
			EID:      eid,
			Checksum: fmt.Sprintf("crc-%d-%d", eid, i),
		})
	}
	return out
}

var testRule = RecurrenceRule{
	DayName:    "Monday",
	ISOWeekday: 1,
	StartTime:  "13:00:00",
	EndTime:    "16:00:00",
	Slots:      6,
}

func tiers(rooms ...[]Room) [][]Room { return rooms }

func TestMatchFullDayTakesWindowPrefix(t *testing.T) {
	// 13:00-19:00 available, window 13:00-16:00: the first six slots win.
	slots := halfHourSlots(18520, 12, 13, 0)
	rsv, ok := FindReservation(slots, testRule, tiers([]Room{{EID: 18520, Name: "LB 257", Priority: 1}}))
	require.True(t, ok)
	require.Len(t, rsv.Slots, 6)
	require.Equal(t, "2024-09-02 13:00:00", rsv.Slots[0].Start)
	require.Equal(t, "2024-09-02 15:30:00", rsv.Slots[5].Start)
}

func TestMatchGapInvalidatesRun(t *testing.T) {
	// An out-of-window slot in the middle of the run resets it, and the
	// remaining in-window slots are too few. No partial credit.
	slots := halfHourSlots(18520, 3, 13, 0)
	slots = append(slots, halfHourSlots(18520, 1, 10, 0)...) // stray morning slot
	slots = append(slots, halfHourSlots(18520, 2, 15, 0)...)
	_, ok := FindReservation(slots, testRule, tiers([]Room{{EID: 18520}}))
	require.False(t, ok)
}

func TestMatchTierFallback(t *testing.T) {
	// Tier 1 room only has a partial run; tier 2 has a full one.
	slots := append(halfHourSlots(18520, 3, 13, 0), halfHourSlots(18518, 6, 13, 0)...)
	rsv, ok := FindReservation(slots, testRule, tiers(
		[]Room{{EID: 18520, Name: "LB 257", Priority: 1}},
		[]Room{{EID: 18518, Name: "LB 251", Priority: 2}},
	))
	require.True(t, ok)
	require.Equal(t, 18518, rsv.Room.EID)
	require.Len(t, rsv.Slots, 6)
}

func TestMatchTierOrderWithinTier(t *testing.T) {
	// Both rooms in the tier qualify; the first listed wins.
	slots := append(halfHourSlots(18522, 6, 13, 0), halfHourSlots(18518, 6, 13, 0)...)
	rsv, ok := FindReservation(slots, testRule, tiers(
		[]Room{{EID: 18518}, {EID: 18522}},
	))
	require.True(t, ok)
	require.Equal(t, 18518, rsv.Room.EID)
}

func TestMatchStopsAtFirstCompleteRun(t *testing.T) {
	// Higher-priority full run wins even when lower tiers also qualify.
	slots := append(halfHourSlots(18520, 6, 13, 0), halfHourSlots(18518, 12, 13, 0)...)
	rsv, ok := FindReservation(slots, testRule, tiers(
		[]Room{{EID: 18520, Priority: 1}},
		[]Room{{EID: 18518, Priority: 2}},
	))
	require.True(t, ok)
	require.Equal(t, 18520, rsv.Room.EID)
}

func TestMatchWindowEndInclusive(t *testing.T) {
	// A slot starting exactly at the window end still counts.
	rule := RecurrenceRule{ISOWeekday: 1, StartTime: "15:00:00", EndTime: "16:00:00", Slots: 2}
	slots := halfHourSlots(18520, 2, 15, 30) // 15:30 and 16:00
	rsv, ok := FindReservation(slots, rule, tiers([]Room{{EID: 18520}}))
	require.True(t, ok)
	require.Equal(t, "2024-09-02 16:00:00", rsv.Slots[1].Start)
}

func TestMatchNoSlotsForRoom(t *testing.T) {
	slots := halfHourSlots(99999, 6, 13, 0)
	_, ok := FindReservation(slots, testRule, tiers([]Room{{EID: 18520}}))
	require.False(t, ok)
}

func TestMatchZeroSlotRule(t *testing.T) {
	_, ok := FindReservation(halfHourSlots(18520, 6, 13, 0), RecurrenceRule{ISOWeekday: 1, StartTime: "13:00:00", EndTime: "16:00:00"}, tiers([]Room{{EID: 18520}}))
	require.False(t, ok)
}

func TestReservationDayIndex(t *testing.T) {
	rsv := Reservation{Slots: halfHourSlots(18520, 1, 13, 0)}
	d, err := rsv.Date()
	require.NoError(t, err)
	require.Equal(t, "2024-09-02", d.Format("2006-01-02"))

	idx, err := rsv.DayIndex()
	require.NoError(t, err)
	require.Equal(t, DayIndex(d), idx)
}
