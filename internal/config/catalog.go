package config

import "github.com/example/roombooker/internal/booking"

// DefaultRules are the weekly windows we try to reserve. Slots are
// 30-minute units, so Slots must cover StartTime..EndTime.
func DefaultRules() []booking.RecurrenceRule {
	return []booking.RecurrenceRule{
		{DayName: "Monday", ISOWeekday: 1, StartTime: "13:00:00", EndTime: "16:00:00", Slots: 6},
		{DayName: "Friday", ISOWeekday: 5, StartTime: "14:30:00", EndTime: "16:00:00", Slots: 4},
		{DayName: "Thursday", ISOWeekday: 4, StartTime: "15:00:00", EndTime: "16:00:00", Slots: 2},
	}
}

// DefaultRoomTiers lists the study rooms we are willing to take, best
// tier first. Within a tier the listed order is the tie-break. Some
// presentation rooms are left out entirely because they have no tables.
func DefaultRoomTiers() [][]booking.Room {
	return [][]booking.Room{
		{
			{EID: 18520, HasTech: true, Name: "LB 257 - Croatia", Priority: 1},
		},
		{
			{EID: 18518, HasTech: false, Name: "LB 251 - Luxembourg", Priority: 2},
			{EID: 18522, HasTech: false, Name: "LB 259 - New Zealand", Priority: 2},
		},
		{
			{EID: 18508, HasTech: true, Name: "LB 351 - Netherlands", Priority: 3},
			{EID: 18535, HasTech: true, Name: "LB 353 - Kenya", Priority: 3},
			{EID: 18536, HasTech: true, Name: "LB 359 - Vietnam", Priority: 3},
		},
		{
			{EID: 18510, HasTech: true, Name: "LB 451 - Brazil", Priority: 4},
			{EID: 18512, HasTech: true, Name: "LB 453 - Japan", Priority: 4},
			{EID: 18523, HasTech: true, Name: "LB 459 - Italy", Priority: 4},
		},
		{
			{EID: 18524, HasTech: true, Name: "LB 518 - Ukraine", Priority: 5},
			{EID: 18525, HasTech: true, Name: "LB 520 - South Africa", Priority: 5},
			{EID: 18526, HasTech: true, Name: "LB 522 - Peru", Priority: 5},
			{EID: 18511, HasTech: true, Name: "LB 547 - Lithuania", Priority: 5},
			{EID: 18528, HasTech: true, Name: "LB 583 - Poland", Priority: 5},
		},
	}
}
