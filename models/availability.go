package models

// DayAvailability is one calendar day in a provider's meeting calendar.
type DayAvailability struct {
	Date                string     `json:"date"`
	AvailableSlotsCount int        `json:"available_slots_count"`
	Slots               []TimeSlot `json:"slots"`
}

// TimeSlot is a bookable time range within a day.
type TimeSlot struct {
	ID         int     `json:"id"`
	Time       string  `json:"time"`
	Price      float64 `json:"price"`
	IsReserved bool    `json:"is_reserved"`
}

// Selectable reports whether the day can be picked on the calendar:
// it must exist in the fetched horizon and still have open slots.
func (d DayAvailability) Selectable() bool {
	return d.AvailableSlotsCount > 0
}

// OpenSlots returns the slots that are still offerable for the day.
func (d DayAvailability) OpenSlots() []TimeSlot {
	open := make([]TimeSlot, 0, len(d.Slots))
	for _, s := range d.Slots {
		if !s.IsReserved {
			open = append(open, s)
		}
	}
	return open
}
