package booking

// TimeSlot represents a requested delivery window. Slots are a fixed menu shown
// on the booking form; they are not checked against real calendar availability.
type TimeSlot string

const (
	SlotMorning   TimeSlot = "09:00 AM - 12:00 PM"
	SlotAfternoon TimeSlot = "12:00 PM - 03:00 PM"
	SlotEvening   TimeSlot = "03:00 PM - 06:00 PM"
)

// IsValid returns true if the time slot is one of the offered delivery windows.
func (t TimeSlot) IsValid() bool {
	switch t {
	case SlotMorning, SlotAfternoon, SlotEvening:
		return true
	}
	return false
}

// String returns the string representation of the time slot.
func (t TimeSlot) String() string {
	return string(t)
}
