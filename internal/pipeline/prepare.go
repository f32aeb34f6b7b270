package pipeline

import (
	"time"

	"github.com/cars24/connector-cli/internal/model"
)

// Prepare derives local dates, normalized phone and email for every
// fetched deal. It never drops rows; unparseable values produce zero
// dates and empty strings.
func Prepare(deals []model.Deal, loc *time.Location) []model.PreparedDeal {
	out := make([]model.PreparedDeal, 0, len(deals))
	for _, d := range deals {
		phoneRaw := d.Mobile
		if phoneRaw == "" {
			phoneRaw = d.Phone
		}
		out = append(out, model.PreparedDeal{
			Deal:          d,
			SlotDate:      LocalDate(d.BookingSlot, loc),
			SlotTime:      LocalTime(d.BookingSlot, loc),
			SlotDateLocal: LocalDate(d.SlotDateProp, loc),
			SlotTimeLocal: SlotTimeProp(d.SlotTimeProp, loc),
			ConductedDate: LocalDate(d.ConductedAt, loc),
			ConductedTime: LocalTime(d.ConductedAt, loc),
			PhoneRaw:      phoneRaw,
			PhoneNorm:     NormalizePhone(phoneRaw),
			EmailNorm:     NormalizeEmail(d.Email),
		})
	}
	return out
}
