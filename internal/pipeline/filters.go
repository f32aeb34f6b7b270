package pipeline

import (
	"strings"
	"time"

	"github.com/cars24/connector-cli/internal/model"
)

// Filter reasons recorded on removal audit rows.
const (
	ReasonInternalEmail  = "Internal/test email domain"
	ReasonSMSAlreadySent = "SMS reminder already sent (td_reminder_sms_sent = true)"
	ReasonCarActive      = "Car (via appointment_id) has another deal in active purchase stage"
	ReasonContactActive  = "Contact has another active purchase deal"
	ReasonFutureBooking  = "Future TD booking date, likely upcoming appointment"
)

// FilterInternalEmails removes deals whose email domain is on the
// blacklist. Every input row comes back in exactly one of the two
// return slices.
func FilterInternalEmails(deals []model.PreparedDeal, domains []string) ([]model.PreparedDeal, []model.Removal) {
	blocked := make(map[string]bool, len(domains))
	for _, d := range domains {
		blocked[strings.ToLower(strings.TrimSpace(d))] = true
	}
	kept := make([]model.PreparedDeal, 0, len(deals))
	var removed []model.Removal
	for _, d := range deals {
		if blocked[EmailDomain(d.EmailNorm)] {
			removed = append(removed, model.RemovalOf(d, ReasonInternalEmail))
			continue
		}
		kept = append(kept, d)
	}
	return kept, removed
}

// FilterSMSAlreadySent removes deals already marked as reminded. Both
// the raw "true" value and the "Yes" label count as sent.
func FilterSMSAlreadySent(deals []model.PreparedDeal) ([]model.PreparedDeal, []model.Removal) {
	kept := make([]model.PreparedDeal, 0, len(deals))
	var removed []model.Removal
	for _, d := range deals {
		v := strings.ToLower(strings.TrimSpace(d.ReminderSent))
		if v == "yes" || v == "true" {
			removed = append(removed, model.RemovalOf(d, ReasonSMSAlreadySent))
			continue
		}
		kept = append(kept, d)
	}
	return kept, removed
}

// FilterFutureBookings removes deals booked after today; those
// customers have an upcoming appointment and should not be chased.
func FilterFutureBookings(deals []model.PreparedDeal, today time.Time) ([]model.PreparedDeal, []model.Removal) {
	dayOf := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	cutoff := dayOf(today)
	kept := make([]model.PreparedDeal, 0, len(deals))
	var removed []model.Removal
	for _, d := range deals {
		if !d.SlotDateLocal.IsZero() && dayOf(d.SlotDateLocal).After(cutoff) {
			removed = append(removed, model.RemovalOf(d, ReasonFutureBooking))
			continue
		}
		kept = append(kept, d)
	}
	return kept, removed
}
