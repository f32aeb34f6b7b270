package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cars24/connector-cli/internal/drafting"
	"github.com/cars24/connector-cli/internal/model"
	"github.com/cars24/connector-cli/internal/roster"
	"github.com/cars24/connector-cli/pkg/hubspot"
)

// Reminders runs the test drive reminder workflow for bookings on the
// given local date: fetch booked deals, filter, dedupe, assign the
// day's associates round-robin, draft, send, then mark the deals as
// reminded and record the owning associate in the CRM.
func (p *Pipeline) Reminders(ctx context.Context, date time.Time, state string, associates []model.Associate, send bool) (*Result, error) {
	target := date.Format("2006-01-02")
	return p.track(ctx, "reminders", target, func() (*Result, error) {
		res := &Result{Workflow: "reminders"}

		eqMS, _ := DayBoundsEpochMS(date, p.loc)
		deals, fetched, err := p.fetchByDate(ctx, hubspot.DateSearch{
			PipelineID:   p.cfg.HubSpot.PipelineID,
			StageID:      p.cfg.HubSpot.StageBooked,
			StateValue:   state,
			DateProperty: "td_booking_slot_date",
			EqMS:         &eqMS,
		})
		if err != nil {
			return nil, err
		}
		res.Fetched = fetched

		deals, removed := FilterSMSAlreadySent(deals)
		res.Removals = append(res.Removals, removed...)

		deals, removed = FilterCarActivePurchases(ctx, p.crm, deals, p.cfg.HubSpot.ActivePurchaseStages)
		res.Removals = append(res.Removals, removed...)

		deals, removed = FilterInternalEmails(deals, p.cfg.Dealer.BlacklistDomains)
		res.Removals = append(res.Removals, removed...)
		res.Deals = deals

		identities, collapsed := Dedupe(deals, DedupeOptions{UseConducted: false, Today: date})
		res.Removals = append(res.Removals, collapsed...)

		avail := roster.AvailableOn(associates, date)
		if len(avail) == 0 {
			zap.L().Warn("reminders: no associates available, drafting generic messages",
				zap.String("date", target))
		} else {
			identities = AssignRoundRobin(identities, avail, date)
		}
		res.Identities = identities

		res.Messages, res.Skipped = p.drafter.BuildMessages(ctx, identities, drafting.ModeReminder)
		if !send {
			return res, nil
		}

		res.Dispatches = p.Dispatch(ctx, res.Messages, p.cfg.Aircall.ReminderNumber)
		res.SentPhones = sentPhones(res.Dispatches)
		if len(res.SentPhones) == 0 {
			return res, nil
		}

		phoneToDeals := DealIDsByPhone(identities, deals)
		phoneToEmail := make(map[string]string, len(identities))
		for _, id := range identities {
			if id.Phone != "" && id.AssigneeEmail != "" {
				phoneToEmail[id.Phone] = id.AssigneeEmail
			}
		}

		var markIDs []string
		dealToEmail := make(map[string]string)
		for _, phone := range res.SentPhones {
			ids := phoneToDeals[phone]
			markIDs = append(markIDs, ids...)
			email := phoneToEmail[phone]
			if email == "" {
				zap.L().Warn("reminders: no associate email for phone, skipping owner update",
					zap.String("phone", phone))
				continue
			}
			for _, id := range ids {
				dealToEmail[id] = email
			}
		}

		res.MarkedOK, res.MarkedFail = p.crm.MarkRemindersSent(ctx, markIDs)
		if len(dealToEmail) > 0 {
			res.OwnersOK, res.OwnersFail = p.crm.UpdateTicketOwners(ctx, dealToEmail)
		}
		return res, nil
	})
}
