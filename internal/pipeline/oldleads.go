package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/cars24/connector-cli/internal/drafting"
	"github.com/cars24/connector-cli/internal/model"
)

// OldLeads runs the stale-lead re-engagement workflow for one
// appointment: fetch its deals still sitting in a test-drive stage,
// drop anyone with an active purchase elsewhere or an upcoming
// booking, then draft and send manager-voiced nudges.
func (p *Pipeline) OldLeads(ctx context.Context, appointmentID string, today time.Time, send bool) (*Result, error) {
	if appointmentID == "" {
		return nil, eris.New("pipeline: appointment id required")
	}
	return p.track(ctx, "oldleads", appointmentID, func() (*Result, error) {
		res := &Result{Workflow: "oldleads"}

		startStages := []string{
			p.cfg.HubSpot.StageEnquiry,
			p.cfg.HubSpot.StageBooked,
			p.cfg.HubSpot.StageConducted,
		}
		raw, err := p.crm.SearchDealsByAppointment(ctx, appointmentID, p.cfg.HubSpot.PipelineID, startStages, model.DealProperties)
		if err != nil {
			return nil, err
		}
		res.Fetched = len(raw)
		deals := p.prepareRaw(raw)

		deals, removed := FilterContactActivePurchases(ctx, p.crm, deals, p.cfg.HubSpot.ActivePurchaseStages)
		res.Removals = append(res.Removals, removed...)

		deals, removed = FilterFutureBookings(deals, today)
		res.Removals = append(res.Removals, removed...)

		deals, removed = FilterInternalEmails(deals, p.cfg.Dealer.BlacklistDomains)
		res.Removals = append(res.Removals, removed...)
		res.Deals = deals

		identities, collapsed := Dedupe(deals, DedupeOptions{UseConducted: false, Today: today})
		res.Removals = append(res.Removals, collapsed...)
		res.Identities = identities

		res.Messages, res.Skipped = p.drafter.BuildMessages(ctx, identities, drafting.ModeOldLead)
		if !send {
			return res, nil
		}

		res.Dispatches = p.Dispatch(ctx, res.Messages, p.cfg.Aircall.OutreachNumber)
		res.SentPhones = sentPhones(res.Dispatches)
		return res, nil
	})
}
