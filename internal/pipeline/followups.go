package pipeline

import (
	"context"
	"time"

	"github.com/cars24/connector-cli/internal/drafting"
	"github.com/cars24/connector-cli/pkg/hubspot"
)

// FollowUps runs the manager follow-up workflow over deals whose test
// drive was conducted inside [from, to]: filter out customers already
// buying elsewhere, dedupe on the conducted date, then draft and send
// manager-signed follow-ups.
func (p *Pipeline) FollowUps(ctx context.Context, from, to, today time.Time, state string, send bool) (*Result, error) {
	if to.Before(from) {
		from, to = to, from
	}
	target := from.Format("2006-01-02") + ".." + to.Format("2006-01-02")
	return p.track(ctx, "followups", target, func() (*Result, error) {
		res := &Result{Workflow: "followups"}

		startMS, _ := DayBoundsEpochMS(from, p.loc)
		_, endMS := DayBoundsEpochMS(to, p.loc)
		deals, fetched, err := p.fetchByDate(ctx, hubspot.DateSearch{
			PipelineID:   p.cfg.HubSpot.PipelineID,
			StageID:      p.cfg.HubSpot.StageConducted,
			StateValue:   state,
			DateProperty: "td_conducted_date",
			StartMS:      &startMS,
			EndMS:        &endMS,
		})
		if err != nil {
			return nil, err
		}
		res.Fetched = fetched

		deals, removed := FilterContactActivePurchases(ctx, p.crm, deals, p.cfg.HubSpot.ActivePurchaseStages)
		res.Removals = append(res.Removals, removed...)

		deals, removed = FilterInternalEmails(deals, p.cfg.Dealer.BlacklistDomains)
		res.Removals = append(res.Removals, removed...)
		res.Deals = deals

		identities, collapsed := Dedupe(deals, DedupeOptions{UseConducted: true, Today: today})
		res.Removals = append(res.Removals, collapsed...)
		res.Identities = identities

		res.Messages, res.Skipped = p.drafter.BuildMessages(ctx, identities, drafting.ModeManager)
		if !send {
			return res, nil
		}

		res.Dispatches = p.Dispatch(ctx, res.Messages, p.cfg.Aircall.OutreachNumber)
		res.SentPhones = sentPhones(res.Dispatches)
		return res, nil
	})
}
