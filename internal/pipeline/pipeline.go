package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cars24/connector-cli/internal/config"
	"github.com/cars24/connector-cli/internal/drafting"
	"github.com/cars24/connector-cli/internal/model"
	"github.com/cars24/connector-cli/internal/store"
	"github.com/cars24/connector-cli/pkg/aircall"
	"github.com/cars24/connector-cli/pkg/hubspot"
)

// Pipeline orchestrates the fetch, filter, dedupe, draft and dispatch
// stages shared by all workflows.
type Pipeline struct {
	cfg     *config.Config
	crm     hubspot.Client
	sms     aircall.Client
	drafter *drafting.Drafter
	store   store.Store
	loc     *time.Location
}

// New creates a Pipeline with all dependencies.
func New(
	cfg *config.Config,
	crm hubspot.Client,
	sms aircall.Client,
	drafter *drafting.Drafter,
	st store.Store,
	loc *time.Location,
) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		crm:     crm,
		sms:     sms,
		drafter: drafter,
		store:   st,
		loc:     loc,
	}
}

// Result collects every artifact a workflow produced, so callers can
// render previews and audits.
type Result struct {
	Workflow   string
	Fetched    int
	Deals      []model.PreparedDeal
	Removals   []model.Removal
	Identities []model.Identity
	Messages   []model.Message
	Skipped    []model.Skipped
	Dispatches []model.DispatchResult

	// Post-send CRM bookkeeping counts.
	MarkedOK    int
	MarkedFail  int
	OwnersOK    int
	OwnersFail  int
	SentPhones  []string
	RunID       string
}

func (r *Result) sentCounts() (sent, failed int) {
	for _, d := range r.Dispatches {
		if d.Sent {
			sent++
		} else {
			failed++
		}
	}
	return sent, failed
}

// track wraps a workflow in run-history bookkeeping. Store failures
// degrade to warnings; the workflow outcome is what matters.
func (p *Pipeline) track(ctx context.Context, workflow, targetDate string, fn func() (*Result, error)) (*Result, error) {
	log := zap.L().With(zap.String("workflow", workflow), zap.String("target", targetDate))

	var run *model.Run
	if p.store != nil {
		var err error
		run, err = p.store.CreateRun(ctx, workflow, targetDate)
		if err != nil {
			log.Warn("pipeline: create run failed", zap.Error(err))
			run = nil
		}
	}

	res, err := fn()
	if err != nil {
		if run != nil {
			if ferr := p.store.FailRun(ctx, run.ID, err); ferr != nil {
				log.Warn("pipeline: fail run update failed", zap.Error(ferr))
			}
		}
		return nil, err
	}

	if run != nil {
		res.RunID = run.ID
		sent, failed := res.sentCounts()
		run.Fetched = res.Fetched
		run.Kept = len(res.Identities)
		run.Removed = len(res.Removals)
		run.Drafted = len(res.Messages)
		run.Sent = sent
		run.Failed = failed
		if err := p.store.CompleteRun(ctx, run); err != nil {
			log.Warn("pipeline: complete run failed", zap.Error(err))
		}
		if err := p.store.SaveRemovals(ctx, run.ID, res.Removals); err != nil {
			log.Warn("pipeline: save removals failed", zap.Error(err))
		}
	}

	log.Info("pipeline: workflow finished",
		zap.Int("fetched", res.Fetched),
		zap.Int("identities", len(res.Identities)),
		zap.Int("removed", len(res.Removals)),
		zap.Int("drafted", len(res.Messages)),
	)
	return res, nil
}

// fetchByDate searches deals for one stage and date constraint, then
// derives local fields.
func (p *Pipeline) fetchByDate(ctx context.Context, q hubspot.DateSearch) ([]model.PreparedDeal, int, error) {
	q.Properties = model.DealProperties
	raw, err := p.crm.SearchDealsByDate(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return p.prepareRaw(raw), len(raw), nil
}

func (p *Pipeline) prepareRaw(raw []hubspot.Deal) []model.PreparedDeal {
	deals := make([]model.Deal, 0, len(raw))
	for _, r := range raw {
		d := model.DealFromProperties(r.Properties)
		if d.ID == "" {
			d.ID = r.ID
		}
		deals = append(deals, d)
	}
	return Prepare(deals, p.loc)
}
