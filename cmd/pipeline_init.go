package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cars24/connector-cli/internal/drafting"
	"github.com/cars24/connector-cli/internal/export"
	"github.com/cars24/connector-cli/internal/model"
	"github.com/cars24/connector-cli/internal/pipeline"
	"github.com/cars24/connector-cli/internal/roster"
	"github.com/cars24/connector-cli/internal/store"
	"github.com/cars24/connector-cli/pkg/aircall"
	"github.com/cars24/connector-cli/pkg/hubspot"
	"github.com/cars24/connector-cli/pkg/openai"
)

// pipelineEnv holds the initialized clients, store and pipeline shared
// by the workflow commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
	Loc      *time.Location
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initStore opens the sqlite run-history store.
func initStore() (store.Store, error) {
	dsn := cfg.Store.Path
	if dsn == "" {
		dsn = "connector.db"
	}
	return store.NewSQLite(dsn)
}

// initPipeline sets up the store, the CRM/SMS/LLM clients and the
// pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if cfg.HubSpot.Token == "" {
		return nil, eris.New("hubspot token is required (CONNECTOR_HUBSPOT_TOKEN)")
	}

	loc, err := time.LoadLocation(cfg.Dealer.Timezone)
	if err != nil {
		return nil, eris.Wrapf(err, "load timezone %s", cfg.Dealer.Timezone)
	}

	st, err := initStore()
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	crm := hubspot.NewClient(cfg.HubSpot.Token,
		hubspot.WithBaseURL(cfg.HubSpot.BaseURL),
		hubspot.WithRateLimit(float64(cfg.HubSpot.RateLimitRPS)),
		hubspot.WithPageLimit(cfg.HubSpot.PageLimit),
		hubspot.WithTotalCap(cfg.HubSpot.TotalCap),
	)
	sms := aircall.NewClient(cfg.Aircall.ID, cfg.Aircall.Token,
		aircall.WithBaseURL(cfg.Aircall.BaseURL))
	llm := openai.NewClient(cfg.OpenAI.Key, openai.WithModels(cfg.OpenAI.Models))
	drafter := drafting.New(llm, cfg.Dealer.Name, cfg.Dealer.ManagerName, cfg.SMS.MaxChars)

	p := pipeline.New(cfg, crm, sms, drafter, st, loc)

	return &pipelineEnv{Store: st, Pipeline: p, Loc: loc}, nil
}

// loadRoster reads sales associates from the configured source.
func loadRoster() ([]model.Associate, error) {
	switch cfg.Roster.Source {
	case "xlsx":
		if cfg.Roster.Path == "" {
			return nil, eris.New("roster path is required (CONNECTOR_ROSTER_PATH)")
		}
		return roster.LoadXLSX(cfg.Roster.Path)
	case "fixed":
		return roster.ParseFixed(cfg.Roster.Fixed), nil
	default:
		return nil, eris.Errorf("unsupported roster source: %s", cfg.Roster.Source)
	}
}

// parseDateFlag parses a --date style flag, defaulting to today in loc.
func parseDateFlag(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		now := time.Now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), nil
	}
	d, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "parse date %q", value)
	}
	return d, nil
}

// writeAudit exports the removal and dispatch CSVs for a finished run.
func writeAudit(res *pipeline.Result, stamp string) {
	dir := cfg.Pipeline.AuditDir
	if dir == "" {
		return
	}
	if path, err := export.WriteRemovals(dir, fmt.Sprintf("%s_removals_%s.csv", res.Workflow, stamp), res.Removals); err != nil {
		zap.L().Warn("audit export failed", zap.Error(err))
	} else if path != "" {
		zap.L().Info("removal audit written", zap.String("path", path))
	}
	if path, err := export.WriteMessages(dir, fmt.Sprintf("%s_messages_%s.csv", res.Workflow, stamp), res.Messages); err != nil {
		zap.L().Warn("audit export failed", zap.Error(err))
	} else if path != "" {
		zap.L().Info("message audit written", zap.String("path", path))
	}
	if path, err := export.WriteSkipped(dir, fmt.Sprintf("%s_skipped_%s.csv", res.Workflow, stamp), res.Skipped); err != nil {
		zap.L().Warn("audit export failed", zap.Error(err))
	} else if path != "" {
		zap.L().Info("skip audit written", zap.String("path", path))
	}
	if path, err := export.WriteDispatches(dir, fmt.Sprintf("%s_dispatches_%s.csv", res.Workflow, stamp), res.Dispatches); err != nil {
		zap.L().Warn("audit export failed", zap.Error(err))
	} else if path != "" {
		zap.L().Info("dispatch audit written", zap.String("path", path))
	}
}
