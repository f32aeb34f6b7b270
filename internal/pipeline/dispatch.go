package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cars24/connector-cli/internal/model"
)

// Dispatch sends each drafted message from the given Aircall number,
// pacing sends to avoid carrier throttling. A failed send never aborts
// the batch; each outcome is recorded. In dry-run mode nothing is sent
// and every message is reported as not sent.
func (p *Pipeline) Dispatch(ctx context.Context, msgs []model.Message, numberID string) []model.DispatchResult {
	results := make([]model.DispatchResult, 0, len(msgs))

	pace := time.Duration(p.cfg.SMS.PaceSecs) * time.Second
	var limiter *rate.Limiter
	if pace > 0 {
		limiter = rate.NewLimiter(rate.Every(pace), 1)
	}

	for _, m := range msgs {
		res := model.DispatchResult{
			Phone: m.Identity.Phone,
			Name:  m.Identity.CustomerName,
			Body:  m.Body,
		}
		if len(m.Identity.DealIDs) > 0 {
			res.DealID = m.Identity.DealIDs[0]
		}

		if p.cfg.SMS.DryRun {
			res.Error = "dry run"
			results = append(results, res)
			continue
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				res.Error = err.Error()
				results = append(results, res)
				continue
			}
		}

		if err := p.sms.SendSMS(ctx, numberID, m.Identity.Phone, m.Body); err != nil {
			res.Error = err.Error()
			zap.L().Warn("dispatch: send failed",
				zap.String("phone", m.Identity.Phone), zap.Error(err))
		} else {
			res.Sent = true
			zap.L().Info("dispatch: sent", zap.String("phone", m.Identity.Phone))
		}
		results = append(results, res)
	}
	return results
}

// sentPhones lists the phones that actually received a message.
func sentPhones(results []model.DispatchResult) []string {
	var out []string
	for _, r := range results {
		if r.Sent {
			out = append(out, r.Phone)
		}
	}
	return out
}
