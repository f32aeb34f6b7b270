package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cars24/connector-cli/internal/model"
	"github.com/cars24/connector-cli/pkg/hubspot"
)

const (
	noNotes       = "No notes"
	notesCellMax  = 300
	notesBodyJoin = "\n\n"
)

var (
	htmlTagRe = regexp.MustCompile(`<[^>]+>`)
	wsRe      = regexp.MustCompile(`\s+`)
)

// Unsold builds the unsold test-drive summary for conducted deals in
// [from, to]: one row per customer with their vehicles, consolidated
// CRM notes and an LLM analysis of why the sale stalled.
func (p *Pipeline) Unsold(ctx context.Context, from, to time.Time, state string) ([]model.UnsoldRecord, *Result, error) {
	if to.Before(from) {
		from, to = to, from
	}
	target := from.Format("2006-01-02") + ".." + to.Format("2006-01-02")

	var records []model.UnsoldRecord
	res, err := p.track(ctx, "unsold", target, func() (*Result, error) {
		res := &Result{Workflow: "unsold"}

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
		res.Deals = deals

		records = p.unsoldRecords(ctx, deals)
		return res, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return records, res, nil
}

// unsoldRecords collapses deals to one row per customer. The first deal
// seen for a phone|email pair is the primary; the rest only contribute
// to the vehicle list and deal count.
func (p *Pipeline) unsoldRecords(ctx context.Context, deals []model.PreparedDeal) []model.UnsoldRecord {
	type group struct {
		primary  model.PreparedDeal
		vehicles []string
		count    int
	}

	var order []string
	groups := make(map[string]*group)
	for _, d := range deals {
		key := d.PhoneNorm + "|" + d.EmailNorm
		if key == "|" {
			continue
		}
		g, ok := groups[key]
		if !ok {
			g = &group{primary: d}
			groups[key] = g
			order = append(order, key)
		}
		g.count++
		if v := vehicleLine(d); v != "" {
			g.vehicles = append(g.vehicles, v)
		}
	}

	records := make([]model.UnsoldRecord, 0, len(order))
	for _, key := range order {
		g := groups[key]
		d := g.primary

		name := strings.TrimSpace(d.FullName)
		if name == "" {
			name = "Customer"
		}
		vehicles := strings.Join(g.vehicles, " | ")
		notes := p.consolidatedNotes(ctx, d.ID)

		a := p.drafter.AnalyzeNotes(ctx, notes, name, vehicles)

		conducted := ""
		if !d.ConductedDate.IsZero() {
			conducted = d.ConductedDate.Format("2006-01-02")
		}
		records = append(records, model.UnsoldRecord{
			DealID:        d.ID,
			CustomerName:  name,
			Phone:         d.PhoneNorm,
			Email:         d.EmailNorm,
			Vehicles:      vehicles,
			DealCount:     g.count,
			ConductedDate: conducted,
			Notes:         notesCell(notes),
			Summary:       a.Summary,
			Category:      a.Category,
			NextSteps:     a.NextSteps,
		})
	}
	return records
}

func vehicleLine(d model.PreparedDeal) string {
	car := strings.TrimSpace(strings.TrimSpace(d.VehicleMake) + " " + strings.TrimSpace(d.VehicleModel))
	if car == "" {
		return ""
	}
	if d.AppointmentID != "" {
		return fmt.Sprintf("%s (ID: %s)", car, d.AppointmentID)
	}
	return car
}

// consolidatedNotes fetches every note attached to a deal's contacts
// and flattens them to "[date] (owner) body" lines, newest data as the
// CRM returns it. Any CRM failure degrades to whatever was gathered.
func (p *Pipeline) consolidatedNotes(ctx context.Context, dealID string) string {
	log := zap.L().With(zap.String("deal_id", dealID))

	contactIDs, err := p.crm.ContactIDsForDeal(ctx, dealID)
	if err != nil {
		log.Warn("unsold: contact lookup failed", zap.Error(err))
		return noNotes
	}

	var lines []string
	for _, cid := range contactIDs {
		noteIDs, err := p.crm.ContactNoteIDs(ctx, cid)
		if err != nil {
			log.Warn("unsold: note association lookup failed",
				zap.String("contact_id", cid), zap.Error(err))
			continue
		}
		if len(noteIDs) == 0 {
			continue
		}
		notes, err := p.crm.NotesContent(ctx, noteIDs)
		if err != nil {
			log.Warn("unsold: note read failed",
				zap.String("contact_id", cid), zap.Error(err))
			continue
		}
		for _, n := range notes {
			if line := p.noteLine(ctx, n); line != "" {
				lines = append(lines, line)
			}
		}
	}
	if len(lines) == 0 {
		return noNotes
	}
	return strings.Join(lines, notesBodyJoin)
}

func (p *Pipeline) noteLine(ctx context.Context, n hubspot.Note) string {
	body := StripHTML(n.Body)
	if body == "" {
		return ""
	}

	stamp := n.Timestamp
	if stamp == "" {
		stamp = n.CreateDate
	}
	when := ""
	if t := coerceToUTC(stamp); !t.IsZero() {
		when = t.In(p.loc).Format("2006-01-02 15:04")
	}

	owner := "Unknown"
	if n.OwnerID != "" {
		owner = p.crm.OwnerName(ctx, n.OwnerID)
	}
	return fmt.Sprintf("[%s] (%s) %s", when, owner, body)
}

// StripHTML flattens CRM rich-text note bodies to plain text.
func StripHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&amp;", "&")
	return strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
}

// notesCell shortens consolidated notes for tabular output.
func notesCell(notes string) string {
	flat := strings.ReplaceAll(notes, notesBodyJoin, " | ")
	if len(flat) > notesCellMax {
		return flat[:notesCellMax] + "..."
	}
	return flat
}
