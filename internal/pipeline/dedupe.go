package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/cars24/connector-cli/internal/model"
)

// Stages of the test-drive pipeline.
const (
	StageEnquiryID   = "1119198251"
	StageBookedID    = "1119198252"
	StageConductedID = "1119198253"
)

var stageLabels = map[string]string{
	StageEnquiryID:   "Enquiry (no TD)",
	StageBookedID:    "TD booked",
	StageConductedID: "TD conducted (no deposit)",
}

// StageLabel maps a stage ID to its display label, falling back to the
// raw ID for stages outside the test-drive pipeline.
func StageLabel(stageID string) string {
	if label, ok := stageLabels[stageID]; ok {
		return label
	}
	return stageID
}

// DedupeOptions controls identity assembly.
type DedupeOptions struct {
	// UseConducted picks the conducted date/time for "when" phrasing
	// instead of the booking slot.
	UseConducted bool
	// Today anchors relative date phrasing.
	Today time.Time
}

// Dedupe collapses deals sharing a phone|email key into one Identity
// per customer, and reports the collapsed extra deals as audit rows.
// Rows with neither phone nor email cannot be messaged and are dropped.
func Dedupe(deals []model.PreparedDeal, opts DedupeOptions) ([]model.Identity, []model.Removal) {
	type group struct {
		key   string
		deals []model.PreparedDeal
	}
	index := make(map[string]int)
	var groups []group
	for _, d := range deals {
		key := strings.TrimSpace(d.PhoneNorm + "|" + strings.ToLower(strings.TrimSpace(d.EmailNorm)))
		if key == "|" || key == "" {
			continue
		}
		if i, ok := index[key]; ok {
			groups[i].deals = append(groups[i].deals, d)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, group{key: key, deals: []model.PreparedDeal{d}})
	}

	identities := make([]model.Identity, 0, len(groups))
	var removed []model.Removal
	for _, g := range groups {
		identities = append(identities, buildIdentity(g.key, g.deals, opts))
		if len(g.deals) > 1 {
			rep := g.deals[0]
			label := firstNonEmpty(rep.FullName, rep.PhoneNorm, rep.Email)
			for _, extra := range g.deals[1:] {
				removed = append(removed, model.RemovalOf(extra, "Deduped under "+label))
			}
		}
	}
	return identities, removed
}

func buildIdentity(key string, deals []model.PreparedDeal, opts DedupeOptions) model.Identity {
	id := model.Identity{Key: key}

	var cars, whenExact, whenRel, stages, videos []string
	seenVideo := make(map[string]bool)
	for _, d := range deals {
		if id.CustomerName == "" {
			id.CustomerName = cleanValue(d.FullName)
		}
		if id.Phone == "" {
			id.Phone = cleanValue(d.PhoneNorm)
		}
		if id.Email == "" {
			id.Email = cleanValue(d.Email)
		}

		car := strings.TrimSpace(strings.TrimSpace(d.VehicleMake) + " " + strings.TrimSpace(d.VehicleModel))
		if car == "" {
			car = "car"
		}
		cars = append(cars, car)

		id.Vehicles = append(id.Vehicles, model.VehicleDetail{
			Make:    strings.TrimSpace(d.VehicleMake),
			Model:   strings.TrimSpace(d.VehicleModel),
			Year:    strings.TrimSpace(d.VehicleYear),
			Colour:  SimplifyColor(d.VehicleColour),
			URL:     strings.TrimSpace(d.VehicleURL),
			StageID: strings.TrimSpace(d.Stage),
		})

		var date time.Time
		var t string
		if opts.UseConducted {
			date, t = d.ConductedDate, d.ConductedTime
		} else {
			date, t = d.BestSlotDate(), d.BestSlotTime()
		}
		rel := RelDate(date, opts.Today)
		exact := strings.TrimSpace(FormatDateAU(date) + " " + t)
		whenExact = append(whenExact, exact)
		if t == "" {
			whenRel = append(whenRel, rel)
		} else if rel != "" {
			whenRel = append(whenRel, rel+" at "+t)
		} else {
			whenRel = append(whenRel, "at "+t)
		}

		stages = append(stages, d.Stage)
		if v := strings.TrimSpace(d.VideoURL); v != "" && !seenVideo[v] {
			seenVideo[v] = true
			videos = append(videos, v)
		}

		id.DealIDs = append(id.DealIDs, d.ID)
		if d.AppointmentID != "" {
			id.AppointmentIDs = append(id.AppointmentIDs, d.AppointmentID)
		}
	}

	id.Cars = compact(cars)
	id.DealsCount = len(id.Cars)
	id.WhenExact = strings.Join(compact(whenExact), "; ")
	id.WhenRel = strings.Join(compact(whenRel), "; ")
	id.VideoURLs = videos

	labelSet := make(map[string]bool)
	for _, s := range stages {
		if s != "" {
			labelSet[StageLabel(s)] = true
		}
	}
	for label := range labelSet {
		id.StageLabels = append(id.StageLabels, label)
	}
	sort.Strings(id.StageLabels)

	id.StageHint = stageHint(stages)
	return id
}

func stageHint(stages []string) string {
	has := make(map[string]bool, len(stages))
	for _, s := range stages {
		has[s] = true
	}
	switch {
	case has[StageConductedID]:
		return "conducted"
	case has[StageBookedID]:
		return "booked"
	case has[StageEnquiryID]:
		return "enquiry"
	}
	return "unknown"
}

// DealIDsByPhone maps each identity's phone to every filtered deal
// carrying that normalized number, for post-send CRM updates.
func DealIDsByPhone(identities []model.Identity, deals []model.PreparedDeal) map[string][]string {
	out := make(map[string][]string, len(identities))
	for _, id := range identities {
		phone := strings.TrimSpace(id.Phone)
		if phone == "" {
			continue
		}
		var ids []string
		for _, d := range deals {
			if d.PhoneNorm == phone && d.ID != "" {
				ids = append(ids, d.ID)
			}
		}
		out[phone] = ids
	}
	return out
}

// cleanValue trims a value and treats the literal "nan" leak from
// upstream spreadsheet tooling as empty.
func cleanValue(s string) string {
	v := strings.TrimSpace(s)
	if strings.EqualFold(v, "nan") {
		return ""
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if cleaned := cleanValue(v); cleaned != "" {
			return cleaned
		}
	}
	return ""
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
