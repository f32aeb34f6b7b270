package pipeline

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/cars24/connector-cli/internal/model"
	"github.com/cars24/connector-cli/pkg/hubspot"
)

// FilterCarActivePurchases drops deals whose car, identified by
// appointment_id, has some other deal already in an active purchase
// stage. Lookup failures for an appointment fail open: those deals
// stay in the batch.
func FilterCarActivePurchases(ctx context.Context, crm hubspot.Client, deals []model.PreparedDeal, activeStages []string) ([]model.PreparedDeal, []model.Removal) {
	if len(deals) == 0 {
		return deals, nil
	}
	active := stageSet(activeStages)

	batchIDs := make(map[string]bool, len(deals))
	dealIDs := make([]string, 0, len(deals))
	for _, d := range deals {
		if d.ID != "" {
			batchIDs[d.ID] = true
			dealIDs = append(dealIDs, d.ID)
		}
	}

	props, err := crm.BatchReadDeals(ctx, dealIDs, []string{"appointment_id"})
	if err != nil {
		zap.L().Warn("pipeline: appointment read failed, keeping all deals", zap.Error(err))
		return deals, nil
	}

	dealAppointment := make(map[string]string, len(dealIDs))
	appointments := make(map[string]bool)
	for _, id := range dealIDs {
		if appt := props[id]["appointment_id"]; appt != "" {
			dealAppointment[id] = appt
			appointments[appt] = true
		}
	}
	if len(appointments) == 0 {
		return deals, nil
	}

	// Sorted iteration keeps the CRM call order stable across runs.
	sortedAppts := make([]string, 0, len(appointments))
	for appt := range appointments {
		sortedAppts = append(sortedAppts, appt)
	}
	sort.Strings(sortedAppts)

	excludedAppts := make(map[string]bool)
	for _, appt := range sortedAppts {
		related, err := crm.DealIDsByAppointment(ctx, appt)
		if err != nil {
			zap.L().Warn("pipeline: appointment lookup failed, keeping its deals",
				zap.String("appointment_id", appt), zap.Error(err))
			continue
		}
		if len(related) == 0 {
			continue
		}
		stageMap, err := crm.BatchReadDeals(ctx, related, []string{"dealstage"})
		if err != nil {
			zap.L().Warn("pipeline: stage read failed, keeping its deals",
				zap.String("appointment_id", appt), zap.Error(err))
			continue
		}
		for _, other := range related {
			if batchIDs[other] {
				continue
			}
			if active[stageMap[other]["dealstage"]] {
				excludedAppts[appt] = true
				break
			}
		}
	}

	kept := make([]model.PreparedDeal, 0, len(deals))
	var removed []model.Removal
	for _, d := range deals {
		if excludedAppts[dealAppointment[d.ID]] {
			removed = append(removed, model.RemovalOf(d, ReasonCarActive))
			continue
		}
		kept = append(kept, d)
	}
	return kept, removed
}

// FilterContactActivePurchases drops deals whose contact holds another
// deal, outside the current batch, in an active purchase stage.
// Association failures fail open.
func FilterContactActivePurchases(ctx context.Context, crm hubspot.Client, deals []model.PreparedDeal, activeStages []string) ([]model.PreparedDeal, []model.Removal) {
	if len(deals) == 0 {
		return deals, nil
	}
	active := stageSet(activeStages)

	batchIDs := make(map[string]bool, len(deals))
	dealIDs := make([]string, 0, len(deals))
	for _, d := range deals {
		if d.ID != "" {
			batchIDs[d.ID] = true
			dealIDs = append(dealIDs, d.ID)
		}
	}

	dealContacts, err := crm.DealContacts(ctx, dealIDs)
	if err != nil {
		zap.L().Warn("pipeline: deal association read failed, keeping all deals", zap.Error(err))
		return deals, nil
	}

	contactSet := make(map[string]bool)
	for _, contacts := range dealContacts {
		for _, c := range contacts {
			contactSet[c] = true
		}
	}
	contactIDs := make([]string, 0, len(contactSet))
	for c := range contactSet {
		contactIDs = append(contactIDs, c)
	}
	sort.Strings(contactIDs)

	contactDeals, err := crm.ContactDeals(ctx, contactIDs)
	if err != nil {
		zap.L().Warn("pipeline: contact association read failed, keeping all deals", zap.Error(err))
		return deals, nil
	}

	otherSet := make(map[string]bool)
	for _, other := range contactDeals {
		for _, id := range other {
			if !batchIDs[id] {
				otherSet[id] = true
			}
		}
	}
	otherIDs := make([]string, 0, len(otherSet))
	for id := range otherSet {
		otherIDs = append(otherIDs, id)
	}
	sort.Strings(otherIDs)

	stageMap, err := crm.BatchReadDeals(ctx, otherIDs, []string{"dealstage"})
	if err != nil {
		zap.L().Warn("pipeline: stage read failed, keeping all deals", zap.Error(err))
		return deals, nil
	}

	excludedContacts := make(map[string]bool)
	for contact, other := range contactDeals {
		for _, id := range other {
			if batchIDs[id] {
				continue
			}
			if active[stageMap[id]["dealstage"]] {
				excludedContacts[contact] = true
				break
			}
		}
	}

	kept := make([]model.PreparedDeal, 0, len(deals))
	var removed []model.Removal
	for _, d := range deals {
		exclude := false
		for _, c := range dealContacts[d.ID] {
			if excludedContacts[c] {
				exclude = true
				break
			}
		}
		if exclude {
			removed = append(removed, model.RemovalOf(d, ReasonContactActive))
			continue
		}
		kept = append(kept, d)
	}
	return kept, removed
}

func stageSet(ids []string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}
