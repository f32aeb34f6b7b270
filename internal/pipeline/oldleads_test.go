package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cars24/connector-cli/pkg/hubspot"
)

func TestOldLeadsRequiresAppointment(t *testing.T) {
	p := newTestPipeline(new(mockCRM), new(mockSMS), new(mockLLM))
	_, err := p.OldLeads(context.Background(), "", mustDate("2025-03-10"), false)
	assert.Error(t, err)
}

func TestOldLeads(t *testing.T) {
	crm := new(mockCRM)
	sms := new(mockSMS)
	llm := new(mockLLM)
	p := newTestPipeline(crm, sms, llm)

	today := mustDate("2025-03-10")
	raw := []hubspot.Deal{
		{ID: "1", Properties: map[string]string{
			"hs_object_id":  "1",
			"full_name":     "Alice Smith",
			"mobile":        "0412345678",
			"email":         "alice@gmail.com",
			"dealstage":     StageEnquiryID,
			"vehicle_make":  "Mazda",
			"vehicle_model": "CX-5",
		}},
		{ID: "2", Properties: map[string]string{
			"hs_object_id":         "2",
			"full_name":            "Future Booking",
			"mobile":               "0498765432",
			"email":                "future@gmail.com",
			"dealstage":            StageBookedID,
			"td_booking_slot_date": "2025-03-20",
		}},
	}

	startStages := []string{StageEnquiryID, StageBookedID, StageConductedID}
	crm.On("SearchDealsByAppointment", mock.Anything, "appt-9", "2345821", startStages, mock.Anything).
		Return(raw, nil)
	crm.On("DealContacts", mock.Anything, []string{"1", "2"}).
		Return(map[string][]string{}, nil)
	crm.On("ContactDeals", mock.Anything, []string{}).
		Return(map[string][]string{}, nil)
	crm.On("BatchReadDeals", mock.Anything, []string{}, []string{"dealstage"}).
		Return(map[string]map[string]string{}, nil)

	// Old-lead drafting falls back to a template when the LLM fails.
	llm.On("Complete", mock.Anything, mock.Anything).Return("", assert.AnError)

	res, err := p.OldLeads(context.Background(), "appt-9", today, false)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Fetched)
	require.Len(t, res.Identities, 1)
	assert.Equal(t, "Alice Smith", res.Identities[0].CustomerName)

	var reasons []string
	for _, r := range res.Removals {
		reasons = append(reasons, r.Reason)
	}
	assert.Contains(t, reasons, ReasonFutureBooking)

	require.Len(t, res.Messages, 1)
	body := res.Messages[0].Body
	assert.Contains(t, body, "Hi Alice")
	assert.Contains(t, body, "Pawan")
	assert.Contains(t, body, "Mazda CX-5")
	assert.True(t, res.Messages[0].Fallback)
}
