package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cars24/connector-cli/internal/model"
	"github.com/cars24/connector-cli/pkg/hubspot"
)

func remindersFixture() []hubspot.Deal {
	return []hubspot.Deal{
		{ID: "1", Properties: map[string]string{
			"hs_object_id":         "1",
			"full_name":            "Alice Smith",
			"mobile":               "0412345678",
			"email":                "alice@gmail.com",
			"dealstage":            StageBookedID,
			"vehicle_make":         "Toyota",
			"vehicle_model":        "Corolla",
			"td_booking_slot_date": "2025-03-11",
			"td_booking_slot_time": "10:30",
		}},
		{ID: "2", Properties: map[string]string{
			"hs_object_id":         "2",
			"full_name":            "Sent Already",
			"mobile":               "0498765432",
			"email":                "sent@gmail.com",
			"dealstage":            StageBookedID,
			"td_reminder_sms_sent": "true",
		}},
	}
}

func TestRemindersPreview(t *testing.T) {
	crm := new(mockCRM)
	sms := new(mockSMS)
	llm := new(mockLLM)
	p := newTestPipeline(crm, sms, llm)

	date := mustDate("2025-03-11")

	crm.On("SearchDealsByDate", mock.Anything, mock.MatchedBy(func(q hubspot.DateSearch) bool {
		return q.StageID == StageBookedID && q.DateProperty == "td_booking_slot_date" && q.EqMS != nil
	})).Return(remindersFixture(), nil)

	// No appointment IDs on the kept deal, so the car cross-reference
	// stops after the first batch read.
	crm.On("BatchReadDeals", mock.Anything, []string{"1"}, []string{"appointment_id"}).
		Return(map[string]map[string]string{"1": {}}, nil)

	llm.On("Complete", mock.Anything, mock.Anything).Return("Hi Alice, reminder about your Toyota Corolla test drive tomorrow at 10:30.", nil)

	associates := []model.Associate{{Name: "Ben", Email: "ben@dealer.com", Days: allDays()}}
	res, err := p.Reminders(context.Background(), date, "", associates, false)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Fetched)
	require.Len(t, res.Identities, 1)
	assert.Equal(t, "Alice Smith", res.Identities[0].CustomerName)
	assert.Equal(t, "Ben", res.Identities[0].AssigneeName)

	require.Len(t, res.Removals, 1)
	assert.Equal(t, ReasonSMSAlreadySent, res.Removals[0].Reason)

	require.Len(t, res.Messages, 1)
	assert.Contains(t, res.Messages[0].Body, "Toyota Corolla")
	assert.Empty(t, res.Dispatches, "preview must not send")
	sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRemindersSendMarksCRM(t *testing.T) {
	crm := new(mockCRM)
	sms := new(mockSMS)
	llm := new(mockLLM)
	p := newTestPipeline(crm, sms, llm)

	date := mustDate("2025-03-11")

	crm.On("SearchDealsByDate", mock.Anything, mock.Anything).Return(remindersFixture()[:1], nil)
	crm.On("BatchReadDeals", mock.Anything, []string{"1"}, []string{"appointment_id"}).
		Return(map[string]map[string]string{"1": {}}, nil)
	llm.On("Complete", mock.Anything, mock.Anything).Return("Hi Alice, see you tomorrow!", nil)
	sms.On("SendSMS", mock.Anything, "num-1", "+61412345678", mock.Anything).Return(nil)
	crm.On("MarkRemindersSent", mock.Anything, []string{"1"}).Return(1, 0)
	crm.On("UpdateTicketOwners", mock.Anything, map[string]string{"1": "ben@dealer.com"}).Return(1, 0)

	associates := []model.Associate{{Name: "Ben", Email: "ben@dealer.com", Days: allDays()}}
	res, err := p.Reminders(context.Background(), date, "", associates, true)
	require.NoError(t, err)

	require.Len(t, res.Dispatches, 1)
	assert.True(t, res.Dispatches[0].Sent)
	assert.Equal(t, []string{"+61412345678"}, res.SentPhones)
	assert.Equal(t, 1, res.MarkedOK)
	assert.Equal(t, 1, res.OwnersOK)
	crm.AssertExpectations(t)
}

func TestRemindersSearchError(t *testing.T) {
	crm := new(mockCRM)
	p := newTestPipeline(crm, new(mockSMS), new(mockLLM))

	crm.On("SearchDealsByDate", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	_, err := p.Reminders(context.Background(), mustDate("2025-03-11"), "", nil, false)
	assert.Error(t, err)
}
