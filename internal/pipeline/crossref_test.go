package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cars24/connector-cli/internal/model"
)

var activeStages = []string{"active-1", "active-2"}

func TestFilterCarActivePurchases(t *testing.T) {
	crm := new(mockCRM)
	ctx := context.Background()

	d1 := testDeal("1", "Alice", "0412345678", "a@gmail.com")
	d2 := testDeal("2", "Bob", "0498765432", "b@gmail.com")
	deals := []model.PreparedDeal{d1, d2}

	crm.On("BatchReadDeals", mock.Anything, []string{"1", "2"}, []string{"appointment_id"}).
		Return(map[string]map[string]string{
			"1": {"appointment_id": "appt-1"},
			"2": {"appointment_id": "appt-2"},
		}, nil)

	// appt-1's car has another deal sitting in an active stage.
	crm.On("DealIDsByAppointment", mock.Anything, "appt-1").Return([]string{"1", "90"}, nil)
	crm.On("DealIDsByAppointment", mock.Anything, "appt-2").Return([]string{"2"}, nil)
	crm.On("BatchReadDeals", mock.Anything, []string{"1", "90"}, []string{"dealstage"}).
		Return(map[string]map[string]string{
			"1":  {"dealstage": StageBookedID},
			"90": {"dealstage": "active-1"},
		}, nil)

	kept, removed := FilterCarActivePurchases(ctx, crm, deals, activeStages)

	require.Len(t, kept, 1)
	assert.Equal(t, "2", kept[0].ID)
	require.Len(t, removed, 1)
	assert.Equal(t, "1", removed[0].DealID)
	assert.Equal(t, ReasonCarActive, removed[0].Reason)
	crm.AssertExpectations(t)
}

func TestFilterCarActivePurchasesFailsOpen(t *testing.T) {
	crm := new(mockCRM)
	ctx := context.Background()

	deals := []model.PreparedDeal{testDeal("1", "Alice", "0412345678", "a@gmail.com")}
	crm.On("BatchReadDeals", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	kept, removed := FilterCarActivePurchases(ctx, crm, deals, activeStages)

	assert.Len(t, kept, 1)
	assert.Empty(t, removed)
}

func TestFilterCarActivePurchasesAppointmentLookupFailsOpen(t *testing.T) {
	crm := new(mockCRM)
	ctx := context.Background()

	deals := []model.PreparedDeal{testDeal("1", "Alice", "0412345678", "a@gmail.com")}
	crm.On("BatchReadDeals", mock.Anything, []string{"1"}, []string{"appointment_id"}).
		Return(map[string]map[string]string{"1": {"appointment_id": "appt-1"}}, nil)
	crm.On("DealIDsByAppointment", mock.Anything, "appt-1").Return(nil, assert.AnError)

	kept, removed := FilterCarActivePurchases(ctx, crm, deals, activeStages)

	assert.Len(t, kept, 1)
	assert.Empty(t, removed)
}

func TestFilterContactActivePurchases(t *testing.T) {
	crm := new(mockCRM)
	ctx := context.Background()

	d1 := testDeal("1", "Alice", "0412345678", "a@gmail.com")
	d2 := testDeal("2", "Bob", "0498765432", "b@gmail.com")
	deals := []model.PreparedDeal{d1, d2}

	crm.On("DealContacts", mock.Anything, []string{"1", "2"}).
		Return(map[string][]string{"1": {"c-1"}, "2": {"c-2"}}, nil)
	crm.On("ContactDeals", mock.Anything, []string{"c-1", "c-2"}).
		Return(map[string][]string{
			"c-1": {"1", "55"}, // other deal in active stage
			"c-2": {"2"},
		}, nil)
	crm.On("BatchReadDeals", mock.Anything, []string{"55"}, []string{"dealstage"}).
		Return(map[string]map[string]string{"55": {"dealstage": "active-2"}}, nil)

	kept, removed := FilterContactActivePurchases(ctx, crm, deals, activeStages)

	require.Len(t, kept, 1)
	assert.Equal(t, "2", kept[0].ID)
	require.Len(t, removed, 1)
	assert.Equal(t, ReasonContactActive, removed[0].Reason)
	crm.AssertExpectations(t)
}

func TestFilterContactActivePurchasesFailsOpen(t *testing.T) {
	crm := new(mockCRM)
	ctx := context.Background()

	deals := []model.PreparedDeal{testDeal("1", "Alice", "0412345678", "a@gmail.com")}
	crm.On("DealContacts", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	kept, removed := FilterContactActivePurchases(ctx, crm, deals, activeStages)

	assert.Len(t, kept, 1)
	assert.Empty(t, removed)
}
