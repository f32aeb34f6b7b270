package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cars24/connector-cli/pkg/hubspot"
	"github.com/cars24/connector-cli/pkg/openai"
)

// --- HubSpot mock ---

type mockCRM struct {
	mock.Mock
}

func (m *mockCRM) SearchDealsByDate(ctx context.Context, q hubspot.DateSearch) ([]hubspot.Deal, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]hubspot.Deal), args.Error(1)
}

func (m *mockCRM) SearchDealsByAppointment(ctx context.Context, appointmentID, pipelineID string, stageIDs []string, properties []string) ([]hubspot.Deal, error) {
	args := m.Called(ctx, appointmentID, pipelineID, stageIDs, properties)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]hubspot.Deal), args.Error(1)
}

func (m *mockCRM) DealIDsByAppointment(ctx context.Context, appointmentID string) ([]string, error) {
	args := m.Called(ctx, appointmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockCRM) BatchReadDeals(ctx context.Context, dealIDs, properties []string) (map[string]map[string]string, error) {
	args := m.Called(ctx, dealIDs, properties)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]map[string]string), args.Error(1)
}

func (m *mockCRM) MarkRemindersSent(ctx context.Context, dealIDs []string) (int, int) {
	args := m.Called(ctx, dealIDs)
	return args.Int(0), args.Int(1)
}

func (m *mockCRM) UpdateTicketOwners(ctx context.Context, dealToEmail map[string]string) (int, int) {
	args := m.Called(ctx, dealToEmail)
	return args.Int(0), args.Int(1)
}

func (m *mockCRM) DealContacts(ctx context.Context, dealIDs []string) (map[string][]string, error) {
	args := m.Called(ctx, dealIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]string), args.Error(1)
}

func (m *mockCRM) ContactDeals(ctx context.Context, contactIDs []string) (map[string][]string, error) {
	args := m.Called(ctx, contactIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]string), args.Error(1)
}

func (m *mockCRM) ContactIDsForDeal(ctx context.Context, dealID string) ([]string, error) {
	args := m.Called(ctx, dealID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockCRM) ContactNoteIDs(ctx context.Context, contactID string) ([]string, error) {
	args := m.Called(ctx, contactID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockCRM) NotesContent(ctx context.Context, noteIDs []string) ([]hubspot.Note, error) {
	args := m.Called(ctx, noteIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]hubspot.Note), args.Error(1)
}

func (m *mockCRM) OwnerName(ctx context.Context, ownerID string) string {
	args := m.Called(ctx, ownerID)
	return args.String(0)
}

func (m *mockCRM) DealPropertyOptions(ctx context.Context, property string) []hubspot.PropertyOption {
	args := m.Called(ctx, property)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]hubspot.PropertyOption)
}

// --- Aircall mock ---

type mockSMS struct {
	mock.Mock
}

func (m *mockSMS) SendSMS(ctx context.Context, numberID, to, body string) error {
	args := m.Called(ctx, numberID, to, body)
	return args.Error(0)
}

// --- OpenAI mock ---

type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) Complete(ctx context.Context, req openai.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
