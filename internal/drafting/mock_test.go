package drafting

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cars24/connector-cli/pkg/openai"
)

type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) Complete(ctx context.Context, req openai.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
