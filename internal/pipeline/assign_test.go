package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cars24/connector-cli/internal/model"
)

func testAssociates() []model.Associate {
	return []model.Associate{
		{Name: "Amy", Email: "amy@dealer.com"},
		{Name: "Ben", Email: "ben@dealer.com"},
		{Name: "Cat", Email: "cat@dealer.com"},
	}
}

func TestAssignRoundRobin(t *testing.T) {
	identities := []model.Identity{
		{Key: "c", Phone: "+61412000003", CustomerName: "Carl"},
		{Key: "a", Phone: "+61412000001", CustomerName: "Anna"},
		{Key: "b", Phone: "+61412000002", CustomerName: "Bob"},
	}
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	out := AssignRoundRobin(identities, testAssociates(), date)
	require.Len(t, out, 3)

	// 20250310 % 3 == 1, so the rotation starts at Ben after the
	// phone sort puts Anna first.
	assert.Equal(t, "Anna", out[0].CustomerName)
	assert.Equal(t, "Ben", out[0].AssigneeName)
	assert.Equal(t, "Cat", out[1].AssigneeName)
	assert.Equal(t, "Amy", out[2].AssigneeName)
	assert.Equal(t, "ben@dealer.com", out[0].AssigneeEmail)
}

func TestAssignRoundRobinDeterministic(t *testing.T) {
	identities := []model.Identity{
		{Phone: "+61412000002", CustomerName: "B"},
		{Phone: "+61412000001", CustomerName: "A"},
	}
	date := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)

	first := AssignRoundRobin(identities, testAssociates(), date)
	second := AssignRoundRobin(identities, testAssociates(), date)
	assert.Equal(t, first, second)

	// Input order is not mutated.
	assert.Equal(t, "B", identities[0].CustomerName)
	assert.Empty(t, identities[0].AssigneeName)
}

func TestAssignRoundRobinEmpty(t *testing.T) {
	out := AssignRoundRobin(nil, testAssociates(), time.Now())
	assert.Empty(t, out)

	ids := []model.Identity{{CustomerName: "A"}}
	out = AssignRoundRobin(ids, nil, time.Now())
	require.Len(t, out, 1)
	assert.Empty(t, out[0].AssigneeName)
}
