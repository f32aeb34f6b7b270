package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cars24/connector-cli/internal/model"
)

func TestWeeklyBreakdown(t *testing.T) {
	records := []model.UnsoldRecord{
		{ConductedDate: "2025-03-05", Category: "Price/Finance Issues"},   // week of 3 Mar
		{ConductedDate: "2025-03-07", Category: "Price/Finance Issues"},   // week of 3 Mar
		{ConductedDate: "2025-03-06", Category: "Customer Not Ready"},     // week of 3 Mar
		{ConductedDate: "2025-03-11", Category: "Comparison Shopping"},    // week of 10 Mar
		{ConductedDate: "", Category: ""},                                 // unknown week
	}

	weeks := WeeklyBreakdown(records)
	require.Len(t, weeks, 3)

	// Zero week sorts first.
	assert.True(t, weeks[0].WeekStart.IsZero())
	assert.Equal(t, 1, weeks[0].Categories["Unknown"])

	first := weeks[1]
	assert.Equal(t, "2025-03-03", first.WeekStart.Format("2006-01-02"))
	assert.Equal(t, 3, first.Total)
	assert.Equal(t, 2, first.Categories["Price/Finance Issues"])
	assert.Equal(t, 1, first.Categories["Customer Not Ready"])

	second := weeks[2]
	assert.Equal(t, "2025-03-10", second.WeekStart.Format("2006-01-02"))
	assert.Equal(t, 1, second.Total)
}

func TestRenderWeeklyBreakdown(t *testing.T) {
	records := []model.UnsoldRecord{
		{ConductedDate: "2025-03-05", Category: "Price/Finance Issues"},
		{ConductedDate: "2025-03-05", Category: "Customer Not Ready"},
	}

	out := RenderWeeklyBreakdown(WeeklyBreakdown(records))
	assert.Contains(t, out, "Week of 03 Mar 2025 (2 customers)")
	assert.Contains(t, out, "Price/Finance Issues")
	assert.Contains(t, out, "Total: 2 customers")
}
