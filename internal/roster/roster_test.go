package roster

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/cars24/connector-cli/internal/model"
)

func TestTruthy(t *testing.T) {
	for _, v := range []string{"y", "Y", "yes", "TRUE", "1", " Yes "} {
		assert.True(t, truthy(v), "value %q", v)
	}
	for _, v := range []string{"", "n", "no", "0", "false", "maybe"} {
		assert.False(t, truthy(v), "value %q", v)
	}
}

func TestHeaderDayColumns(t *testing.T) {
	header := []string{"Email", "Name", "Monday", "Tue", "WED", "Thursday", "fri", "Sat", "Sunday"}
	cols := headerDayColumns(header)

	require.Len(t, cols, 7)
	assert.Equal(t, time.Monday, cols[2])
	assert.Equal(t, time.Wednesday, cols[4])
	assert.Equal(t, time.Sunday, cols[8])
}

func TestHeaderDayColumnsPositionalFallback(t *testing.T) {
	header := []string{"Email", "Name", "D1", "D2", "D3"}
	cols := headerDayColumns(header)

	require.Len(t, cols, 3)
	assert.Equal(t, time.Monday, cols[2])
	assert.Equal(t, time.Tuesday, cols[3])
	assert.Equal(t, time.Wednesday, cols[4])
}

func writeTestWorkbook(t *testing.T) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Roster")
	require.NoError(t, err)

	addRow := func(values ...string) {
		row := sheet.AddRow()
		for _, v := range values {
			row.AddCell().SetString(v)
		}
	}
	addRow("Email", "Name", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun")
	addRow("amy@dealer.com", "Amy", "y", "y", "", "y", "y", "", "")
	addRow("ben@dealer.com", "Ben", "", "", "yes", "", "", "1", "")
	addRow("", "No Email", "y", "y", "y", "y", "y", "y", "y")

	path := filepath.Join(t.TempDir(), "roster.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestLoadXLSX(t *testing.T) {
	path := writeTestWorkbook(t)

	associates, err := LoadXLSX(path)
	require.NoError(t, err)
	require.Len(t, associates, 2, "rows without email are skipped")

	amy := associates[0]
	assert.Equal(t, "amy@dealer.com", amy.Email)
	assert.Equal(t, "Amy", amy.Name)
	assert.True(t, amy.Days[time.Monday])
	assert.False(t, amy.Days[time.Wednesday])

	ben := associates[1]
	assert.True(t, ben.Days[time.Wednesday])
	assert.True(t, ben.Days[time.Saturday])
	assert.False(t, ben.Days[time.Monday])
}

func TestLoadXLSXMissingFile(t *testing.T) {
	_, err := LoadXLSX(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}

func TestParseFixed(t *testing.T) {
	out := ParseFixed([]string{
		"Amy Wong <amy@dealer.com>",
		"ben@dealer.com",
		"No Email Here",
		"",
	})

	require.Len(t, out, 2)
	assert.Equal(t, "Amy Wong", out[0].Name)
	assert.Equal(t, "amy@dealer.com", out[0].Email)
	assert.Equal(t, "ben@dealer.com", out[1].Name)
	for _, d := range weekdays {
		assert.True(t, out[0].Days[d])
	}
}

func TestAvailableOn(t *testing.T) {
	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	associates := []model.Associate{
		{Name: "Amy", Email: "amy@dealer.com", Days: map[time.Weekday]bool{time.Monday: true}},
		{Name: "Ben", Email: "ben@dealer.com", Days: map[time.Weekday]bool{time.Tuesday: true}},
		{Name: "NoEmail", Days: map[time.Weekday]bool{time.Monday: true}},
	}

	out := AvailableOn(associates, monday)
	require.Len(t, out, 1)
	assert.Equal(t, "Amy", out[0].Name)
}
