// Package export writes audit artifacts to CSV files.
package export

import (
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/cars24/connector-cli/internal/model"
)

// WriteRemovals writes the removal audit rows of a run to dir.
func WriteRemovals(dir, name string, removals []model.Removal) (string, error) {
	return writeCSV(dir, name, removals)
}

// WriteDispatches writes per-message send outcomes to dir.
func WriteDispatches(dir, name string, results []model.DispatchResult) (string, error) {
	return writeCSV(dir, name, results)
}

// MessageRow is the flattened CSV form of a drafted message.
type MessageRow struct {
	Customer string `csv:"customer"`
	Phone    string `csv:"phone"`
	Assignee string `csv:"assignee"`
	Fallback bool   `csv:"fallback"`
	Body     string `csv:"body"`
}

// SkipRow records a customer no message was drafted for.
type SkipRow struct {
	Customer string `csv:"customer"`
	Phone    string `csv:"phone"`
	Reason   string `csv:"reason"`
}

// WriteMessages writes drafted messages to dir.
func WriteMessages(dir, name string, msgs []model.Message) (string, error) {
	rows := make([]MessageRow, 0, len(msgs))
	for _, m := range msgs {
		rows = append(rows, MessageRow{
			Customer: m.Identity.CustomerName,
			Phone:    m.Identity.Phone,
			Assignee: m.Identity.AssigneeEmail,
			Fallback: m.Fallback,
			Body:     m.Body,
		})
	}
	return writeCSV(dir, name, rows)
}

// WriteSkipped writes undraftable customers to dir.
func WriteSkipped(dir, name string, skipped []model.Skipped) (string, error) {
	rows := make([]SkipRow, 0, len(skipped))
	for _, s := range skipped {
		rows = append(rows, SkipRow{
			Customer: s.Identity.CustomerName,
			Phone:    s.Identity.Phone,
			Reason:   s.Reason,
		})
	}
	return writeCSV(dir, name, rows)
}

// WriteUnsold writes the unsold test-drive summary rows to dir.
func WriteUnsold(dir, name string, records []model.UnsoldRecord) (string, error) {
	return writeCSV(dir, name, records)
}

func writeCSV[T any](dir, name string, rows []T) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrap(err, "export: create dir")
	}
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return "", eris.Wrap(err, "export: marshal csv")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", eris.Wrap(err, "export: write file")
	}
	return path, nil
}
