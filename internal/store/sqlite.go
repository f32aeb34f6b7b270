package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/cars24/connector-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	workflow    TEXT NOT NULL,
	target_date TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'running',
	fetched     INTEGER NOT NULL DEFAULT 0,
	kept        INTEGER NOT NULL DEFAULT 0,
	removed     INTEGER NOT NULL DEFAULT 0,
	drafted     INTEGER NOT NULL DEFAULT 0,
	sent        INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT '',
	started_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	finished_at DATETIME
);

CREATE TABLE IF NOT EXISTS removals (
	id             TEXT PRIMARY KEY,
	run_id         TEXT NOT NULL REFERENCES runs(id),
	deal_id        TEXT NOT NULL DEFAULT '',
	appointment_id TEXT NOT NULL DEFAULT '',
	customer_name  TEXT NOT NULL DEFAULT '',
	email          TEXT NOT NULL DEFAULT '',
	phone          TEXT NOT NULL DEFAULT '',
	vehicle_make   TEXT NOT NULL DEFAULT '',
	vehicle_model  TEXT NOT NULL DEFAULT '',
	stage          TEXT NOT NULL DEFAULT '',
	reason         TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_workflow ON runs(workflow);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_removals_run_id ON removals(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, workflow, targetDate string) (*model.Run, error) {
	run := &model.Run{
		ID:         uuid.New().String(),
		Workflow:   workflow,
		TargetDate: targetDate,
		Status:     model.RunRunning,
		StartedAt:  time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, workflow, target_date, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Workflow, run.TargetDate, run.Status, run.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return run, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, run *model.Run) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, fetched = ?, kept = ?, removed = ?, drafted = ?, sent = ?, failed = ?, finished_at = ? WHERE id = ?`,
		model.RunCompleted, run.Fetched, run.Kept, run.Removed, run.Drafted, run.Sent, run.Failed, now, run.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", run.ID)
	}
	run.Status = model.RunCompleted
	run.FinishedAt = now
	return checkRowsAffected(res, "run", run.ID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		model.RunFailed, msg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, workflow, target_date, status, fetched, kept, removed, drafted, sent, failed, error, started_at, COALESCE(finished_at, '')
		 FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("sqlite: run %s not found", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, workflow, target_date, status, fetched, kept, removed, drafted, sent, failed, error, started_at, COALESCE(finished_at, '')
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var out []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		out = append(out, *run)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

func (s *SQLiteStore) SaveRemovals(ctx context.Context, runID string, removals []model.Removal) error {
	if len(removals) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin removals tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO removals (id, run_id, deal_id, appointment_id, customer_name, email, phone, vehicle_make, vehicle_model, stage, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare removal insert")
	}
	defer stmt.Close()

	for _, r := range removals {
		if _, err := stmt.ExecContext(ctx, uuid.New().String(), runID,
			r.DealID, r.AppointmentID, r.CustomerName, r.Email, r.Phone,
			r.VehicleMake, r.VehicleModel, r.Stage, r.Reason); err != nil {
			return eris.Wrap(err, "sqlite: insert removal")
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit removals")
}

func (s *SQLiteStore) ListRemovals(ctx context.Context, runID string) ([]model.Removal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT deal_id, appointment_id, customer_name, email, phone, vehicle_make, vehicle_model, stage, reason
		 FROM removals WHERE run_id = ?`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list removals")
	}
	defer rows.Close()

	var out []model.Removal
	for rows.Next() {
		var r model.Removal
		if err := rows.Scan(&r.DealID, &r.AppointmentID, &r.CustomerName, &r.Email, &r.Phone,
			&r.VehicleMake, &r.VehicleModel, &r.Stage, &r.Reason); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan removal")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate removals")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var run model.Run
	var finished string
	if err := row.Scan(&run.ID, &run.Workflow, &run.TargetDate, &run.Status,
		&run.Fetched, &run.Kept, &run.Removed, &run.Drafted, &run.Sent, &run.Failed,
		&run.Error, &run.StartedAt, &finished); err != nil {
		return nil, err
	}
	if finished != "" {
		if t, err := time.Parse(time.RFC3339, finished); err == nil {
			run.FinishedAt = t
		} else if t, err := time.Parse("2006-01-02 15:04:05", finished); err == nil {
			run.FinishedAt = t
		}
	}
	return &run, nil
}

func checkRowsAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: %s %s not found", kind, id)
	}
	return nil
}
