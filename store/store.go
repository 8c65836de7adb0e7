// SPDX-License-Identifier: MIT
// Package store persists simulation runs in SQLite.
//
// Schema:
//
//	runs(id TEXT PK, rule, alpha, linear_goods, buyers, goods, seed, source,
//	     status, error, rounds, started_at, finished_at)
//	rounds(run_id → runs.id, time, price, quantity, bid, utility; PK(run_id, time))
//
// Vectors and matrices are stored as JSON text. Run ids are random UUIDs.
// A Store is safe for concurrent use; SQLite serializes the single writer.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/katalvlaran/prdyn/market"
	"github.com/katalvlaran/prdyn/simulation"
)

// ErrNotFound indicates an unknown run id.
var ErrNotFound = errors.New("store: run not found")

// Status is the lifecycle of a stored run.
type Status string

const (
	StatusRunning  Status = "running"
	StatusFinished Status = "finished"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// RunInfo describes one run. ID, Status, Rounds and the timestamps are
// managed by the Store.
type RunInfo struct {
	ID          string
	Rule        string
	Alpha       float64
	LinearGoods int
	Buyers      int
	Goods       int
	Seed        int64
	Source      string // generator name or instance path
	Status      Status
	Error       string
	Rounds      int // snapshots stored
	StartedAt   time.Time
	FinishedAt  time.Time // zero while running
}

// Store wraps a SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies the
// schema. path ":memory:" gives a private in-memory database.
func Open(path string) (*Store, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: a single writer, and :memory: stays one database.
	db.SetMaxOpenConns(1)

	if err = initSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func initSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id           TEXT PRIMARY KEY,
			rule         TEXT NOT NULL,
			alpha        REAL NOT NULL DEFAULT 0,
			linear_goods INTEGER NOT NULL DEFAULT 0,
			buyers       INTEGER NOT NULL,
			goods        INTEGER NOT NULL,
			seed         INTEGER NOT NULL DEFAULT 0,
			source       TEXT NOT NULL DEFAULT '',
			status       TEXT NOT NULL,
			error        TEXT NOT NULL DEFAULT '',
			rounds       INTEGER NOT NULL DEFAULT 0,
			started_at   INTEGER NOT NULL,
			finished_at  INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS rounds (
			run_id   TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			time     INTEGER NOT NULL,
			price    TEXT NOT NULL,
			quantity TEXT NOT NULL,
			bid      TEXT NOT NULL,
			utility  TEXT NOT NULL,
			PRIMARY KEY (run_id, time)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}

// CreateRun inserts a run in StatusRunning and returns its new id.
func (s *Store) CreateRun(ctx context.Context, info RunInfo) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, rule, alpha, linear_goods, buyers, goods, seed, source, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, info.Rule, info.Alpha, info.LinearGoods, info.Buyers, info.Goods, info.Seed, info.Source,
		string(StatusRunning), s.now().UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	return id, nil
}

// Record stores one snapshot of run runID.
func (s *Store) Record(ctx context.Context, runID string, snap market.Snapshot) error {
	cols := make([]any, 0, 4)
	for _, v := range []any{snap.Price, snap.Quantity, snap.Bid, snap.Utility} {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot %d: %w", snap.Time, err)
		}
		cols = append(cols, string(b))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return withCtxErr(ctx, fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO rounds (run_id, time, price, quantity, bid, utility) VALUES (?, ?, ?, ?, ?, ?)`,
		append([]any{runID, snap.Time}, cols...)...,
	)
	if err != nil {
		return withCtxErr(ctx, fmt.Errorf("failed to insert round %d of run %s: %w", snap.Time, runID, err))
	}
	if _, err = tx.ExecContext(ctx, `UPDATE runs SET rounds = rounds + 1 WHERE id = ?`, runID); err != nil {
		return withCtxErr(ctx, fmt.Errorf("failed to update run %s: %w", runID, err))
	}
	if err = tx.Commit(); err != nil {
		return withCtxErr(ctx, fmt.Errorf("failed to commit round %d of run %s: %w", snap.Time, runID, err))
	}

	return nil
}

// withCtxErr attaches ctx's error to err once ctx is done. A transaction
// rolled back by a canceled context fails with sql.ErrTxDone, which says
// nothing about the cause.
func withCtxErr(ctx context.Context, err error) error {
	cerr := ctx.Err()
	if cerr == nil || errors.Is(err, cerr) {
		return err
	}
	return fmt.Errorf("%w: %w", err, cerr)
}

// FinishRun sets the final status of a run. runErr may be nil.
func (s *Store) FinishRun(ctx context.Context, runID string, status Status, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		string(status), msg, s.now().UnixNano(), runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", runID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", runID, ErrNotFound)
	}

	return nil
}

const runColumns = `id, rule, alpha, linear_goods, buyers, goods, seed, source, status, error, rounds, started_at, finished_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunInfo, error) {
	var (
		info              RunInfo
		status            string
		started, finished int64
	)
	err := row.Scan(&info.ID, &info.Rule, &info.Alpha, &info.LinearGoods, &info.Buyers, &info.Goods,
		&info.Seed, &info.Source, &status, &info.Error, &info.Rounds, &started, &finished)
	if err != nil {
		return RunInfo{}, err
	}
	info.Status = Status(status)
	info.StartedAt = time.Unix(0, started)
	if finished != 0 {
		info.FinishedAt = time.Unix(0, finished)
	}

	return info, nil
}

// Run returns one run by id.
func (s *Store) Run(ctx context.Context, id string) (RunInfo, error) {
	info, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return RunInfo{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return RunInfo{}, fmt.Errorf("failed to get run %s: %w", id, err)
	}

	return info, nil
}

// Runs lists runs, oldest first. limit ≤ 0 means no limit.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunInfo, error) {
	q := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at ASC, id ASC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []RunInfo
	for rows.Next() {
		info, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, info)
	}

	return out, rows.Err()
}

// Rounds returns every stored snapshot of a run, ordered by time.
func (s *Store) Rounds(ctx context.Context, id string) ([]market.Snapshot, error) {
	if _, err := s.Run(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT time, price, quantity, bid, utility FROM rounds WHERE run_id = ? ORDER BY time ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds: %w", err)
	}
	defer rows.Close()

	var out []market.Snapshot
	for rows.Next() {
		var (
			snap                  market.Snapshot
			price, qty, bid, util string
		)
		if err := rows.Scan(&snap.Time, &price, &qty, &bid, &util); err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		for _, col := range []struct {
			text string
			dst  any
		}{{price, &snap.Price}, {qty, &snap.Quantity}, {bid, &snap.Bid}, {util, &snap.Utility}} {
			if err := json.Unmarshal([]byte(col.text), col.dst); err != nil {
				return nil, fmt.Errorf("failed to decode round %d: %w", snap.Time, err)
			}
		}
		out = append(out, snap)
	}

	return out, rows.Err()
}

// RunRecorder forwards snapshots of one run to the Store.
type RunRecorder struct {
	s     *Store
	runID string
}

var _ simulation.Recorder = (*RunRecorder)(nil)

// Recorder returns a simulation.Recorder bound to runID.
func (s *Store) Recorder(runID string) *RunRecorder {
	return &RunRecorder{s: s, runID: runID}
}

// Record implements simulation.Recorder.
func (r *RunRecorder) Record(ctx context.Context, snap market.Snapshot) error {
	return r.s.Record(ctx, r.runID, snap)
}

// StatusFor maps a simulation stop reason to the stored status.
func StatusFor(reason simulation.StopReason) Status {
	switch reason {
	case simulation.StopRounds, simulation.StopConverged:
		return StatusFinished
	case simulation.StopCanceled:
		return StatusCanceled
	default:
		return StatusFailed
	}
}
