// Ledger persists every autotune trial to SQLite so a long search can be
// inspected (or resumed from) after the fact. Grounded on
// pkg/korel/store/sqlite.OpenSQLite: same WAL-pragma-then-init-schema
// shape, same modernc.org/sqlite driver.
package autotune

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/fasttext/pkg/fasttext/args"
	"github.com/cognicore/fasttext/pkg/fasttext/internalerr"
)

// Ledger records every trial's arguments, score, and outcome.
type Ledger struct {
	db *sql.DB
}

// OpenLedger opens (creating if absent) a SQLite-backed trial ledger at
// path, with WAL mode enabled for concurrent readers during a run.
func OpenLedger(ctx context.Context, path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("autotune: %w: %v", internalerr.ErrIO, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("autotune: %w: %v", internalerr.ErrIO, err)
	}
	if err := initLedgerSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Ledger{db: db}, nil
}

func initLedgerSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS trials (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	trial_num INTEGER NOT NULL,
	args_json TEXT NOT NULL,
	score REAL NOT NULL,
	is_best INTEGER NOT NULL DEFAULT 0,
	model_bytes INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	error TEXT,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trials_run ON trials(run_id);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("autotune: %w: %v", internalerr.ErrIO, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (l *Ledger) Close() error { return l.db.Close() }

// Trial is one recorded attempt.
type Trial struct {
	ID         string
	RunID      string
	Num        int
	Args       args.Args
	Score      float64
	IsBest     bool
	ModelBytes int64
	Duration   time.Duration
	Err        error
	CreatedAt  time.Time
}

// Record inserts one trial row. A trial that failed mid-train is still
// recorded, with Err set and Score left at 0, so a ledger review can
// distinguish "tried and lost" from "tried and errored" (spec §4.5
// "failed trials are skipped, not fatal").
func (l *Ledger) Record(ctx context.Context, t Trial) error {
	argsJSON, err := json.Marshal(t.Args)
	if err != nil {
		return fmt.Errorf("autotune: %w: %v", internalerr.ErrIO, err)
	}
	var errText sql.NullString
	if t.Err != nil {
		errText = sql.NullString{String: t.Err.Error(), Valid: true}
	}
	_, err = l.db.ExecContext(ctx, `
INSERT INTO trials (id, run_id, trial_num, args_json, score, is_best, model_bytes, duration_ms, error, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET score=excluded.score, is_best=excluded.is_best`,
		t.ID, t.RunID, t.Num, string(argsJSON), t.Score, boolToInt(t.IsBest),
		t.ModelBytes, t.Duration.Milliseconds(), errText, t.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("autotune: %w: %v", internalerr.ErrIO, err)
	}
	return nil
}

// Best returns the highest-scoring recorded trial for a run, if any.
func (l *Ledger) Best(ctx context.Context, runID string) (Trial, bool, error) {
	row := l.db.QueryRowContext(ctx, `
SELECT id, run_id, trial_num, args_json, score, model_bytes, duration_ms, created_at
FROM trials WHERE run_id = ? AND error IS NULL ORDER BY score DESC LIMIT 1`, runID)

	var (
		t          Trial
		argsJSON   string
		durationMs int64
		createdAt  string
	)
	if err := row.Scan(&t.ID, &t.RunID, &t.Num, &argsJSON, &t.Score, &t.ModelBytes, &durationMs, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return Trial{}, false, nil
		}
		return Trial{}, false, fmt.Errorf("autotune: %w: %v", internalerr.ErrIO, err)
	}
	if err := json.Unmarshal([]byte(argsJSON), &t.Args); err != nil {
		return Trial{}, false, fmt.Errorf("autotune: %w: %v", internalerr.ErrIO, err)
	}
	t.Duration = time.Duration(durationMs) * time.Millisecond
	t.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	t.IsBest = true
	return t, true, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
