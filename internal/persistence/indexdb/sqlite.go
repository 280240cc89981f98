// Package indexdb is a SQLite read model over frame traces, for offline
// inspection with the replay tool.
package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/protocol"
)

const schemaVersion = "1"

type SQLiteIndex struct {
	db *sql.DB
}

// RunSummary is one row of the runs table.
type RunSummary struct {
	RunID       string `json:"run_id"`
	TracePath   string `json:"trace_path"`
	Frames      int    `json:"frames"`
	FirstFrame  int    `json:"first_frame"`
	LastFrame   int    `json:"last_frame"`
	FinalMoney  int    `json:"final_money"`
	FinalDigest string `json:"final_digest"`
	Commands    int    `json:"commands"`
	IngestedAt  string `json:"ingested_at,omitempty"`
}

// Summarize folds a run's records into its summary row.
func Summarize(runID string, recs []protocol.FrameRecord) RunSummary {
	sum := RunSummary{RunID: runID, Frames: len(recs)}
	if len(recs) == 0 {
		return sum
	}
	sum.FirstFrame = recs[0].Frame
	last := recs[len(recs)-1]
	sum.LastFrame = last.Frame
	sum.FinalMoney = last.Money
	sum.FinalDigest = last.Digest
	for _, r := range recs {
		sum.Commands += len(r.Commands)
	}
	return sum
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteIndex{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			trace_path TEXT NOT NULL,
			frames INTEGER NOT NULL,
			first_frame INTEGER NOT NULL,
			last_frame INTEGER NOT NULL,
			final_money INTEGER NOT NULL,
			final_digest TEXT NOT NULL,
			commands INTEGER NOT NULL,
			ingested_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS frames (
			run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
			frame INTEGER NOT NULL,
			money INTEGER NOT NULL,
			digest TEXT NOT NULL,
			states_json TEXT NOT NULL,
			claims_json TEXT NOT NULL,
			PRIMARY KEY (run_id, frame)
		);`,
		`CREATE TABLE IF NOT EXISTS commands (
			run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
			frame INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			agent INTEGER NOT NULL,
			kind TEXT NOT NULL,
			value REAL NOT NULL,
			PRIMARY KEY (run_id, frame, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS commands_by_kind ON commands(run_id, kind);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','` + schemaVersion + `');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error { return s.db.Close() }

// IngestRun replaces everything stored for the run with recs, in one
// transaction.
func (s *SQLiteIndex) IngestRun(ctx context.Context, runID, tracePath string, recs []protocol.FrameRecord) (RunSummary, error) {
	sum := Summarize(runID, recs)
	sum.TracePath = tracePath
	sum.IngestedAt = time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return sum, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"commands", "frames", "runs"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE run_id=?`, runID); err != nil {
			return sum, fmt.Errorf("clear run %s: %w", runID, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs(run_id,trace_path,frames,first_frame,last_frame,final_money,final_digest,commands,ingested_at) VALUES(?,?,?,?,?,?,?,?,?)`,
		sum.RunID, sum.TracePath, sum.Frames, sum.FirstFrame, sum.LastFrame, sum.FinalMoney, sum.FinalDigest, sum.Commands, sum.IngestedAt,
	); err != nil {
		return sum, fmt.Errorf("insert run %s: %w", runID, err)
	}

	insertFrame, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO frames(run_id,frame,money,digest,states_json,claims_json) VALUES(?,?,?,?,?,?)`)
	if err != nil {
		return sum, err
	}
	defer insertFrame.Close()
	insertCmd, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO commands(run_id,frame,seq,agent,kind,value) VALUES(?,?,?,?,?,?)`)
	if err != nil {
		return sum, err
	}
	defer insertCmd.Close()

	for _, r := range recs {
		states, _ := json.Marshal(r.States)
		claims, _ := json.Marshal(r.Claims)
		if _, err := insertFrame.ExecContext(ctx, runID, r.Frame, r.Money, r.Digest, string(states), string(claims)); err != nil {
			return sum, fmt.Errorf("insert frame %d: %w", r.Frame, err)
		}
		for seq, c := range r.Commands {
			if _, err := insertCmd.ExecContext(ctx, runID, r.Frame, seq, c.Agent, c.Kind.String(), c.Value); err != nil {
				return sum, fmt.Errorf("insert command %d/%d: %w", r.Frame, seq, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return sum, err
	}
	return sum, nil
}

// Runs lists every ingested run, oldest ingestion first.
func (s *SQLiteIndex) Runs(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id,trace_path,frames,first_frame,last_frame,final_money,final_digest,commands,ingested_at FROM runs ORDER BY ingested_at, run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.RunID, &r.TracePath, &r.Frames, &r.FirstFrame, &r.LastFrame, &r.FinalMoney, &r.FinalDigest, &r.Commands, &r.IngestedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CommandCounts tallies a run's commands by kind ("forward", "buy", ...).
func (s *SQLiteIndex) CommandCounts(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM commands WHERE run_id=? GROUP BY kind`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		out[kind] = n
	}
	return out, rows.Err()
}
