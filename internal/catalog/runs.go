package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// ErrRunNotFound is returned by Store.Run for an unknown ID.
var ErrRunNotFound = errors.New("run not found")

// RunSummary describes one scan run.
type RunSummary struct {
	ID         string    `json:"id"`
	Roots      []string  `json:"roots"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
	Files      int       `json:"files"`
	Recognized int       `json:"recognized"`
	Failed     int       `json:"failed"`
}

// Finished reports whether the run was closed.
func (r RunSummary) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Run is an open scan run holding the catalog write lock.
//
// Record is safe for concurrent use.
type Run struct {
	store *Store
	lock  *flock.Flock
	id    string

	mu         sync.Mutex
	files      int
	recognized int
	failed     int
	closed     bool
}

// BeginRun acquires the catalog write lock and opens a new run over roots.
// It returns ErrLocked when another run is in progress.
func (s *Store) BeginRun(ctx context.Context, roots []string) (*Run, error) {
	lock := flock.New(s.path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire catalog lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	rootsJSON, err := json.Marshal(roots)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("encode roots: %w", err)
	}

	run := &Run{store: s, lock: lock, id: uuid.NewString()}
	err = s.exec(ctx,
		"INSERT INTO runs (id, roots, started_at) VALUES (?, ?, ?)",
		run.id, string(rootsJSON), formatTime(time.Now()),
	)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// ID returns the run identifier.
func (r *Run) ID() string {
	return r.id
}

// Finish stores the run totals and releases the write lock. Calling it
// more than once is a no-op.
func (r *Run) Finish(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	err := r.store.exec(ctx,
		"UPDATE runs SET finished_at = ?, files = ?, recognized = ?, failed = ? WHERE id = ?",
		formatTime(time.Now()), r.files, r.recognized, r.failed, r.id,
	)
	if unlockErr := r.lock.Unlock(); unlockErr != nil && err == nil {
		err = fmt.Errorf("release catalog lock: %w", unlockErr)
	}
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// Runs lists scan runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, roots, started_at, finished_at, files, recognized, failed
		 FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			run      RunSummary
			roots    string
			started  string
			finished sql.NullString
		)
		if err := rows.Scan(&run.ID, &roots, &started, &finished, &run.Files, &run.Recognized, &run.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(roots), &run.Roots); err != nil {
			return nil, fmt.Errorf("decode roots for run %s: %w", run.ID, err)
		}
		run.StartedAt = parseTime(started)
		if finished.Valid {
			run.FinishedAt = parseTime(finished.String)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// Run looks up one run by ID.
func (s *Store) Run(ctx context.Context, id string) (RunSummary, error) {
	runs, err := s.Runs(ctx)
	if err != nil {
		return RunSummary{}, err
	}
	for _, r := range runs {
		if r.ID == id {
			return r, nil
		}
	}
	return RunSummary{}, fmt.Errorf("run %s: %w", id, ErrRunNotFound)
}
