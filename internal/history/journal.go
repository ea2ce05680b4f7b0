// Package history keeps a journal of bulk completions.
//
// The JSONL file history.jsonl in the data directory is the source of
// truth. Open rebuilds history.db from it, and the SQLite copy serves
// queries. Record appends to both.
package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/compass/pkg/types"
)

// File names inside the data directory.
const (
	JournalFile  = "history.jsonl"
	DatabaseFile = "history.db"
)

// timeFormat sorts lexicographically in UTC.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// ErrClosed is returned by operations on a closed journal.
var ErrClosed = errors.New("history journal is closed")

// Event is one recorded completion.
type Event struct {
	ID         string    `json:"event_id"`
	ProjectID  string    `json:"project_id"`
	LedgerPath string    `json:"ledger_path"`
	Selection  string    `json:"selection"`
	Total      int       `json:"total"`
	Before     int       `json:"before_completed"`
	After      int       `json:"after_completed"`
	Flipped    []int     `json:"flipped"`
	Validated  bool      `json:"validated"`
	RecordedAt time.Time `json:"recorded_at"`
}

// eventJSON is the journal line format.
type eventJSON struct {
	EventID         string `json:"event_id"`
	ProjectID       string `json:"project_id"`
	LedgerPath      string `json:"ledger_path"`
	Selection       string `json:"selection"`
	Total           int    `json:"total"`
	BeforeCompleted int    `json:"before_completed"`
	AfterCompleted  int    `json:"after_completed"`
	Flipped         []int  `json:"flipped"`
	Validated       bool   `json:"validated"`
	RecordedAt      string `json:"recorded_at"`
}

// Journal is an open history journal. It is safe for concurrent use within
// one process.
type Journal struct {
	mu      sync.RWMutex
	db      *sql.DB
	dataDir string
}

// Open creates dataDir if needed, rebuilds the query database from the
// JSONL journal, and returns the journal ready for use.
func Open(dataDir string) (*Journal, error) {
	if dataDir == "" {
		return nil, errors.New("history: data dir is empty")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)
	// The database is derived data; start from an empty file.
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	records, err := readJSONL(filepath.Join(dataDir, JournalFile))
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := load(db, records); err != nil {
		db.Close()
		return nil, fmt.Errorf("load journal: %w", err)
	}
	return &Journal{db: db, dataDir: dataDir}, nil
}

// Close releases the database. Close is idempotent.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}

// Record journals a completion of projectID. The JSONL line is written
// first; the database insert follows.
func (j *Journal) Record(projectID string, res *types.MutationResult, at time.Time) (Event, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return Event{}, ErrClosed
	}

	flipped := res.Flipped
	if flipped == nil {
		flipped = []int{}
	}
	rec := eventJSON{
		EventID:         newID(),
		ProjectID:       projectID,
		LedgerPath:      res.Path,
		Selection:       res.Selection.String(),
		Total:           res.Total,
		BeforeCompleted: res.Before,
		AfterCompleted:  res.After,
		Flipped:         flipped,
		Validated:       res.Validated,
		RecordedAt:      at.UTC().Format(timeFormat),
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return Event{}, fmt.Errorf("encode event: %w", err)
	}

	path := filepath.Join(j.dataDir, JournalFile)
	records, err := readJSONL(path)
	if err != nil {
		return Event{}, err
	}
	if err := writeJSONL(path, append(records, line)); err != nil {
		return Event{}, fmt.Errorf("persist journal: %w", err)
	}

	tx, err := j.db.Begin()
	if err != nil {
		return Event{}, err
	}
	defer tx.Rollback()
	if err := insert(tx, rec); err != nil {
		return Event{}, err
	}
	if err := tx.Commit(); err != nil {
		return Event{}, err
	}
	return rec.event()
}

// List returns events newest first. An empty projectID lists every
// project; limit <= 0 means no limit.
func (j *Journal) List(projectID string, limit int) ([]Event, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.db == nil {
		return nil, ErrClosed
	}

	var (
		where []string
		args  []any
	)
	if projectID != "" {
		where = append(where, "project_id = ?")
		args = append(args, projectID)
	}
	query := "SELECT " + strings.Join(eventColumns, ", ") + " FROM events"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY recorded_at DESC, event_id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var (
			rec       eventJSON
			flipped   string
			validated int
		)
		if err := rows.Scan(&rec.EventID, &rec.ProjectID, &rec.LedgerPath, &rec.Selection, &rec.Total,
			&rec.BeforeCompleted, &rec.AfterCompleted, &flipped, &validated, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if err := json.Unmarshal([]byte(flipped), &rec.Flipped); err != nil {
			return nil, fmt.Errorf("decode flipped positions: %w", err)
		}
		rec.Validated = validated != 0
		ev, err := rec.event()
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (r eventJSON) event() (Event, error) {
	at, err := time.Parse(timeFormat, r.RecordedAt)
	if err != nil {
		return Event{}, fmt.Errorf("event %s: recorded_at: %w", r.EventID, err)
	}
	return Event{
		ID:         r.EventID,
		ProjectID:  r.ProjectID,
		LedgerPath: r.LedgerPath,
		Selection:  r.Selection,
		Total:      r.Total,
		Before:     r.BeforeCompleted,
		After:      r.AfterCompleted,
		Flipped:    r.Flipped,
		Validated:  r.Validated,
		RecordedAt: at,
	}, nil
}

// newID returns a UUID v7 so ids sort by creation time.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
