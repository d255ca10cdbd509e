package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"pacman/internal/contract"
	"pacman/internal/logging"
	"pacman/internal/rules"
)

// ErrNotFound is returned when no submission has the requested id.
var ErrNotFound = errors.New("submission not found")

// SubmissionStore persists accepted submissions in SQLite. Each row carries a
// ULID key and a sequential public id starting at 0; Clear restarts the
// sequence.
type SubmissionStore struct {
	db      *sql.DB
	mu      sync.Mutex
	dbPath  string
	entropy *ulid.MonotonicEntropy
}

// NewSubmissionStore opens (or creates) the database at path. ":memory:"
// gives a private in-memory database.
func NewSubmissionStore(path string) (*SubmissionStore, error) {
	if path != ":memory:" {
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" a single database and serializes writers.
	db.SetMaxOpenConns(1)

	s := &SubmissionStore{
		db:      db,
		dbPath:  path,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// initialize creates the required tables.
func (s *SubmissionStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS submissions (
		id INTEGER PRIMARY KEY,
		ulid_key TEXT NOT NULL UNIQUE,
		user_name TEXT NOT NULL,
		program TEXT NOT NULL,
		submitted_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_submissions_user ON submissions(user_name);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SubmissionStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SubmissionStore) Path() string {
	return s.dbPath
}

// Add stores a submission and returns it with its assigned id and key.
func (s *SubmissionStore) Add(ctx context.Context, user string, program contract.Program, at time.Time) (*contract.SubmissionDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if program.Rules == nil {
		program.Rules = []rules.Rule{}
	}
	data, err := json.Marshal(program)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal program: %w", err)
	}

	key, err := ulid.New(ulid.Timestamp(at), s.entropy)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	var next uint64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id) + 1, 0) FROM submissions`).Scan(&next); err != nil {
		return nil, fmt.Errorf("failed to allocate id: %w", err)
	}

	at = at.UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO submissions (id, ulid_key, user_name, program, submitted_at) VALUES (?, ?, ?, ?, ?)`,
		next, key.String(), user, string(data), at.Format(time.RFC3339Nano))
	if err != nil {
		logging.StoreError("insert submission for %s failed: %v", user, err)
		return nil, fmt.Errorf("failed to insert submission: %w", err)
	}
	logging.StoreDebug("stored submission %d (%s) for %s", next, key, user)

	return &contract.SubmissionDetails{
		ID:          next,
		Key:         key.String(),
		User:        user,
		Program:     program,
		SubmittedAt: at,
	}, nil
}

// List returns every submission in id order.
func (s *SubmissionStore) List(ctx context.Context) ([]contract.Submission, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_name FROM submissions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	list := []contract.Submission{}
	for rows.Next() {
		var sub contract.Submission
		if err := rows.Scan(&sub.ID, &sub.User); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		list = append(list, sub)
	}
	return list, rows.Err()
}

// Get returns one submission, or ErrNotFound.
func (s *SubmissionStore) Get(ctx context.Context, id uint64) (*contract.SubmissionDetails, error) {
	var (
		details     contract.SubmissionDetails
		program     string
		submittedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, ulid_key, user_name, program, submitted_at FROM submissions WHERE id = ?`, id).
		Scan(&details.ID, &details.Key, &details.User, &program, &submittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load submission %d: %w", id, err)
	}

	if err := json.Unmarshal([]byte(program), &details.Program); err != nil {
		return nil, fmt.Errorf("failed to decode program of submission %d: %w", id, err)
	}
	if details.SubmittedAt, err = time.Parse(time.RFC3339Nano, submittedAt); err != nil {
		return nil, fmt.Errorf("failed to decode time of submission %d: %w", id, err)
	}
	return &details, nil
}

// Count returns how many submissions are stored.
func (s *SubmissionStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return n, nil
}

// Clear removes every submission.
func (s *SubmissionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM submissions`); err != nil {
		return fmt.Errorf("failed to clear submissions: %w", err)
	}
	logging.StoreDebug("cleared submissions")
	return nil
}
