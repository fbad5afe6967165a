package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS interview_results (
		session_id TEXT PRIMARY KEY,
		candidate_id TEXT NOT NULL DEFAULT '',
		candidate_name TEXT NOT NULL DEFAULT '',
		job_role TEXT NOT NULL,
		total_score REAL NOT NULL,
		average_score REAL NOT NULL,
		technical_avg REAL NOT NULL,
		behavioral_avg REAL NOT NULL,
		questions_asked INTEGER NOT NULL,
		transcript_json TEXT NOT NULL DEFAULT '[]',
		completed_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_results_candidate ON interview_results(candidate_id, completed_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveResult creates or replaces the result for a session.
func (s *SQLiteStore) SaveResult(ctx context.Context, result *InterviewResult) error {
	if result == nil || result.SessionID == "" {
		return fmt.Errorf("result requires a session id")
	}

	query := `
	INSERT INTO interview_results (
		session_id, candidate_id, candidate_name, job_role,
		total_score, average_score, technical_avg, behavioral_avg,
		questions_asked, transcript_json, completed_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		candidate_id = excluded.candidate_id,
		candidate_name = excluded.candidate_name,
		job_role = excluded.job_role,
		total_score = excluded.total_score,
		average_score = excluded.average_score,
		technical_avg = excluded.technical_avg,
		behavioral_avg = excluded.behavioral_avg,
		questions_asked = excluded.questions_asked,
		transcript_json = excluded.transcript_json,
		completed_at = excluded.completed_at`

	completedAt := result.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now()
	}

	transcript := result.TranscriptJSON
	if transcript == "" {
		transcript = "[]"
	}

	_, err := s.db.ExecContext(ctx, query,
		result.SessionID, result.CandidateID, result.CandidateName, result.JobRole,
		result.TotalScore, result.AverageScore, result.TechnicalAvg, result.BehavioralAvg,
		result.QuestionsAsked, transcript, completedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

// GetResult retrieves a result by session id.
func (s *SQLiteStore) GetResult(ctx context.Context, sessionID string) (*InterviewResult, error) {
	query := `
		SELECT session_id, candidate_id, candidate_name, job_role,
		       total_score, average_score, technical_avg, behavioral_avg,
		       questions_asked, transcript_json, completed_at
		FROM interview_results WHERE session_id = ?`

	row := s.db.QueryRowContext(ctx, query, sessionID)

	result, err := scanResult(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan result row: %w", err)
	}
	return result, nil
}

// ListResultsByCandidate retrieves all results for a candidate, newest first.
func (s *SQLiteStore) ListResultsByCandidate(ctx context.Context, candidateID string) ([]*InterviewResult, error) {
	query := `
		SELECT session_id, candidate_id, candidate_name, job_role,
		       total_score, average_score, technical_avg, behavioral_avg,
		       questions_asked, transcript_json, completed_at
		FROM interview_results
		WHERE candidate_id = ?
		ORDER BY completed_at DESC`

	rows, err := s.db.QueryContext(ctx, query, candidateID)
	if err != nil {
		return nil, fmt.Errorf("query candidate results: %w", err)
	}
	defer rows.Close()

	var results []*InterviewResult
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidate results: %w", err)
	}
	return results, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (*InterviewResult, error) {
	var result InterviewResult
	var completedAt int64

	err := row.Scan(
		&result.SessionID, &result.CandidateID, &result.CandidateName, &result.JobRole,
		&result.TotalScore, &result.AverageScore, &result.TechnicalAvg, &result.BehavioralAvg,
		&result.QuestionsAsked, &result.TranscriptJSON, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	result.CompletedAt = time.Unix(completedAt, 0)
	return &result, nil
}
