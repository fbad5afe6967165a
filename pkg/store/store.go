// Package store provides persistence for completed interview results.
package store

import (
	"context"
	"time"
)

// InterviewResult is the persisted outcome of one interview session.
type InterviewResult struct {
	SessionID      string
	CandidateID    string
	CandidateName  string
	JobRole        string
	TotalScore     float64
	AverageScore   float64
	TechnicalAvg   float64
	BehavioralAvg  float64
	QuestionsAsked int
	TranscriptJSON string
	CompletedAt    time.Time
}

// Repository defines the interface for persisting interview results.
type Repository interface {
	// SaveResult creates or replaces the result for a session. Saving the
	// same session id twice is safe; the latest write wins.
	SaveResult(ctx context.Context, result *InterviewResult) error

	// GetResult retrieves a result by session id. It returns nil, nil when
	// no result exists.
	GetResult(ctx context.Context, sessionID string) (*InterviewResult, error)

	// ListResultsByCandidate retrieves all results for a candidate, newest
	// first.
	ListResultsByCandidate(ctx context.Context, candidateID string) ([]*InterviewResult, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
