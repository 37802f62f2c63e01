package database

import (
	"context"
)

// HistoryWriter records identifications and questions.
type HistoryWriter interface {
	// SaveIdentification stores an identification. ID and CreatedAt are set when zero.
	SaveIdentification(ctx context.Context, rec *IdentificationRecord) error
	// SaveQuestion stores a question. ID and CreatedAt are set when zero.
	SaveQuestion(ctx context.Context, rec *QuestionRecord) error
}

// HistoryReader provides read-only access to the lookup history
type HistoryReader interface {
	// ListIdentifications returns identifications, newest first
	ListIdentifications(ctx context.Context, filter HistoryFilter) ([]IdentificationRecord, error)
	// ListQuestions returns questions, newest first
	ListQuestions(ctx context.Context, filter HistoryFilter) ([]QuestionRecord, error)
	// CountIdentifications returns the total number of stored identifications
	CountIdentifications(ctx context.Context) (int, error)
}

// HistoryStore is a complete history backend.
type HistoryStore interface {
	HistoryWriter
	HistoryReader
	Close() error
}
