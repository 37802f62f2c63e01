// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/celebrity-detector/internal/constants"
	"github.com/kozaktomas/celebrity-detector/internal/database"
)

// MockHistoryStore is an in-memory implementation of database.HistoryStore
type MockHistoryStore struct {
	mu              sync.RWMutex
	identifications []database.IdentificationRecord
	questions       []database.QuestionRecord
	closed          bool

	// Error injection
	SaveIdentificationError  error
	SaveQuestionError        error
	ListIdentificationsError error
	ListQuestionsError       error
	CountError               error
}

// NewMockHistoryStore creates a new empty mock history store
func NewMockHistoryStore() *MockHistoryStore {
	return &MockHistoryStore{}
}

func (m *MockHistoryStore) SaveIdentification(ctx context.Context, rec *database.IdentificationRecord) error {
	if m.SaveIdentificationError != nil {
		return m.SaveIdentificationError
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identifications = append(m.identifications, *rec)
	return nil
}

func (m *MockHistoryStore) SaveQuestion(ctx context.Context, rec *database.QuestionRecord) error {
	if m.SaveQuestionError != nil {
		return m.SaveQuestionError
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions = append(m.questions, *rec)
	return nil
}

func (m *MockHistoryStore) ListIdentifications(ctx context.Context, filter database.HistoryFilter) ([]database.IdentificationRecord, error) {
	if m.ListIdentificationsError != nil {
		return nil, m.ListIdentificationsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []database.IdentificationRecord
	for _, rec := range m.identifications {
		if filter.NameKey == "" || rec.NameKey == filter.NameKey {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return truncate(out, filter), nil
}

func (m *MockHistoryStore) ListQuestions(ctx context.Context, filter database.HistoryFilter) ([]database.QuestionRecord, error) {
	if m.ListQuestionsError != nil {
		return nil, m.ListQuestionsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []database.QuestionRecord
	for _, rec := range m.questions {
		if filter.NameKey == "" || rec.NameKey == filter.NameKey {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return truncate(out, filter), nil
}

func (m *MockHistoryStore) CountIdentifications(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.identifications), nil
}

// Close marks the store as closed
func (m *MockHistoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// IsClosed reports whether Close was called
func (m *MockHistoryStore) IsClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

func truncate[T any](records []T, filter database.HistoryFilter) []T {
	limit := filter.EffectiveLimit(constants.DefaultHistoryLimit, constants.MaxHistoryLimit)
	if len(records) > limit {
		return records[:limit]
	}
	return records
}

var _ database.HistoryStore = (*MockHistoryStore)(nil)
