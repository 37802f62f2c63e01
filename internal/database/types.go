package database

import (
	"time"

	"github.com/google/uuid"
)

// IdentificationRecord is a stored celebrity identification.
type IdentificationRecord struct {
	ID         uuid.UUID
	Name       string // extracted celebrity name, "Unknown" when not recognised
	NameKey    string // normalized name used for lookups
	Info       string // full biography text returned by the provider
	FaceX      int
	FaceY      int
	FaceWidth  int
	FaceHeight int
	ImageSHA1  string // hex SHA-1 of the annotated image
	Provider   string // model that produced the answer
	Cached     bool   // answer served from the identification cache
	CreatedAt  time.Time
}

// QuestionRecord is a stored follow-up question and its answer.
type QuestionRecord struct {
	ID        uuid.UUID
	Name      string
	NameKey   string
	Question  string
	Answer    string
	Answered  bool // false when the fallback answer was returned
	Provider  string
	CreatedAt time.Time
}

// HistoryFilter narrows history listings. An empty NameKey matches all records.
type HistoryFilter struct {
	NameKey string
	Limit   int
}

// EffectiveLimit clamps the limit to [1, max], using def when unset.
func (f HistoryFilter) EffectiveLimit(def, maxLimit int) int {
	switch {
	case f.Limit <= 0:
		return def
	case f.Limit > maxLimit:
		return maxLimit
	default:
		return f.Limit
	}
}
