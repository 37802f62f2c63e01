package mariadb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/celebrity-detector/internal/constants"
	"github.com/kozaktomas/celebrity-detector/internal/database"
)

// HistoryRepository provides MariaDB-backed lookup history.
type HistoryRepository struct {
	pool *Pool
}

// NewHistoryRepository creates a new MariaDB history repository.
func NewHistoryRepository(pool *Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

func (r *HistoryRepository) SaveIdentification(ctx context.Context, rec *database.IdentificationRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO identifications
			(id, name, name_key, info, face_x, face_y, face_width, face_height, image_sha1, provider, cached, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.pool.db.ExecContext(ctx, query,
		rec.ID, rec.Name, rec.NameKey, rec.Info,
		rec.FaceX, rec.FaceY, rec.FaceWidth, rec.FaceHeight,
		rec.ImageSHA1, rec.Provider, rec.Cached, rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save identification: %w", err)
	}
	return nil
}

func (r *HistoryRepository) SaveQuestion(ctx context.Context, rec *database.QuestionRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO questions (id, name, name_key, question, answer, answered, provider, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.pool.db.ExecContext(ctx, query,
		rec.ID, rec.Name, rec.NameKey, rec.Question, rec.Answer, rec.Answered, rec.Provider, rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save question: %w", err)
	}
	return nil
}

func (r *HistoryRepository) ListIdentifications(ctx context.Context, filter database.HistoryFilter) ([]database.IdentificationRecord, error) {
	limit := filter.EffectiveLimit(constants.DefaultHistoryLimit, constants.MaxHistoryLimit)

	query := `
		SELECT id, name, name_key, info, face_x, face_y, face_width, face_height, image_sha1, provider, cached, created_at
		FROM identifications
		WHERE (? = '' OR name_key = ?)
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := r.pool.db.QueryContext(ctx, query, filter.NameKey, filter.NameKey, limit)
	if err != nil {
		return nil, fmt.Errorf("list identifications: %w", err)
	}
	defer rows.Close()

	var records []database.IdentificationRecord
	for rows.Next() {
		var rec database.IdentificationRecord
		if err := rows.Scan(
			&rec.ID, &rec.Name, &rec.NameKey, &rec.Info,
			&rec.FaceX, &rec.FaceY, &rec.FaceWidth, &rec.FaceHeight,
			&rec.ImageSHA1, &rec.Provider, &rec.Cached, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan identification: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identifications: %w", err)
	}
	return records, nil
}

func (r *HistoryRepository) ListQuestions(ctx context.Context, filter database.HistoryFilter) ([]database.QuestionRecord, error) {
	limit := filter.EffectiveLimit(constants.DefaultHistoryLimit, constants.MaxHistoryLimit)

	query := `
		SELECT id, name, name_key, question, answer, answered, provider, created_at
		FROM questions
		WHERE (? = '' OR name_key = ?)
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := r.pool.db.QueryContext(ctx, query, filter.NameKey, filter.NameKey, limit)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var records []database.QuestionRecord
	for rows.Next() {
		var rec database.QuestionRecord
		if err := rows.Scan(
			&rec.ID, &rec.Name, &rec.NameKey, &rec.Question, &rec.Answer, &rec.Answered, &rec.Provider, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return records, nil
}

func (r *HistoryRepository) CountIdentifications(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM identifications").Scan(&count); err != nil {
		return 0, fmt.Errorf("count identifications: %w", err)
	}
	return count, nil
}

func (r *HistoryRepository) Close() error {
	return r.pool.Close()
}
