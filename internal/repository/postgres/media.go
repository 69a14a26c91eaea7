package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/claydohscope/storefront/internal/domain"
)

type mediaRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMediaRepository creates a new media repository
func NewMediaRepository(db *sql.DB, logger *zap.Logger) *mediaRepository {
	return &mediaRepository{
		db:     db,
		logger: logger,
	}
}

func (r *mediaRepository) Create(ctx context.Context, media *domain.Media) error {
	query := `
		INSERT INTO media (id, title, type, src, caption, poster, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if media.ID == uuid.Nil {
		media.ID = uuid.New()
	}
	if media.CreatedAt.IsZero() {
		media.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		media.ID,
		media.Title,
		media.Type,
		media.Src,
		media.Caption,
		media.Poster,
		media.CreatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create media", zap.Error(err))
		return err
	}

	return nil
}

func (r *mediaRepository) List(ctx context.Context) ([]*domain.Media, error) {
	query := `
		SELECT id, title, type, src, caption, poster, created_at
		FROM media
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list media", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	items := []*domain.Media{}
	for rows.Next() {
		var m domain.Media
		var caption, poster sql.NullString
		if err := rows.Scan(&m.ID, &m.Title, &m.Type, &m.Src, &caption, &poster, &m.CreatedAt); err != nil {
			return nil, err
		}
		if caption.Valid {
			m.Caption = &caption.String
		}
		if poster.Valid {
			m.Poster = &poster.String
		}
		items = append(items, &m)
	}

	return items, rows.Err()
}
