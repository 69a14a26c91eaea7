package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/claydohscope/storefront/internal/domain"
)

type sessionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSessionRepository creates a new access token repository
func NewSessionRepository(db *sql.DB, logger *zap.Logger) *sessionRepository {
	return &sessionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.AdminSession) error {
	query := `
		INSERT INTO admin_sessions (id, token_lookup, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query, session.ID, session.TokenLookup, session.UserID, session.ExpiresAt, session.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create session", zap.Error(err))
		return err
	}
	return nil
}

func (r *sessionRepository) GetByLookup(ctx context.Context, lookup string, now time.Time) (*domain.AdminSession, error) {
	query := `
		SELECT id, token_lookup, user_id, expires_at, created_at
		FROM admin_sessions
		WHERE token_lookup = $1 AND expires_at > $2
	`

	var s domain.AdminSession
	err := r.db.QueryRowContext(ctx, query, lookup, now).Scan(&s.ID, &s.TokenLookup, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get session", zap.Error(err))
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) DeleteByLookup(ctx context.Context, lookup string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE token_lookup = $1`, lookup)
	if err != nil {
		r.logger.Error("Failed to delete session", zap.Error(err))
	}
	return err
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		r.logger.Error("Failed to delete expired sessions", zap.Error(err))
		return 0, err
	}
	return res.RowsAffected()
}
