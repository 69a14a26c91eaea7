package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/claydohscope/storefront/internal/domain"
	"github.com/claydohscope/storefront/internal/repository"
	"github.com/claydohscope/storefront/pkg/errors"
)

// SessionTTL is how long a locally issued access token stays valid
const SessionTTL = 8 * time.Hour

var errBadCredentials = &errors.ErrUnauthorized{Message: "Invalid login credentials"}

// LocalGateway authenticates admin accounts stored in PostgreSQL
type LocalGateway struct {
	users    repository.AdminUserRepository
	sessions repository.SessionRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewLocalGateway creates a gateway backed by the admin user and session repositories
func NewLocalGateway(users repository.AdminUserRepository, sessions repository.SessionRepository, logger *zap.Logger) *LocalGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalGateway{
		users:    users,
		sessions: sessions,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// HashPassword hashes a password for storage
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func (g *LocalGateway) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := g.users.GetByEmail(ctx, email)
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); ok {
			return nil, errBadCredentials
		}
		return nil, &errors.ErrUpstream{Service: "database", Message: err.Error()}
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		g.logger.Info("Admin sign-in rejected", zap.String("email", user.Email))
		return nil, errBadCredentials
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}
	now := g.now()
	session := &domain.AdminSession{
		TokenLookup: TokenLookupHash(token),
		UserID:      user.ID,
		ExpiresAt:   now.Add(SessionTTL),
		CreatedAt:   now,
	}
	if err := g.sessions.Create(ctx, session); err != nil {
		return nil, &errors.ErrUpstream{Service: "database", Message: err.Error()}
	}

	return &Session{
		AccessToken: token,
		ExpiresAt:   session.ExpiresAt,
		User:        domain.User{ID: user.ID.String(), Email: user.Email},
	}, nil
}

func (g *LocalGateway) GetUser(ctx context.Context, token string) (*domain.User, error) {
	session, err := g.sessions.GetByLookup(ctx, TokenLookupHash(token), g.now())
	if err != nil {
		return nil, &errors.ErrUpstream{Service: "database", Message: err.Error()}
	}
	if session == nil {
		return nil, errInvalidToken
	}

	user, err := g.users.GetByID(ctx, session.UserID)
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); ok {
			return nil, errInvalidToken
		}
		return nil, &errors.ErrUpstream{Service: "database", Message: err.Error()}
	}
	return &domain.User{ID: user.ID.String(), Email: user.Email}, nil
}

// SignOut revokes the token. Unknown tokens are ignored.
func (g *LocalGateway) SignOut(ctx context.Context, token string) error {
	return g.sessions.DeleteByLookup(ctx, TokenLookupHash(token))
}

// PurgeExpired removes expired sessions and returns how many were deleted
func (g *LocalGateway) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := g.sessions.DeleteExpired(ctx, g.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		g.logger.Info("Purged expired sessions", zap.Int64("count", n))
	}
	return n, nil
}
