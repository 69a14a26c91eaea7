package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/claydohscope/storefront/internal/domain"
	"github.com/claydohscope/storefront/pkg/errors"
)

// Session is an issued access token and the identity behind it
type Session struct {
	AccessToken string      `json:"access_token"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        domain.User `json:"user"`
}

// Gateway issues, resolves and revokes access tokens
type Gateway interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	GetUser(ctx context.Context, token string) (*domain.User, error)
	SignOut(ctx context.Context, token string) error
}

var (
	errMissingToken = &errors.ErrUnauthorized{Message: "Missing Authorization token"}
	errInvalidToken = &errors.ErrUnauthorized{Message: "Invalid token"}
	errNotAllowed   = &errors.ErrForbidden{Message: "Not authorized"}
)

// TokenLookupHash returns the SHA256 hex of a token, the only form of a token that is stored
func TokenLookupHash(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// BearerToken extracts the token from an Authorization header value.
// ok is false when the header does not use the Bearer scheme.
func BearerToken(header string) (token string, ok bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")), true
}

// Authorizer validates bearer tokens against a Gateway and applies the
// single-address admin allowlist.
type Authorizer struct {
	gateway      Gateway
	allowedEmail string
	logger       *zap.Logger
}

// NewAuthorizer creates an authorizer. An empty allowedEmail admits every authenticated user.
func NewAuthorizer(gateway Gateway, allowedEmail string, logger *zap.Logger) *Authorizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authorizer{
		gateway:      gateway,
		allowedEmail: strings.TrimSpace(allowedEmail),
		logger:       logger,
	}
}

// Authenticate resolves a token to its user. Every failure is an *errors.ErrUnauthorized.
func (a *Authorizer) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, errMissingToken
	}
	user, err := a.gateway.GetUser(ctx, token)
	if err != nil {
		if _, ok := err.(*errors.ErrUnauthorized); !ok {
			a.logger.Warn("Auth gateway lookup failed", zap.Error(err))
		}
		return nil, errInvalidToken
	}
	if user == nil {
		return nil, errInvalidToken
	}
	return user, nil
}

// Authorize checks the user against the admin allowlist
func (a *Authorizer) Authorize(user *domain.User) error {
	if a.allowedEmail == "" {
		return nil
	}
	if user == nil || user.Email != a.allowedEmail {
		return errNotAllowed
	}
	return nil
}

// AuthenticateAdmin runs Authenticate then Authorize
func (a *Authorizer) AuthenticateAdmin(ctx context.Context, token string) (*domain.User, error) {
	user, err := a.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := a.Authorize(user); err != nil {
		a.logger.Info("Rejected non-allowlisted admin", zap.String("email", user.Email))
		return nil, err
	}
	return user, nil
}

// Gateway exposes the wrapped gateway for the token routes
func (a *Authorizer) Gateway() Gateway {
	return a.gateway
}
