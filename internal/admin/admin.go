package admin

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/claydohscope/storefront/internal/client"
	"github.com/claydohscope/storefront/internal/domain"
	pkgerrors "github.com/claydohscope/storefront/pkg/errors"
)

// ErrBusy is returned when a view already has a mutation in flight
var ErrBusy = errors.New("another request is still in progress")

// ErrNotAdmin is returned when the signed-in identity is not the configured admin
var ErrNotAdmin = &pkgerrors.ErrForbidden{Message: "Not authorized as admin"}

// AuthAPI signs admin identities in and out
type AuthAPI interface {
	SignIn(ctx context.Context, email, password string) (*client.Session, error)
	SignOut(ctx context.Context) error
}

// Uploader stores a file in a bucket and returns its public URL
type Uploader interface {
	Upload(ctx context.Context, bucket, filename string, r io.Reader) (string, error)
}

// File is a local file picked for upload
type File struct {
	Name   string
	Reader io.Reader
}

// inflight refuses overlapping mutations from the same view
type inflight struct {
	mu   sync.Mutex
	busy bool
}

func (g *inflight) begin() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy {
		return ErrBusy
	}
	g.busy = true
	return nil
}

func (g *inflight) end() {
	g.mu.Lock()
	g.busy = false
	g.mu.Unlock()
}

func (g *inflight) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy
}

// Session holds the signed-in admin identity
type Session struct {
	api          AuthAPI
	allowedEmail string
	logger       *zap.Logger

	mu   sync.RWMutex
	user *domain.User
}

// NewSession creates an admin session. An empty allowedEmail admits any identity.
func NewSession(api AuthAPI, allowedEmail string, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{api: api, allowedEmail: strings.TrimSpace(allowedEmail), logger: logger}
}

// SignIn authenticates and re-checks the identity against the allowed admin email.
// A mismatching identity is signed straight back out.
func (s *Session) SignIn(ctx context.Context, email, password string) (*domain.User, error) {
	sess, err := s.api.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if s.allowedEmail != "" && sess.User.Email != s.allowedEmail {
		s.logger.Warn("Sign-in by non-admin identity", zap.String("email", sess.User.Email))
		if err := s.api.SignOut(ctx); err != nil {
			s.logger.Warn("Failed to sign out non-admin identity", zap.Error(err))
		}
		return nil, ErrNotAdmin
	}

	user := sess.User
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return &user, nil
}

func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	return s.api.SignOut(ctx)
}

// User returns the signed-in identity or nil
func (s *Session) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}
