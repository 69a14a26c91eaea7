package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/claydohscope/storefront/internal/domain"
	"github.com/claydohscope/storefront/pkg/errors"
)

const supabaseService = "supabase-auth"

// SupabaseGateway talks to the GoTrue REST API of a Supabase project
type SupabaseGateway struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewSupabaseGateway creates a gateway for the project at projectURL
func NewSupabaseGateway(projectURL, anonKey string, logger *zap.Logger) *SupabaseGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupabaseGateway{
		baseURL:    strings.TrimSuffix(projectURL, "/") + "/auth/v1",
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

type supabaseUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type supabaseTokenResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int64        `json:"expires_in"`
	ExpiresAt   int64        `json:"expires_at"`
	User        supabaseUser `json:"user"`
}

// supabaseError covers the error shapes GoTrue has used across versions
type supabaseError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (e supabaseError) text() string {
	for _, s := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (g *SupabaseGateway) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}

	var out supabaseTokenResponse
	if err := g.do(ctx, http.MethodPost, "/token?grant_type=password", "", body, &out); err != nil {
		return nil, err
	}

	expiresAt := time.Unix(out.ExpiresAt, 0).UTC()
	if out.ExpiresAt == 0 {
		expiresAt = time.Now().UTC().Add(time.Duration(out.ExpiresIn) * time.Second)
	}
	return &Session{
		AccessToken: out.AccessToken,
		ExpiresAt:   expiresAt,
		User:        domain.User{ID: out.User.ID, Email: out.User.Email},
	}, nil
}

func (g *SupabaseGateway) GetUser(ctx context.Context, token string) (*domain.User, error) {
	var out supabaseUser
	if err := g.do(ctx, http.MethodGet, "/user", token, nil, &out); err != nil {
		return nil, err
	}
	return &domain.User{ID: out.ID, Email: out.Email}, nil
}

func (g *SupabaseGateway) SignOut(ctx context.Context, token string) error {
	return g.do(ctx, http.MethodPost, "/logout", token, nil, nil)
}

func (g *SupabaseGateway) do(ctx context.Context, method, path, token string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", g.anonKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Error("Supabase auth request failed", zap.String("path", path), zap.Error(err))
		return &errors.ErrUpstream{Service: supabaseService, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read auth response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var e supabaseError
		_ = json.Unmarshal(raw, &e)
		msg := e.text()
		switch resp.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusUnprocessableEntity:
			if msg == "" {
				msg = "Invalid credentials"
			}
			return &errors.ErrUnauthorized{Message: msg}
		default:
			return &errors.ErrUpstream{Service: supabaseService, Status: resp.StatusCode, Message: msg}
		}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode auth response: %w", err)
	}
	return nil
}
