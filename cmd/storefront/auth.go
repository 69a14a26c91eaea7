package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claydohscope/storefront/internal/cart"
)

// authStateKey holds the admin token and dashboard cookie between runs
const authStateKey = "admin_session"

type authState struct {
	AccessToken string `json:"access_token,omitempty"`
	AdminCookie string `json:"admin_cookie,omitempty"`
	Email       string `json:"email,omitempty"`
}

func (a *app) authStorage() (*cart.FileStorage, error) {
	return cart.NewFileStorage(a.cfg.DataDir)
}

func (a *app) restoreAuth() error {
	st, err := a.authStorage()
	if err != nil {
		return err
	}
	raw, err := st.Get(context.Background(), authStateKey)
	if errors.Is(err, cart.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	var state authState
	if err := json.Unmarshal(raw, &state); err != nil {
		return fmt.Errorf("corrupt saved session: %w", err)
	}
	a.api.SetAccessToken(state.AccessToken)
	a.api.SetAdminCookie(state.AdminCookie)
	return nil
}

func (a *app) saveAuth(ctx context.Context, email string) error {
	st, err := a.authStorage()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(authState{
		AccessToken: a.api.AccessToken(),
		AdminCookie: a.api.AdminCookie(),
		Email:       email,
	})
	if err != nil {
		return err
	}
	return st.Set(ctx, authStateKey, raw)
}
