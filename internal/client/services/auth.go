// Package services contains the application services of the healthmon
// client: the authentication session manager, the sync engine, and the
// sensor acquisition loop.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mkuznecovs/healthmon/internal/client/api"
	"github.com/mkuznecovs/healthmon/internal/client/models"
	"github.com/mkuznecovs/healthmon/internal/common"
	"github.com/mkuznecovs/healthmon/internal/logging"
)

// Sessions is the session surface the sync engine depends on.
type Sessions interface {
	// Current returns the active session, or nil when logged out.
	Current() *models.Session

	// Invalidate drops the active session. Called on logout and whenever a
	// downstream call rejects the credential.
	Invalidate()
}

// AuthService owns the process-wide session. States are LoggedOut and
// LoggedIn; Login moves to LoggedIn, Invalidate moves back. There is no
// token refresh: a rejected credential requires a new Login.
type AuthService struct {
	client api.Client
	logger logging.Logger

	mu      sync.Mutex
	session *models.Session
}

func NewAuthService(client api.Client, logger logging.Logger) *AuthService {
	return &AuthService{client: client, logger: logger}
}

// Login authenticates against the server and resolves the account
// entitlement with the fresh credential. Invalid credentials surface as
// common.ErrNotAuthorized, unreachable server as common.ErrTransient; in
// both cases the previous session state is left untouched.
func (a *AuthService) Login(ctx context.Context, username, password string) (*models.Session, error) {
	tok, err := a.client.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	me, err := a.client.Me(ctx, tok.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("resolve account: %w", err)
	}

	entitlement := models.EntitlementFree
	if me.UserType == common.UserTypePremium &&
		(me.SubscriptionEnd == nil || me.SubscriptionEnd.After(time.Now())) {
		entitlement = models.EntitlementPremium
	}

	session := &models.Session{
		AccessToken: tok.AccessToken,
		UserID:      me.ID,
		UserName:    me.Username,
		Entitlement: entitlement,
	}

	a.mu.Lock()
	a.session = session
	a.mu.Unlock()

	a.logger.Info(ctx, "logged in", "user", me.Username, "entitlement", string(entitlement))
	return session, nil
}

// Current returns a copy of the active session, or nil when logged out.
func (a *AuthService) Current() *models.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return nil
	}
	s := *a.session
	return &s
}

func (a *AuthService) Invalidate() {
	a.mu.Lock()
	a.session = nil
	a.mu.Unlock()
}
