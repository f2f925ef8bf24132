// Package common defines shared constants and sentinel errors used across
// the healthmon client layers. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("local storage failure")

	// Remote/auth errors.
	ErrTransient     = errors.New("server unavailable")
	ErrNotAuthorized = errors.New("not authorized")

	// ErrNotPremium matches ErrNotAuthorized under errors.Is, but can also
	// be matched on its own so callers can tell an entitlement rejection
	// from a rejected credential.
	ErrNotPremium = fmt.Errorf("premium subscription required: %w", ErrNotAuthorized)

	// Sync orchestration errors.
	ErrSyncInProgress = errors.New("sync already in progress")
)
