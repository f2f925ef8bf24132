// Package shared holds sentinel errors used by the server layers.
package shared

import "errors"

var (
	// common errors
	ErrorNotFound = errors.New("not found")

	// auth-specific errors
	ErrorInvalidToken            = errors.New("invalid token")
	ErrorInvalidAuthheaderFormat = errors.New("invalid auth header format")
	ErrorNoUserID                = errors.New("no user id")

	ErrorLoginAlreadyExists   = errors.New("login already exists")
	ErrorInvalidLoginPassword = errors.New("invalid login/password")

	// entitlement-specific errors
	ErrorNotPremium = errors.New("premium subscription required")

	ErrorValidation = errors.New("validation error")
)
