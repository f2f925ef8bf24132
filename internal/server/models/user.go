// Package models defines server-side persistence models.
package models

import "time"

// User is a registered account. UserType is "free" or "premium"; a
// premium subscription may carry an expiry after which the account is
// treated as free again.
type User struct {
	ID              int64
	Username        string
	Email           string
	PasswordHash    string
	UserType        string
	SubscriptionEnd *time.Time
}
