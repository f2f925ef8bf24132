// Package api defines the remote sync endpoint contract consumed by the
// client services, plus its HTTP/JSON implementation.
package api

import (
	"context"
	"encoding/json"
	"time"
)

// TokenResponse is the body of a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserResponse describes the authenticated account.
type UserResponse struct {
	ID              int64      `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	UserType        string     `json:"user_type"`
	SubscriptionEnd *time.Time `json:"subscription_end,omitempty"`
}

// VectorPayload is one record as submitted to the server. Optional readings
// are pointers so absent values stay absent on the wire.
type VectorPayload struct {
	DeviceID     string          `json:"device_id"`
	Timestamp    time.Time       `json:"timestamp"`
	HeartRate    *int            `json:"heart_rate,omitempty"`
	HRV          *float64        `json:"hrv,omitempty"`
	AccelX       float64         `json:"accel_x"`
	AccelY       float64         `json:"accel_y"`
	AccelZ       float64         `json:"accel_z"`
	Temperature  *float64        `json:"temperature,omitempty"`
	StressLevel  *float64        `json:"stress_level,omitempty"`
	ModelVersion string          `json:"model_version,omitempty"`
	ModelWeights json.RawMessage `json:"model_weights,omitempty"`
}

// SyncResponse is the server acknowledgment for an uploaded batch.
// Accepted lists the indexes (into the submitted batch) the server durably
// stored; when absent and Count equals the batch length the whole batch was
// accepted.
type SyncResponse struct {
	Status   string `json:"status"`
	Count    int    `json:"count"`
	Accepted []int  `json:"accepted,omitempty"`
}

// Client is the remote authority boundary. Implementations map transport
// and status failures onto the common sentinel errors: connection problems
// and 5xx to common.ErrTransient, 401 to common.ErrNotAuthorized, 403 to
// common.ErrNotPremium.
type Client interface {
	Register(ctx context.Context, username, email, password string) (*TokenResponse, error)
	Login(ctx context.Context, username, password string) (*TokenResponse, error)
	Me(ctx context.Context, token string) (*UserResponse, error)
	PushVectors(ctx context.Context, token string, userID int64, batch []VectorPayload) (*SyncResponse, error)
	PullVectors(ctx context.Context, token string, userID int64, limit int) ([]VectorPayload, error)
}
