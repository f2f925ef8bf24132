// Package models defines client-side data models for healthmon.
package models

import "time"

// SyncState is the lifecycle state of a locally captured vector.
type SyncState int

const (
	// StatePending marks a vector that has not been acknowledged by the
	// server yet. Vectors are created in this state.
	StatePending SyncState = 0

	// StateSynced marks a vector the server has durably stored. A vector
	// enters this state at most once and never leaves it.
	StateSynced SyncState = 1

	// StateFailed marks a vector the server rejected more times than the
	// configured attempt limit. Failed vectors are excluded from future
	// batches and surfaced for inspection.
	StateFailed SyncState = 2
)

func (s SyncState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSynced:
		return "synced"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Vector is one sensor/inference observation persisted in the local store.
type Vector struct {
	// ID is assigned by the local store, monotonically, never reused.
	ID int64

	// CapturedAt is the acquisition time in UTC.
	CapturedAt time.Time

	// HeartRate is the raw sensor reading (beats per minute).
	HeartRate int

	// StressLevel is the inference output for this reading.
	StressLevel float64

	// ModelVersion tags the inference model that produced StressLevel.
	ModelVersion string

	// SyncState is the record lifecycle state.
	SyncState SyncState

	// Attempts counts server rejections of this vector.
	Attempts int
}
