package models

import "time"

// Vector is one uploaded observation. Payload keeps the full submitted
// record as JSON; DeviceID and CapturedAt are lifted out because together
// with UserID they form the deduplication key.
type Vector struct {
	ID         int64
	UserID     int64
	DeviceID   string
	CapturedAt time.Time
	Payload    []byte
}
