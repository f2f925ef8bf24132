package common

const (
	// FallbackHeartRate is recorded when the sensor read fails or times out.
	FallbackHeartRate = 75

	// FallbackStressLevel is recorded when inference fails.
	FallbackStressLevel = 0.0

	// UserTypePremium is the account tier allowed to sync.
	UserTypePremium = "premium"
	UserTypeFree    = "free"
)
