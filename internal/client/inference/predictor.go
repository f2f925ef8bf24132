// Package inference defines the on-device stress model boundary. The
// model itself is a black box: deterministic for a given version, with a
// defined fallback when prediction fails.
package inference

// Predictor maps a heart-rate reading to a stress score in [0, 1].
type Predictor interface {
	Predict(heartRate int) (float64, error)
	Version() string
}

// Linear is the built-in deterministic model: resting rates score near
// zero, rates at or above the ceiling saturate at one.
type Linear struct {
	RestingRate int
	CeilingRate int
}

// NewLinear returns the default model, version "v1.0".
func NewLinear() *Linear {
	return &Linear{RestingRate: 60, CeilingRate: 140}
}

func (l *Linear) Predict(heartRate int) (float64, error) {
	if heartRate <= l.RestingRate {
		return 0.0, nil
	}
	if heartRate >= l.CeilingRate {
		return 1.0, nil
	}
	return float64(heartRate-l.RestingRate) / float64(l.CeilingRate-l.RestingRate), nil
}

func (l *Linear) Version() string { return "v1.0" }
