// Package sensor defines the heart-rate source boundary. The real device
// is wireless and may time out; the acquisition loop substitutes a
// documented fallback reading when it does.
package sensor

import (
	"context"
	"math/rand"
	"sync"
)

// Reader produces one heart-rate reading per call. Implementations own
// their device timeout; a slow device must return an error rather than
// block past ctx.
type Reader interface {
	Read(ctx context.Context) (int, error)
}

// Static always reports the same rate. Used in tests and as a stand-in
// when no device is configured.
type Static struct {
	Rate int
}

func (s *Static) Read(ctx context.Context) (int, error) {
	return s.Rate, nil
}

// Simulated produces plausible readings around a resting baseline, for
// running the client without hardware.
type Simulated struct {
	Baseline int
	Spread   int

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSimulated(baseline, spread int, seed int64) *Simulated {
	return &Simulated{Baseline: baseline, Spread: spread, rnd: rand.New(rand.NewSource(seed))}
}

func (s *Simulated) Read(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Spread <= 0 {
		return s.Baseline, nil
	}
	return s.Baseline + s.rnd.Intn(2*s.Spread+1) - s.Spread, nil
}
