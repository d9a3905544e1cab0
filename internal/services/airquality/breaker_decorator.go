package airquality

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// errCallerGone marks a failure caused by the caller abandoning the request.
// It is returned to the caller but not counted against the upstream.
var errCallerGone = errors.New("request abandoned by caller")

type client interface {
	Fetch(ctx context.Context, city string) (map[string]float64, error)
}

type BreakerConfig struct {
	TimeInterval time.Duration
	TimeTimeOut  time.Duration
	RepeatNumber uint32
}

type BreakerClient struct {
	name    string
	cb      *gobreaker.CircuitBreaker
	wrapped client
}

func NewBreakerClient(name string, cfg BreakerConfig, wrapped client) *BreakerClient {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.TimeInterval,
		Timeout:     cfg.TimeTimeOut,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.RepeatNumber
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errCallerGone)
		},
	}
	return &BreakerClient{
		name:    name,
		cb:      gobreaker.NewCircuitBreaker(settings),
		wrapped: wrapped,
	}
}

func (b *BreakerClient) Fetch(ctx context.Context, city string) (map[string]float64, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		data, err := b.wrapped.Fetch(ctx, city)
		if err != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", errCallerGone, err)
		}
		return data, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s unavailable: %w", b.name, err)
	}
	res, ok := result.(map[string]float64)
	if !ok {
		return nil, fmt.Errorf("%s returned unexpected result", b.name)
	}
	return res, nil
}

// State is the breaker state ("closed", "half-open" or "open"), reported on /healthz.
func (b *BreakerClient) State() string {
	return b.cb.State().String()
}
