package storage

import (
	"context"
	"errors"
	"time"

	"catalog/internal/metrics"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned while the breaker rejects calls to the provider.
var ErrCircuitOpen = gobreaker.ErrOpenState

// BreakerConfig holds configuration for the provider circuit breaker.
type BreakerConfig struct {
	Name string

	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32

	// Interval clears the failure counts while closed. 0 never clears them.
	Interval time.Duration

	// Timeout is how long the breaker stays open before going half-open.
	Timeout time.Duration

	// FailureRatio trips the breaker once MinRequests calls have been seen.
	FailureRatio float64
	MinRequests  uint32
}

// DefaultBreakerConfig returns the settings used for the image provider.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

type breakerStorage struct {
	next    Storage
	breaker *gobreaker.CircuitBreaker[*UploadResult]
}

// WithCircuitBreaker wraps s so that calls fail fast with ErrCircuitOpen once
// the provider keeps failing. Calls are never retried.
func WithCircuitBreaker(s Storage, cfg BreakerConfig, logger *zap.Logger) Storage {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		IsSuccessful: func(err error) bool {
			return err == nil || IsCanceled(err)
		},
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.SetBreakerState(name, stateToFloat(to))
		},
	}

	metrics.SetBreakerState(cfg.Name, 0)

	return &breakerStorage{
		next:    s,
		breaker: gobreaker.NewCircuitBreaker[*UploadResult](settings),
	}
}

func (b *breakerStorage) Upload(ctx context.Context, input *UploadInput) (*UploadResult, error) {
	return b.breaker.Execute(func() (*UploadResult, error) {
		return b.next.Upload(ctx, input)
	})
}

func (b *breakerStorage) Delete(ctx context.Context, publicID string) error {
	_, err := b.breaker.Execute(func() (*UploadResult, error) {
		return nil, b.next.Delete(ctx, publicID)
	})
	return err
}

// IsCanceled reports whether err comes from the caller giving up rather than
// from the provider.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
