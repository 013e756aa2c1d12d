package embedder

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Resilient wraps a Provider with the reliability layer applied to
// every external call: an embedding cache, a shared rate limiter (the
// provider boundary is where backpressure matters most, since many
// workers funnel into it), and bounded retry with exponential backoff.
type Resilient struct {
	inner   Provider
	cache   *Cache
	limiter *rate.Limiter
	retry   RetryConfig
}

// ResilientConfig configures the reliability wrapper.
type ResilientConfig struct {
	// RequestsPerSecond caps provider calls across all workers.
	// Zero disables rate limiting.
	RequestsPerSecond float64
	// Burst is the limiter burst size (default 1 when limited).
	Burst int
	// CacheSize is the embedding cache capacity (default
	// DefaultCacheSize; negative disables the cache).
	CacheSize int
	// Retry configures backoff; zero value means DefaultRetryConfig.
	Retry RetryConfig
}

// NewResilient wraps a provider.
func NewResilient(inner Provider, cfg ResilientConfig) *Resilient {
	r := &Resilient{inner: inner, retry: cfg.Retry}
	if r.retry.MaxRetries == 0 {
		r.retry = DefaultRetryConfig()
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	if cfg.CacheSize >= 0 {
		r.cache = NewCache(cfg.CacheSize)
	}
	return r
}

// GenerateDescription applies rate limiting and retry around the
// wrapped provider's description call.
func (r *Resilient) GenerateDescription(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyText
	}
	if err := r.wait(ctx); err != nil {
		return "", err
	}
	desc, err := retryWithBackoff(ctx, r.retry, func() (string, error) {
		return r.inner.GenerateDescription(ctx, prompt)
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: description after %d attempts: %v", ErrProviderFailed, r.retry.MaxRetries, err)
	}
	return desc, nil
}

// GenerateEmbedding checks the cache, then applies rate limiting and
// retry around the wrapped provider's embedding call.
func (r *Resilient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	hash := HashText(text)
	if r.cache != nil {
		if vec, ok := r.cache.Get(hash); ok {
			return vec, nil
		}
	}

	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	vec, err := retryWithBackoff(ctx, r.retry, func() ([]float32, error) {
		return r.inner.GenerateEmbedding(ctx, text)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: embedding after %d attempts: %v", ErrProviderFailed, r.retry.MaxRetries, err)
	}

	if r.cache != nil {
		r.cache.Set(hash, vec)
	}
	return vec, nil
}

func (r *Resilient) wait(ctx context.Context) error {
	if r.limiter == nil {
		return nil
	}
	return r.limiter.Wait(ctx)
}

// Dimension returns the wrapped provider's dimension.
func (r *Resilient) Dimension() int { return r.inner.Dimension() }

// Name returns the wrapped provider's name.
func (r *Resilient) Name() string { return r.inner.Name() }

// Close closes the wrapped provider.
func (r *Resilient) Close() error { return r.inner.Close() }
