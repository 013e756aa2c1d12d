package embedder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalProviderDeterministic(t *testing.T) {
	p := NewLocalProvider()
	ctx := context.Background()

	a, err := p.GenerateEmbedding(ctx, "func main() {}")
	require.NoError(t, err)
	b, err := p.GenerateEmbedding(ctx, "func main() {}")
	require.NoError(t, err)
	c, err := p.GenerateEmbedding(ctx, "def main(): pass")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, LocalDimension)
}

func TestLocalProviderUnitVector(t *testing.T) {
	p := NewLocalProvider()
	vec, err := p.GenerateEmbedding(context.Background(), "some text")
	require.NoError(t, err)

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, sum, 1e-5, "local embeddings are unit length")
}

func TestLocalProviderRejectsEmptyText(t *testing.T) {
	p := NewLocalProvider()
	_, err := p.GenerateEmbedding(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestCacheRoundTrip(t *testing.T) {
	c := NewCache(4)

	c.Set("h1", []float32{1, 2, 3})
	vec, ok := c.Get("h1")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3}, vec)

	// Mutating the returned slice must not poison the cache.
	vec[0] = 99
	again, _ := c.Get("h1")
	assert.Equal(t, float32(1), again[0])

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestFactorySelectsProvider(t *testing.T) {
	p, err := New(Config{Provider: "local"})
	require.NoError(t, err)
	assert.Equal(t, ProviderLocal, p.Name())

	p, err = New(Config{Provider: "ollama"})
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, p.Name())

	_, err = New(Config{Provider: "openai"})
	assert.Error(t, err, "openai requires an API key")

	_, err = New(Config{Provider: "nope"})
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

// flakyProvider fails a fixed number of times before succeeding.
type flakyProvider struct {
	LocalProvider
	failures  int
	embedCall int
	descCall  int
}

func (f *flakyProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	f.embedCall++
	if f.embedCall <= f.failures {
		return nil, errors.New("transient")
	}
	return f.LocalProvider.GenerateEmbedding(ctx, text)
}

func (f *flakyProvider) GenerateDescription(ctx context.Context, prompt string) (string, error) {
	f.descCall++
	if f.descCall <= f.failures {
		return "", errors.New("transient")
	}
	return f.LocalProvider.GenerateDescription(ctx, prompt)
}

func fastRetry(max int) RetryConfig {
	return RetryConfig{MaxRetries: max, BaseDelay: 1, MaxDelay: 2, Multiplier: 1.0}
}

func TestResilientRetriesTransientFailures(t *testing.T) {
	flaky := &flakyProvider{failures: 2}
	r := NewResilient(flaky, ResilientConfig{Retry: fastRetry(3)})

	vec, err := r.GenerateEmbedding(context.Background(), "text")
	require.NoError(t, err)
	assert.NotEmpty(t, vec)
	assert.Equal(t, 3, flaky.embedCall, "two failures then success")
}

func TestResilientGivesUpAfterMaxRetries(t *testing.T) {
	flaky := &flakyProvider{failures: 10}
	r := NewResilient(flaky, ResilientConfig{Retry: fastRetry(2)})

	_, err := r.GenerateEmbedding(context.Background(), "text")
	assert.ErrorIs(t, err, ErrProviderFailed)
	assert.Equal(t, 2, flaky.embedCall)
}

func TestResilientCachesEmbeddings(t *testing.T) {
	flaky := &flakyProvider{}
	r := NewResilient(flaky, ResilientConfig{Retry: fastRetry(1)})

	first, err := r.GenerateEmbedding(context.Background(), "same text")
	require.NoError(t, err)
	second, err := r.GenerateEmbedding(context.Background(), "same text")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, flaky.embedCall, "second call must hit the cache")
}

func TestResilientHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	flaky := &flakyProvider{failures: 10}
	r := NewResilient(flaky, ResilientConfig{Retry: fastRetry(5)})

	_, err := r.GenerateEmbedding(ctx, "text")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResilientDescription(t *testing.T) {
	flaky := &flakyProvider{failures: 1}
	r := NewResilient(flaky, ResilientConfig{Retry: fastRetry(2)})

	desc, err := r.GenerateDescription(context.Background(), "Summarize file src/main.go")
	require.NoError(t, err)
	assert.NotEmpty(t, desc)
	assert.Equal(t, 2, flaky.descCall)
}

func TestRetryDelayGrowsWithJitterBounds(t *testing.T) {
	cfg := RetryConfig{
		MaxRetries: 3,
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   250 * time.Millisecond,
		Multiplier: 2.0,
	}

	// Jitter adds at most a quarter of the capped delay.
	for i := 0; i < 50; i++ {
		d := cfg.delay(0)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.Less(t, d, 125*time.Millisecond)
	}

	// Growth is capped at MaxDelay before jitter applies.
	d := cfg.delay(2)
	assert.GreaterOrEqual(t, d, 250*time.Millisecond)
	assert.Less(t, d, 313*time.Millisecond)
}
