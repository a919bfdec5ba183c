package embeddings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func validConfig() Config {
	return Config{
		BaseURL:   "http://localhost:8080/v1",
		Model:     "text-embedding-3-small",
		BatchSize: 100,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"valid", func(c *Config) {}, true},
		{"rate limited", func(c *Config) { c.RequestsPerSecond = 2 }, true},
		{"missing base url", func(c *Config) { c.BaseURL = "" }, false},
		{"missing model", func(c *Config) { c.Model = "" }, false},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }, false},
		{"negative rate", func(c *Config) { c.RequestsPerSecond = -1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

func TestNewService(t *testing.T) {
	svc, err := NewService(validConfig())
	require.NoError(t, err)

	assert.NotNil(t, svc.Embedder())
	assert.Equal(t, "text-embedding-3-small", svc.Model())
}

func TestNewServiceInvalidConfig(t *testing.T) {
	_, err := NewService(Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEmbedEmptyInput(t *testing.T) {
	svc, err := NewService(validConfig())
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = svc.Embed(context.Background(), []string{})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

// fakeClient counts calls without touching the network.
type fakeClient struct {
	calls int
}

func (f *fakeClient) CreateEmbedding(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2}
	}
	return out, nil
}

func TestLimitedClientWaits(t *testing.T) {
	fake := &fakeClient{}
	client := &limitedClient{
		inner:   fake,
		limiter: rate.NewLimiter(rate.Limit(50), 1),
	}

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.CreateEmbedding(context.Background(), []string{"chunk"})
		require.NoError(t, err)
	}

	// Two of the three calls must have waited for the 50/s limiter.
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Equal(t, 3, fake.calls)
}

func TestLimitedClientHonorsCancellation(t *testing.T) {
	client := &limitedClient{
		inner:   &fakeClient{},
		limiter: rate.NewLimiter(rate.Limit(0.001), 1),
	}

	// Exhaust the burst token, then cancel while waiting.
	_, err := client.CreateEmbedding(context.Background(), []string{"a"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = client.CreateEmbedding(ctx, []string{"b"})
	assert.Error(t, err)
}
