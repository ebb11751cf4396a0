package extraction

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"LLMBridge/internal/apperr"
	"LLMBridge/internal/secure"
	"LLMBridge/pkg/circuitbreaker"
	"LLMBridge/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *secure.Store {
	t.Helper()
	s, err := secure.NewStore(filepath.Join(t.TempDir(), "temp_secure"), secure.WithLogger(logger.Nop()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func artifacts(t *testing.T, s *secure.Store) []string {
	t.Helper()
	entries, err := os.ReadDir(s.Dir())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestGateway_NormalizesExtractorOutput(t *testing.T) {
	s := newStore(t)
	var seen string
	ext := ExtractorFunc(func(ctx context.Context, path string) ([]byte, error) {
		seen = path
		data, err := s.ReadArtifact(path)
		require.NoError(t, err)
		assert.JSONEq(t, `{"export":true}`, string(data))
		return []byte(`{"identityTraits":{"profession":"Nurse"},"factualMemory":{"skills":["Go","SQL"]}}`), nil
	})

	p, err := NewGateway(s, ext, WithLogger(logger.Nop())).Extract(context.Background(), []byte(`{"export":true}`))
	require.NoError(t, err)

	assert.Equal(t, "Nurse", p.Role)
	assert.Equal(t, "Go, SQL", p.Expertise)
	assert.Equal(t, "Unknown", p.Location)
	assert.NoFileExists(t, seen)
	assert.Empty(t, artifacts(t, s))
}

func TestGateway_FailuresYieldFallback(t *testing.T) {
	tests := []struct {
		name string
		ext  ExtractorFunc
	}{
		{name: "error", ext: func(context.Context, string) ([]byte, error) {
			return nil, apperr.WrapExternal("run extractor", errors.New("exit status 1"))
		}},
		{name: "not json", ext: func(context.Context, string) ([]byte, error) {
			return []byte("Traceback (most recent call last)"), nil
		}},
		{name: "empty", ext: func(context.Context, string) ([]byte, error) {
			return nil, ErrEmptyOutput
		}},
		{name: "timeout", ext: func(ctx context.Context, _ string) ([]byte, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			g := NewGateway(s, tt.ext, WithTimeout(20*time.Millisecond), WithLogger(logger.Nop()))

			p, err := g.Extract(context.Background(), []byte(`{}`))
			require.NoError(t, err)
			assert.Equal(t, FallbackProfile(), p)
			assert.Empty(t, artifacts(t, s))
		})
	}
}

func TestGateway_ArtifactFailureIsReturned(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	s, err := secure.NewStore(filepath.Join(blocker, "secure"), secure.WithLogger(logger.Nop()))
	require.NoError(t, err)

	called := false
	ext := ExtractorFunc(func(context.Context, string) ([]byte, error) {
		called = true
		return nil, nil
	})

	_, err = NewGateway(s, ext, WithLogger(logger.Nop())).Extract(context.Background(), []byte(`{}`))
	assert.ErrorIs(t, err, apperr.ErrIO)
	assert.False(t, called)
}

func TestGateway_OpenCircuitSkipsExtractor(t *testing.T) {
	s := newStore(t)
	var calls atomic.Int32
	ext := ExtractorFunc(func(context.Context, string) ([]byte, error) {
		calls.Add(1)
		return []byte("garbage"), nil
	})
	cb := circuitbreaker.New(2, 1, time.Minute)
	g := NewGateway(s, ext, WithCircuitBreaker(cb), WithLogger(logger.Nop()))

	for i := 0; i < 4; i++ {
		p, err := g.Extract(context.Background(), []byte(`{}`))
		require.NoError(t, err)
		assert.Equal(t, FallbackProfile(), p)
	}

	assert.Equal(t, int32(2), calls.Load(), "extractor skipped once the circuit opened")
	assert.Equal(t, circuitbreaker.Open, cb.State())
	assert.Empty(t, artifacts(t, s))
}
