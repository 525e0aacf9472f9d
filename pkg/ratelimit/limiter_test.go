package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManagerEnforcesInterval(t *testing.T) {
	m := NewManager()
	key := Key{Provider: "openai", Role: "summary"}

	start := time.Now()
	require := assert.New(t)

	require.NoError(m.Wait(context.Background(), key, 50*time.Millisecond))
	require.NoError(m.Wait(context.Background(), key, 50*time.Millisecond))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
}

func TestManagerKeysAreIndependent(t *testing.T) {
	m := NewManager()
	a := Key{Provider: "anthropic", Role: "writing"}
	b := Key{Provider: "gemini", Role: "summary"}

	assert.NoError(t, m.Wait(context.Background(), a, time.Hour))
	// A different key must not be blocked by a's long interval.
	done := make(chan struct{})
	go func() {
		_ = m.Wait(context.Background(), b, time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("independent key was blocked by unrelated limiter")
	}
}

func TestManagerRespectsContextCancellation(t *testing.T) {
	m := NewManager()
	key := Key{Provider: "openai", Role: "summary"}
	assert.NoError(t, m.Wait(context.Background(), key, time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := m.Wait(ctx, key, time.Hour)
	assert.Error(t, err)
}
