package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllow_WithinBurst(t *testing.T) {
	krl := New(1, 3)
	defer krl.Stop()

	assert.True(t, krl.Allow("client-a"))
	assert.True(t, krl.Allow("client-a"))
	assert.True(t, krl.Allow("client-a"))
	assert.False(t, krl.Allow("client-a"))
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	krl := New(1, 1)
	defer krl.Stop()

	assert.True(t, krl.Allow("client-a"))
	assert.False(t, krl.Allow("client-a"))

	// A different key has its own bucket.
	assert.True(t, krl.Allow("client-b"))
}

func TestWait_RespectsContext(t *testing.T) {
	krl := New(0.1, 1)
	defer krl.Stop()

	require.True(t, krl.Allow("client-a"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := krl.Wait(ctx, "client-a")
	assert.Error(t, err)
}

func TestEvictIdle(t *testing.T) {
	krl := New(1, 1)
	defer krl.Stop()

	krl.Allow("client-a")
	krl.Allow("client-b")
	require.Equal(t, 2, krl.Len())

	// Nothing is idle yet.
	krl.evictIdle(time.Now())
	assert.Equal(t, 2, krl.Len())

	// Far enough in the future, everything is idle.
	krl.evictIdle(time.Now().Add(idleTTL + time.Second))
	assert.Zero(t, krl.Len())
}

func TestStop_Idempotent(t *testing.T) {
	krl := New(1, 1)
	krl.Stop()
	krl.Stop()
}
