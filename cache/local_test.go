package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/voicemesh/core"
)

// Interface compliance (compile-time assertions)
var (
	_ core.Cache = (*Local)(nil)
	_ core.Cache = (*Tiered)(nil)
)

func TestLocal_SetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	l := NewLocal()

	l.Set(ctx, "k", []byte("v"), time.Minute)
	got, ok := l.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	// returned slice is a copy
	got[0] = 'x'
	again, _ := l.Get(ctx, "k")
	assert.Equal(t, []byte("v"), again)
}

func TestLocal_MissOnAbsentKey(t *testing.T) {
	l := NewLocal()
	_, ok := l.Get(context.Background(), "nope")
	assert.False(t, ok)
}

func TestLocal_ExpiryEvictsOnRead(t *testing.T) {
	ctx := context.Background()
	l := NewLocal()
	now := time.Now()
	l.now = func() time.Time { return now }

	l.Set(ctx, "short", []byte("v"), 10*time.Second)

	// delay > ttl: entry must be absent
	now = now.Add(11 * time.Second)
	_, ok := l.Get(ctx, "short")
	assert.False(t, ok)
	assert.Zero(t, l.Len())
}

func TestLocal_SetSweepsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	l := NewLocal()
	now := time.Now()
	l.now = func() time.Time { return now }

	l.Set(ctx, "a", []byte("1"), time.Second)
	l.Set(ctx, "b", []byte("2"), time.Hour)
	now = now.Add(2 * time.Second)

	// write triggers the opportunistic sweep
	l.Set(ctx, "c", []byte("3"), time.Hour)
	assert.Equal(t, 2, l.Len())
	_, ok := l.Get(ctx, "a")
	assert.False(t, ok)
}

func TestLocal_Delete(t *testing.T) {
	ctx := context.Background()
	l := NewLocal()
	l.Set(ctx, "k", []byte("v"), time.Minute)
	l.Delete(ctx, "k")
	_, ok := l.Get(ctx, "k")
	assert.False(t, ok)
}

func TestLocal_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	l := NewLocal()
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(n byte) {
			defer func() { done <- struct{}{} }()
			key := string(rune('a' + n))
			for j := 0; j < 100; j++ {
				l.Set(ctx, key, []byte{n}, time.Minute)
				l.Get(ctx, key)
				l.Delete(ctx, key)
			}
		}(byte(i))
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
