package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_ClientLimiter_ShouldAllowBurstThenAskToWait(t *testing.T) {
	limiter := newClientLimiter(1, 2)
	now := time.Now()

	ok, _ := limiter.allow("10.0.0.1", now)
	assert.True(t, ok)
	ok, _ = limiter.allow("10.0.0.1", now)
	assert.True(t, ok)

	ok, wait := limiter.allow("10.0.0.1", now)
	assert.False(t, ok)
	assert.InDelta(t, time.Second, wait, float64(10*time.Millisecond))

	ok, _ = limiter.allow("10.0.0.1", now.Add(time.Second))
	assert.True(t, ok)
}

func Test_ClientLimiter_ShouldKeepClientsApart(t *testing.T) {
	limiter := newClientLimiter(1, 1)
	now := time.Now()

	ok, _ := limiter.allow("10.0.0.1", now)
	assert.True(t, ok)
	ok, _ = limiter.allow("10.0.0.2", now)
	assert.True(t, ok)
	ok, _ = limiter.allow("10.0.0.1", now)
	assert.False(t, ok)
}

func Test_ClientLimiter_ShouldSweepIdleClients(t *testing.T) {
	limiter := newClientLimiter(1, 1)
	now := time.Now()

	limiter.allow("10.0.0.1", now)
	limiter.allow("10.0.0.2", now.Add(2*time.Minute))

	limiter.sweep(now.Add(4 * time.Minute))

	assert.Equal(t, 1, limiter.size())
}
