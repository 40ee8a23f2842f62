package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisabledWhenZero(t *testing.T) {
	rl := New(0, 0)
	defer rl.Stop()

	for i := 0; i < 100; i++ {
		assert.True(t, rl.Allow("user"))
	}
}

func TestBurstThenThrottled(t *testing.T) {
	rl := New(60, 2)
	defer rl.Stop()

	assert.True(t, rl.Allow("user"))
	assert.True(t, rl.Allow("user"))
	assert.False(t, rl.Allow("user"))
}

func TestPerUserIndependence(t *testing.T) {
	rl := New(60, 1)
	defer rl.Stop()

	assert.True(t, rl.Allow("user_a"))
	assert.True(t, rl.Allow("user_b"))
	assert.False(t, rl.Allow("user_a"))
}
