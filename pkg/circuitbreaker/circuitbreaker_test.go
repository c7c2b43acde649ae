package circuitbreaker

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreakerOpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker(Settings{
		Name:        "test",
		MaxFailures: 2,
		Timeout:     time.Minute,
	})

	failing := func() error { return fmt.Errorf("boom") }

	assert.Error(t, cb.Execute(failing))
	assert.Error(t, cb.Execute(failing))

	// The breaker is now open: calls are rejected without running fn.
	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}

func TestCircuitBreakerRecoversAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(Settings{
		Name:        "test",
		MaxFailures: 1,
		Timeout:     10 * time.Millisecond,
	})

	assert.Error(t, cb.Execute(func() error { return fmt.Errorf("boom") }))

	time.Sleep(20 * time.Millisecond)

	// Half-open probe succeeds and closes the breaker.
	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.NoError(t, cb.Execute(func() error { return nil }))
}

func TestCircuitBreakerResetsFailureCountOnSuccess(t *testing.T) {
	cb := NewCircuitBreaker(Settings{
		Name:        "test",
		MaxFailures: 2,
		Timeout:     time.Minute,
	})

	assert.Error(t, cb.Execute(func() error { return fmt.Errorf("boom") }))
	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.Error(t, cb.Execute(func() error { return fmt.Errorf("boom") }))

	// Still closed: the success in between reset the count.
	called := false
	assert.NoError(t, cb.Execute(func() error {
		called = true
		return nil
	}))
	assert.True(t, called)
}
