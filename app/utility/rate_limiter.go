package utility

import (
	"log"
	"sync"
	"time"
)

// AdaptiveRateLimiter paces outgoing shop API requests. The delay grows
// when the shop signals overload (HTTP 429) and slowly recovers after a
// run of successful requests.
type AdaptiveRateLimiter struct {
	mu                 sync.RWMutex
	currentDelay       time.Duration
	minDelay           time.Duration
	maxDelay           time.Duration
	successCount       int
	failureCount       int
	backoffMultiplier  float64
	recoveryMultiplier float64
	successThreshold   int
	lastAdjustmentTime time.Time
	adjustmentCooldown time.Duration
}

var (
	globalShopRateLimiter *AdaptiveRateLimiter
	onceShop              sync.Once
)

// NewAdaptiveRateLimiter creates a limiter starting at initialDelay and
// bounded by minDelay and maxDelay.
func NewAdaptiveRateLimiter(initialDelay, minDelay, maxDelay time.Duration) *AdaptiveRateLimiter {
	if initialDelay < minDelay {
		initialDelay = minDelay
	}
	if initialDelay > maxDelay {
		initialDelay = maxDelay
	}

	return &AdaptiveRateLimiter{
		currentDelay:       initialDelay,
		minDelay:           minDelay,
		maxDelay:           maxDelay,
		backoffMultiplier:  1.2,
		recoveryMultiplier: 0.9,
		successThreshold:   5,
		adjustmentCooldown: 10 * time.Second,
		lastAdjustmentTime: time.Now(),
	}
}

// GetShopRateLimiter returns the shared limiter for the shop API.
// Admin API installations usually throttle at a few requests per second,
// so start conservatively.
func GetShopRateLimiter() *AdaptiveRateLimiter {
	onceShop.Do(func() {
		globalShopRateLimiter = NewAdaptiveRateLimiter(
			100*time.Millisecond,
			50*time.Millisecond,
			5*time.Second,
		)
	})
	return globalShopRateLimiter
}

// Wait sleeps for the current delay.
func (rl *AdaptiveRateLimiter) Wait() {
	rl.mu.RLock()
	delay := rl.currentDelay
	rl.mu.RUnlock()

	time.Sleep(delay)
}

// GetCurrentDelay returns the current delay.
func (rl *AdaptiveRateLimiter) GetCurrentDelay() time.Duration {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return rl.currentDelay
}

// RecordSuccess counts a successful request and shortens the delay once
// enough consecutive successes have accumulated.
func (rl *AdaptiveRateLimiter) RecordSuccess() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.successCount++
	rl.failureCount = 0

	now := time.Now()
	if now.Sub(rl.lastAdjustmentTime) < rl.adjustmentCooldown {
		return
	}

	if rl.successCount >= rl.successThreshold {
		newDelay := time.Duration(float64(rl.currentDelay) * rl.recoveryMultiplier)
		if newDelay < rl.minDelay {
			newDelay = rl.minDelay
		}
		if newDelay != rl.currentDelay {
			rl.currentDelay = newDelay
			rl.lastAdjustmentTime = now
			rl.successCount = 0
		}
	}
}

// RecordFailure counts a failed request. Only HTTP 429 widens the
// delay; other errors (401, 404, 500) say nothing about throughput.
func (rl *AdaptiveRateLimiter) RecordFailure(statusCode int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.failureCount++
	rl.successCount = 0

	if statusCode != 429 {
		return
	}

	newDelay := time.Duration(float64(rl.currentDelay) * rl.backoffMultiplier)
	if newDelay > rl.maxDelay {
		newDelay = rl.maxDelay
	}
	if newDelay != rl.currentDelay {
		oldDelay := rl.currentDelay
		rl.currentDelay = newDelay
		rl.lastAdjustmentTime = time.Now()
		rl.failureCount = 0
		log.Printf("[RateLimiter] shop API throttled (429), delay %v -> %v", oldDelay, newDelay)
	}
}

// Reset puts the limiter back to its minimum delay.
func (rl *AdaptiveRateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.currentDelay = rl.minDelay
	rl.successCount = 0
	rl.failureCount = 0
	rl.lastAdjustmentTime = time.Now()
}

// GetStats returns the limiter's current counters for debugging.
func (rl *AdaptiveRateLimiter) GetStats() map[string]interface{} {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	return map[string]interface{}{
		"current_delay": rl.currentDelay.String(),
		"min_delay":     rl.minDelay.String(),
		"max_delay":     rl.maxDelay.String(),
		"success_count": rl.successCount,
		"failure_count": rl.failureCount,
	}
}
