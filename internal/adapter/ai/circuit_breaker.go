package ai

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fairyhunter13/interview-engine/internal/adapter/observability"
	"github.com/fairyhunter13/interview-engine/internal/domain"
)

// CircuitState represents the state of a circuit breaker
type CircuitState int

const (
	// CircuitClosed lets every call through.
	CircuitClosed CircuitState = iota
	// CircuitOpen short-circuits calls until the recovery timeout elapses.
	CircuitOpen
	// CircuitHalfOpen lets a single probe through.
	CircuitHalfOpen
)

func (cs CircuitState) String() string {
	switch cs {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Breaker guards a model provider. It opens after failureThreshold
// consecutive transport failures and, once recoveryTimeout has passed,
// admits one probe whose outcome closes or re-opens it.
type Breaker struct {
	mu               sync.Mutex
	name             string
	failureThreshold int
	recoveryTimeout  time.Duration
	state            CircuitState
	failures         int
	openedAt         time.Time
	probing          bool
	now              func() time.Time
}

// NewBreaker creates a closed breaker. A threshold below 1 disables it.
func NewBreaker(name string, failureThreshold int, recoveryTimeout time.Duration) *Breaker {
	return &Breaker{
		name:             name,
		failureThreshold: failureThreshold,
		recoveryTimeout:  recoveryTimeout,
		state:            CircuitClosed,
		now:              time.Now,
	}
}

// Allow reports whether a call may proceed; it returns ErrCircuitOpen otherwise.
func (b *Breaker) Allow() error {
	if b == nil || b.failureThreshold < 1 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitOpen:
		if b.now().Sub(b.openedAt) < b.recoveryTimeout {
			return fmt.Errorf("op=ai.Breaker.Allow: %w: %s", domain.ErrCircuitOpen, b.name)
		}
		b.transition(CircuitHalfOpen)
		b.probing = true
		return nil
	case CircuitHalfOpen:
		if b.probing {
			return fmt.Errorf("op=ai.Breaker.Allow: %w: %s probe in flight", domain.ErrCircuitOpen, b.name)
		}
		b.probing = true
	}
	return nil
}

// RecordSuccess closes the circuit and clears the failure streak.
func (b *Breaker) RecordSuccess() {
	if b == nil || b.failureThreshold < 1 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.probing = false
	if b.state != CircuitClosed {
		b.transition(CircuitClosed)
	}
}

// RecordFailure counts a transport failure; a failed probe re-opens immediately.
func (b *Breaker) RecordFailure() {
	if b == nil || b.failureThreshold < 1 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.probing = false
	if b.state == CircuitHalfOpen || b.failures >= b.failureThreshold {
		b.openedAt = b.now()
		if b.state != CircuitOpen {
			b.transition(CircuitOpen)
		}
	}
}

// Abandon frees an in-flight probe without judging the provider, for calls
// that ended before the provider answered or were rejected as bad requests.
func (b *Breaker) Abandon() {
	if b == nil || b.failureThreshold < 1 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.probing = false
}

// State returns the current state.
func (b *Breaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) transition(to CircuitState) {
	slog.Warn("circuit breaker state change",
		slog.String("name", b.name),
		slog.String("from", b.state.String()),
		slog.String("to", to.String()),
		slog.Int("failure_count", b.failures))
	b.state = to
	observability.RecordCircuitBreakerStatus(b.name, int(to))
}
