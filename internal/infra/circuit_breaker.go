package infra

import (
	"errors"
	"sync"
	"time"
)

// circuit_breaker.go — three-state breaker guarding the remote factor source.
// Closed passes calls through. FailureThreshold consecutive failures trip it
// Open, where every call fast-fails without touching the remote. After
// OpenTimeout the next caller probes (Half-Open); SuccessThreshold straight
// probe successes close the breaker again, a single probe failure reopens it.

// CBState is the breaker's position.
type CBState int

const (
	CBClosed CBState = iota
	CBOpen
	CBHalfOpen
)

// String names the state for health payloads and logs.
func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned by Execute while the breaker fast-fails.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig tunes the breaker; zero values take the defaults.
type CircuitBreakerConfig struct {
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
}

// DefaultCBConfig fits a catalog source that is polled at most a few times a
// day: trip after 5 straight failures, probe again after a minute.
func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      60 * time.Second,
	}
}

// CircuitBreaker is safe for concurrent use.
type CircuitBreaker struct {
	mu             sync.Mutex
	state          CBState
	failures       int // consecutive, while closed
	probeSuccesses int // consecutive, while half-open
	openedAt       time.Time

	failureThreshold int
	successThreshold int
	openTimeout      time.Duration
}

// NewCircuitBreaker returns a closed breaker.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCBConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	return &CircuitBreaker{
		failureThreshold: cfg.FailureThreshold,
		successThreshold: cfg.SuccessThreshold,
		openTimeout:      cfg.OpenTimeout,
	}
}

// State reports the current position, moving Open to Half-Open once the
// timeout has elapsed.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.stateLocked()
}

func (cb *CircuitBreaker) stateLocked() CBState {
	if cb.state == CBOpen && time.Since(cb.openedAt) >= cb.openTimeout {
		cb.state = CBHalfOpen
		cb.probeSuccesses = 0
	}
	return cb.state
}

// Execute runs fn unless the breaker is open, then feeds the outcome back
// into the state machine. The breaker's own error is distinguishable from
// fn's via errors.Is(err, ErrCircuitOpen).
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	if cb.stateLocked() == CBOpen {
		cb.mu.Unlock()
		return ErrCircuitOpen
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.recordFailure()
		return err
	}
	cb.recordSuccess()
	return nil
}

func (cb *CircuitBreaker) recordFailure() {
	switch cb.state {
	case CBClosed:
		cb.failures++
		if cb.failures >= cb.failureThreshold {
			cb.trip()
		}
	case CBHalfOpen:
		cb.trip()
	}
}

// trip opens the breaker and restarts the timeout clock.
func (cb *CircuitBreaker) trip() {
	cb.state = CBOpen
	cb.openedAt = time.Now()
	cb.failures = 0
	cb.probeSuccesses = 0
}

func (cb *CircuitBreaker) recordSuccess() {
	switch cb.state {
	case CBClosed:
		cb.failures = 0
	case CBHalfOpen:
		cb.probeSuccesses++
		if cb.probeSuccesses >= cb.successThreshold {
			cb.state = CBClosed
			cb.failures = 0
			cb.probeSuccesses = 0
		}
	}
}
