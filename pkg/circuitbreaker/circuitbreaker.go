// Package circuitbreaker implements the circuit breaker pattern.
// It keeps a flaky cache backend from slowing down every profile read:
// after enough consecutive failures the breaker opens and callers skip
// the cache until it recovers.
// No external dependencies - uses only standard library.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State represents the current state of the circuit breaker.
type State int

const (
	// StateClosed is the normal state - calls are allowed through.
	StateClosed State = iota
	// StateOpen is the failure state - calls are blocked.
	StateOpen
	// StateHalfOpen is the recovery state - a probe call is allowed.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned when the circuit is open and calls are blocked.
var ErrOpen = errors.New("circuit breaker is open")

// Config holds circuit breaker configuration.
type Config struct {
	// Name identifies this breaker in logs.
	Name string

	// FailureThreshold is the number of consecutive failures before opening.
	FailureThreshold int

	// SuccessThreshold is the number of consecutive successes in half-open
	// state before closing again.
	SuccessThreshold int

	// CoolDown is how long the breaker stays open before probing.
	CoolDown time.Duration

	// OnStateChange is called when the state changes.
	OnStateChange func(name string, from, to State)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		CoolDown:         30 * time.Second,
	}
}

// Breaker implements the circuit breaker pattern.
type Breaker struct {
	cfg Config

	mu            sync.Mutex
	state         State
	consecFails   int
	consecOKs     int
	openedAt      time.Time
	halfOpenProbe bool
}

// New creates a Breaker in the closed state.
func New(cfg Config) *Breaker {
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = 1
	}
	if cfg.SuccessThreshold < 1 {
		cfg.SuccessThreshold = 1
	}
	if cfg.CoolDown <= 0 {
		cfg.CoolDown = 30 * time.Second
	}
	return &Breaker{cfg: cfg}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentState(time.Now())
}

// Do runs fn if the breaker allows it and records the outcome.
func (b *Breaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.allow(); err != nil {
		return err
	}
	err := fn(ctx)
	b.record(err == nil)
	return err
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	switch b.currentState(now) {
	case StateClosed:
		return nil
	case StateHalfOpen:
		if b.halfOpenProbe {
			return ErrOpen
		}
		b.halfOpenProbe = true
		return nil
	default:
		return ErrOpen
	}
}

func (b *Breaker) record(ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.currentState(time.Now())
	b.halfOpenProbe = false

	if ok {
		b.consecFails = 0
		b.consecOKs++
		if state == StateHalfOpen && b.consecOKs >= b.cfg.SuccessThreshold {
			b.transition(state, StateClosed)
		}
		return
	}

	b.consecOKs = 0
	b.consecFails++
	if state == StateHalfOpen || b.consecFails >= b.cfg.FailureThreshold {
		b.openedAt = time.Now()
		b.transition(state, StateOpen)
	}
}

// currentState resolves the open-to-half-open transition lazily.
// Callers must hold b.mu.
func (b *Breaker) currentState(now time.Time) State {
	if b.state == StateOpen && now.Sub(b.openedAt) >= b.cfg.CoolDown {
		b.transition(StateOpen, StateHalfOpen)
	}
	return b.state
}

func (b *Breaker) transition(from, to State) {
	if from == to {
		return
	}
	b.state = to
	if to != StateHalfOpen {
		b.consecFails = 0
		b.consecOKs = 0
	}
	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(b.cfg.Name, from, to)
	}
}
