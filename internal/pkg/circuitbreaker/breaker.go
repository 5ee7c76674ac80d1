package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/piresc/trackmybus/internal/pkg/logger"
)

// State represents the circuit breaker state
type State int

const (
	// StateClosed allows calls to pass through
	StateClosed State = iota
	// StateOpen rejects calls immediately
	StateOpen
	// StateHalfOpen lets a limited number of trial calls through
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

var (
	ErrOpen            = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// Config holds circuit breaker configuration
type Config struct {
	Name             string
	MaxRequests      uint32        // trial calls allowed while half-open
	Interval         time.Duration // closed-state counter reset period
	Timeout          time.Duration // open duration before probing
	FailureThreshold uint32        // consecutive failures that open the breaker
	SuccessThreshold uint32        // consecutive trial successes that close it
	OnStateChange    func(name string, from, to State)
	IsFailure        func(err error) bool
}

// DefaultConfig returns a default circuit breaker configuration
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 1,
	}
}

// Counts holds the counters of the current window
type Counts struct {
	Requests             uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// Breaker implements the circuit breaker pattern
type Breaker struct {
	config Config
	now    func() time.Time

	mu     sync.Mutex
	state  State
	counts Counts
	expiry time.Time
}

// New creates a new circuit breaker
func New(config Config) *Breaker {
	if config.MaxRequests == 0 {
		config.MaxRequests = 1
	}
	if config.SuccessThreshold == 0 {
		config.SuccessThreshold = 1
	}
	if config.MaxRequests < config.SuccessThreshold {
		config.MaxRequests = config.SuccessThreshold
	}
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 5
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}
	b := &Breaker{config: config, now: time.Now, state: StateClosed}
	b.expiry = b.nextInterval()
	return b
}

// Execute runs fn unless the breaker is open
func (b *Breaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := b.before(); err != nil {
		return err
	}
	err := fn(ctx)
	b.after(err)
	return err
}

func (b *Breaker) nextInterval() time.Time {
	if b.config.Interval <= 0 {
		return time.Time{}
	}
	return b.now().Add(b.config.Interval)
}

func (b *Breaker) before() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	switch b.state {
	case StateClosed:
		if !b.expiry.IsZero() && b.expiry.Before(now) {
			b.counts = Counts{}
			b.expiry = b.nextInterval()
		}
	case StateOpen:
		if b.expiry.After(now) {
			return ErrOpen
		}
		b.setState(StateHalfOpen)
	case StateHalfOpen:
		if b.counts.Requests >= b.config.MaxRequests {
			return ErrTooManyRequests
		}
	}

	b.counts.Requests++
	return nil
}

func (b *Breaker) after(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.config.IsFailure(err) {
		b.counts.TotalFailures++
		b.counts.ConsecutiveFailures++
		b.counts.ConsecutiveSuccesses = 0
		if b.state == StateHalfOpen ||
			(b.state == StateClosed && b.counts.ConsecutiveFailures >= b.config.FailureThreshold) {
			b.setState(StateOpen)
		}
		return
	}

	b.counts.ConsecutiveSuccesses++
	b.counts.ConsecutiveFailures = 0
	if b.state == StateHalfOpen && b.counts.ConsecutiveSuccesses >= b.config.SuccessThreshold {
		b.setState(StateClosed)
	}
}

// setState must be called with mu held
func (b *Breaker) setState(state State) {
	if b.state == state {
		return
	}
	prev := b.state
	failures := b.counts.ConsecutiveFailures
	b.state = state
	b.counts = Counts{}

	switch state {
	case StateOpen:
		b.expiry = b.now().Add(b.config.Timeout)
	case StateClosed:
		b.expiry = b.nextInterval()
	default:
		b.expiry = time.Time{}
	}

	logger.Warn("Circuit breaker state changed",
		logger.String("name", b.config.Name),
		logger.String("from", prev.String()),
		logger.String("to", state.String()),
		logger.Int("consecutive_failures", int(failures)))

	if b.config.OnStateChange != nil {
		b.config.OnStateChange(b.config.Name, prev, state)
	}
}

// State returns the current state of the circuit breaker
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Counts returns the counters of the current window
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

// Name returns the circuit breaker name
func (b *Breaker) Name() string {
	return b.config.Name
}
