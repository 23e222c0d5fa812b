package circuitbreaker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/modelscout/modelscout/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

// State is the classic three-state breaker state.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "Closed"
	case Open:
		return "Open"
	case HalfOpen:
		return "HalfOpen"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

const (
	keyPrefix = "modelscout:breaker:"

	defaultFailureThreshold = 5
	defaultSuccessThreshold = 3
	defaultOpenTimeout      = 30 * time.Second
	opTimeout               = 1 * time.Second
)

// Lua keeps count updates and state transitions atomic, so multiple
// instances sharing one redis agree on the breaker state.
const (
	// KEYS: state, failure_count, success_count, last_change
	// ARGV: success threshold, now (unix seconds)
	successScript = `
		local state = tonumber(redis.call('GET', KEYS[1]) or '0')
		redis.call('SET', KEYS[2], 0)

		if state == 2 then
			local count = redis.call('INCR', KEYS[3])
			if count >= tonumber(ARGV[1]) then
				redis.call('SET', KEYS[1], 0)
				redis.call('SET', KEYS[3], 0)
				redis.call('SET', KEYS[4], ARGV[2])
				return 1
			end
		end
		return 0
	`

	// KEYS: state, failure_count, last_failure, last_change, success_count
	// ARGV: failure threshold, now (unix seconds)
	failureScript = `
		local state = tonumber(redis.call('GET', KEYS[1]) or '0')
		local failures = redis.call('INCR', KEYS[2])
		redis.call('SET', KEYS[3], ARGV[2])

		if (state == 0 and failures >= tonumber(ARGV[1])) or state == 2 then
			redis.call('SET', KEYS[1], 1)
			redis.call('SET', KEYS[4], ARGV[2])
			redis.call('SET', KEYS[5], 0)
			return 1
		end
		return 0
	`
)

// CircuitBreaker protects the ranking backend from hammering an upstream
// that is already failing. State lives in redis so all instances of the
// service share one view of the backend's health.
type CircuitBreaker struct {
	client      *redis.Client
	serviceName string

	failureThreshold int
	successThreshold int
	openTimeout      time.Duration
}

// New builds a breaker for the named service from the ranker configuration.
func New(client *redis.Client, serviceName string, config models.CircuitBreakerConfig) *CircuitBreaker {
	cb := &CircuitBreaker{
		client:           client,
		serviceName:      serviceName,
		failureThreshold: config.FailureThreshold,
		successThreshold: config.SuccessThreshold,
		openTimeout:      time.Duration(config.TimeoutMs) * time.Millisecond,
	}
	if cb.failureThreshold <= 0 {
		cb.failureThreshold = defaultFailureThreshold
	}
	if cb.successThreshold <= 0 {
		cb.successThreshold = defaultSuccessThreshold
	}
	if cb.openTimeout <= 0 {
		cb.openTimeout = defaultOpenTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		fiberlog.Errorf("[breaker] redis unreachable for %s: %v", serviceName, err)
	}

	cb.initState(ctx)
	return cb
}

func (cb *CircuitBreaker) key(suffix string) string {
	return keyPrefix + cb.serviceName + ":" + suffix
}

func (cb *CircuitBreaker) initState(ctx context.Context) {
	exists, err := cb.client.Exists(ctx, cb.key("state")).Result()
	if err != nil {
		fiberlog.Errorf("[breaker] failed to check state for %s: %v", cb.serviceName, err)
		return
	}
	if exists > 0 {
		return
	}

	pipe := cb.client.Pipeline()
	pipe.Set(ctx, cb.key("state"), int(Closed), 0)
	pipe.Set(ctx, cb.key("failure_count"), 0, 0)
	pipe.Set(ctx, cb.key("success_count"), 0, 0)
	pipe.Set(ctx, cb.key("last_change"), time.Now().Unix(), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		fiberlog.Errorf("[breaker] failed to initialize state for %s: %v", cb.serviceName, err)
	}
}

// CanExecute reports whether a call may proceed. Redis errors fail open:
// an unreachable breaker must not take down a healthy backend.
func (cb *CircuitBreaker) CanExecute() bool {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	state, err := cb.getState(ctx)
	if err != nil {
		fiberlog.Errorf("[breaker] failed to read state for %s, allowing call: %v", cb.serviceName, err)
		return true
	}

	switch state {
	case Closed, HalfOpen:
		return true
	case Open:
		lastFailure, err := cb.client.Get(ctx, cb.key("last_failure")).Int64()
		if err != nil {
			return false
		}
		if time.Since(time.Unix(lastFailure, 0)) > cb.openTimeout {
			return cb.transition(ctx, HalfOpen)
		}
		return false
	default:
		return false
	}
}

// RecordSuccess resets the failure count and, in half-open state, counts
// toward closing the circuit.
func (cb *CircuitBreaker) RecordSuccess() {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	keys := []string{
		cb.key("state"),
		cb.key("failure_count"),
		cb.key("success_count"),
		cb.key("last_change"),
	}
	result, err := cb.client.Eval(ctx, successScript, keys, cb.successThreshold, time.Now().Unix()).Int()
	if err != nil {
		fiberlog.Errorf("[breaker] failed to record success for %s: %v", cb.serviceName, err)
		return
	}
	if result == 1 {
		fiberlog.Infof("[breaker] %s closed after recovery", cb.serviceName)
	}
}

// RecordFailure counts a failed call and opens the circuit at the
// threshold. A failure in half-open state reopens immediately.
func (cb *CircuitBreaker) RecordFailure() {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	keys := []string{
		cb.key("state"),
		cb.key("failure_count"),
		cb.key("last_failure"),
		cb.key("last_change"),
		cb.key("success_count"),
	}
	result, err := cb.client.Eval(ctx, failureScript, keys, cb.failureThreshold, time.Now().Unix()).Int()
	if err != nil {
		fiberlog.Errorf("[breaker] failed to record failure for %s: %v", cb.serviceName, err)
		return
	}
	if result == 1 {
		fiberlog.Warnf("[breaker] %s opened after repeated failures", cb.serviceName)
	}
}

// GetState reads the current state, defaulting to Closed on redis errors.
func (cb *CircuitBreaker) GetState() State {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	state, err := cb.getState(ctx)
	if err != nil {
		return Closed
	}
	return state
}

func (cb *CircuitBreaker) getState(ctx context.Context) (State, error) {
	raw, err := cb.client.Get(ctx, cb.key("state")).Result()
	if err != nil {
		return Closed, fmt.Errorf("failed to read breaker state: %w", err)
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return Closed, fmt.Errorf("invalid breaker state %q: %w", raw, err)
	}
	return State(value), nil
}

func (cb *CircuitBreaker) transition(ctx context.Context, newState State) bool {
	pipe := cb.client.Pipeline()
	pipe.Set(ctx, cb.key("state"), int(newState), 0)
	pipe.Set(ctx, cb.key("last_change"), time.Now().Unix(), 0)
	if newState != HalfOpen {
		pipe.Set(ctx, cb.key("success_count"), 0, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		fiberlog.Errorf("[breaker] %s transition to %s failed: %v", cb.serviceName, newState, err)
		return false
	}
	fiberlog.Debugf("[breaker] %s transitioned to %s", cb.serviceName, newState)
	return true
}
