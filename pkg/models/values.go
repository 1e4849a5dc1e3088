package models

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MaxNameLength        = 200
	MaxDescriptionLength = 1000
	MinPriority          = 1
	MaxPriority          = 10
	DefaultPriority      = 5
	MaxRetryAttempts     = 10
	MaxExecutionOrder    = 10000
)

// NewID generates a time-ordered identifier for persisted entities.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}

	return id.String()
}

// ValidateID rejects blank identifiers.
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: identifier cannot be empty", ErrInvalidID)
	}

	return nil
}

// normalizeName trims and enforces the shared name rules.
func normalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}

	if len([]rune(trimmed)) > MaxNameLength {
		return "", fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, MaxNameLength)
	}

	return trimmed, nil
}

func normalizeDescription(description string) (string, error) {
	trimmed := strings.TrimSpace(description)
	if len([]rune(trimmed)) > MaxDescriptionLength {
		return "", fmt.Errorf("%w: description exceeds %d characters", ErrInvalidDescription, MaxDescriptionLength)
	}

	return trimmed, nil
}

// Position is a node's location on the editing canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPosition rejects NaN and infinite coordinates.
func NewPosition(x, y float64) (Position, error) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return Position{}, fmt.Errorf("%w: coordinates must be finite (%v, %v)", ErrInvalidPosition, x, y)
	}

	return Position{X: x, Y: y}, nil
}

// BackoffStrategy controls how the delay grows between retry attempts.
type BackoffStrategy string

const (
	BackoffFixed       BackoffStrategy = "fixed"
	BackoffLinear      BackoffStrategy = "linear"
	BackoffExponential BackoffStrategy = "exponential"
)

// RetryPolicy describes retry-attempt limits and backoff behavior for an action.
type RetryPolicy struct {
	MaxAttempts  int             `json:"max_attempts"  yaml:"max_attempts"  validate:"gte=0,lte=10"`
	Strategy     BackoffStrategy `json:"strategy"      yaml:"strategy"      validate:"omitempty,oneof=fixed linear exponential"`
	InitialDelay time.Duration   `json:"initial_delay" yaml:"initial_delay" validate:"gte=0"`
	MaxDelay     time.Duration   `json:"max_delay"     yaml:"max_delay"     validate:"gte=0"`
}

// DefaultRetryPolicy is assigned to new action nodes.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		Strategy:     BackoffExponential,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
	}
}

// NewRetryPolicy builds a validated retry policy.
func NewRetryPolicy(maxAttempts int, strategy BackoffStrategy, initialDelay, maxDelay time.Duration) (RetryPolicy, error) {
	policy := RetryPolicy{
		MaxAttempts:  maxAttempts,
		Strategy:     strategy,
		InitialDelay: initialDelay,
		MaxDelay:     maxDelay,
	}

	return policy, policy.Validate()
}

// Validate checks the policy bounds.
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 0 || p.MaxAttempts > MaxRetryAttempts {
		return fmt.Errorf("%w: max attempts must be between 0 and %d, got %d", ErrInvalidRetryPolicy, MaxRetryAttempts, p.MaxAttempts)
	}

	switch p.Strategy {
	case BackoffFixed, BackoffLinear, BackoffExponential:
	default:
		return fmt.Errorf("%w: unknown backoff strategy %q", ErrInvalidRetryPolicy, p.Strategy)
	}

	if p.InitialDelay < 0 || p.MaxDelay < 0 {
		return fmt.Errorf("%w: delays cannot be negative", ErrInvalidRetryPolicy)
	}

	if p.MaxDelay > 0 && p.MaxDelay < p.InitialDelay {
		return fmt.Errorf("%w: max delay %s is shorter than initial delay %s", ErrInvalidRetryPolicy, p.MaxDelay, p.InitialDelay)
	}

	return nil
}

// DelayFor returns the wait before the given retry attempt (1-based), capped by MaxDelay.
func (p RetryPolicy) DelayFor(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}

	var delay time.Duration

	switch p.Strategy {
	case BackoffLinear:
		delay = p.InitialDelay * time.Duration(attempt)
	case BackoffExponential:
		delay = p.InitialDelay
		for i := 1; i < attempt; i++ {
			delay *= 2
			if p.MaxDelay > 0 && delay >= p.MaxDelay {
				break
			}
		}
	default:
		delay = p.InitialDelay
	}

	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}

	return delay
}

// RACI encodes the Responsible/Accountable/Consulted/Informed assignment of an action.
type RACI struct {
	Responsible []string `json:"responsible"`
	Accountable []string `json:"accountable,omitempty"`
	Consulted   []string `json:"consulted,omitempty"`
	Informed    []string `json:"informed,omitempty"`
}

// NewRACI builds a validated RACI assignment. At least one party must be
// responsible and at most one may be accountable.
func NewRACI(responsible, accountable, consulted, informed []string) (RACI, error) {
	raci := RACI{
		Responsible: cleanParties(responsible),
		Accountable: cleanParties(accountable),
		Consulted:   cleanParties(consulted),
		Informed:    cleanParties(informed),
	}

	return raci, raci.Validate()
}

// Validate checks the assignment rules.
func (r RACI) Validate() error {
	if len(r.Responsible) == 0 {
		return fmt.Errorf("%w: at least one responsible party is required", ErrInvalidRACI)
	}

	if len(r.Accountable) > 1 {
		return fmt.Errorf("%w: only one accountable party is allowed, got %d", ErrInvalidRACI, len(r.Accountable))
	}

	for _, group := range [][]string{r.Responsible, r.Accountable, r.Consulted, r.Informed} {
		for _, party := range group {
			if strings.TrimSpace(party) == "" {
				return fmt.Errorf("%w: party names cannot be blank", ErrInvalidRACI)
			}
		}
	}

	return nil
}

// IsEmpty reports whether no party has been assigned.
func (r RACI) IsEmpty() bool {
	return len(r.Responsible) == 0 && len(r.Accountable) == 0 && len(r.Consulted) == 0 && len(r.Informed) == 0
}

// RolesOf lists the RACI letters held by the party.
func (r RACI) RolesOf(party string) []string {
	var roles []string

	if slices.Contains(r.Responsible, party) {
		roles = append(roles, "R")
	}

	if slices.Contains(r.Accountable, party) {
		roles = append(roles, "A")
	}

	if slices.Contains(r.Consulted, party) {
		roles = append(roles, "C")
	}

	if slices.Contains(r.Informed, party) {
		roles = append(roles, "I")
	}

	return roles
}

func cleanParties(parties []string) []string {
	if len(parties) == 0 {
		return nil
	}

	cleaned := make([]string, 0, len(parties))
	for _, party := range parties {
		party = strings.TrimSpace(party)
		if party != "" && !slices.Contains(cleaned, party) {
			cleaned = append(cleaned, party)
		}
	}

	return cleaned
}

// ResourceRequirements is the declared demand of a single action.
type ResourceRequirements struct {
	CPU           float64       `json:"cpu"            yaml:"cpu"            validate:"gte=0"`
	MemoryMB      int64         `json:"memory_mb"      yaml:"memory_mb"      validate:"gte=0"`
	ExecutionTime time.Duration `json:"execution_time" yaml:"execution_time" validate:"gte=0"`
}

// Validate rejects negative or non-finite demand.
func (r ResourceRequirements) Validate() error {
	if math.IsNaN(r.CPU) || math.IsInf(r.CPU, 0) || r.CPU < 0 {
		return fmt.Errorf("%w: cpu must be a non-negative number", ErrInvalidResources)
	}

	if r.MemoryMB < 0 {
		return fmt.Errorf("%w: memory cannot be negative", ErrInvalidResources)
	}

	if r.ExecutionTime < 0 {
		return fmt.Errorf("%w: execution time cannot be negative", ErrInvalidResources)
	}

	return nil
}

// Add returns the element-wise sum.
func (r ResourceRequirements) Add(other ResourceRequirements) ResourceRequirements {
	return ResourceRequirements{
		CPU:           r.CPU + other.CPU,
		MemoryMB:      r.MemoryMB + other.MemoryMB,
		ExecutionTime: r.ExecutionTime + other.ExecutionTime,
	}
}

// now returns the current UTC time at microsecond precision so timestamps
// survive storage in databases that do not keep nanoseconds.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
