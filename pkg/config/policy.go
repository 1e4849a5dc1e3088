// Package config loads the readiness policy applied when checking whether a model can execute.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/dukex/flowmodel/pkg/readiness"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultEnvironment is used when neither the policy nor the request names one.
const DefaultEnvironment = "development"

var ErrInvalidPolicy = errors.New("invalid readiness policy")

// Policy is the YAML readiness policy file.
type Policy struct {
	Environment         string                   `yaml:"environment"          validate:"required"`
	AllowedEnvironments []string                 `yaml:"allowed_environments" validate:"dive,required"`
	Preconditions       []string                 `yaml:"preconditions"        validate:"dive,oneof=has-actions has-owner graph-acyclic within-environment"`
	Limits              readiness.ResourceLimits `yaml:"limits"`
}

// DefaultPolicy enforces the structural preconditions and no resource limits.
func DefaultPolicy() Policy {
	return Policy{
		Environment:   DefaultEnvironment,
		Preconditions: []string{readiness.PreconditionHasActions, readiness.PreconditionGraphAcyclic},
	}
}

// ParsePolicy decodes and validates a policy document. Omitted fields keep their defaults.
func ParsePolicy(data []byte) (Policy, error) {
	policy := DefaultPolicy()

	if err := yaml.Unmarshal(data, &policy); err != nil {
		return Policy{}, fmt.Errorf("failed to parse YAML policy: %w", err)
	}

	if err := policy.Validate(); err != nil {
		return Policy{}, err
	}

	return policy, nil
}

// LoadPolicy reads a policy from a YAML file.
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("failed to read policy file %s: %w", path, err)
	}

	return ParsePolicy(data)
}

// LoadPolicyOrDefault falls back to DefaultPolicy when path is empty or the file does not exist.
func LoadPolicyOrDefault(path string) (Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}

	policy, err := LoadPolicy(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultPolicy(), nil
	}

	return policy, err
}

// Validate checks struct tags and cross-field rules.
func (p Policy) Validate() error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(p)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make([]string, 0, len(validationErrors))
			for _, fieldErr := range validationErrors {
				fields = append(fields, fmt.Sprintf("%s failed %s", fieldErr.Namespace(), fieldErr.Tag()))
			}

			return fmt.Errorf("%w: %s", ErrInvalidPolicy, strings.Join(fields, "; "))
		}

		return fmt.Errorf("%w: %w", ErrInvalidPolicy, err)
	}

	if slices.Contains(p.Preconditions, readiness.PreconditionWithinEnvironment) && len(p.AllowedEnvironments) == 0 {
		return fmt.Errorf("%w: %s requires allowed_environments", ErrInvalidPolicy, readiness.PreconditionWithinEnvironment)
	}

	return nil
}

// ReadinessOptions resolves the named preconditions into checks.
func (p Policy) ReadinessOptions() (readiness.Options, error) {
	preconditions, err := readiness.Builtin(p.Preconditions, p.AllowedEnvironments)
	if err != nil {
		return readiness.Options{}, err
	}

	return readiness.Options{
		Preconditions: preconditions,
		Limits:        p.Limits,
	}, nil
}
