package trickle

import "fmt"

// Request carries model selection and generation parameters.
// The provider uses its own defaults when fields are zero/nil.
type Request struct {
	Model           string // model ID, provider-specific; empty = provider default
	Instructions    string // system/developer instructions
	Input           []Message
	MaxOutputTokens int      // 0 = provider default
	Temperature     *float64 // nil = provider default
}

// Validate checks universal constraints on Request.
// Provider implementations may apply additional provider-specific validation.
func (r Request) Validate() error {
	if len(r.Input) == 0 {
		return fmt.Errorf("input must not be empty: %w", ErrValidation)
	}
	for i, m := range r.Input {
		switch m.Role {
		case RoleUser, RoleAssistant, RoleSystem, RoleDeveloper:
		default:
			return fmt.Errorf("input[%d]: unknown role %q: %w", i, m.Role, ErrValidation)
		}
	}
	if r.Temperature != nil {
		if *r.Temperature < 0 || *r.Temperature > 2 {
			return fmt.Errorf("temperature must be in [0, 2], got %g: %w", *r.Temperature, ErrValidation)
		}
	}
	if r.MaxOutputTokens < 0 {
		return fmt.Errorf("max_output_tokens must be non-negative, got %d: %w", r.MaxOutputTokens, ErrValidation)
	}
	return nil
}
