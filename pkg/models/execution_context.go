package models

// ExecutionContext is what the caller knows about an intended run when asking
// whether a model is ready to execute.
type ExecutionContext struct {
	ID          string         `json:"id,omitempty"`
	ModelID     string         `json:"model_id,omitempty"`
	Environment string         `json:"environment,omitempty"`
	RequestedBy string         `json:"requested_by,omitempty"`
	Variables   map[string]any `json:"variables,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}
