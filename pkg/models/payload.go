package models

import (
	"time"

	"github.com/xeipuuv/gojsonschema"
)

// NodePayload holds the variant-specific configuration of a node. Exactly the
// field matching the node's Kind is populated.
type NodePayload struct {
	IO            *IOConfig            `json:"io,omitempty"`
	Stage         *StageConfig         `json:"stage,omitempty"`
	Tether        *TetherConfig        `json:"tether,omitempty"`
	KnowledgeBase *KnowledgeBaseConfig `json:"knowledge_base,omitempty"`
	NestedModel   *NestedModelConfig   `json:"nested_model,omitempty"`
}

// IOConfig describes a boundary node. Contracts are JSON Schema documents.
type IOConfig struct {
	Direction      IODirection    `json:"direction"                 validate:"required,oneof=input output"`
	InputContract  map[string]any `json:"input_contract,omitempty"`
	OutputContract map[string]any `json:"output_contract,omitempty"`
	DataSource     string         `json:"data_source,omitempty"`
}

// StageConfig describes a processing stage.
type StageConfig struct {
	Processing *ProcessingConfig `json:"processing,omitempty"`
}

// ProcessingConfig is how a stage processes the work handed to it.
type ProcessingConfig struct {
	Strategy    string         `json:"strategy"              validate:"required"`
	Parallelism int            `json:"parallelism,omitempty" validate:"gte=0"`
	Timeout     time.Duration  `json:"timeout,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// TetherConfig describes an external call.
type TetherConfig struct {
	Connection *ConnectionConfig `json:"connection,omitempty"`
}

// ConnectionConfig is the target of an external call. Credentials are referenced, never embedded.
type ConnectionConfig struct {
	Endpoint      string            `json:"endpoint"                 validate:"required"`
	Method        string            `json:"method,omitempty"`
	Headers       map[string]string `json:"headers,omitempty"`
	CredentialRef string            `json:"credential_ref,omitempty"`
	Timeout       time.Duration     `json:"timeout,omitempty"`
}

// KnowledgeBaseConfig describes a knowledge lookup.
type KnowledgeBaseConfig struct {
	Source *KnowledgeSourceConfig `json:"source,omitempty"`
}

// KnowledgeSourceConfig points at the knowledge to consult.
type KnowledgeSourceConfig struct {
	KnowledgeBaseID string   `json:"knowledge_base_id"      validate:"required"`
	Query           string   `json:"query,omitempty"`
	DocumentIDs     []string `json:"document_ids,omitempty"`
	MaxResults      int      `json:"max_results,omitempty"  validate:"gte=0"`
}

// NestedModelConfig references the function model embedded by a container action.
type NestedModelConfig struct {
	ModelID        string            `json:"model_id"`
	Version        int               `json:"version,omitempty"`
	ContextMapping map[string]string `json:"context_mapping,omitempty"`
}

// defaultPayload returns the zero payload for a kind.
func defaultPayload(kind NodeKind) NodePayload {
	switch kind {
	case NodeKindIO:
		return NodePayload{IO: &IOConfig{Direction: IODirectionInput}}
	case NodeKindStage:
		return NodePayload{Stage: &StageConfig{}}
	case NodeKindTether:
		return NodePayload{Tether: &TetherConfig{}}
	case NodeKindKnowledgeBase:
		return NodePayload{KnowledgeBase: &KnowledgeBaseConfig{}}
	case NodeKindFunctionModelContainer:
		return NodePayload{NestedModel: &NestedModelConfig{}}
	default:
		return NodePayload{}
	}
}

// matches reports whether only the field for kind is populated.
func (p NodePayload) matches(kind NodeKind) bool {
	populated := map[NodeKind]bool{
		NodeKindIO:                     p.IO != nil,
		NodeKindStage:                  p.Stage != nil,
		NodeKindTether:                 p.Tether != nil,
		NodeKindKnowledgeBase:          p.KnowledgeBase != nil,
		NodeKindFunctionModelContainer: p.NestedModel != nil,
	}

	for k, set := range populated {
		if set != (k == kind) {
			return false
		}
	}

	return true
}

// validateContract compiles a contract as a JSON Schema document.
func validateContract(contract map[string]any) error {
	_, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(contract))

	return err
}
