package models

import "fmt"

// NodeKind is the variant tag of a node.
type NodeKind string

const (
	NodeKindIO                     NodeKind = "io"                       // Boundary input/output container
	NodeKindStage                  NodeKind = "stage"                    // Processing stage container
	NodeKindTether                 NodeKind = "tether"                   // External call action
	NodeKindKnowledgeBase          NodeKind = "knowledge-base"           // Knowledge lookup action
	NodeKindFunctionModelContainer NodeKind = "function-model-container" // Nested model action
)

// Capabilities is the fixed set of predicates describing what a node kind can do.
type Capabilities struct {
	Process  bool `json:"process"`
	Store    bool `json:"store"`
	Transfer bool `json:"transfer"`
	Nest     bool `json:"nest"`
}

var kindCapabilities = map[NodeKind]Capabilities{
	NodeKindIO:                     {Transfer: true},
	NodeKindStage:                  {Process: true, Transfer: true},
	NodeKindTether:                 {Transfer: true},
	NodeKindKnowledgeBase:          {Store: true, Transfer: true},
	NodeKindFunctionModelContainer: {Process: true, Transfer: true, Nest: true},
}

// ParseNodeKind converts user input into a node kind.
func ParseNodeKind(value string) (NodeKind, error) {
	kind := NodeKind(value)
	if !kind.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidNodeKind, value)
	}

	return kind, nil
}

func (k NodeKind) IsValid() bool {
	_, ok := kindCapabilities[k]

	return ok
}

// IsContainer reports whether the kind organizes structure (io, stage).
func (k NodeKind) IsContainer() bool {
	return k == NodeKindIO || k == NodeKindStage
}

// IsAction reports whether the kind is an invocable unit attached to a container.
func (k NodeKind) IsAction() bool {
	return k == NodeKindTether || k == NodeKindKnowledgeBase || k == NodeKindFunctionModelContainer
}

// Capabilities returns the capability row for the kind; unknown kinds can do nothing.
func (k NodeKind) Capabilities() Capabilities {
	return kindCapabilities[k]
}

func (k NodeKind) CanProcess() bool  { return kindCapabilities[k].Process }
func (k NodeKind) CanStore() bool    { return kindCapabilities[k].Store }
func (k NodeKind) CanTransfer() bool { return kindCapabilities[k].Transfer }
func (k NodeKind) CanNest() bool     { return kindCapabilities[k].Nest }

// IODirection says which side of the model boundary an io node sits on.
type IODirection string

const (
	IODirectionInput  IODirection = "input"
	IODirectionOutput IODirection = "output"
)

func (d IODirection) IsValid() bool {
	return d == IODirectionInput || d == IODirectionOutput
}
