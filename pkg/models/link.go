package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// FeatureType names the feature area an entity belongs to.
type FeatureType string

const (
	FeatureFunctionModel FeatureType = "function-model"
	FeatureKnowledgeBase FeatureType = "knowledge-base"
	FeatureSpindle       FeatureType = "spindle"
	FeatureEventStorm    FeatureType = "event-storm"
)

func (f FeatureType) IsValid() bool {
	switch f {
	case FeatureFunctionModel, FeatureKnowledgeBase, FeatureSpindle, FeatureEventStorm:
		return true
	default:
		return false
	}
}

// ParseFeatureType converts user input into a feature type.
func ParseFeatureType(value string) (FeatureType, error) {
	f := FeatureType(value)
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFeatureType, value)
	}

	return f, nil
}

// LinkType is the closed vocabulary of cross-feature relations.
type LinkType string

const (
	LinkTypeDocuments  LinkType = "documents"
	LinkTypeImplements LinkType = "implements"
	LinkTypeReferences LinkType = "references"
	LinkTypeSupports   LinkType = "supports"
	LinkTypeNested     LinkType = "nested"
)

var linkMeanings = map[LinkType]string{
	LinkTypeDocuments:  "source provides documentation for target",
	LinkTypeImplements: "source implements the behavior described by target",
	LinkTypeReferences: "source refers to target for context",
	LinkTypeSupports:   "source supports or enables target",
	LinkTypeNested:     "source is embedded inside target",
}

// ParseLinkType converts user input into a link type.
func ParseLinkType(value string) (LinkType, error) {
	t := LinkType(value)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidLinkType, value)
	}

	return t, nil
}

func (t LinkType) IsValid() bool {
	_, ok := linkMeanings[t]

	return ok
}

// Meaning describes what the relation says about its endpoints.
func (t LinkType) Meaning() string {
	if meaning, ok := linkMeanings[t]; ok {
		return meaning
	}

	return "unknown relation"
}

// LinkEndpoint identifies an entity, and optionally a node inside it, within a feature area.
type LinkEndpoint struct {
	Feature  FeatureType `json:"feature"           validate:"required"`
	EntityID string      `json:"entity_id"         validate:"required"`
	NodeID   string      `json:"node_id,omitempty"`
}

// Validate checks the endpoint fields.
func (e LinkEndpoint) Validate() error {
	if !e.Feature.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFeatureType, e.Feature)
	}

	if strings.TrimSpace(e.EntityID) == "" {
		return fmt.Errorf("%w: entity identifier is required", ErrInvalidEndpoint)
	}

	return nil
}

// Same reports whether both endpoints name the same feature, entity and node.
func (e LinkEndpoint) Same(other LinkEndpoint) bool {
	return e.Feature == other.Feature && e.EntityID == other.EntityID && e.NodeID == other.NodeID
}

func (e LinkEndpoint) String() string {
	if e.NodeID == "" {
		return fmt.Sprintf("%s:%s", e.Feature, e.EntityID)
	}

	return fmt.Sprintf("%s:%s/%s", e.Feature, e.EntityID, e.NodeID)
}

// CrossFeatureLink is a directed, typed, weighted relation between two endpoints.
type CrossFeatureLink struct {
	ID        string         `json:"id"                validate:"required"`
	Source    LinkEndpoint   `json:"source"            validate:"required"`
	Target    LinkEndpoint   `json:"target"            validate:"required"`
	Type      LinkType       `json:"type"              validate:"required"`
	Strength  float64        `json:"strength"          validate:"gte=0,lte=1"`
	Context   map[string]any `json:"context,omitempty"`
	CreatedBy string         `json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewCrossFeatureLink creates a link, clamping strength into [0, 1].
func NewCrossFeatureLink(source, target LinkEndpoint, linkType LinkType, strength float64, createdBy string) (*CrossFeatureLink, error) {
	if err := source.Validate(); err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}

	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}

	if source.Same(target) {
		return nil, fmt.Errorf("%w: %s", ErrSelfLink, source)
	}

	if !linkType.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLinkType, linkType)
	}

	now := now()

	return &CrossFeatureLink{
		ID:        NewID(),
		Source:    source,
		Target:    target,
		Type:      linkType,
		Strength:  ClampStrength(strength),
		Context:   map[string]any{},
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ClampStrength forces a strength into [0, 1]; NaN becomes 0.
func ClampStrength(strength float64) float64 {
	switch {
	case math.IsNaN(strength), strength < 0:
		return 0
	case strength > 1:
		return 1
	default:
		return strength
	}
}

// SetStrength updates the weight, clamping it into range.
func (l *CrossFeatureLink) SetStrength(strength float64) {
	l.Strength = ClampStrength(strength)
	l.UpdatedAt = now()
}

// ReplaceContext swaps the free-form context bag.
func (l *CrossFeatureLink) ReplaceContext(context map[string]any) {
	l.Context = cloneMap(context)
	l.UpdatedAt = now()
}

// Involves reports whether the entity is either endpoint of the link.
func (l *CrossFeatureLink) Involves(feature FeatureType, entityID string) bool {
	return (l.Source.Feature == feature && l.Source.EntityID == entityID) ||
		(l.Target.Feature == feature && l.Target.EntityID == entityID)
}

// IsIntraEntity reports whether both endpoints are nodes inside the same entity.
func (l *CrossFeatureLink) IsIntraEntity() bool {
	return l.Source.NodeID != "" && l.Target.NodeID != "" &&
		l.Source.Feature == l.Target.Feature && l.Source.EntityID == l.Target.EntityID
}
