package services

import (
	"context"
	"fmt"

	"github.com/dukex/flowmodel/pkg/events"
	"github.com/dukex/flowmodel/pkg/models"
	"github.com/dukex/flowmodel/pkg/otelhelper"
	"github.com/dukex/flowmodel/pkg/persistence"
	"go.opentelemetry.io/otel/attribute"
)

// Links manages cross-feature links between function models and other feature areas.
type Links struct {
	base
}

// NewLinks creates a new link service.
func NewLinks(p persistence.Persistence, opts Options) *Links {
	return &Links{base: newBase(p, opts, "links")}
}

// CreateLinkRequest describes a new cross-feature link.
type CreateLinkRequest struct {
	Source    models.LinkEndpoint `json:"source"     validate:"required"`
	Target    models.LinkEndpoint `json:"target"     validate:"required"`
	Type      string              `json:"type"       validate:"required"`
	Strength  float64             `json:"strength"`
	Context   map[string]any      `json:"context"`
	CreatedBy string              `json:"created_by" validate:"required"`
}

// Create stores a link. Function model endpoints must reference an existing
// model, and node endpoints a node inside it; other feature areas are not checked.
func (s *Links) Create(ctx context.Context, req CreateLinkRequest) (*models.CrossFeatureLink, error) {
	const op = "Links.Create"

	ctx, span := s.startSpan(ctx, op)
	defer span.End()

	linkType, err := models.ParseLinkType(req.Type)
	if err != nil {
		return nil, fail(span, op, err)
	}

	link, err := models.NewCrossFeatureLink(req.Source, req.Target, linkType, req.Strength, req.CreatedBy)
	if err != nil {
		return nil, fail(span, op, err)
	}

	if req.Context != nil {
		link.ReplaceContext(req.Context)
	}

	for _, endpoint := range []models.LinkEndpoint{link.Source, link.Target} {
		if err := s.checkEndpoint(ctx, endpoint); err != nil {
			return nil, fail(span, op, err)
		}
	}

	if err := s.persistence.LinkRepository().Save(ctx, link); err != nil {
		return nil, fail(span, op, err)
	}

	span.SetAttributes(attribute.String(otelhelper.LinkIDKey, link.ID))

	event := events.LinkCreated{
		BaseEvent: events.NewBaseEvent(events.LinkCreatedEvent, endpointModelID(link)),
		LinkID:    link.ID,
		Source:    link.Source,
		Target:    link.Target,
		LinkType:  link.Type,
		Strength:  link.Strength,
	}
	event.Actor = link.CreatedBy
	s.publish(ctx, link.ID, event)

	s.logger.InfoContext(ctx, "Cross-feature link created",
		"link_id", link.ID,
		"source", link.Source.String(),
		"target", link.Target.String(),
		"type", link.Type)

	return link, nil
}

func (s *Links) checkEndpoint(ctx context.Context, endpoint models.LinkEndpoint) error {
	if endpoint.Feature != models.FeatureFunctionModel {
		return nil
	}

	model, err := s.persistence.ModelRepository().GetByID(ctx, endpoint.EntityID, false)
	if err != nil {
		return err
	}

	if endpoint.NodeID != "" && !model.HasNode(endpoint.NodeID) {
		return fmt.Errorf("%w: %s", models.ErrNodeNotFound, endpoint)
	}

	return nil
}

// endpointModelID returns the function model a link touches, if any.
func endpointModelID(link *models.CrossFeatureLink) string {
	switch {
	case link.Source.Feature == models.FeatureFunctionModel:
		return link.Source.EntityID
	case link.Target.Feature == models.FeatureFunctionModel:
		return link.Target.EntityID
	default:
		return ""
	}
}

func (s *Links) FetchByID(ctx context.Context, id string) (*models.CrossFeatureLink, error) {
	const op = "Links.FetchByID"

	ctx, span := s.startSpan(ctx, op, attribute.String(otelhelper.LinkIDKey, id))
	defer span.End()

	link, err := s.persistence.LinkRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fail(span, op, err)
	}

	return link, nil
}

// ListForEntity returns every link where the entity is the source or the target.
func (s *Links) ListForEntity(ctx context.Context, feature, entityID string) ([]*models.CrossFeatureLink, error) {
	const op = "Links.ListForEntity"

	ctx, span := s.startSpan(ctx, op)
	defer span.End()

	featureType, err := models.ParseFeatureType(feature)
	if err != nil {
		return nil, fail(span, op, err)
	}

	if entityID == "" {
		return nil, fail(span, op, fmt.Errorf("%w: entity identifier is required", ErrInvalidRequest))
	}

	links, err := s.persistence.LinkRepository().ListByEntity(ctx, featureType, entityID)
	if err != nil {
		return nil, fail(span, op, err)
	}

	return links, nil
}

// UpdateStrength changes a link's weight; values outside [0, 1] are clamped.
func (s *Links) UpdateStrength(ctx context.Context, id string, strength float64) (*models.CrossFeatureLink, error) {
	return s.mutate(ctx, "Links.UpdateStrength", id, func(link *models.CrossFeatureLink) {
		link.SetStrength(strength)
	})
}

// UpdateContext replaces a link's free-form context.
func (s *Links) UpdateContext(ctx context.Context, id string, linkContext map[string]any) (*models.CrossFeatureLink, error) {
	return s.mutate(ctx, "Links.UpdateContext", id, func(link *models.CrossFeatureLink) {
		link.ReplaceContext(linkContext)
	})
}

func (s *Links) Delete(ctx context.Context, id string) error {
	const op = "Links.Delete"

	unlock := s.locks.lock(id)
	defer unlock()

	ctx, span := s.startSpan(ctx, op, attribute.String(otelhelper.LinkIDKey, id))
	defer span.End()

	link, err := s.persistence.LinkRepository().GetByID(ctx, id)
	if err != nil {
		return fail(span, op, err)
	}

	if err := s.persistence.LinkRepository().Delete(ctx, id); err != nil {
		return fail(span, op, err)
	}

	s.publish(ctx, id, events.LinkDeleted{
		BaseEvent: events.NewBaseEvent(events.LinkDeletedEvent, endpointModelID(link)),
		LinkID:    id,
	})

	return nil
}

// ResolveAccess applies the containing model's context hierarchy to a link
// between two nodes of the same function model.
func (s *Links) ResolveAccess(ctx context.Context, id string) (models.ContextAccess, error) {
	const op = "Links.ResolveAccess"

	ctx, span := s.startSpan(ctx, op, attribute.String(otelhelper.LinkIDKey, id))
	defer span.End()

	link, err := s.persistence.LinkRepository().GetByID(ctx, id)
	if err != nil {
		return models.ContextAccess{}, fail(span, op, err)
	}

	if !link.IsIntraEntity() {
		return models.ContextAccess{}, fail(span, op, models.ErrNotHierarchical)
	}

	if link.Source.Feature != models.FeatureFunctionModel {
		return models.ContextAccess{}, fail(span, op, fmt.Errorf("%w: %s", ErrNoHierarchy, link.Source.Feature))
	}

	model, err := s.persistence.ModelRepository().GetByID(ctx, link.Source.EntityID, false)
	if err != nil {
		return models.ContextAccess{}, fail(span, op, err)
	}

	hierarchy, err := model.Hierarchy()
	if err != nil {
		return models.ContextAccess{}, fail(span, op, err)
	}

	access, err := models.ResolveLinkAccess(link, hierarchy)
	if err != nil {
		return models.ContextAccess{}, fail(span, op, err)
	}

	return access, nil
}

func (s *Links) mutate(ctx context.Context, op, id string, fn func(*models.CrossFeatureLink)) (*models.CrossFeatureLink, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	ctx, span := s.startSpan(ctx, op, attribute.String(otelhelper.LinkIDKey, id))
	defer span.End()

	link, err := s.persistence.LinkRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fail(span, op, err)
	}

	fn(link)

	if err := s.persistence.LinkRepository().Save(ctx, link); err != nil {
		return nil, fail(span, op, err)
	}

	return link, nil
}
