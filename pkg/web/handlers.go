// Package web provides HTTP handlers and REST API endpoints for function models and cross-feature links.
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dukex/flowmodel/pkg/models"
	"github.com/dukex/flowmodel/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	modelService *services.FunctionModels
	linkService  *services.Links
	validator    *validator.Validate
}

func NewAPIHandlers(
	modelService *services.FunctionModels,
	linkService *services.Links,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		modelService: modelService,
		linkService:  linkService,
		validator:    validator,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.modelService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Flowmodel API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Flowmodel API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

// bindJSON decodes and validates the request body. When ok is false the
// problem response has already been written and err must be returned as is.
// An empty body is accepted when optional is set and leaves dst untouched.
func (h *APIHandlers) bindJSON(c fiber.Ctx, dst any, optional bool) (ok bool, err error) {
	if optional && len(c.Body()) == 0 {
		return true, nil
	}

	if err := c.Bind().JSON(dst); err != nil {
		return false, badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(dst); err != nil {
		return false, badRequest(c, err.Error())
	}

	return true, nil
}

func (h *APIHandlers) GetModels(c fiber.Ctx) error {
	req, err := parseListModelsRequest(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	result, err := h.modelService.List(c.Context(), *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"models":        result.Models,
		"total_count":   result.TotalCount,
		"has_next_page": result.HasNextPage,
		"pagination": fiber.Map{
			"limit":  req.Limit,
			"offset": req.Offset,
		},
		"sorting": fiber.Map{
			"sort_by":    req.SortBy,
			"sort_order": req.SortOrder,
		},
	})
}

// parseListModelsRequest reads pagination, filtering and sorting query parameters.
func parseListModelsRequest(c fiber.Ctx) (*services.ListModelsRequest, error) {
	req := &services.ListModelsRequest{}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, err
		}

		req.Limit = limit
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, err
		}

		req.Offset = offset
	}

	req.Owner = c.Query("owner")
	req.Status = c.Query("status")

	if includeDeletedStr := c.Query("include_deleted"); includeDeletedStr != "" {
		includeDeleted, err := strconv.ParseBool(includeDeletedStr)
		if err != nil {
			return nil, err
		}

		req.IncludeDeleted = includeDeleted
	}

	req.SortBy = c.Query("sort_by")
	req.SortOrder = c.Query("sort_order")

	return req, nil
}

func (h *APIHandlers) CreateModel(c fiber.Ctx) error {
	var req services.CreateModelRequest
	if ok, err := h.bindJSON(c, &req, false); !ok {
		return err
	}

	model, err := h.modelService.Create(c.Context(), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(model)
}

func (h *APIHandlers) GetModel(c fiber.Ctx) error {
	model, err := h.modelService.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(model)
}

func (h *APIHandlers) UpdateModel(c fiber.Ctx) error {
	var req services.UpdateDetailsRequest
	if ok, err := h.bindJSON(c, &req, false); !ok {
		return err
	}

	model, err := h.modelService.UpdateDetails(c.Context(), c.Params("id"), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(model)
}

// DeleteModel soft-deletes a model; the actor is read from the "actor" query parameter.
func (h *APIHandlers) DeleteModel(c fiber.Ctx) error {
	actor := c.Query("actor")
	if actor == "" {
		return badRequest(c, "actor query parameter is required")
	}

	if _, err := h.modelService.SoftDelete(c.Context(), c.Params("id"), actor); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) PublishModel(c fiber.Ctx) error {
	model, err := h.modelService.Publish(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(model)
}

func (h *APIHandlers) ArchiveModel(c fiber.Ctx) error {
	model, err := h.modelService.Archive(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(model)
}

func (h *APIHandlers) DuplicateModel(c fiber.Ctx) error {
	var req DuplicateModelRequest
	if ok, err := h.bindJSON(c, &req, true); !ok {
		return err
	}

	model, err := h.modelService.Duplicate(c.Context(), c.Params("id"), req.Name)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(model)
}

func (h *APIHandlers) ValidateModel(c fiber.Ctx) error {
	report, err := h.modelService.ValidateGraph(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(report)
}

func (h *APIHandlers) CheckReadiness(c fiber.Ctx) error {
	var ectx models.ExecutionContext
	if ok, err := h.bindJSON(c, &ectx, true); !ok {
		return err
	}

	report, err := h.modelService.CheckReadiness(c.Context(), c.Params("id"), ectx)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(report)
}

func (h *APIHandlers) GetNodeAccess(c fiber.Ctx) error {
	requester, target := c.Query("requester"), c.Query("target")
	if requester == "" || target == "" {
		return badRequest(c, "requester and target query parameters are required")
	}

	access, err := h.modelService.NodeAccess(c.Context(), c.Params("id"), requester, target)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(access)
}

// CreateNode adds a container or an action node depending on the requested kind.
func (h *APIHandlers) CreateNode(c fiber.Ctx) error {
	var req CreateNodeRequest
	if ok, err := h.bindJSON(c, &req, false); !ok {
		return err
	}

	var (
		node *models.Node
		err  error
	)

	if req.IsAction() {
		node, err = h.modelService.AddActionNode(c.Context(), c.Params("id"), req.ActionRequest())
	} else {
		node, err = h.modelService.AddContainerNode(c.Context(), c.Params("id"), req.ContainerRequest())
	}

	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(node)
}

func (h *APIHandlers) GetNode(c fiber.Ctx) error {
	model, err := h.modelService.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	node, ok := model.Node(c.Params("nodeId"))
	if !ok {
		return handleServiceError(c, models.ErrNodeNotFound)
	}

	return c.JSON(node)
}

func (h *APIHandlers) UpdateNode(c fiber.Ctx) error {
	var req services.UpdateNodeRequest
	if ok, err := h.bindJSON(c, &req, false); !ok {
		return err
	}

	node, err := h.modelService.UpdateNode(c.Context(), c.Params("id"), c.Params("nodeId"), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(node)
}

func (h *APIHandlers) DeleteNode(c fiber.Ctx) error {
	if err := h.modelService.RemoveNode(c.Context(), c.Params("id"), c.Params("nodeId")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) AddDependency(c fiber.Ctx) error {
	var req AddDependencyRequest
	if ok, err := h.bindJSON(c, &req, false); !ok {
		return err
	}

	node, err := h.modelService.AddDependency(c.Context(), c.Params("id"), c.Params("nodeId"), req.DependencyID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(node)
}

func (h *APIHandlers) RemoveDependency(c fiber.Ctx) error {
	node, err := h.modelService.RemoveDependency(c.Context(), c.Params("id"), c.Params("nodeId"), c.Params("dependencyId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(node)
}

func (h *APIHandlers) UpdateNodeStatus(c fiber.Ctx) error {
	var req NodeStatusRequest
	if ok, err := h.bindJSON(c, &req, false); !ok {
		return err
	}

	var (
		node *models.Node
		err  error
	)

	if req.ActionStatus != "" {
		node, err = h.modelService.TransitionAction(c.Context(), c.Params("id"), c.Params("nodeId"), req.ActionStatus)
	} else {
		node, err = h.modelService.TransitionNode(c.Context(), c.Params("id"), c.Params("nodeId"), req.Status)
	}

	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(node)
}

// ValidateGraph validates a graph supplied in the body without loading a model.
func (h *APIHandlers) ValidateGraph(c fiber.Ctx) error {
	var req ValidateGraphRequest
	if ok, err := h.bindJSON(c, &req, false); !ok {
		return err
	}

	return c.JSON(h.modelService.ValidateRawGraph(c.Context(), req.Nodes, req.Edges))
}

func (h *APIHandlers) CreateLink(c fiber.Ctx) error {
	var req services.CreateLinkRequest
	if ok, err := h.bindJSON(c, &req, false); !ok {
		return err
	}

	link, err := h.linkService.Create(c.Context(), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(link)
}

func (h *APIHandlers) GetLinks(c fiber.Ctx) error {
	links, err := h.linkService.ListForEntity(c.Context(), c.Query("feature"), c.Query("entity_id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"links":       links,
		"total_count": len(links),
	})
}

func (h *APIHandlers) GetLink(c fiber.Ctx) error {
	link, err := h.linkService.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(link)
}

func (h *APIHandlers) UpdateLink(c fiber.Ctx) error {
	var req UpdateLinkRequest
	if ok, err := h.bindJSON(c, &req, false); !ok {
		return err
	}

	if req.Strength == nil && req.Context == nil {
		return badRequest(c, "strength or context is required")
	}

	var (
		link *models.CrossFeatureLink
		err  error
	)

	if req.Strength != nil {
		link, err = h.linkService.UpdateStrength(c.Context(), c.Params("id"), *req.Strength)
		if err != nil {
			return handleServiceError(c, err)
		}
	}

	if req.Context != nil {
		link, err = h.linkService.UpdateContext(c.Context(), c.Params("id"), req.Context)
		if err != nil {
			return handleServiceError(c, err)
		}
	}

	return c.JSON(link)
}

func (h *APIHandlers) DeleteLink(c fiber.Ctx) error {
	if err := h.linkService.Delete(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetLinkAccess(c fiber.Ctx) error {
	access, err := h.linkService.ResolveAccess(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(access)
}
