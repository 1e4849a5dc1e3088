package web

import "github.com/gofiber/fiber/v3"

// RegisterRoutes mounts the function model and link endpoints on the router.
func RegisterRoutes(router fiber.Router, handlers *APIHandlers) {
	router.Get("/health", handlers.HealthCheck)

	m := router.Group("/models")
	m.Get("/", handlers.GetModels)
	m.Post("/", handlers.CreateModel)
	m.Get("/:id", handlers.GetModel)
	m.Patch("/:id", handlers.UpdateModel)
	m.Delete("/:id", handlers.DeleteModel)
	m.Post("/:id/publish", handlers.PublishModel)
	m.Post("/:id/archive", handlers.ArchiveModel)
	m.Post("/:id/duplicate", handlers.DuplicateModel)
	m.Get("/:id/validate", handlers.ValidateModel)
	m.Post("/:id/readiness", handlers.CheckReadiness)
	m.Get("/:id/access", handlers.GetNodeAccess)

	// Node endpoints:
	m.Post("/:id/nodes", handlers.CreateNode)
	m.Get("/:id/nodes/:nodeId", handlers.GetNode)
	m.Patch("/:id/nodes/:nodeId", handlers.UpdateNode)
	m.Delete("/:id/nodes/:nodeId", handlers.DeleteNode)
	m.Put("/:id/nodes/:nodeId/status", handlers.UpdateNodeStatus)
	m.Post("/:id/nodes/:nodeId/dependencies", handlers.AddDependency)
	m.Delete("/:id/nodes/:nodeId/dependencies/:dependencyId", handlers.RemoveDependency)

	router.Post("/validate/graph", handlers.ValidateGraph)

	l := router.Group("/links")
	l.Get("/", handlers.GetLinks)
	l.Post("/", handlers.CreateLink)
	l.Get("/:id", handlers.GetLink)
	l.Patch("/:id", handlers.UpdateLink)
	l.Delete("/:id", handlers.DeleteLink)
	l.Get("/:id/access", handlers.GetLinkAccess)
}
