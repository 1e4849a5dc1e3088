// Package main provides the Flowmodel API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/dukex/flowmodel/pkg/eventbus"
	"github.com/dukex/flowmodel/pkg/persistence"
	"github.com/dukex/flowmodel/pkg/services"
	"github.com/dukex/flowmodel/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	options     services.Options
	validate    *validator.Validate
}

// NewAPI wires the services to the given stores. A nil event bus disables event publishing.
func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	options services.Options,
) *API {
	options.Logger = logger

	if eventBus != nil {
		options.Publisher = eventBus
	}

	return &API{
		persistence: persistence,
		logger:      logger,
		eventBus:    eventBus,
		options:     options,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	modelService := services.NewFunctionModels(a.persistence, a.options)
	linkService := services.NewLinks(a.persistence, a.options)

	handlers := web.NewAPIHandlers(modelService, linkService, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Flowmodel API")
	})

	web.RegisterRoutes(app, handlers)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	a.logger.Info("Starting Flowmodel API", "port", port)

	return app.Listen(":" + strconv.Itoa(port))
}
