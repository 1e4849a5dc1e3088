package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dukex/flowmodel/pkg/channels/gochannel"
	"github.com/dukex/flowmodel/pkg/channels/kafka"
	"github.com/dukex/flowmodel/pkg/cmd"
	"github.com/dukex/flowmodel/pkg/config"
	"github.com/dukex/flowmodel/pkg/log"
	"github.com/dukex/flowmodel/pkg/otelhelper"
	"github.com/dukex/flowmodel/pkg/services"
	cli "github.com/urfave/cli/v3"
)

const (
	defaultPort = 9091
	serviceName = "flowmodel-api"
)

func main() {
	command := &cli.Command{
		Name:                  serviceName,
		Usage:                 "Design, validate and publish function models",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database connection URL for persistence (file://path or postgres://...)",
				Value:   "file://./data",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   cmd.EventBusGoChannel,
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers, used when the event bus is kafka",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.IntFlag{
				Name:    "event-buffer",
				Usage:   "Per-subscriber buffer of the in-memory event bus",
				Value:   gochannel.DefaultBufferSize,
				Sources: cli.EnvVars("EVENT_BUS_BUFFER"),
			},
			&cli.StringFlag{
				Name:    "policy-file",
				Usage:   "YAML readiness policy; the built-in policy is used when unset or missing",
				Sources: cli.EnvVars("READINESS_POLICY_FILE"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Action: run,
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"), command.String("log-format"))

	logger := log.WithModule("api")

	logger.InfoContext(ctx, "Initializing Flowmodel API")

	policy, err := config.LoadPolicyOrDefault(command.String("policy-file"))
	if err != nil {
		return err
	}

	readinessOptions, err := policy.ReadinessOptions()
	if err != nil {
		return err
	}

	options := services.Options{
		Readiness:          readinessOptions,
		DefaultEnvironment: policy.Environment,
	}

	if command.Bool("tracing") {
		tracer, shutdown, err := otelhelper.NewTracer(ctx, serviceName)
		if err != nil {
			return fmt.Errorf("failed to initialize tracer: %w", err)
		}

		defer func() {
			if err := shutdown(context.WithoutCancel(ctx)); err != nil {
				logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
			}
		}()

		options.Tracer = tracer
	}

	persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return err
	}

	defer func() {
		if err := persistence.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	eventBus, err := cmd.NewEventBus(cmd.EventBusConfig{
		Provider:    command.String("event-bus"),
		ServiceName: serviceName,
		Brokers:     kafka.ParseBrokers(command.String("kafka-brokers")),
		BufferSize:  command.Int("event-buffer"),
	}, logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := eventBus.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}()

	api := NewAPI(logger, persistence, eventBus, options)

	return api.Start(command.Int("port"))
}
