// Package main provides the audit consumer that logs every flowmodel domain event.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukex/flowmodel/pkg/channels/gochannel"
	"github.com/dukex/flowmodel/pkg/channels/kafka"
	"github.com/dukex/flowmodel/pkg/cmd"
	"github.com/dukex/flowmodel/pkg/log"
	cli "github.com/urfave/cli/v3"
)

const serviceName = "flowmodel-audit"

func main() {
	command := &cli.Command{
		Name:  serviceName,
		Usage: "Write every function model and link event to the audit log",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   cmd.EventBusKafka,
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.IntFlag{
				Name:    "event-buffer",
				Usage:   "Per-subscriber buffer of the in-memory event bus",
				Value:   gochannel.DefaultBufferSize,
				Sources: cli.EnvVars("EVENT_BUS_BUFFER"),
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
				Value:   "json",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := log.Setup(command.String("log-level"), command.String("log-format"))

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

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return NewAuditor(eventBus, logger).Run(ctx)
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
