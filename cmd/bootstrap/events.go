package bootstrap

import (
	"context"
	"log/slog"

	"travel-backoffice/internal/infra/events"
	"travel-backoffice/internal/pkg/config"
	"travel-backoffice/internal/usecase/shared"

	"go.uber.org/fx"
)

var EventsModule = fx.Module("events",
	fx.Provide(
		NewEventPublisher,
	),
)

func NewEventPublisher(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) shared.EventPublisher {
	if len(cfg.Events.Brokers) == 0 {
		logger.Info("booking events disabled, no brokers configured")
		return events.NewNoopPublisher(logger)
	}

	publisher := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Events, logger), cfg.Events.PublishTimeout, logger)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return publisher.Close()
		},
	})
	return publisher
}
