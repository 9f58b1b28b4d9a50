package inbound

import (
	"context"
	"log/slog"

	"github.com/samber/lo"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/shared/event"
)

const (
	defaultConcurrency = 10
	defaultMaxInFlight = 10
)

type consumer struct {
	name    string
	topic   string // destination where publisher sent message
	handler messaging.Handler
}

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	consumers := []consumer{
		{
			name:    event.PasscodeRequestedConsumerNotification,
			topic:   event.PasscodeRequestedDestination,
			handler: mqHandler.PasscodeRequestedNotification,
		},
	}

	enabled := cfg.GetArray("modules.notification.consumer_names")
	consumers = lo.Filter(consumers, func(c consumer, _ int) bool {
		return lo.Contains(enabled, c.name)
	})

	concurrency := cfg.GetInt("modules.notification.concurrency")
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	maxInFlight := cfg.GetInt("modules.notification.max_in_flight")
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}

	for _, c := range consumers {
		routine.Go(ctx, func(pCtx context.Context) error {
			slog.InfoContext(ctx, "Running job for handling consumer", "consumer", c.name)
			return messenger.Consume(pCtx,
				c.topic,
				c.handler,
				messaging.WithQueueGroup(c.name),
				messaging.WithAutoAck(true),
				messaging.WithConcurrency(concurrency),
				messaging.WithMaxInFlight(maxInFlight),
			)
		})
	}
}
