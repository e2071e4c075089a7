// Package worker runs the monitoring loop headless and accepts remote cycle
// triggers over Pub/Sub.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/monsoonwatch/monsoonwatch/internal/monitor"
)

// PubSubHandler consumes cycle trigger messages for the worker.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	monitor          *monitor.Monitor
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	Monitor          *monitor.Monitor
	Logger           zerolog.Logger
}

// CycleMessage is the trigger message payload.
type CycleMessage struct {
	JobType string `json:"job_type"`
}

// Supported job types.
const (
	JobTypeUpdateCycle = "update_cycle"
	JobTypeHealthCheck = "health_check"
)

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// A full cycle over all zones can take a while with slow providers.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 1
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		monitor:          cfg.Monitor,
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	startTime := time.Now()

	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	logger.Debug().Msg("received pubsub message")

	var cycleMsg CycleMessage
	if err := json.Unmarshal(msg.Data, &cycleMsg); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		msg.Nack()
		return
	}

	var err error
	switch cycleMsg.JobType {
	case JobTypeUpdateCycle:
		err = h.handleUpdateCycle(ctx)
	case JobTypeHealthCheck:
		// Receiving and parsing the message is the health check; the
		// worker's own health endpoint covers the rest.
		logger.Debug().Msg("health check message acknowledged")
	default:
		logger.Warn().Str("job_type", cycleMsg.JobType).Msg("unknown job type")
		msg.Ack() // Ack unknown messages to prevent redelivery
		return
	}

	if err != nil {
		logger.Error().Err(err).Msg("job failed")
		msg.Nack()
		return
	}

	logger.Info().
		Str("job_type", cycleMsg.JobType).
		Dur("duration", time.Since(startTime)).
		Msg("job completed successfully")

	msg.Ack()
}

func (h *PubSubHandler) handleUpdateCycle(ctx context.Context) error {
	err := h.monitor.RunCycle(ctx)
	if errors.Is(err, monitor.ErrCycleInProgress) {
		// A concurrent trigger is not a failure; drop the duplicate.
		h.logger.Warn().Msg("cycle already running, dropping trigger")
		return nil
	}
	return err
}
