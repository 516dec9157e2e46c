package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// Job types accepted on the warm subscription.
const (
	JobWarmCities  = "warm_cities"
	JobHealthCheck = "health_check"
)

// healthCheckCity is refreshed to verify provider connectivity.
const healthCheckCity = "Delhi"

var (
	// ErrMalformedMessage is returned for payloads that are not valid JSON.
	ErrMalformedMessage = errors.New("malformed warm message")

	// ErrUnknownJob is returned for unrecognised job types.
	ErrUnknownJob = errors.New("unknown job type")

	// ErrTooManyFailures is returned when most cities in a run failed.
	ErrTooManyFailures = errors.New("too many refresh failures")
)

// WarmMessage is the payload of a warm trigger.
type WarmMessage struct {
	JobType string `json:"job_type"`

	// Cities overrides the configured list for a single run.
	Cities []string `json:"cities,omitempty"`
}

// Dispatcher runs the job named by a warm message.
type Dispatcher struct {
	job    *RefreshJob
	logger zerolog.Logger
}

// NewDispatcher creates a dispatcher for the job.
func NewDispatcher(job *RefreshJob, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{job: job, logger: logger}
}

// Dispatch decodes a message payload and runs the job it names.
func (d *Dispatcher) Dispatch(ctx context.Context, data []byte) error {
	var msg WarmMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}

	switch msg.JobType {
	case JobWarmCities:
		cities := msg.Cities
		if len(cities) == 0 {
			cities = d.job.Config().Cities
		}
		result := d.job.RunCities(ctx, cities)
		if !result.Healthy() {
			return fmt.Errorf("%w: %d/%d", ErrTooManyFailures, result.Failed, result.TotalCities)
		}
		return nil
	case JobHealthCheck:
		result := d.job.RunCities(ctx, []string{healthCheckCity})
		if result.Failed > 0 {
			return fmt.Errorf("health check failed: %s", result.Errors[0].Error)
		}
		d.logger.Debug().Msg("health check passed")
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownJob, msg.JobType)
	}
}

// PubSubHandler triggers cache warming from Pub/Sub messages.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	dispatcher       *Dispatcher
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	RefreshJob       *RefreshJob
	Logger           zerolog.Logger
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		dispatcher:       NewDispatcher(cfg.RefreshJob, cfg.Logger),
		logger:           cfg.Logger,
	}, nil
}

// Start blocks processing Pub/Sub messages until ctx is cancelled.
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

	err := h.dispatcher.Dispatch(ctx, msg.Data)
	if ShouldAck(err) {
		if err != nil {
			logger.Warn().Err(err).Msg("dropping message")
		} else {
			logger.Info().Dur("duration", time.Since(startTime)).Msg("job completed successfully")
		}
		msg.Ack()
		return
	}

	logger.Error().Err(err).Msg("job failed")
	msg.Nack()
}

// ShouldAck reports whether a dispatch outcome should be acknowledged.
// Messages that can never succeed are acked to prevent redelivery.
func ShouldAck(err error) bool {
	return err == nil || errors.Is(err, ErrMalformedMessage) || errors.Is(err, ErrUnknownJob)
}
