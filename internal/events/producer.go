package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/garsue/watermillzap"
	"github.com/google/uuid"

	"tasklane/internal/config"
	"tasklane/internal/logging"
)

// Transport header keys attached to every published message.
const (
	headerEventID       = "event_id"
	headerTimestamp     = "timestamp"
	headerUserID        = "user_id"
	headerCorrelationID = "correlation_id"
	headerContentType   = "content_type"
	headerPartitionKey  = "partition_key"

	contentTypeJSON = "application/json"
)

// Publisher is what the application layer depends on. A disabled *Producer
// satisfies it as a no-op, so callers never branch on broker availability.
type Publisher interface {
	Publish(ctx context.Context, event DomainEvent, actorID *uuid.UUID) error
	IsEnabled() bool
}

// Producer wraps domain events in envelopes and publishes them to Kafka.
// Construction never fails: when Kafka is disabled or unreachable the
// producer runs in no-op mode, because publishing a domain event must never
// abort the request that produced it.
type Producer struct {
	publisher message.Publisher // nil in no-op mode
	router    Router
	logger    logging.Logger
}

var _ Publisher = (*Producer)(nil)

func NewProducer(cfg config.KafkaConfig, logger logging.Logger) (*Producer, func(ctx context.Context) error) {
	log := logger.With("component", "event_producer")
	noopClose := func(ctx context.Context) error { return nil }

	if !cfg.Enabled {
		log.Info("kafka disabled, event producer is a no-op")
		return &Producer{router: NewRouter(cfg), logger: log}, noopClose
	}

	publisher, err := newKafkaPublisher(cfg, logger)
	if err != nil {
		log.Warn("kafka publisher init failed, event producer degraded to no-op",
			"brokers", cfg.Brokers,
			"error", err,
		)
		return &Producer{router: NewRouter(cfg), logger: log}, noopClose
	}

	log.Info("kafka producer initialized", "brokers", cfg.Brokers)

	p := &Producer{
		publisher: publisher,
		router:    NewRouter(cfg),
		logger:    log,
	}
	return p, func(ctx context.Context) error { return publisher.Close() }
}

// newProducerWithPublisher swaps the transport; tests feed in fakes or the
// in-memory gochannel pub/sub.
func newProducerWithPublisher(publisher message.Publisher, cfg config.KafkaConfig, logger logging.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		router:    NewRouter(cfg),
		logger:    logger.With("component", "event_producer"),
	}
}

func newKafkaPublisher(cfg config.KafkaConfig, logger logging.Logger) (message.Publisher, error) {
	wmLogger := watermillzap.NewLogger(logging.AsZap(logger))

	saramaCfg := kafka.DefaultSaramaSyncPublisherConfig()
	saramaCfg.ClientID = cfg.ClientID
	saramaCfg.Producer.Timeout = cfg.ProducerTimeout
	saramaCfg.Net.DialTimeout = cfg.ProducerTimeout

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:               cfg.Brokers,
		Marshaler:             partitioningMarshaler(),
		OverwriteSaramaConfig: saramaCfg,
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create kafka publisher: %w", err)
	}
	return publisher, nil
}

// partitioningMarshaler keys outgoing messages by the router-derived
// partition key so events about one entity land on one partition.
func partitioningMarshaler() kafka.MarshalerUnmarshaler {
	return kafka.NewWithPartitioningMarshaler(func(topic string, msg *message.Message) (string, error) {
		return msg.Metadata.Get(headerPartitionKey), nil
	})
}

// IsEnabled reports whether publishes reach a broker. Callers may use it to
// short-circuit event-dependent behavior; Publish itself is always safe.
func (p *Producer) IsEnabled() bool {
	return p.publisher != nil
}

// Publish wraps the event in a fresh envelope and sends it. The returned
// error is informational: callers log it and carry on, this layer never
// retries and the enclosing request must not fail because of it.
func (p *Producer) Publish(ctx context.Context, event DomainEvent, actorID *uuid.UUID) error {
	if p.publisher == nil {
		p.logger.Debug("kafka disabled, skipping event publication", "event_type", event.EventType())
		return nil
	}

	env := NewEnvelope(event, actorID)
	if cid := CorrelationIDFromContext(ctx); cid != "" {
		env.Metadata.CorrelationID = cid
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	topic := p.router.Topic(event)
	key := p.router.Key(event)

	msg := message.NewMessage(env.Metadata.EventID.String(), body)
	msg.SetContext(ctx)
	setTransportHeaders(msg, env.Metadata, key)

	if err := p.publisher.Publish(topic, msg); err != nil {
		p.logger.Error("failed to publish event",
			"topic", topic,
			"key", key,
			"event_type", event.EventType(),
			"error", err,
		)
		return fmt.Errorf("publish %s: %w", event.EventType(), err)
	}

	p.logger.Debug("event published",
		"topic", topic,
		"key", key,
		"event_type", event.EventType(),
		"event_id", env.Metadata.EventID,
	)
	return nil
}

func setTransportHeaders(msg *message.Message, meta Metadata, key string) {
	msg.Metadata.Set(headerPartitionKey, key)
	msg.Metadata.Set(headerEventID, meta.EventID.String())
	msg.Metadata.Set(headerTimestamp, meta.Timestamp.Format(time.RFC3339Nano))
	msg.Metadata.Set(headerContentType, contentTypeJSON)
	if meta.UserID != nil {
		msg.Metadata.Set(headerUserID, meta.UserID.String())
	}
	if meta.CorrelationID != "" {
		msg.Metadata.Set(headerCorrelationID, meta.CorrelationID)
	}
}

// Convenience wrappers for self-attributed events, where the event's own
// user is also the actor. Everything else goes through Publish directly.

func (p *Producer) PublishUserRegistered(ctx context.Context, event UserRegistered) error {
	actor := event.UserID
	return p.Publish(ctx, event, &actor)
}

func (p *Producer) PublishTodoCreated(ctx context.Context, event TodoCreated) error {
	actor := event.UserID
	return p.Publish(ctx, event, &actor)
}
