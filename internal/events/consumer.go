package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/garsue/watermillzap"

	"tasklane/internal/config"
	"tasklane/internal/logging"
)

// defaultReconnectInterval is how long the stream sleeps before retrying
// after the broker becomes unreachable.
const defaultReconnectInterval = 5 * time.Second

func reconnectInterval(cfg config.KafkaConfig) time.Duration {
	if cfg.ReconnectInterval > 0 {
		return cfg.ReconnectInterval
	}
	return defaultReconnectInterval
}

// Consumer reads domain events from every entity topic, decodes envelopes,
// dispatches them to per-variant handling and rebroadcasts them on the local
// hub. Like the producer it degrades to a no-op when Kafka is disabled or
// unreachable at construction; transport failures while streaming are
// retried forever with backoff and never terminate the loop.
type Consumer struct {
	router *message.Router // nil in no-op mode
	hub    *Hub
	topics []string
	logger logging.Logger
}

func NewConsumer(cfg config.KafkaConfig, logger logging.Logger) *Consumer {
	log := logger.With("component", "event_consumer")
	c := &Consumer{
		hub:    NewHub(cfg.BroadcastBuffer),
		logger: log,
	}

	if !cfg.Enabled {
		log.Info("kafka disabled, event consumer is a no-op")
		return c
	}

	subscriber, err := newKafkaSubscriber(cfg, logger)
	if err != nil {
		log.Warn("kafka subscriber init failed, event consumer degraded to no-op",
			"brokers", cfg.Brokers,
			"error", err,
		)
		return c
	}

	if err := c.attachSubscriber(cfg, subscriber, logger); err != nil {
		log.Warn("kafka topic subscription failed, event consumer degraded to no-op",
			"error", err,
		)
		return c
	}

	log.Info("kafka consumer initialized", "brokers", cfg.Brokers, "topics", c.topics)
	return c
}

// newConsumerWithSubscriber swaps the transport; tests feed in the in-memory
// gochannel pub/sub.
func newConsumerWithSubscriber(cfg config.KafkaConfig, subscriber message.Subscriber, logger logging.Logger) (*Consumer, error) {
	c := &Consumer{
		hub:    NewHub(cfg.BroadcastBuffer),
		logger: logger.With("component", "event_consumer"),
	}
	if err := c.attachSubscriber(cfg, subscriber, logger); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Consumer) attachSubscriber(cfg config.KafkaConfig, subscriber message.Subscriber, logger logging.Logger) error {
	wmLogger := watermillzap.NewLogger(logging.AsZap(logger))

	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		return fmt.Errorf("create message router: %w", err)
	}

	retrying := &retryingSubscriber{
		inner:  subscriber,
		sleep:  reconnectInterval(cfg),
		logger: c.logger,
	}

	topics := NewRouter(cfg).Topics()
	for _, topic := range topics {
		router.AddNoPublisherHandler(
			"domain-events-"+topic,
			topic,
			retrying,
			c.process,
		)
	}

	c.router = router
	c.topics = topics
	return nil
}

func newKafkaSubscriber(cfg config.KafkaConfig, logger logging.Logger) (message.Subscriber, error) {
	wmLogger := watermillzap.NewLogger(logging.AsZap(logger))

	saramaCfg := kafka.DefaultSaramaSubscriberConfig()
	saramaCfg.ClientID = cfg.ClientID
	saramaCfg.Consumer.Offsets.AutoCommit.Enable = cfg.EnableAutoCommit
	saramaCfg.Consumer.Group.Session.Timeout = cfg.SessionTimeout
	if cfg.AutoOffsetReset == "latest" {
		saramaCfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	} else {
		saramaCfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	}

	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               cfg.Brokers,
		Unmarshaler:           partitioningMarshaler(),
		ConsumerGroup:         cfg.GroupID,
		OverwriteSaramaConfig: saramaCfg,
		ReconnectRetrySleep:   reconnectInterval(cfg),
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create kafka subscriber: %w", err)
	}
	return subscriber, nil
}

// IsEnabled reports whether the consumer is attached to a broker.
func (c *Consumer) IsEnabled() bool {
	return c.router != nil
}

// Subscribe attaches a local listener to the broadcast hub. It works even in
// no-op mode (the channel simply never fires).
func (c *Consumer) Subscribe() *Subscription {
	return c.hub.Subscribe()
}

// Run blocks consuming events until ctx is cancelled; that cancellation is
// the one and only shutdown path for the streaming loop. In no-op mode it
// returns immediately.
func (c *Consumer) Run(ctx context.Context) error {
	if c.router == nil {
		c.logger.Debug("kafka disabled, event consumer not running")
		return nil
	}

	c.logger.Info("starting event consumption", "topics", c.topics)
	return c.router.Run(ctx)
}

// running reports a channel that closes once the streaming loop is up.
func (c *Consumer) running() <-chan struct{} {
	if c.router == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return c.router.Running()
}

func (c *Consumer) Close() error {
	if c.router == nil {
		return nil
	}
	return c.router.Close()
}

// process handles one raw message. Malformed payloads are logged and skipped
// so one bad message never stalls the stream; this layer does not ask the
// broker to redeliver them.
func (c *Consumer) process(msg *message.Message) error {
	if len(msg.Payload) == 0 {
		c.logger.Warn("received message with no payload", "message_uuid", msg.UUID)
		return nil
	}

	var env Envelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		c.logger.Error("failed to decode event envelope, skipping",
			"message_uuid", msg.UUID,
			"error", err,
		)
		return nil
	}

	c.logger.Debug("received event",
		"event_type", env.Event.EventType(),
		"event_id", env.Metadata.EventID,
	)

	c.handleEvent(env)
	c.hub.Broadcast(env)
	return nil
}

// retryingSubscriber retries a failed Subscribe with a fixed sleep between
// attempts, so a transport outage never terminates the consume loop. Failures
// after the subscription is established are the transport's own reconnect
// concern (ReconnectRetrySleep on the Kafka subscriber).
type retryingSubscriber struct {
	inner  message.Subscriber
	sleep  time.Duration
	logger logging.Logger
}

func (s *retryingSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	for {
		ch, err := s.inner.Subscribe(ctx, topic)
		if err == nil {
			return ch, nil
		}

		s.logger.Warn("subscribe failed, retrying",
			"topic", topic,
			"retry_in", s.sleep,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.sleep):
		}
	}
}

func (s *retryingSubscriber) Close() error {
	return s.inner.Close()
}

// handleEvent is the per-variant dispatch. Handlers must stay fast and
// side-effect-light; a slow handler stalls everything behind it on the
// stream. Heavier downstream work belongs on a hub subscription.
func (c *Consumer) handleEvent(env Envelope) {
	switch event := env.Event.(type) {
	case UserRegistered:
		c.logger.Info("user registered", "user_id", event.UserID, "username", event.Username)
	case UserLoggedIn:
		c.logger.Debug("user logged in", "user_id", event.UserID, "username", event.Username)
	case TodoCreated:
		c.logger.Info("todo created", "todo_id", event.TodoID, "title", event.Title, "user_id", event.UserID)
	case TodoUpdated:
		c.logger.Debug("todo updated", "todo_id", event.TodoID)
	case TodoCompleted:
		c.logger.Info("todo completed", "todo_id", event.TodoID)
	case TodoDeleted:
		c.logger.Info("todo deleted", "todo_id", event.TodoID)
	case TodosDeletedBatch:
		c.logger.Info("batch deleted todos", "count", event.DeletedCount)
	case TodosUpdatedBatch:
		c.logger.Info("batch updated todos", "count", event.UpdatedCount)
	case CategoryCreated:
		c.logger.Info("category created", "category_id", event.CategoryID, "name", event.Name, "user_id", event.UserID)
	case CategoryUpdated:
		c.logger.Debug("category updated", "category_id", event.CategoryID)
	case CategoryDeleted:
		c.logger.Info("category deleted", "category_id", event.CategoryID)
	case TagCreated:
		c.logger.Info("tag created", "tag_id", event.TagID, "name", event.Name, "user_id", event.UserID)
	case TagUpdated:
		c.logger.Debug("tag updated", "tag_id", event.TagID)
	case TagDeleted:
		c.logger.Info("tag deleted", "tag_id", event.TagID)
	}
}
