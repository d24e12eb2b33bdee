package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasklane/internal/logging"
)

type fakePublisher struct {
	published []publishedMessage
	err       error
	closed    bool
}

type publishedMessage struct {
	topic string
	msg   *message.Message
}

func (f *fakePublisher) Publish(topic string, messages ...*message.Message) error {
	if f.err != nil {
		return f.err
	}
	for _, msg := range messages {
		f.published = append(f.published, publishedMessage{topic: topic, msg: msg})
	}
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func TestProducerDisabledIsNoop(t *testing.T) {
	cfg := testKafkaConfig()
	cfg.Enabled = false

	producer, closeFn := NewProducer(cfg, logging.NewNop())
	defer closeFn(context.Background())

	assert.False(t, producer.IsEnabled())

	err := producer.Publish(context.Background(), TodoCreated{TodoID: uuid.New(), Title: "x", UserID: uuid.New()}, nil)
	assert.NoError(t, err)
}

func TestProducerDegradesWhenBrokerSetupFails(t *testing.T) {
	cfg := testKafkaConfig()
	cfg.Enabled = true
	cfg.Brokers = nil // invalid: publisher construction fails

	producer, closeFn := NewProducer(cfg, logging.NewNop())
	defer closeFn(context.Background())

	assert.False(t, producer.IsEnabled())
	assert.NoError(t, producer.Publish(context.Background(), TagUpdated{TagID: uuid.New(), Name: "n"}, nil))
}

func TestProducerPublishesEnvelope(t *testing.T) {
	fake := &fakePublisher{}
	producer := newProducerWithPublisher(fake, testKafkaConfig(), logging.NewNop())
	require.True(t, producer.IsEnabled())

	actor := uuid.New()
	event := TodoCreated{
		TodoID: uuid.New(),
		Title:  "Buy milk",
		UserID: actor,
		Tags:   []string{"errand"},
	}

	require.NoError(t, producer.Publish(context.Background(), event, &actor))
	require.Len(t, fake.published, 1)

	sent := fake.published[0]
	assert.Equal(t, "tasklane.todos", sent.topic)
	assert.Equal(t, "todo."+event.TodoID.String(), sent.msg.Metadata.Get(headerPartitionKey))
	assert.Equal(t, actor.String(), sent.msg.Metadata.Get(headerUserID))
	assert.Equal(t, contentTypeJSON, sent.msg.Metadata.Get(headerContentType))
	assert.NotEmpty(t, sent.msg.Metadata.Get(headerEventID))
	assert.NotEmpty(t, sent.msg.Metadata.Get(headerTimestamp))

	var env Envelope
	require.NoError(t, json.Unmarshal(sent.msg.Payload, &env))
	assert.Equal(t, event, env.Event)
	require.NotNil(t, env.Metadata.UserID)
	assert.Equal(t, actor, *env.Metadata.UserID)
	assert.Equal(t, env.Metadata.EventID.String(), sent.msg.UUID)
}

func TestProducerPropagatesCorrelationID(t *testing.T) {
	fake := &fakePublisher{}
	producer := newProducerWithPublisher(fake, testKafkaConfig(), logging.NewNop())

	ctx := WithCorrelationID(context.Background(), "req-42")
	require.NoError(t, producer.Publish(ctx, TodoDeleted{TodoID: uuid.New(), DeletedAt: testTime}, nil))

	sent := fake.published[0]
	assert.Equal(t, "req-42", sent.msg.Metadata.Get(headerCorrelationID))

	var env Envelope
	require.NoError(t, json.Unmarshal(sent.msg.Payload, &env))
	assert.Equal(t, "req-42", env.Metadata.CorrelationID)
}

func TestProducerReturnsPublishErrorWithoutRetry(t *testing.T) {
	fake := &fakePublisher{err: errors.New("broker rejected")}
	producer := newProducerWithPublisher(fake, testKafkaConfig(), logging.NewNop())

	err := producer.Publish(context.Background(), TagCreated{TagID: uuid.New(), Name: "n", UserID: uuid.New()}, nil)
	require.Error(t, err)
	assert.Empty(t, fake.published)
}

func TestProducerConvenienceWrappersAttachActor(t *testing.T) {
	fake := &fakePublisher{}
	producer := newProducerWithPublisher(fake, testKafkaConfig(), logging.NewNop())

	event := UserRegistered{UserID: uuid.New(), Username: "alice", Email: "a@example.com"}
	require.NoError(t, producer.PublishUserRegistered(context.Background(), event))

	var env Envelope
	require.NoError(t, json.Unmarshal(fake.published[0].msg.Payload, &env))
	require.NotNil(t, env.Metadata.UserID)
	assert.Equal(t, event.UserID, *env.Metadata.UserID)
}
