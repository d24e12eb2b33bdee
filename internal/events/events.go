// Package events is the domain-event distribution layer: typed events, the
// envelope wire format, the topic/key router, the Kafka producer/consumer and
// the in-process broadcast hub.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Metadata travels with every envelope. Created once at publish time and
// never mutated. Timestamp is the publish instant, not the domain-transition
// instant; the two may differ under retry.
type Metadata struct {
	EventID       uuid.UUID  `json:"event_id"`
	Timestamp     time.Time  `json:"timestamp"`
	UserID        *uuid.UUID `json:"user_id,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
}

func NewMetadata(actorID *uuid.UUID) Metadata {
	return Metadata{
		EventID:   uuid.New(),
		Timestamp: time.Now().UTC(),
		UserID:    actorID,
	}
}

// Entity is the family an event belongs to; it decides the topic.
type Entity string

const (
	EntityUsers      Entity = "users"
	EntityTodos      Entity = "todos"
	EntityCategories Entity = "categories"
	EntityTags       Entity = "tags"
)

// DomainEvent is the closed set of state transitions the service emits.
// The unexported methods seal the interface: every variant must declare its
// entity family and partition key, so adding a variant without routing it
// is a compile error.
type DomainEvent interface {
	EventType() string
	entity() Entity
	partitionKey() string
}

// Event type discriminators as they appear on the wire.
const (
	TypeUserRegistered    = "UserRegistered"
	TypeUserLoggedIn      = "UserLoggedIn"
	TypeTodoCreated       = "TodoCreated"
	TypeTodoUpdated       = "TodoUpdated"
	TypeTodoCompleted     = "TodoCompleted"
	TypeTodoDeleted       = "TodoDeleted"
	TypeTodosDeletedBatch = "TodosDeletedBatch"
	TypeTodosUpdatedBatch = "TodosUpdatedBatch"
	TypeCategoryCreated   = "CategoryCreated"
	TypeCategoryUpdated   = "CategoryUpdated"
	TypeCategoryDeleted   = "CategoryDeleted"
	TypeTagCreated        = "TagCreated"
	TypeTagUpdated        = "TagUpdated"
	TypeTagDeleted        = "TagDeleted"
)

// User events

type UserRegistered struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	FullName *string   `json:"full_name,omitempty"`
}

func (UserRegistered) EventType() string      { return TypeUserRegistered }
func (UserRegistered) entity() Entity         { return EntityUsers }
func (e UserRegistered) partitionKey() string { return "user." + e.UserID.String() }

type UserLoggedIn struct {
	UserID         uuid.UUID `json:"user_id"`
	Username       string    `json:"username"`
	LoginTimestamp time.Time `json:"login_timestamp"`
}

func (UserLoggedIn) EventType() string      { return TypeUserLoggedIn }
func (UserLoggedIn) entity() Entity         { return EntityUsers }
func (e UserLoggedIn) partitionKey() string { return "user." + e.UserID.String() }

// Todo events. Each variant carries everything a downstream consumer needs;
// an event may be consumed long after the originating transaction committed.

type TodoCreated struct {
	TodoID      uuid.UUID  `json:"todo_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	UserID      uuid.UUID  `json:"user_id"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	Priority    *int       `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Tags        []string   `json:"tags"`
}

func (TodoCreated) EventType() string      { return TypeTodoCreated }
func (TodoCreated) entity() Entity         { return EntityTodos }
func (e TodoCreated) partitionKey() string { return "todo." + e.TodoID.String() }

type TodoUpdated struct {
	TodoID      uuid.UUID  `json:"todo_id"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	Priority    *int       `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

func (TodoUpdated) EventType() string      { return TypeTodoUpdated }
func (TodoUpdated) entity() Entity         { return EntityTodos }
func (e TodoUpdated) partitionKey() string { return "todo." + e.TodoID.String() }

type TodoCompleted struct {
	TodoID      uuid.UUID `json:"todo_id"`
	CompletedAt time.Time `json:"completed_at"`
}

func (TodoCompleted) EventType() string      { return TypeTodoCompleted }
func (TodoCompleted) entity() Entity         { return EntityTodos }
func (e TodoCompleted) partitionKey() string { return "todo." + e.TodoID.String() }

type TodoDeleted struct {
	TodoID    uuid.UUID `json:"todo_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

func (TodoDeleted) EventType() string      { return TypeTodoDeleted }
func (TodoDeleted) entity() Entity         { return EntityTodos }
func (e TodoDeleted) partitionKey() string { return "todo." + e.TodoID.String() }

// Batch events share a fixed partition key per batch kind; ordering across a
// single batch is not guaranteed relative to other producers.

type TodosDeletedBatch struct {
	TodoIDs      []uuid.UUID `json:"todo_ids"`
	DeletedCount int         `json:"deleted_count"`
	DeletedAt    time.Time   `json:"deleted_at"`
}

func (TodosDeletedBatch) EventType() string    { return TypeTodosDeletedBatch }
func (TodosDeletedBatch) entity() Entity       { return EntityTodos }
func (TodosDeletedBatch) partitionKey() string { return "batch.delete" }

type TodosUpdatedBatch struct {
	TodoIDs      []uuid.UUID `json:"todo_ids"`
	UpdatedCount int         `json:"updated_count"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Changes      TodoUpdated `json:"changes"`
}

func (TodosUpdatedBatch) EventType() string    { return TypeTodosUpdatedBatch }
func (TodosUpdatedBatch) entity() Entity       { return EntityTodos }
func (TodosUpdatedBatch) partitionKey() string { return "batch.update" }

// Category events

type CategoryCreated struct {
	CategoryID  uuid.UUID `json:"category_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Color       *string   `json:"color,omitempty"`
	UserID      uuid.UUID `json:"user_id"`
}

func (CategoryCreated) EventType() string      { return TypeCategoryCreated }
func (CategoryCreated) entity() Entity         { return EntityCategories }
func (e CategoryCreated) partitionKey() string { return "category." + e.CategoryID.String() }

type CategoryUpdated struct {
	CategoryID  uuid.UUID `json:"category_id"`
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Color       *string   `json:"color,omitempty"`
}

func (CategoryUpdated) EventType() string      { return TypeCategoryUpdated }
func (CategoryUpdated) entity() Entity         { return EntityCategories }
func (e CategoryUpdated) partitionKey() string { return "category." + e.CategoryID.String() }

type CategoryDeleted struct {
	CategoryID uuid.UUID `json:"category_id"`
	DeletedAt  time.Time `json:"deleted_at"`
}

func (CategoryDeleted) EventType() string      { return TypeCategoryDeleted }
func (CategoryDeleted) entity() Entity         { return EntityCategories }
func (e CategoryDeleted) partitionKey() string { return "category." + e.CategoryID.String() }

// Tag events

type TagCreated struct {
	TagID  uuid.UUID `json:"tag_id"`
	Name   string    `json:"name"`
	UserID uuid.UUID `json:"user_id"`
}

func (TagCreated) EventType() string      { return TypeTagCreated }
func (TagCreated) entity() Entity         { return EntityTags }
func (e TagCreated) partitionKey() string { return "tag." + e.TagID.String() }

type TagUpdated struct {
	TagID uuid.UUID `json:"tag_id"`
	Name  string    `json:"name"`
}

func (TagUpdated) EventType() string      { return TypeTagUpdated }
func (TagUpdated) entity() Entity         { return EntityTags }
func (e TagUpdated) partitionKey() string { return "tag." + e.TagID.String() }

type TagDeleted struct {
	TagID     uuid.UUID `json:"tag_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

func (TagDeleted) EventType() string      { return TypeTagDeleted }
func (TagDeleted) entity() Entity         { return EntityTags }
func (e TagDeleted) partitionKey() string { return "tag." + e.TagID.String() }

// Envelope is the unit of wire transport: metadata plus one domain event,
// encoded as {"metadata":{...},"event":{"event_type":"...","data":{...}}}.
type Envelope struct {
	Metadata Metadata
	Event    DomainEvent
}

func NewEnvelope(event DomainEvent, actorID *uuid.UUID) Envelope {
	return Envelope{
		Metadata: NewMetadata(actorID),
		Event:    event,
	}
}

type envelopeWire struct {
	Metadata Metadata  `json:"metadata"`
	Event    eventWire `json:"event"`
}

type eventWire struct {
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Event == nil {
		return nil, fmt.Errorf("envelope has no event")
	}
	data, err := json.Marshal(e.Event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", e.Event.EventType(), err)
	}
	return json.Marshal(envelopeWire{
		Metadata: e.Metadata,
		Event: eventWire{
			EventType: e.Event.EventType(),
			Data:      data,
		},
	})
}

func (e *Envelope) UnmarshalJSON(b []byte) error {
	var wire envelopeWire
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	event, err := unmarshalEvent(wire.Event.EventType, wire.Event.Data)
	if err != nil {
		return err
	}
	e.Metadata = wire.Metadata
	e.Event = event
	return nil
}

// ErrUnknownEventType marks payloads whose discriminator names no known
// variant. Consumers skip and log these rather than stopping the stream.
var ErrUnknownEventType = fmt.Errorf("unknown event type")

func decodeAs[T DomainEvent](data []byte) (DomainEvent, error) {
	var ev T
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode %s: %w", ev.EventType(), err)
	}
	return ev, nil
}

func unmarshalEvent(eventType string, data []byte) (DomainEvent, error) {
	switch eventType {
	case TypeUserRegistered:
		return decodeAs[UserRegistered](data)
	case TypeUserLoggedIn:
		return decodeAs[UserLoggedIn](data)
	case TypeTodoCreated:
		return decodeAs[TodoCreated](data)
	case TypeTodoUpdated:
		return decodeAs[TodoUpdated](data)
	case TypeTodoCompleted:
		return decodeAs[TodoCompleted](data)
	case TypeTodoDeleted:
		return decodeAs[TodoDeleted](data)
	case TypeTodosDeletedBatch:
		return decodeAs[TodosDeletedBatch](data)
	case TypeTodosUpdatedBatch:
		return decodeAs[TodosUpdatedBatch](data)
	case TypeCategoryCreated:
		return decodeAs[CategoryCreated](data)
	case TypeCategoryUpdated:
		return decodeAs[CategoryUpdated](data)
	case TypeCategoryDeleted:
		return decodeAs[CategoryDeleted](data)
	case TypeTagCreated:
		return decodeAs[TagCreated](data)
	case TypeTagUpdated:
		return decodeAs[TagUpdated](data)
	case TypeTagDeleted:
		return decodeAs[TagDeleted](data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, eventType)
	}
}
