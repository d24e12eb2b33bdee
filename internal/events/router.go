package events

import (
	"tasklane/internal/config"
)

// Router maps a domain event to its broker topic and partition key. Pure and
// stateless: the pair is a deterministic function of the event and the
// configured topic names only.
type Router struct {
	topics map[Entity]string
}

func NewRouter(cfg config.KafkaConfig) Router {
	topics := map[Entity]string{
		EntityUsers:      string(EntityUsers),
		EntityTodos:      string(EntityTodos),
		EntityCategories: string(EntityCategories),
		EntityTags:       string(EntityTags),
	}
	for entity, suffix := range topics {
		topics[entity] = cfg.TopicPrefix + "." + suffix
	}
	if cfg.UsersTopic != "" {
		topics[EntityUsers] = cfg.UsersTopic
	}
	if cfg.TodosTopic != "" {
		topics[EntityTodos] = cfg.TodosTopic
	}
	if cfg.CategoriesTopic != "" {
		topics[EntityCategories] = cfg.CategoriesTopic
	}
	if cfg.TagsTopic != "" {
		topics[EntityTags] = cfg.TagsTopic
	}
	return Router{topics: topics}
}

// Topic returns the broker topic for the event's entity family.
func (r Router) Topic(event DomainEvent) string {
	return r.topics[event.entity()]
}

// Key returns the partition key: "{entity}.{id}" for single-entity events so
// all events about one entity stay in order, a fixed literal for batch kinds.
func (r Router) Key(event DomainEvent) string {
	return event.partitionKey()
}

// Topics lists every topic the consumer subscribes to, in a stable order.
func (r Router) Topics() []string {
	return []string{
		r.topics[EntityUsers],
		r.topics[EntityTodos],
		r.topics[EntityCategories],
		r.topics[EntityTags],
	}
}
