package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"tasklane/internal/config"
)

func testKafkaConfig() config.KafkaConfig {
	return config.KafkaConfig{
		Enabled:     true,
		TopicPrefix: "tasklane",
	}
}

func TestRouterTopicDependsOnlyOnEntityFamily(t *testing.T) {
	router := NewRouter(testKafkaConfig())

	for i := 0; i < 50; i++ {
		userID := uuid.New()
		todoID := uuid.New()
		categoryID := uuid.New()
		tagID := uuid.New()

		assert.Equal(t, "tasklane.users", router.Topic(UserRegistered{UserID: userID}))
		assert.Equal(t, "tasklane.users", router.Topic(UserLoggedIn{UserID: userID}))
		assert.Equal(t, "tasklane.todos", router.Topic(TodoCreated{TodoID: todoID, UserID: userID}))
		assert.Equal(t, "tasklane.todos", router.Topic(TodoUpdated{TodoID: todoID}))
		assert.Equal(t, "tasklane.todos", router.Topic(TodoCompleted{TodoID: todoID}))
		assert.Equal(t, "tasklane.todos", router.Topic(TodoDeleted{TodoID: todoID}))
		assert.Equal(t, "tasklane.todos", router.Topic(TodosDeletedBatch{TodoIDs: []uuid.UUID{todoID}}))
		assert.Equal(t, "tasklane.todos", router.Topic(TodosUpdatedBatch{TodoIDs: []uuid.UUID{todoID}}))
		assert.Equal(t, "tasklane.categories", router.Topic(CategoryCreated{CategoryID: categoryID}))
		assert.Equal(t, "tasklane.categories", router.Topic(CategoryUpdated{CategoryID: categoryID}))
		assert.Equal(t, "tasklane.categories", router.Topic(CategoryDeleted{CategoryID: categoryID}))
		assert.Equal(t, "tasklane.tags", router.Topic(TagCreated{TagID: tagID}))
		assert.Equal(t, "tasklane.tags", router.Topic(TagUpdated{TagID: tagID}))
		assert.Equal(t, "tasklane.tags", router.Topic(TagDeleted{TagID: tagID}))
	}
}

func TestRouterKeyDependsOnlyOnEntityID(t *testing.T) {
	router := NewRouter(testKafkaConfig())

	for i := 0; i < 50; i++ {
		id := uuid.New()

		assert.Equal(t, "user."+id.String(), router.Key(UserRegistered{UserID: id}))
		assert.Equal(t, "user."+id.String(), router.Key(UserLoggedIn{UserID: id, LoginTimestamp: time.Now()}))
		assert.Equal(t, "todo."+id.String(), router.Key(TodoCreated{TodoID: id}))
		assert.Equal(t, "todo."+id.String(), router.Key(TodoUpdated{TodoID: id}))
		assert.Equal(t, "todo."+id.String(), router.Key(TodoCompleted{TodoID: id}))
		assert.Equal(t, "todo."+id.String(), router.Key(TodoDeleted{TodoID: id}))
		assert.Equal(t, "category."+id.String(), router.Key(CategoryCreated{CategoryID: id}))
		assert.Equal(t, "category."+id.String(), router.Key(CategoryUpdated{CategoryID: id}))
		assert.Equal(t, "category."+id.String(), router.Key(CategoryDeleted{CategoryID: id}))
		assert.Equal(t, "tag."+id.String(), router.Key(TagCreated{TagID: id}))
		assert.Equal(t, "tag."+id.String(), router.Key(TagUpdated{TagID: id}))
		assert.Equal(t, "tag."+id.String(), router.Key(TagDeleted{TagID: id}))
	}
}

func TestRouterBatchKeysAreFixed(t *testing.T) {
	router := NewRouter(testKafkaConfig())

	assert.Equal(t, "batch.delete", router.Key(TodosDeletedBatch{TodoIDs: []uuid.UUID{uuid.New()}}))
	assert.Equal(t, "batch.update", router.Key(TodosUpdatedBatch{TodoIDs: []uuid.UUID{uuid.New()}}))
}

func TestRouterTopicOverrides(t *testing.T) {
	cfg := testKafkaConfig()
	cfg.TodosTopic = "legacy-todo-events"

	router := NewRouter(cfg)

	assert.Equal(t, "legacy-todo-events", router.Topic(TodoCreated{TodoID: uuid.New()}))
	assert.Equal(t, "tasklane.users", router.Topic(UserRegistered{UserID: uuid.New()}))
	assert.Contains(t, router.Topics(), "legacy-todo-events")
}

func TestRouterTopicsStableOrder(t *testing.T) {
	router := NewRouter(testKafkaConfig())

	assert.Equal(t, []string{
		"tasklane.users",
		"tasklane.todos",
		"tasklane.categories",
		"tasklane.tags",
	}, router.Topics())
}
