package todo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcommon "tasklane/internal/app/common"
	domcat "tasklane/internal/domain/category"
	domcommon "tasklane/internal/domain/common"
	dom "tasklane/internal/domain/todo"
	"tasklane/internal/events"
	"tasklane/internal/logging"
)

type fakeTodoRepo struct {
	todos map[uuid.UUID]*dom.Todo
	tags  map[uuid.UUID][]dom.TagRef
}

func newFakeTodoRepo() *fakeTodoRepo {
	return &fakeTodoRepo{
		todos: make(map[uuid.UUID]*dom.Todo),
		tags:  make(map[uuid.UUID][]dom.TagRef),
	}
}

func (r *fakeTodoRepo) GetByID(_ context.Context, id uuid.UUID) (*dom.Todo, error) {
	t, ok := r.todos[id]
	if !ok {
		return nil, domcommon.NewNotFound("todo")
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTodoRepo) List(_ context.Context, _ dom.ListFilter) ([]dom.Todo, int64, error) {
	out := make([]dom.Todo, 0, len(r.todos))
	for _, t := range r.todos {
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (r *fakeTodoRepo) Create(_ context.Context, t *dom.Todo) error {
	t.ID = uuid.New()
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	r.todos[t.ID] = &cp
	return nil
}

func (r *fakeTodoRepo) Update(_ context.Context, t *dom.Todo) error {
	if _, ok := r.todos[t.ID]; !ok {
		return domcommon.NewNotFound("todo")
	}
	t.UpdatedAt = time.Now().UTC()
	cp := *t
	r.todos[t.ID] = &cp
	return nil
}

func (r *fakeTodoRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.todos[id]; !ok {
		return domcommon.NewNotFound("todo")
	}
	delete(r.todos, id)
	return nil
}

func (r *fakeTodoRepo) BatchUpdate(_ context.Context, ids []uuid.UUID, changes dom.BatchChanges) ([]uuid.UUID, error) {
	var touched []uuid.UUID
	for _, id := range ids {
		t, ok := r.todos[id]
		if !ok {
			continue
		}
		if changes.Completed != nil {
			t.Completed = *changes.Completed
		}
		if changes.CategoryID != nil {
			t.CategoryID = changes.CategoryID
		}
		if changes.Priority != nil {
			t.Priority = changes.Priority
		}
		touched = append(touched, id)
	}
	return touched, nil
}

func (r *fakeTodoRepo) BatchDelete(_ context.Context, ids []uuid.UUID) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := r.todos[id]; ok {
			delete(r.todos, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeTodoRepo) ReplaceTags(_ context.Context, todoID uuid.UUID, _ uuid.UUID, names []string) error {
	refs := make([]dom.TagRef, 0, len(names))
	for _, name := range names {
		refs = append(refs, dom.TagRef{ID: uuid.New(), Name: name})
	}
	r.tags[todoID] = refs
	return nil
}

func (r *fakeTodoRepo) ListTags(_ context.Context, todoID uuid.UUID) ([]dom.TagRef, error) {
	return r.tags[todoID], nil
}

func (r *fakeTodoRepo) Stats(_ context.Context, _ *uuid.UUID) (*dom.Stats, error) {
	return &dom.Stats{}, nil
}

type fakeCategoryRepo struct {
	categories map[uuid.UUID]*domcat.Category
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id uuid.UUID) (*domcat.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, domcommon.NewNotFound("category")
	}
	return c, nil
}

func (r *fakeCategoryRepo) ListByUser(_ context.Context, _ uuid.UUID) ([]domcat.Category, error) {
	return nil, nil
}

func (r *fakeCategoryRepo) NameExists(_ context.Context, _ uuid.UUID, _ string, _ *uuid.UUID) (bool, error) {
	return false, nil
}

func (r *fakeCategoryRepo) Create(_ context.Context, _ *domcat.Category) error { return nil }
func (r *fakeCategoryRepo) Update(_ context.Context, _ *domcat.Category) error { return nil }
func (r *fakeCategoryRepo) Delete(_ context.Context, _ uuid.UUID) error        { return nil }

type fakeCache struct {
	entries map[uuid.UUID][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[uuid.UUID][]byte)}
}

func (c *fakeCache) GetByID(_ context.Context, id uuid.UUID) ([]byte, error) {
	return c.entries[id], nil
}

func (c *fakeCache) Set(_ context.Context, id uuid.UUID, data []byte, _ time.Duration) error {
	c.entries[id] = data
	return nil
}

func (c *fakeCache) Delete(_ context.Context, id uuid.UUID) error {
	delete(c.entries, id)
	return nil
}

type fakePublisher struct {
	published []events.DomainEvent
	actors    []*uuid.UUID
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, event events.DomainEvent, actorID *uuid.UUID) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, event)
	p.actors = append(p.actors, actorID)
	return nil
}

func (p *fakePublisher) IsEnabled() bool { return p.err == nil }

func (p *fakePublisher) typesPublished() []string {
	out := make([]string, 0, len(p.published))
	for _, e := range p.published {
		out = append(out, e.EventType())
	}
	return out
}

type fixture struct {
	repo       *fakeTodoRepo
	categories *fakeCategoryRepo
	cache      *fakeCache
	publisher  *fakePublisher
	service    Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:       newFakeTodoRepo(),
		categories: &fakeCategoryRepo{categories: make(map[uuid.UUID]*domcat.Category)},
		cache:      newFakeCache(),
		publisher:  &fakePublisher{},
	}
	f.service = NewService(f.repo, f.categories, f.cache, f.publisher, logging.NewNop())
	return f
}

func TestCreatePublishesTodoCreated(t *testing.T) {
	f := newFixture()
	actor := uuid.New()

	dto, err := f.service.Create(context.Background(), &actor, CreateTodoInput{
		Title: "write report",
		Tags:  []string{"work"},
	})
	require.NoError(t, err)
	assert.Equal(t, "write report", dto.Title)
	require.Len(t, dto.Tags, 1)
	assert.Equal(t, "work", dto.Tags[0].Name)

	require.Equal(t, []string{events.TypeTodoCreated}, f.publisher.typesPublished())
	created := f.publisher.published[0].(events.TodoCreated)
	assert.Equal(t, dto.Id, created.TodoID)
	assert.Equal(t, actor, created.UserID)
	require.NotNil(t, f.publisher.actors[0])
	assert.Equal(t, actor, *f.publisher.actors[0])

	// Create primes the cache.
	assert.NotNil(t, f.cache.entries[dto.Id])
}

func TestCreateAnonymousUsesNilOwner(t *testing.T) {
	f := newFixture()

	dto, err := f.service.Create(context.Background(), nil, CreateTodoInput{Title: "anon task"})
	require.NoError(t, err)
	assert.Nil(t, dto.UserId)

	created := f.publisher.published[0].(events.TodoCreated)
	assert.Equal(t, uuid.Nil, created.UserID)
	assert.Nil(t, f.publisher.actors[0])
}

func TestCreateSucceedsWhenPublishFails(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("broker down")

	dto, err := f.service.Create(context.Background(), nil, CreateTodoInput{Title: "resilient"})
	require.NoError(t, err)
	assert.NotNil(t, dto)
}

func TestUpdateEmitsCompletedOnlyOnFlip(t *testing.T) {
	f := newFixture()
	actor := uuid.New()

	dto, err := f.service.Create(context.Background(), &actor, CreateTodoInput{Title: "task"})
	require.NoError(t, err)

	completed := true
	_, err = f.service.Update(context.Background(), &actor, UpdateTodoInput{ID: dto.Id, Completed: &completed})
	require.NoError(t, err)

	assert.Equal(t, []string{
		events.TypeTodoCreated,
		events.TypeTodoUpdated,
		events.TypeTodoCompleted,
	}, f.publisher.typesPublished())

	// Completing an already-completed todo must not re-emit TodoCompleted.
	_, err = f.service.Update(context.Background(), &actor, UpdateTodoInput{ID: dto.Id, Completed: &completed})
	require.NoError(t, err)
	assert.Equal(t, []string{
		events.TypeTodoCreated,
		events.TypeTodoUpdated,
		events.TypeTodoCompleted,
		events.TypeTodoUpdated,
	}, f.publisher.typesPublished())
}

func TestUpdateUncompleteDoesNotEmitCompleted(t *testing.T) {
	f := newFixture()

	dto, err := f.service.Create(context.Background(), nil, CreateTodoInput{Title: "task"})
	require.NoError(t, err)

	done := true
	_, err = f.service.Update(context.Background(), nil, UpdateTodoInput{ID: dto.Id, Completed: &done})
	require.NoError(t, err)

	undone := false
	_, err = f.service.Update(context.Background(), nil, UpdateTodoInput{ID: dto.Id, Completed: &undone})
	require.NoError(t, err)

	types := f.publisher.typesPublished()
	var completedCount int
	for _, typ := range types {
		if typ == events.TypeTodoCompleted {
			completedCount++
		}
	}
	assert.Equal(t, 1, completedCount)
}

func TestUpdateMissingTodoReturnsNotFound(t *testing.T) {
	f := newFixture()

	title := "nope"
	_, err := f.service.Update(context.Background(), nil, UpdateTodoInput{ID: uuid.New(), Title: &title})
	assert.True(t, appcommon.IsNotFound(err))
	assert.Empty(t, f.publisher.published)
}

func TestDeleteDropsCacheAndPublishes(t *testing.T) {
	f := newFixture()

	dto, err := f.service.Create(context.Background(), nil, CreateTodoInput{Title: "gone soon"})
	require.NoError(t, err)
	require.NotNil(t, f.cache.entries[dto.Id])

	require.NoError(t, f.service.Delete(context.Background(), nil, dto.Id))
	assert.Nil(t, f.cache.entries[dto.Id])

	types := f.publisher.typesPublished()
	assert.Equal(t, events.TypeTodoDeleted, types[len(types)-1])
}

func TestGetServesFromCache(t *testing.T) {
	f := newFixture()

	dto, err := f.service.Create(context.Background(), nil, CreateTodoInput{Title: "cached"})
	require.NoError(t, err)

	// Remove the row; the cached copy should still satisfy the read.
	delete(f.repo.todos, dto.Id)

	got, err := f.service.Get(context.Background(), dto.Id)
	require.NoError(t, err)
	assert.Equal(t, dto.Id, got.Id)
	assert.Equal(t, "cached", got.Title)
}

func TestGetFallsBackToRepoOnCacheMiss(t *testing.T) {
	f := newFixture()

	dto, err := f.service.Create(context.Background(), nil, CreateTodoInput{Title: "uncached"})
	require.NoError(t, err)
	delete(f.cache.entries, dto.Id)

	got, err := f.service.Get(context.Background(), dto.Id)
	require.NoError(t, err)
	assert.Equal(t, dto.Id, got.Id)
	// The read repopulates the cache.
	assert.NotNil(t, f.cache.entries[dto.Id])
}

func TestBatchUpdateSkipsMissingIDs(t *testing.T) {
	f := newFixture()
	actor := uuid.New()

	a, err := f.service.Create(context.Background(), &actor, CreateTodoInput{Title: "a"})
	require.NoError(t, err)
	b, err := f.service.Create(context.Background(), &actor, CreateTodoInput{Title: "b"})
	require.NoError(t, err)

	completed := true
	dtos, err := f.service.BatchUpdate(context.Background(), &actor, BatchUpdateInput{
		TodoIDs:   []uuid.UUID{a.Id, b.Id, uuid.New()},
		Completed: &completed,
	})
	require.NoError(t, err)
	assert.Len(t, dtos, 2)
	for _, dto := range dtos {
		assert.True(t, dto.Completed)
	}

	types := f.publisher.typesPublished()
	require.Equal(t, events.TypeTodosUpdatedBatch, types[len(types)-1])
	batch := f.publisher.published[len(f.publisher.published)-1].(events.TodosUpdatedBatch)
	assert.Equal(t, 2, batch.UpdatedCount)
	assert.ElementsMatch(t, []uuid.UUID{a.Id, b.Id}, batch.TodoIDs)
}

func TestBatchUpdateNoRowsTouchedEmitsNothing(t *testing.T) {
	f := newFixture()

	completed := true
	dtos, err := f.service.BatchUpdate(context.Background(), nil, BatchUpdateInput{
		TodoIDs:   []uuid.UUID{uuid.New()},
		Completed: &completed,
	})
	require.NoError(t, err)
	assert.Empty(t, dtos)
	assert.Empty(t, f.publisher.published)
}

func TestBatchValidation(t *testing.T) {
	f := newFixture()

	_, err := f.service.BatchUpdate(context.Background(), nil, BatchUpdateInput{})
	assert.True(t, appcommon.IsValidation(err))

	ids := make([]uuid.UUID, maxBatchSize+1)
	for i := range ids {
		ids[i] = uuid.New()
	}
	_, err = f.service.BatchDelete(context.Background(), nil, ids)
	assert.True(t, appcommon.IsValidation(err))
}

func TestBatchDeleteAllMissingIsNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.service.BatchDelete(context.Background(), nil, []uuid.UUID{uuid.New()})
	assert.True(t, appcommon.IsNotFound(err))
	assert.Empty(t, f.publisher.published)
}

func TestBatchDeleteReturnsCountAndPublishes(t *testing.T) {
	f := newFixture()

	a, err := f.service.Create(context.Background(), nil, CreateTodoInput{Title: "a"})
	require.NoError(t, err)
	b, err := f.service.Create(context.Background(), nil, CreateTodoInput{Title: "b"})
	require.NoError(t, err)

	n, err := f.service.BatchDelete(context.Background(), nil, []uuid.UUID{a.Id, b.Id, uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	types := f.publisher.typesPublished()
	require.Equal(t, events.TypeTodosDeletedBatch, types[len(types)-1])
	batch := f.publisher.published[len(f.publisher.published)-1].(events.TodosDeletedBatch)
	assert.Equal(t, 2, batch.DeletedCount)
}

func TestViewIncludesCategory(t *testing.T) {
	f := newFixture()
	actor := uuid.New()

	catID := uuid.New()
	f.categories.categories[catID] = &domcat.Category{ID: catID, Name: "work", UserID: actor}

	dto, err := f.service.Create(context.Background(), &actor, CreateTodoInput{
		Title:      "categorized",
		CategoryID: &catID,
	})
	require.NoError(t, err)
	require.NotNil(t, dto.Category)
	assert.Equal(t, catID, dto.Category.Id)
	assert.Equal(t, "work", dto.Category.Name)
}

func TestViewToleratesDanglingCategory(t *testing.T) {
	f := newFixture()

	catID := uuid.New()
	dto, err := f.service.Create(context.Background(), nil, CreateTodoInput{
		Title:      "orphaned category",
		CategoryID: &catID,
	})
	require.NoError(t, err)
	assert.Nil(t, dto.Category)
}
