package user

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasklane/internal/auth"
	"tasklane/internal/config"
	domcommon "tasklane/internal/domain/common"
	dom "tasklane/internal/domain/user"
	"tasklane/internal/events"
	"tasklane/internal/logging"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*dom.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*dom.User)}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*dom.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domcommon.NewNotFound("user")
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*dom.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domcommon.NewNotFound("user")
}

func (r *fakeUserRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) Create(_ context.Context, u *dom.User) error {
	u.ID = uuid.New()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *dom.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return domcommon.NewNotFound("user")
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.users[id]; !ok {
		return domcommon.NewNotFound("user")
	}
	delete(r.users, id)
	return nil
}

type recordingPublisher struct {
	published []events.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event events.DomainEvent, _ *uuid.UUID) error {
	p.published = append(p.published, event)
	return nil
}

func (p *recordingPublisher) IsEnabled() bool { return true }

func newTestService() (Service, *fakeUserRepo, *recordingPublisher, *auth.Issuer) {
	repo := newFakeUserRepo()
	publisher := &recordingPublisher{}
	issuer := auth.NewIssuer(config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour})
	svc := NewService(repo, issuer, publisher, logging.NewNop())
	return svc, repo, publisher, issuer
}

func TestRegisterHashesPasswordAndPublishes(t *testing.T) {
	svc, repo, publisher, _ := newTestService()

	dto, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", dto.Username)
	assert.True(t, dto.IsActive)

	stored := repo.users[dto.Id]
	require.NotNil(t, stored)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$2"))

	require.Len(t, publisher.published, 1)
	registered := publisher.published[0].(events.UserRegistered)
	assert.Equal(t, dto.Id, registered.UserID)
	assert.Equal(t, "alice", registered.Username)
}

func TestRegisterDuplicateIsConflict(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "other@example.com",
		Password: "s3cret-pass",
	})
	assert.True(t, IsConflict(err))

	_, err = svc.Register(context.Background(), RegisterInput{
		Username: "bob",
		Email:    "alice@example.com",
		Password: "s3cret-pass",
	})
	assert.True(t, IsConflict(err))
}

func TestLoginReturnsVerifiableToken(t *testing.T) {
	svc, _, publisher, issuer := newTestService()

	registered, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	got, err := svc.Login(context.Background(), LoginInput{Username: "alice", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, registered.Id, got.User.Id)

	claims, err := issuer.Verify(got.Token)
	require.NoError(t, err)
	subject, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, registered.Id, subject)

	types := make([]string, 0, len(publisher.published))
	for _, e := range publisher.published {
		types = append(types, e.EventType())
	}
	assert.Equal(t, []string{events.TypeUserRegistered, events.TypeUserLoggedIn}, types)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, repo, _, _ := newTestService()

	dto, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginInput{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginInput{Username: "nobody", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Inactive accounts cannot log in even with the right password.
	repo.users[dto.Id].IsActive = false
	_, err = svc.Login(context.Background(), LoginInput{Username: "alice", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateAppliesPartialPatch(t *testing.T) {
	svc, _, _, _ := newTestService()

	dto, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	name := "Alice Smith"
	updated, err := svc.Update(context.Background(), UpdateUserInput{ID: dto.Id, FullName: &name})
	require.NoError(t, err)
	require.NotNil(t, updated.FullName)
	assert.Equal(t, name, *updated.FullName)
	assert.Equal(t, "alice@example.com", updated.Email)
}

func TestDeleteMissingUserIsNotFound(t *testing.T) {
	svc, _, _, _ := newTestService()

	err := svc.Delete(context.Background(), uuid.New())
	assert.True(t, IsNotFound(err))
}
