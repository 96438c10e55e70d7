package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkspot/internal/apperr"
	"parkspot/internal/db"
)

type fakeUserRepo struct {
	byEmail map[string]*db.User
	byID    map[string]*db.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*db.User), byID: make(map[string]*db.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *db.User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return apperr.ErrEmailTaken
	}
	clone := *u
	f.byEmail[u.Email] = &clone
	f.byID[u.ID] = &clone
	return nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*db.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, apperr.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*db.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, apperr.ErrUserNotFound
	}
	return u, nil
}

func TestRegisterLoginVerify(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Ana", "ana@example.com", "hunter2hunter2", "+5491122334455")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	// Password is stored hashed only.
	assert.NotContains(t, user.PasswordHash, "hunter2")

	token, err := svc.Login(ctx, "ana@example.com", "hunter2hunter2")
	require.NoError(t, err)

	userID, isAdmin, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.False(t, isAdmin)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ana", "ana@example.com", "hunter2hunter2", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other Ana", "ana@example.com", "different-pass", "")
	assert.ErrorIs(t, err, apperr.ErrEmailTaken)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ana", "ana@example.com", "hunter2hunter2", "")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestVerifyTokenRejectsForgeries(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ana", "ana@example.com", "hunter2hunter2", "")
	require.NoError(t, err)
	token, err := svc.Login(ctx, "ana@example.com", "hunter2hunter2")
	require.NoError(t, err)

	_, _, err = svc.VerifyToken(token + "tampered")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	// A token signed with a different secret does not verify.
	other := NewAuthService(repo, "other-secret", time.Hour)
	_, _, err = other.VerifyToken(token)
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestVerifyTokenExpired(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, "test-secret", -time.Minute)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ana", "ana@example.com", "hunter2hunter2", "")
	require.NoError(t, err)
	token, err := svc.Login(ctx, "ana@example.com", "hunter2hunter2")
	require.NoError(t, err)

	_, _, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}
