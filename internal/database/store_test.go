package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ibcoder/portfolio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(username, email string) *domain.User {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$10$hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// runStoreSuite exercises the domain.Store contract against any backend.
func runStoreSuite(t *testing.T, store domain.Store) {
	ctx := context.Background()

	t.Run("create and find user", func(t *testing.T) {
		user := newTestUser("ada", "Ada@Gmail.com")
		require.NoError(t, store.CreateUser(ctx, user))

		found, err := store.FindUserByEmail(ctx, "ada@gmail.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
		assert.Equal(t, "ada@gmail.com", found.Email)
		assert.False(t, found.EmailVerified)

		byID, err := store.FindUserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "ada", byID.Username)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		require.NoError(t, store.CreateUser(ctx, newTestUser("grace", "grace@gmail.com")))

		err := store.CreateUser(ctx, newTestUser("grace2", "grace@gmail.com"))
		assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := store.FindUserByEmail(ctx, "nobody@gmail.com")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		err = store.MarkEmailVerified(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("verification code is consumed once", func(t *testing.T) {
		user := newTestUser("linus", "linus@gmail.com")
		require.NoError(t, store.CreateUser(ctx, user))

		now := time.Now().UTC()
		v := &domain.Verification{Code: "123456", UserID: user.ID, ExpiresAt: now.Add(time.Minute), CreatedAt: now}
		require.NoError(t, store.SaveVerification(ctx, v))
		assert.ErrorIs(t, store.SaveVerification(ctx, v), domain.ErrVerificationCodeTaken)

		got, err := store.ConsumeVerification(ctx, "123456", now)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.UserID)

		_, err = store.ConsumeVerification(ctx, "123456", now)
		assert.ErrorIs(t, err, domain.ErrInvalidVerificationCode)
	})

	t.Run("expired verification code", func(t *testing.T) {
		now := time.Now().UTC()
		v := &domain.Verification{Code: "654321", UserID: "u", ExpiresAt: now.Add(-time.Minute), CreatedAt: now.Add(-time.Hour)}
		require.NoError(t, store.SaveVerification(ctx, v))

		_, err := store.ConsumeVerification(ctx, "654321", now)
		assert.ErrorIs(t, err, domain.ErrInvalidVerificationCode)
	})

	t.Run("reset token lifecycle", func(t *testing.T) {
		user := newTestUser("barbara", "barbara@gmail.com")
		require.NoError(t, store.CreateUser(ctx, user))

		now := time.Now().UTC()
		require.NoError(t, store.SetResetToken(ctx, user.ID, "tok", now.Add(time.Hour)))

		found, err := store.FindUserByResetToken(ctx, "tok", now)
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)

		_, err = store.FindUserByResetToken(ctx, "tok", now.Add(2*time.Hour))
		assert.ErrorIs(t, err, domain.ErrInvalidResetToken)

		require.NoError(t, store.UpdatePassword(ctx, user.ID, "newhash"))
		_, err = store.FindUserByResetToken(ctx, "tok", now)
		assert.ErrorIs(t, err, domain.ErrInvalidResetToken)

		updated, err := store.FindUserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "newhash", updated.PasswordHash)
	})

	t.Run("contact message and listing", func(t *testing.T) {
		msg := &domain.ContactMessage{
			ID:        uuid.NewString(),
			Name:      "Ada",
			Email:     "ada@gmail.com",
			Subject:   "Hello",
			Message:   "Nice site",
			CreatedAt: time.Now(),
		}
		require.NoError(t, store.SaveContact(ctx, msg))

		users, err := store.ListUsers(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(users), 3)
	})
}

func TestSQLStore(t *testing.T) {
	runStoreSuite(t, setupSQLiteStore(t))
}

func TestSurrealStore(t *testing.T) {
	runStoreSuite(t, setupSurrealStore(t))
}

func TestSQLStore_MarkEmailVerified(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()

	user := newTestUser("ken", "ken@gmail.com")
	require.NoError(t, store.CreateUser(ctx, user))
	require.NoError(t, store.MarkEmailVerified(ctx, user.ID))

	found, err := store.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, found.EmailVerified)
}
