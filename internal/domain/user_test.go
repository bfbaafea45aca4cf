package domain_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck-api/internal/domain"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	t.Run("valid user", func(t *testing.T) {
		t.Parallel()

		user, err := domain.NewUser("alice@example.com", "correct horse battery")
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.False(t, user.CreatedAt.IsZero())
	})

	t.Run("email normalized to lowercase", func(t *testing.T) {
		t.Parallel()

		user, err := domain.NewUser("  Alice@Example.COM ", "correct horse battery")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("invalid email rejected", func(t *testing.T) {
		t.Parallel()

		for _, email := range []string{"", "no-at-sign", "@example.com", "alice@", "alice@nodot"} {
			_, err := domain.NewUser(email, "correct horse battery")
			assert.Error(t, err, "expected %q to be rejected", email)
		}
	})

	t.Run("short password rejected", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewUser("alice@example.com", "short")
		assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
	})

	t.Run("over-long password rejected", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewUser("alice@example.com", strings.Repeat("x", domain.PasswordMaxLength+1))
		assert.ErrorIs(t, err, domain.ErrPasswordTooLong)
	})
}

func TestUserValidateStoredUser(t *testing.T) {
	t.Parallel()

	// A user loaded from the store has no plaintext password, only the hash.
	user := &domain.User{
		ID:             uuid.New(),
		Email:          "alice@example.com",
		HashedPassword: "$2a$10$abcdefghijklmnopqrstuv",
	}
	assert.NoError(t, user.Validate())

	user.HashedPassword = ""
	assert.ErrorIs(t, user.Validate(), domain.ErrEmptyPassword)
}
