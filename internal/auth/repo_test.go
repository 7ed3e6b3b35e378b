package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A second insert for the same username models a registration that raced
// past the handler's existence check; the unique constraint must surface
// as ErrUsernameTaken, not a generic store error.
func TestCreateUserDuplicateUsername(t *testing.T) {
	repo := NewRepo(newTestDB(t))

	first := User{ID: uuid.NewString(), Username: "saitama", PasswordHash: "x"}
	require.NoError(t, repo.CreateUser(t.Context(), first))

	second := User{ID: uuid.NewString(), Username: "saitama", PasswordHash: "y"}
	err := repo.CreateUser(t.Context(), second)
	require.ErrorIs(t, err, ErrUsernameTaken)

	// the original row is untouched
	got, err := repo.GetByUsername(t.Context(), "saitama")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)
}
