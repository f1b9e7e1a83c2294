package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser("  Shopper@Example.COM ", "s3cret-pass", "Shopper")
	require.NoError(t, err)

	assert.Equal(t, "shopper@example.com", u.Email)
	assert.True(t, u.Active)
	assert.True(t, u.CheckPassword("s3cret-pass"))
	assert.False(t, u.CheckPassword("wrong"))
}

func TestNewUser_Validation(t *testing.T) {
	_, err := NewUser("not-an-email", "s3cret-pass", "")
	assert.Error(t, err)

	_, err = NewUser("shopper@example.com", "short", "")
	assert.Error(t, err)
}

func TestUser_ChangePassword(t *testing.T) {
	u, err := NewUser("shopper@example.com", "s3cret-pass", "")
	require.NoError(t, err)

	assert.Error(t, u.ChangePassword("wrong", "new-password"))
	assert.Error(t, u.ChangePassword("s3cret-pass", "short"))

	require.NoError(t, u.ChangePassword("s3cret-pass", "new-password"))
	assert.True(t, u.CheckPassword("new-password"))
	assert.False(t, u.CheckPassword("s3cret-pass"))
}
