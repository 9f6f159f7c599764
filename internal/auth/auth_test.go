package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "shortlink/internal/errors"
)

func TestStaticTokenProvider(t *testing.T) {
	provider := NewStaticTokenProvider(map[string]string{
		"token-a": "owner-a",
		"token-b": "owner-b",
	})

	owner, err := provider.Authenticate("token-a")
	require.NoError(t, err)
	assert.Equal(t, "owner-a", owner)

	_, err = provider.Authenticate("unknown")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, err = provider.Authenticate("")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}
