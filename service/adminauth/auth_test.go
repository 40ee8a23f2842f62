package adminauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfiguredTokenValidates(t *testing.T) {
	svc, token, err := NewService("secret-token")
	require.NoError(t, err)
	assert.Equal(t, "secret-token", token)
	assert.True(t, svc.Validate("secret-token"))
	assert.False(t, svc.Validate("wrong"))
}

func TestGeneratedTokenValidates(t *testing.T) {
	svc, token, err := NewService("")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, svc.Validate(token))
}
