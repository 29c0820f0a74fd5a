package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestNewKeyring_EnvOverride(t *testing.T) {
	t.Setenv(EnvKey, "from-env")

	k := NewKeyring()
	key, err := k.GetKey()
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)
	assert.True(t, k.IsAvailable())
}

func TestPlatformKeyring_MockProvider(t *testing.T) {
	keyring.MockInit()
	t.Setenv(EnvKey, "")

	k := NewKeyring()
	_, err := k.GetKey()
	assert.Error(t, err)

	require.NoError(t, k.SetKey("hunter2"))
	key, err := k.GetKey()
	require.NoError(t, err)
	assert.Equal(t, "hunter2", key)

	assert.Error(t, k.SetKey(""))

	require.NoError(t, k.DeleteKey())
	_, err = k.GetKey()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvKey)

	assert.Error(t, k.DeleteKey())
	assert.True(t, k.IsAvailable())
}
