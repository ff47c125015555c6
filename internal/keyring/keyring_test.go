package keyring_test

import (
	"testing"

	"github.com/alkime/healthvoice/internal/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	zkeyring "github.com/zalando/go-keyring"
)

func TestResolve(t *testing.T) {
	zkeyring.MockInit()

	got, err := keyring.Resolve(keyring.OpenAI, "")
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, keyring.Set(keyring.OpenAI, "sk-keychain"))
	assert.True(t, keyring.IsSet(keyring.OpenAI))

	got, err = keyring.Resolve(keyring.OpenAI, "")
	require.NoError(t, err)
	assert.Equal(t, "sk-keychain", got)

	got, err = keyring.Resolve(keyring.OpenAI, "sk-env")
	require.NoError(t, err)
	assert.Equal(t, "sk-env", got)
}

func TestSet_RejectsEmpty(t *testing.T) {
	zkeyring.MockInit()

	require.Error(t, keyring.Set(keyring.OpenAI, ""))
	assert.False(t, keyring.IsSet(keyring.OpenAI))
}

func TestAPIKeyFromServiceName(t *testing.T) {
	k, err := keyring.APIKeyFromServiceName("openai")
	require.NoError(t, err)
	assert.Equal(t, keyring.OpenAI, k)
	assert.Equal(t, "openai", k.DisplayName())

	_, err = keyring.APIKeyFromServiceName("anthropic")
	require.ErrorContains(t, err, "unknown service")
}
