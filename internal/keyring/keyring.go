// Package keyring stores the speech recognition API key in the system keychain.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const serviceName = "healthvoice"

// APIKey names a keychain entry.
type APIKey string

// OpenAI is the key used for Whisper transcription.
const OpenAI APIKey = "openai-api-key"

// AllAPIKeys returns every known key.
func AllAPIKeys() []APIKey {
	return []APIKey{OpenAI}
}

// DisplayName returns the service name users type on the command line.
func (k APIKey) DisplayName() string {
	if k == OpenAI {
		return "openai"
	}

	return string(k)
}

// Get reads a key from the keychain.
func Get(apiKey APIKey) (string, error) {
	value, err := keyring.Get(serviceName, string(apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to get %s from keychain: %w", apiKey.DisplayName(), err)
	}

	return value, nil
}

// Set writes a key to the keychain.
func Set(apiKey APIKey, value string) error {
	if value == "" {
		return fmt.Errorf("empty value for %s", apiKey.DisplayName())
	}

	if err := keyring.Set(serviceName, string(apiKey), value); err != nil {
		return fmt.Errorf("failed to set %s in keychain: %w", apiKey.DisplayName(), err)
	}

	return nil
}

// IsSet reports whether the keychain holds apiKey.
func IsSet(apiKey APIKey) bool {
	_, err := keyring.Get(serviceName, string(apiKey))

	return err == nil
}

// Resolve prefers the environment value and falls back to the keychain. A
// missing keychain entry is not an error and yields "".
func Resolve(apiKey APIKey, fromEnv string) (string, error) {
	if fromEnv != "" {
		return fromEnv, nil
	}

	value, err := keyring.Get(serviceName, string(apiKey))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("failed to get %s from keychain: %w", apiKey.DisplayName(), err)
	}

	return value, nil
}

// APIKeyFromServiceName maps "openai" to its APIKey.
func APIKeyFromServiceName(name string) (APIKey, error) {
	if name == "openai" {
		return OpenAI, nil
	}

	return "", fmt.Errorf("unknown service: %s", name)
}
