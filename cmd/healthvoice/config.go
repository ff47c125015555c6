package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alkime/healthvoice/internal/keyring"
)

// ConfigCmd groups configuration-related subcommands.
type ConfigCmd struct {
	SetKey   SetKeyCmd   `cmd:"" help:"Store an API key in system keychain"`
	ListKeys ListKeysCmd `cmd:"" name:"list-keys" help:"Show which API keys are configured"`
}

// SetKeyCmd stores an API key in the system keychain.
type SetKeyCmd struct {
	Service string `arg:"" enum:"openai" help:"Service name (openai)"`
	Secret  string `arg:"" help:"API key value"`
}

func (c *SetKeyCmd) Run() error {
	if strings.TrimSpace(c.Secret) == "" {
		return errors.New("API key cannot be empty")
	}

	apiKey, err := keyring.APIKeyFromServiceName(c.Service)
	if err != nil {
		return fmt.Errorf("invalid service: %w", err)
	}

	if err := keyring.Set(apiKey, strings.TrimSpace(c.Secret)); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}

	fmt.Printf("%s API key stored in keychain\n", c.Service)

	return nil
}

// ListKeysCmd shows which API keys are configured.
type ListKeysCmd struct{}

//nolint:unparam // error return required by Kong interface
func (c *ListKeysCmd) Run() error {
	for _, apiKey := range keyring.AllAPIKeys() {
		status := "not set"
		if keyring.IsSet(apiKey) {
			status = "configured"
		}

		fmt.Printf("%s: %s\n", apiKey.DisplayName(), status)
	}

	fmt.Println("\nHEALTHVOICE_OPENAI_API_KEY takes precedence over the keychain.")

	return nil
}
