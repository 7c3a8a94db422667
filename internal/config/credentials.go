package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/jonathan/people-crossref/internal/types"
)

const (
	// KeyringService groups the stored secret in the OS keychain.
	KeyringService = "crossref"

	EnvUser = "CROSSREF_USER"
	EnvPass = "CROSSREF_PASS"

	legacyEnvUser = "LINKEDIN_USER"
	legacyEnvPass = "LINKEDIN_PASS"
)

// LoadCredentials reads the username and secret from the environment. When
// the secret is unset, the keychain entry for the username is used.
func LoadCredentials() (types.Credentials, error) {
	user := firstEnv(EnvUser, legacyEnvUser)
	if user == "" {
		return types.Credentials{}, &ConfigurationError{
			Field:   EnvUser,
			Message: "is required (set it in the environment or .env)",
		}
	}

	secret := firstEnv(EnvPass, legacyEnvPass)
	if secret == "" {
		pw, err := keyring.Get(KeyringService, user)
		switch {
		case err == nil:
			secret = pw
		case errors.Is(err, keyring.ErrNotFound):
		default:
			return types.Credentials{}, fmt.Errorf("failed to read keychain: %w", err)
		}
	}
	if strings.TrimSpace(secret) == "" {
		return types.Credentials{}, &ConfigurationError{
			Field:   EnvPass,
			Message: "is required (set it in the environment, .env, or with 'crossref credentials set')",
		}
	}

	creds := types.Credentials{Username: user, Secret: secret}
	if err := creds.Validate(); err != nil {
		return types.Credentials{}, &ConfigurationError{Field: "credentials", Message: err.Error()}
	}
	return creds, nil
}

// StoreSecret saves secret in the keychain under username.
func StoreSecret(username, secret string) error {
	if strings.TrimSpace(username) == "" {
		return &ConfigurationError{Field: "username", Message: "is empty"}
	}
	if strings.TrimSpace(secret) == "" {
		return &ConfigurationError{Field: "secret", Message: "is empty"}
	}
	if err := keyring.Set(KeyringService, username, secret); err != nil {
		return fmt.Errorf("failed to write keychain: %w", err)
	}
	return nil
}

// DeleteSecret removes the keychain entry for username. A missing entry is not an error.
func DeleteSecret(username string) error {
	if strings.TrimSpace(username) == "" {
		return &ConfigurationError{Field: "username", Message: "is empty"}
	}
	if err := keyring.Delete(KeyringService, username); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete keychain entry: %w", err)
	}
	return nil
}

// Username returns the configured username, or "" when unset.
func Username() string {
	return firstEnv(EnvUser, legacyEnvUser)
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}
