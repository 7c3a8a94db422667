package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/people-crossref/internal/config"
)

var credentialsCommand = &cobra.Command{
	Use:   "credentials",
	Short: "Manage the secret stored in the OS keychain",
}

var credentialsUser string

var credentialsSetCommand = &cobra.Command{
	Use:   "set",
	Short: "Store the secret for the configured username in the keychain",
	RunE: func(cmd *cobra.Command, _ []string) error {
		user, err := credentialUsername()
		if err != nil {
			return err
		}
		secret, err := newConsolePrompt(cmd.InOrStdin(), cmd.OutOrStdout()).ask(cmd.Context(), "Secret for "+user+": ")
		if err != nil {
			return err
		}
		if err := config.StoreSecret(user, secret); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stored secret for %s in the keychain\n", user)
		return nil
	},
}

var credentialsDeleteCommand = &cobra.Command{
	Use:   "delete",
	Short: "Remove the keychain secret for the configured username",
	RunE: func(cmd *cobra.Command, _ []string) error {
		user, err := credentialUsername()
		if err != nil {
			return err
		}
		if err := config.DeleteSecret(user); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed keychain secret for %s\n", user)
		return nil
	},
}

func credentialUsername() (string, error) {
	if credentialsUser != "" {
		return credentialsUser, nil
	}
	if user := config.Username(); user != "" {
		return user, nil
	}
	return "", &config.ConfigurationError{Field: config.EnvUser, Message: "is required (or pass --user)"}
}

func init() {
	credentialsCommand.PersistentFlags().StringVar(&credentialsUser, "user", "", "Username (defaults to CROSSREF_USER)")
	credentialsCommand.AddCommand(credentialsSetCommand, credentialsDeleteCommand)
	rootCmd.AddCommand(credentialsCommand)
}
