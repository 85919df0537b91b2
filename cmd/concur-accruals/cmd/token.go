package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func tokenCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "token",
		Short: "Inspect and exercise the Concur OAuth session",
		Long: "Force a refresh-token exchange or run the end-to-end auth smoke test.\n" +
			"Rotated refresh tokens are persisted to the configured secret stores.\n" +
			"Token values are never printed.",
	}
	root.AddCommand(tokenRefreshCmd(), tokenTestCmd())
	return root
}

func tokenRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the refresh token for a new access token",
		Example: `  concur-accruals token refresh
  concur-accruals token refresh --output json`,
		RunE: func(c *cobra.Command, _ []string) error {
			a, err := setupApp(c)
			if err != nil {
				return err
			}
			defer a.Close()

			tok, err := a.tokens.Refresh(c.Context())
			if err != nil {
				return err
			}

			out := struct {
				TokenType string    `json:"token_type"`
				Expiry    time.Time `json:"expiry"`
				TokenURL  string    `json:"token_url"`
			}{tok.Type(), tok.Expiry, a.tokenURL}
			if jsonOutput() {
				return outputJSON(c.OutOrStdout(), out)
			}
			_, err = fmt.Fprintf(c.OutOrStdout(), "refreshed %s token from %s, expires %s\n",
				out.TokenType, out.TokenURL, out.Expiry.Format(time.RFC3339))
			return err
		},
	}
}

func tokenTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Refresh the token and fetch one directory user",
		RunE: func(c *cobra.Command, _ []string) error {
			a, err := setupApp(c)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.service.AuthTest(c.Context())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(c.OutOrStdout(), res)
			}
			if _, err := fmt.Fprintf(c.OutOrStdout(), "auth ok, token expires %s\n",
				res.TokenExpiry.Format(time.RFC3339)); err != nil {
				return err
			}
			return printUsersTable(c.OutOrStdout(), res.Sample)
		},
	}
}

// setupApp loads config and wires the Concur stack for a one-shot command.
func setupApp(c *cobra.Command) (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newApp(c.Context(), cfg, log)
}
