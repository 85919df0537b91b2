package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/concur-accruals/internal/secrets"
	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

func secretsCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "secrets",
		Short: "Inspect the secret sources behind the Concur credentials",
	}
	root.AddCommand(secretsStatusCmd(), secretsRotationsCmd())
	return root
}

func secretsStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which secret stores are consulted, in order",
		RunE: func(c *cobra.Command, _ []string) error {
			if api, ok := apiClient(); ok {
				st, err := api.SecretsStatus(c.Context())
				if err != nil {
					return err
				}
				if jsonOutput() {
					return outputJSON(c.OutOrStdout(), st)
				}
				return printSecretsStatus(c.OutOrStdout(), *st)
			}

			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			sources, _, err := buildSecrets(cfg.Secrets, nil, log)
			if err != nil {
				return err
			}
			st := sources.Status()
			if jsonOutput() {
				return outputJSON(c.OutOrStdout(), st)
			}
			if err := printSecretsStatus(c.OutOrStdout(), st); err != nil {
				return err
			}
			return printCredentialCheck(c, sources)
		},
	}
}

func secretsRotationsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "rotations",
		Short: "Show when the refresh token was last rotated",
		RunE: func(c *cobra.Command, _ []string) error {
			rotations, err := listRotations(c, limit)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(c.OutOrStdout(), rotations)
			}
			if len(rotations) == 0 {
				_, err := fmt.Fprintln(c.OutOrStdout(), "No rotations recorded.")
				return err
			}
			return printRotationsTable(c.OutOrStdout(), rotations)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum rotations to show (1-20)")
	return cmd
}

func listRotations(c *cobra.Command, limit int) ([]domain.RefreshTokenRotation, error) {
	if limit < 1 || limit > 20 {
		return nil, fmt.Errorf("--limit must be 1..20 (got %d)", limit)
	}
	if api, ok := apiClient(); ok {
		return api.ListRotations(c.Context(), limit)
	}

	a, err := setupApp(c)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	if a.store == nil {
		return nil, errors.New("database.host is not configured; pass --server to ask a running server")
	}
	return a.store.ListRefreshTokenRotations(c.Context(), limit)
}

func printCredentialCheck(c *cobra.Command, sources secrets.Sources) error {
	_, err := secrets.LoadCredentials(c.Context(), sources.Chain)
	if err != nil {
		_, werr := fmt.Fprintf(c.OutOrStdout(), "Credentials:\tincomplete\n%v\n", err)
		return werr
	}
	_, err = fmt.Fprintln(c.OutOrStdout(), "Credentials:\tcomplete")
	return err
}
