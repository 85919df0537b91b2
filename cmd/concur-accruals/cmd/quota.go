package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

func quotaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "Show a running server's Concur call budget",
		Long: "The call budget is tracked by the serving process, so this command\n" +
			"requires --server.",
		Example: `  concur-accruals quota --server http://localhost:8080`,
		RunE: func(c *cobra.Command, _ []string) error {
			api, ok := apiClient()
			if !ok {
				return errors.New("quota is tracked by the serving process; pass --server")
			}
			q, err := api.GetQuota(c.Context())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(c.OutOrStdout(), q)
			}
			return printQuota(c.OutOrStdout(), q)
		},
	}
}
