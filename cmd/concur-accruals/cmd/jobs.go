package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

func jobsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "jobs [job_name]",
		Short: "Show scheduler job runs recorded in the database",
		Long: "Show scheduler job runs. With --server the running server is asked;\n" +
			"otherwise the configured database is read directly.",
		Args: cobra.MaximumNArgs(1),
		Example: `  concur-accruals jobs
  concur-accruals jobs token_refresh --limit 5`,
		RunE: func(c *cobra.Command, args []string) error {
			runs, err := listJobRuns(c, args, limit)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(c.OutOrStdout(), runs)
			}
			if len(runs) == 0 {
				_, err := fmt.Fprintln(c.OutOrStdout(), "No job runs found.")
				return err
			}
			return printJobRunsTable(c.OutOrStdout(), runs)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to show for one job")
	return cmd
}

func listJobRuns(c *cobra.Command, args []string, limit int) ([]domain.JobRun, error) {
	if api, ok := apiClient(); ok {
		if len(args) == 1 {
			return api.GetJobHistory(c.Context(), args[0], limit)
		}
		return api.ListJobs(c.Context())
	}

	a, err := setupApp(c)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	if a.store == nil {
		return nil, errors.New("database.host is not configured; pass --server to ask a running server")
	}
	if len(args) == 1 {
		return a.store.ListJobRuns(c.Context(), args[0], limit)
	}
	return a.store.ListLatestJobRuns(c.Context())
}
