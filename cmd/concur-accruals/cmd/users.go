package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func usersCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "users",
		Short: "Query the Concur user directory",
	}
	root.AddCommand(usersListCmd(), usersGetCmd())
	return root
}

func usersListCmd() *cobra.Command {
	var take int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List directory users",
		Example: `  concur-accruals users list --take 25
  concur-accruals users list --output json`,
		RunE: func(c *cobra.Command, _ []string) error {
			a, err := setupApp(c)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.service.ListUsers(c.Context(), take)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(c.OutOrStdout(), list)
			}
			if list.Returned == 0 {
				_, err := fmt.Fprintln(c.OutOrStdout(), "No users found.")
				return err
			}
			return printUsersTable(c.OutOrStdout(), list.Users)
		},
	}
	cmd.Flags().IntVar(&take, "take", 500, "maximum users to return (1-5000)")
	return cmd
}

func usersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id|upn>",
		Short: "Show one directory user",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			a, err := setupApp(c)
			if err != nil {
				return err
			}
			defer a.Close()

			id := args[0]
			if strings.Contains(id, "@") {
				if id, err = a.service.ResolveUserID(c.Context(), id); err != nil {
					return err
				}
			}
			detail, err := a.service.GetUser(c.Context(), id)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(c.OutOrStdout(), detail)
			}
			return printRecordDetail(c.OutOrStdout(), detail.User)
		},
	}
}
