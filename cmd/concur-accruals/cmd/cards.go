package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/concur-accruals/internal/accruals"
	"github.com/donaldgifford/concur-accruals/internal/api/client"
	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

func cardsCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cards",
		Short: "Query a user's card transactions",
	}
	root.AddCommand(cardsTotalsCmd())
	return root
}

func cardsTotalsCmd() *cobra.Command {
	var (
		principal string
		req       client.TotalsRequest
	)
	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Total a user's card transactions by program and employee",
		Example: `  concur-accruals cards totals --principal ada@example.com --from 2026-06-01 --to 2026-06-30
  concur-accruals cards totals --principal ada@example.com --from 2026-06-01 --to 2026-06-30 --date-type POSTED`,
		RunE: func(c *cobra.Command, _ []string) error {
			principal = strings.TrimSpace(principal)
			if principal == "" {
				return errors.New("--principal is required")
			}

			totals, err := cardTotals(c, principal, req)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(c.OutOrStdout(), totals)
			}
			return printCardTotals(c.OutOrStdout(), totals)
		},
	}
	cmd.Flags().StringVar(&principal, "principal", "", "UPN or email of the card holder")
	cmd.Flags().StringVar(&req.TransactionDateFrom, "from", "", "window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.TransactionDateTo, "to", "", "window end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.DateType, "date-type", "TRANSACTION", "TRANSACTION, POSTED or BILLING")
	cmd.Flags().StringVar(&req.Status, "status", "", "upstream status code (default: every status)")
	cmd.Flags().IntVar(&req.PageSize, "page-size", 0, "upstream page size (1-500)")
	cobra.CheckErr(cmd.MarkFlagRequired("from"))
	cobra.CheckErr(cmd.MarkFlagRequired("to"))
	return cmd
}

func cardTotals(c *cobra.Command, principal string, req client.TotalsRequest) (*domain.CardTotals, error) {
	if api, ok := apiClient(client.WithPrincipal(principal)); ok {
		return api.CardTotals(c.Context(), req)
	}

	a, err := setupApp(c)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	return a.service.CardTotals(c.Context(), principal, accruals.TotalsRequest{
		DateFrom: req.TransactionDateFrom,
		DateTo:   req.TransactionDateTo,
		DateType: req.DateType,
		Status:   req.Status,
		PageSize: req.PageSize,
	})
}
