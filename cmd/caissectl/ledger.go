package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"caisse/internal/model"
	"caisse/internal/repository"

	"github.com/spf13/cobra"
)

func balancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "Show the balance of every currency",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			balances, err := e.ledger().Balances(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CURRENCY\tBALANCE\tUPDATED")
			for _, b := range balances {
				fmt.Fprintf(w, "%s\t%s\t%s\n", b.Currency, b.Balance.StringFixed(2), b.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Recompute balances from the transaction log",
		Long: `Compare each stored balance with the sum of its transactions.
Exits non-zero when any currency drifted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			report, err := e.ledger().Verify(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CURRENCY\tBALANCE\tCOMPUTED\tENTRIES\tOK")
			for _, c := range report.Currencies {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\n", c.Currency, c.Balance.StringFixed(2), c.Computed.StringFixed(2), c.Entries, c.Consistent)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if !report.Consistent {
				return fmt.Errorf("ledger is inconsistent")
			}
			return nil
		},
	}
}

func transactionsCmd() *cobra.Command {
	var (
		currency string
		request  string
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List ledger transactions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := repository.LedgerFilter{RelatedRequestID: request, Page: 1, Limit: limit}
			if currency != "" {
				c, err := model.ParseCurrency(currency)
				if err != nil {
					return err
				}
				filter.Currency = c
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			items, total, err := e.ledger().Transactions(cmd.Context(), filter)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tTYPE\tCURRENCY\tAMOUNT\tREQUEST\tACTOR")
			for _, tx := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					tx.CreatedAt.Format("2006-01-02 15:04"), tx.Type, tx.Currency, tx.Amount.StringFixed(2), tx.RelatedRequestID, tx.Actor)
			}
			fmt.Fprintf(w, "\n%d of %d\n", len(items), total)
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&currency, "currency", "c", "", "XOF, EUR or USD")
	cmd.Flags().StringVarP(&request, "request", "r", "", "related request reference")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum rows")
	return cmd
}
