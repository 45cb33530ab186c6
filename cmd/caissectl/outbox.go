package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"caisse/internal/model"
	"caisse/internal/repository"

	"github.com/spf13/cobra"
)

func outboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Inspect and recover background events",
	}
	cmd.AddCommand(outboxStatusCmd())
	cmd.AddCommand(outboxRetryCmd())
	return cmd
}

func outboxStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Count outbox events by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			counts, err := repository.NewOutboxRepository(e.db).CountByStatus(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STATUS\tCOUNT")
			for _, status := range []model.OutboxStatus{
				model.OutboxPending, model.OutboxProcessing, model.OutboxPublished, model.OutboxFailed, model.OutboxInvalid,
			} {
				fmt.Fprintf(w, "%s\t%d\n", status, counts[status])
			}
			return w.Flush()
		},
	}
}

func outboxRetryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retry",
		Short: "Requeue events that exhausted their attempts",
		Long: `Move every FAILED outbox event back to PENDING with its attempt count reset.
The running service picks them up on its next tick.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			n, err := repository.NewOutboxRepository(e.db).ResetFailed(cmd.Context(), time.Now().UTC())
			if err != nil {
				return err
			}
			fmt.Printf("requeued %d event(s)\n", n)
			return nil
		},
	}
}
