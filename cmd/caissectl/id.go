package main

import (
	"fmt"

	"caisse/internal/model"

	"github.com/spf13/cobra"
)

func idCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "id",
		Short: "Work with request identifiers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:     "parse <id>",
		Short:   "Decode an identifier such as FUND/2025/03/0007",
		Example: "  caissectl id parse PAY/2024/11/0042",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParseRequestID(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("kind:      %s\n", id.Kind)
			fmt.Printf("period:    %s\n", id.Period())
			fmt.Printf("sequence:  %d\n", id.Seq)
			fmt.Printf("canonical: %s\n", id)
			return nil
		},
	})
	return cmd
}
