package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"salescrm/internal/repository"
)

func newTokensCmd(c *cli) *cobra.Command {
	tokens := &cobra.Command{
		Use:   "tokens",
		Short: "Refresh token maintenance",
	}
	tokens.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Delete expired refresh tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := repository.NewRefreshTokenRepository(c.db).DeleteExpired(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired refresh tokens\n", n)
			return nil
		},
	})
	return tokens
}
