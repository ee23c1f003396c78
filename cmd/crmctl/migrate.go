package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"salescrm/internal/database"
	"salescrm/internal/repository"
)

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.Migrate(c.db.Gorm(), repository.Models()...); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}
