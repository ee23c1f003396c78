package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"salescrm/internal/modules/conversion"
	"salescrm/internal/repository"
)

func newReconcileCmd(c *cli) *cobra.Command {
	var (
		fix    bool
		minAge time.Duration
	)
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "List accounts and contacts left behind by failed lead conversions",
		Long: `Scans accounts and contacts created from a lead and reports those the lead
does not point back to. With --fix the orphans are deleted, contacts first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := conversion.NewReconciler(
				repository.NewLeadRepository(c.db),
				repository.NewAccountRepository(c.db),
				repository.NewContactRepository(c.db),
				c.log,
			)
			r.MinAge = minAge

			orphans, err := r.Scan(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(orphans) == 0 {
				fmt.Fprintln(out, "no orphans found")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tID\tNAME\tLEAD\tREASON")
			for _, o := range orphans {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", o.Kind, o.ID, o.Name, o.LeadID, o.Reason)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if !fix {
				fmt.Fprintf(out, "%d orphans found, rerun with --fix to delete them\n", len(orphans))
				return nil
			}
			n, err := r.Fix(cmd.Context(), orphans)
			fmt.Fprintf(out, "deleted %d of %d orphans\n", n, len(orphans))
			return err
		},
	}
	cmd.Flags().BoolVar(&fix, "fix", false, "delete the orphans")
	cmd.Flags().DurationVar(&minAge, "min-age", 5*time.Minute, "skip records younger than this")
	return cmd
}
