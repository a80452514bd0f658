package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every record and recreate empty tables",
		Long: "Reset drops all cases, notes, resources and ideas. It cannot be undone.\n" +
			"Uploaded files are left in place. --yes is required.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return userErrorf("reset deletes every record; pass --yes to confirm")
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Detach()

			if err := store.Reset(); err != nil {
				return sysError(fmt.Errorf("reset: %w", err))
			}
			a.log.Warn().Msg("all tables reset")
			fmt.Fprintln(cmd.OutOrStdout(), "All records deleted")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
