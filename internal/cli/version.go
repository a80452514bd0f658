package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const modulePath = "github.com/mesh-intelligence/karte"

// Version is the release version, overridden at build time with
// -ldflags "-X github.com/mesh-intelligence/karte/internal/cli.Version=...".
var Version = "0.1.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the karte version",
		Args:  cobra.NoArgs,
		// version needs no configuration.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "karte v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
