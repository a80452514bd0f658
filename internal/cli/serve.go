package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/karte/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the browser UI",
		Long:  "Serve the browser UI on the configured address until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Detach()

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "karte serving on http://%s\n", a.settings.Listen)
			srv := web.NewServer(store, a.settings.uploadsDir(), a.log)
			if err := srv.Run(ctx, a.settings.Listen); err != nil {
				return sysError(fmt.Errorf("serve: %w", err))
			}
			return nil
		},
	}
	cmd.Flags().String("listen", defaultListen, "address to listen on")
	return cmd
}

// commandContext returns cmd's context, or Background when run without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
