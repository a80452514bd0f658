package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/karte/internal/paths"
	"github.com/mesh-intelligence/karte/internal/sqlite"
)

// initResult is the JSON shape of "init".
type initResult struct {
	ConfigFile    string `json:"config_file"`
	ConfigWritten bool   `json:"config_written"`
	Database      string `json:"database"`
	UploadsDir    string `json:"uploads_dir"`
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize karte storage",
		Long: "Create the configuration and data directories, write a default config.yaml\n" +
			"if none exists, and create the database tables. Running init again keeps\n" +
			"existing data.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd)
		},
	}
}

func (a *app) runInit(cmd *cobra.Command) error {
	s := a.settings

	written, err := writeConfigIfMissing(s.ConfigDir, s.DataDir)
	if err != nil {
		return sysError(err)
	}

	cfg := s.storeConfig()
	backend := sqlite.NewBackend()
	if err := backend.Attach(cfg); err != nil {
		return sysError(fmt.Errorf("initialize storage: %w", err))
	}
	if err := backend.Detach(); err != nil {
		return sysError(fmt.Errorf("finalize storage: %w", err))
	}

	dir := s.uploadsDir()
	if err := os.MkdirAll(dir.Root(), 0o755); err != nil {
		return sysError(fmt.Errorf("create uploads directory: %w", err))
	}

	a.log.Info().
		Str("config_dir", s.ConfigDir).
		Str("data_dir", s.DataDir).
		Bool("config_written", written).
		Msg("storage initialized")

	res := initResult{
		ConfigFile:    paths.ConfigFile(s.ConfigDir),
		ConfigWritten: written,
		Database:      cfg.DBPath(),
		UploadsDir:    dir.Root(),
	}
	if a.flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), res)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "karte initialized")
	fmt.Fprintf(cmd.OutOrStdout(), "  config:   %s\n", res.ConfigFile)
	fmt.Fprintf(cmd.OutOrStdout(), "  database: %s\n", res.Database)
	fmt.Fprintf(cmd.OutOrStdout(), "  uploads:  %s\n", res.UploadsDir)
	return nil
}
