package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/karte/internal/sqlite"
	"github.com/mesh-intelligence/karte/pkg/types"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export <table>",
		Short: "Dump a table as CSV or JSONL",
		Long: "Export writes every row of projects, notes, resources or ideas with the\n" +
			"stored values unchanged. Output goes to stdout unless --out is given.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: types.StandardTableNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := args[0]
			f := types.ExportFormat(format)
			if f != types.ExportCSV && f != types.ExportJSONL {
				return userErrorf("unknown format %q (valid: csv, jsonl)", format)
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Detach()

			write := func(w io.Writer) error {
				return store.Export(table, f, w)
			}
			if out == "" {
				err = write(cmd.OutOrStdout())
			} else {
				err = sqlite.WriteFileAtomic(out, write)
			}
			if err != nil {
				if errors.Is(err, types.ErrTableNotFound) {
					return userErrorf("unknown table %q (valid: %v)", table, types.StandardTableNames)
				}
				return sysError(fmt.Errorf("export %s: %w", table, err))
			}
			if out != "" {
				a.log.Info().Str("table", table).Str("path", out).Msg("table exported")
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s to %s\n", table, out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", string(types.ExportCSV), "output format: csv or jsonl")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")
	return cmd
}
