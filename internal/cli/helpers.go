package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/karte/pkg/sqlite"
	"github.com/mesh-intelligence/karte/pkg/types"
)

// openStore attaches the record store for the resolved data directory.
// The caller must defer store.Detach().
func (a *app) openStore() (types.Store, error) {
	cfg := a.settings.storeConfig()
	store, err := sqlite.Open(cfg)
	if err != nil {
		return nil, sysError(fmt.Errorf("attach store: %w", err))
	}
	a.log.Debug().Str("db", cfg.DBPath()).Msg("store attached")
	return store, nil
}

// withTable opens the store and runs fn with the named table.
func (a *app) withTable(name string, fn func(store types.Store, tbl types.Table) error) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	tbl, err := store.GetTable(name)
	if err != nil {
		return sysError(err)
	}
	return fn(store, tbl)
}

// storeError classifies an error from a table operation.
func storeError(op string, err error) error {
	for _, target := range []error{
		types.ErrNotFound,
		types.ErrInvalidID,
		types.ErrInvalidFilter,
		types.ErrInvalidTitle,
		types.ErrInvalidContent,
		types.ErrInvalidProgress,
		types.ErrInvalidNoteDate,
		types.ErrInvalidProject,
	} {
		if errors.Is(err, target) {
			return userError(fmt.Errorf("%s: %w", op, err))
		}
	}
	return sysError(fmt.Errorf("%s: %w", op, err))
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal JSON: %w", err))
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// newTable returns a tab-aligned writer for list output.
func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, userErrorf("invalid id %q", arg)
	}
	return id, nil
}

// parseOptionalDate parses a --date style flag. Empty yields nil.
func parseOptionalDate(flag, value string) (*time.Time, error) {
	d, err := types.ParseDate(value)
	if err != nil {
		return nil, userErrorf("--%s must be YYYY-MM-DD: %q", flag, value)
	}
	return d, nil
}

// optionalProjectID converts a --project flag, where 0 means none.
func optionalProjectID(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}

// changed reports whether the named flag was set on the command line.
func changed(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

// truncate shortens s to n runes for list output.
func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(types.DateLayout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// requireProject fails with a user error when the case id does not exist.
// A nil id means no case and always passes.
func requireProject(store types.Store, id *int64) error {
	if id == nil {
		return nil
	}
	projects, err := store.GetTable(types.TableProjects)
	if err != nil {
		return sysError(err)
	}
	if _, err := projects.Get(*id); err != nil {
		return storeError(fmt.Sprintf("case %d", *id), err)
	}
	return nil
}
