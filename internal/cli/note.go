package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mesh-intelligence/karte/pkg/types"
)

// noteFlags are the editable note fields.
type noteFlags struct {
	project    int64
	date       string
	author     string
	content    string
	nextAction string
	progress   int
}

func (f *noteFlags) register(fs *pflag.FlagSet) {
	fs.Int64Var(&f.project, "project", 0, "case id")
	fs.StringVar(&f.date, "date", "", "note date (YYYY-MM-DD, default today)")
	fs.StringVar(&f.author, "author", "", "author")
	fs.StringVar(&f.content, "content", "", "note text")
	fs.StringVar(&f.nextAction, "next-action", "", "next action")
	fs.IntVar(&f.progress, "progress", 0, "progress percent (0-100)")
}

// apply copies the flags set on cmd into n.
func (f *noteFlags) apply(cmd *cobra.Command, n *types.Note) error {
	if changed(cmd, "project") {
		n.ProjectID = f.project
	}
	if changed(cmd, "date") {
		d, err := parseOptionalDate("date", f.date)
		if err != nil {
			return err
		}
		if d == nil {
			return userErrorf("--date must not be empty")
		}
		n.NoteDate = *d
	}
	if changed(cmd, "author") {
		n.Author = f.author
	}
	if changed(cmd, "content") {
		n.Content = f.content
	}
	if changed(cmd, "next-action") {
		n.NextAction = f.nextAction
	}
	if changed(cmd, "progress") {
		n.Progress = f.progress
	}
	return nil
}

func newNoteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage progress notes",
	}
	cmd.AddCommand(newNoteAddCmd(a))
	cmd.AddCommand(newNoteUpdateCmd(a))
	cmd.AddCommand(newNoteListCmd(a))
	return cmd
}

func newNoteAddCmd(a *app) *cobra.Command {
	var f noteFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a progress note to a case",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n := &types.Note{NoteDate: today()}
			if err := f.apply(cmd, n); err != nil {
				return err
			}
			return a.withTable(types.TableNotes, func(store types.Store, tbl types.Table) error {
				if err := requireProject(store, &n.ProjectID); err != nil {
					return err
				}
				id, err := tbl.Insert(n)
				if err != nil {
					return storeError("create note", err)
				}
				a.log.Info().Int64("note_id", id).Int64("project_id", n.ProjectID).Msg("note created")
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), n)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created note: %d\n", id)
				return nil
			})
		},
	}
	f.register(cmd.Flags())
	cmd.MarkFlagRequired("project")
	cmd.MarkFlagRequired("content")
	return cmd
}

func newNoteUpdateCmd(a *app) *cobra.Command {
	var f noteFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withTable(types.TableNotes, func(store types.Store, tbl types.Table) error {
				got, err := tbl.Get(id)
				if err != nil {
					return storeError("get note", err)
				}
				n := got.(*types.Note)
				if err := f.apply(cmd, n); err != nil {
					return err
				}
				if err := requireProject(store, &n.ProjectID); err != nil {
					return err
				}
				if err := tbl.Update(id, n); err != nil {
					return storeError("update note", err)
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), n)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated note: %d\n", id)
				return nil
			})
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newNoteListCmd(a *app) *cobra.Command {
	var (
		project       int64
		limit, offset int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := map[string]any{"limit": limit, "offset": offset}
			if project > 0 {
				filter["project_id"] = project
			}
			return a.withTable(types.TableNotes, func(_ types.Store, tbl types.Table) error {
				rows, err := tbl.Fetch(filter)
				if err != nil {
					return storeError("list notes", err)
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), rows)
				}
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "ID\tCASE\tDATE\tPROGRESS\tAUTHOR\tCONTENT")
				for _, row := range rows {
					n := row.(*types.Note)
					fmt.Fprintf(tw, "%d\t%s\t%s\t%d%%\t%s\t%s\n",
						n.ID, truncate(n.ProjectTitle, 24), n.NoteDate.Format(types.DateLayout),
						n.Progress, orDash(n.Author), truncate(n.Content, 50))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().Int64Var(&project, "project", 0, "only notes of this case")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of notes")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of notes to skip")
	return cmd
}

// today returns the current local calendar date at UTC midnight.
func today() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
