package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mesh-intelligence/karte/internal/uploads"
	"github.com/mesh-intelligence/karte/pkg/types"
)

// resourceFlags are the editable resource fields.
type resourceFlags struct {
	project    int64
	title      string
	kind       string
	url        string
	files      []string
	clearFiles bool
	tags       string
	note       string
}

func (f *resourceFlags) register(fs *pflag.FlagSet) {
	fs.Int64Var(&f.project, "project", 0, "case id (0 for none)")
	fs.StringVar(&f.title, "title", "", "title")
	fs.StringVar(&f.kind, "kind", "", "kind: Drive, Web, Image, Local, Other (default Other)")
	fs.StringVar(&f.url, "url", "", "link")
	fs.StringArrayVar(&f.files, "file", nil, "file to copy into the uploads directory (repeatable)")
	fs.StringVar(&f.tags, "tags", "", "comma-separated tags")
	fs.StringVar(&f.note, "note", "", "note")
}

// apply copies the flags set on cmd into r. Files are handled separately.
func (f *resourceFlags) apply(cmd *cobra.Command, r *types.Resource) error {
	if changed(cmd, "project") {
		r.ProjectID = optionalProjectID(f.project)
	}
	if changed(cmd, "title") {
		r.Title = f.title
	}
	if changed(cmd, "kind") {
		if !types.IsValidResourceKind(f.kind) {
			return userErrorf("unknown kind %q (valid: %v)", f.kind, types.ResourceKinds)
		}
		r.Kind = f.kind
	}
	if changed(cmd, "url") {
		r.URL = f.url
	}
	if changed(cmd, "tags") {
		r.Tags = f.tags
	}
	if changed(cmd, "note") {
		r.Note = f.note
	}
	return nil
}

func newResourceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resource",
		Short: "Manage reference resources",
	}
	cmd.AddCommand(newResourceAddCmd(a))
	cmd.AddCommand(newResourceUpdateCmd(a))
	cmd.AddCommand(newResourceListCmd(a))
	return cmd
}

func newResourceAddCmd(a *app) *cobra.Command {
	var f resourceFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a resource, optionally copying files into the uploads directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := &types.Resource{}
			if err := f.apply(cmd, r); err != nil {
				return err
			}
			if r.Title == "" && r.URL == "" && len(f.files) == 0 {
				return userErrorf("one of --title, --url or --file is required")
			}
			return a.withTable(types.TableResources, func(store types.Store, tbl types.Table) error {
				if err := requireProject(store, r.ProjectID); err != nil {
					return err
				}
				saved, err := a.saveFiles(uploads.PrefixResource, f.files)
				if err != nil {
					return err
				}
				r.LocalPath = saved

				id, err := tbl.Insert(r)
				if err != nil {
					return storeError("create resource", err)
				}
				a.log.Info().Int64("resource_id", id).Int("files", len(f.files)).Msg("resource created")
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), r)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created resource: %d\n", id)
				return nil
			})
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newResourceUpdateCmd(a *app) *cobra.Command {
	var f resourceFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a resource",
		Long: "Update loads the resource, applies the flags given and saves every field.\n" +
			"Files given with --file are added to the stored ones unless --clear-files is set.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withTable(types.TableResources, func(store types.Store, tbl types.Table) error {
				got, err := tbl.Get(id)
				if err != nil {
					return storeError("get resource", err)
				}
				r := got.(*types.Resource)
				if err := f.apply(cmd, r); err != nil {
					return err
				}
				if err := requireProject(store, r.ProjectID); err != nil {
					return err
				}

				saved, err := a.saveFiles(uploads.PrefixResource, f.files)
				if err != nil {
					return err
				}
				var keep []string
				if !f.clearFiles {
					keep = r.LocalPaths()
				}
				r.LocalPath = types.JoinPaths(append(keep, uploads.Split(saved)...))

				if err := tbl.Update(id, r); err != nil {
					return storeError("update resource", err)
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), r)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated resource: %d\n", id)
				return nil
			})
		},
	}
	f.register(cmd.Flags())
	cmd.Flags().BoolVar(&f.clearFiles, "clear-files", false, "drop the stored file references")
	return cmd
}

func newResourceListCmd(a *app) *cobra.Command {
	var (
		project       int64
		kind          string
		unattached    bool
		limit, offset int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resources, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := map[string]any{"kind": kind, "limit": limit, "offset": offset}
			switch {
			case unattached:
				filter["unattached"] = true
			case project > 0:
				filter["project_id"] = project
			}
			return a.withTable(types.TableResources, func(_ types.Store, tbl types.Table) error {
				rows, err := tbl.Fetch(filter)
				if err != nil {
					return storeError("list resources", err)
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), rows)
				}
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "ID\tKIND\tTITLE\tCASE\tURL\tFILES")
				for _, row := range rows {
					r := row.(*types.Resource)
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\n",
						r.ID, r.Kind, truncate(orDash(r.Title), 32), truncate(orDash(r.ProjectTitle), 24),
						truncate(orDash(r.URL), 40), len(r.LocalPaths()))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().Int64Var(&project, "project", 0, "only resources of this case")
	cmd.Flags().StringVar(&kind, "kind", "", "only resources of this kind")
	cmd.Flags().BoolVar(&unattached, "unattached", false, "only resources without a case")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of resources")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of resources to skip")
	return cmd
}

// saveFiles copies local files into the uploads directory and returns
// their joined relative paths.
func (a *app) saveFiles(prefix string, names []string) (string, error) {
	if len(names) == 0 {
		return "", nil
	}
	files := make([]uploads.File, 0, len(names))
	for _, name := range names {
		fh, err := os.Open(name)
		if err != nil {
			return "", userError(fmt.Errorf("open upload: %w", err))
		}
		defer fh.Close()
		files = append(files, uploads.File{Name: filepath.Base(name), Reader: fh})
	}
	saved, err := a.settings.uploadsDir().SaveAll(prefix, files)
	if err != nil {
		return "", sysError(fmt.Errorf("save uploads: %w", err))
	}
	a.log.Debug().Str("paths", saved).Msg("files uploaded")
	return saved, nil
}
