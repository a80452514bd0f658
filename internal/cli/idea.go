package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mesh-intelligence/karte/internal/uploads"
	"github.com/mesh-intelligence/karte/pkg/types"
)

// ideaFlags are the editable idea fields.
type ideaFlags struct {
	project    int64
	title      string
	url        string
	image      string
	clearImage bool
	note       string
	tags       string
	pinned     bool
}

func (f *ideaFlags) register(fs *pflag.FlagSet) {
	fs.Int64Var(&f.project, "project", 0, "case id (0 for none)")
	fs.StringVar(&f.title, "title", "", "title")
	fs.StringVar(&f.url, "url", "", "link")
	fs.StringVar(&f.image, "image", "", "image file to copy into the uploads directory")
	fs.StringVar(&f.note, "note", "", "note")
	fs.StringVar(&f.tags, "tags", "", "comma-separated tags")
	fs.BoolVar(&f.pinned, "pinned", false, "pin to the top of the board")
}

// apply copies the flags set on cmd into i. The image is handled separately.
func (f *ideaFlags) apply(cmd *cobra.Command, i *types.Idea) {
	if changed(cmd, "project") {
		i.ProjectID = optionalProjectID(f.project)
	}
	if changed(cmd, "title") {
		i.Title = f.title
	}
	if changed(cmd, "url") {
		i.URL = f.url
	}
	if changed(cmd, "note") {
		i.Note = f.note
	}
	if changed(cmd, "tags") {
		i.Tags = f.tags
	}
	if changed(cmd, "pinned") {
		i.Pinned = f.pinned
	}
}

// saveImage stores the --image file, if any, and returns its relative path.
func (f *ideaFlags) saveImage(a *app) (string, error) {
	if f.image == "" {
		return "", nil
	}
	return a.saveFiles(uploads.PrefixIdea, []string{f.image})
}

func newIdeaCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "idea",
		Short: "Manage the idea board",
	}
	cmd.AddCommand(newIdeaAddCmd(a))
	cmd.AddCommand(newIdeaUpdateCmd(a))
	cmd.AddCommand(newIdeaListCmd(a))
	return cmd
}

func newIdeaAddCmd(a *app) *cobra.Command {
	var f ideaFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an idea",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			i := &types.Idea{}
			f.apply(cmd, i)
			if i.Title == "" && i.URL == "" && i.Note == "" && f.image == "" {
				return userErrorf("one of --title, --url, --note or --image is required")
			}
			return a.withTable(types.TableIdeas, func(store types.Store, tbl types.Table) error {
				if err := requireProject(store, i.ProjectID); err != nil {
					return err
				}
				image, err := f.saveImage(a)
				if err != nil {
					return err
				}
				i.ImagePath = image

				id, err := tbl.Insert(i)
				if err != nil {
					return storeError("create idea", err)
				}
				a.log.Info().Int64("idea_id", id).Msg("idea created")
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), i)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created idea: %d\n", id)
				return nil
			})
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newIdeaUpdateCmd(a *app) *cobra.Command {
	var f ideaFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an idea",
		Long: "Update loads the idea, applies the flags given and saves every field.\n" +
			"The stored image is kept unless --image or --clear-image is given.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withTable(types.TableIdeas, func(store types.Store, tbl types.Table) error {
				got, err := tbl.Get(id)
				if err != nil {
					return storeError("get idea", err)
				}
				i := got.(*types.Idea)
				f.apply(cmd, i)
				if err := requireProject(store, i.ProjectID); err != nil {
					return err
				}

				image, err := f.saveImage(a)
				if err != nil {
					return err
				}
				switch {
				case image != "":
					i.ImagePath = image
				case f.clearImage:
					i.ImagePath = ""
				}

				if err := tbl.Update(id, i); err != nil {
					return storeError("update idea", err)
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), i)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated idea: %d\n", id)
				return nil
			})
		},
	}
	f.register(cmd.Flags())
	cmd.Flags().BoolVar(&f.clearImage, "clear-image", false, "drop the stored image reference")
	return cmd
}

func newIdeaListCmd(a *app) *cobra.Command {
	var (
		project       int64
		pinned        bool
		limit, offset int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ideas, pinned first, then most recently updated",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := map[string]any{"limit": limit, "offset": offset}
			if project > 0 {
				filter["project_id"] = project
			}
			if pinned {
				filter["pinned"] = true
			}
			return a.withTable(types.TableIdeas, func(_ types.Store, tbl types.Table) error {
				rows, err := tbl.Fetch(filter)
				if err != nil {
					return storeError("list ideas", err)
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), rows)
				}
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "ID\tPIN\tTITLE\tCASE\tTAGS")
				for _, row := range rows {
					i := row.(*types.Idea)
					pin := ""
					if i.Pinned {
						pin = "*"
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
						i.ID, pin, truncate(orDash(i.Title), 40), truncate(orDash(i.ProjectTitle), 24), orDash(i.Tags))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().Int64Var(&project, "project", 0, "only ideas of this case")
	cmd.Flags().BoolVar(&pinned, "pinned", false, "only pinned ideas")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of ideas")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of ideas to skip")
	return cmd
}
