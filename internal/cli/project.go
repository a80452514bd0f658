package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mesh-intelligence/karte/pkg/types"
)

// projectFlags are the editable project fields.
type projectFlags struct {
	title       string
	client      string
	status      string
	priority    string
	owner       string
	start       string
	due         string
	description string
	archived    bool
}

func (f *projectFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.title, "title", "", "case title")
	fs.StringVar(&f.client, "client", "", "client name")
	fs.StringVar(&f.status, "status", "", "status (default "+types.DefaultStatus+")")
	fs.StringVar(&f.priority, "priority", "", "priority (default "+types.DefaultPriority+")")
	fs.StringVar(&f.owner, "owner", "", "person in charge")
	fs.StringVar(&f.start, "start", "", "start date (YYYY-MM-DD)")
	fs.StringVar(&f.due, "due", "", "due date (YYYY-MM-DD)")
	fs.StringVar(&f.description, "description", "", "description")
	fs.BoolVar(&f.archived, "archived", false, "mark as archived")
}

// apply copies the flags set on cmd into p.
func (f *projectFlags) apply(cmd *cobra.Command, p *types.Project) error {
	if changed(cmd, "title") {
		p.Title = f.title
	}
	if changed(cmd, "client") {
		p.Client = f.client
	}
	if changed(cmd, "status") {
		if !types.IsValidStatus(f.status) {
			return userErrorf("unknown status %q (valid: %v)", f.status, types.StatusOptions)
		}
		p.Status = f.status
	}
	if changed(cmd, "priority") {
		if !types.IsValidPriority(f.priority) {
			return userErrorf("unknown priority %q (valid: %v)", f.priority, types.PriorityOptions)
		}
		p.Priority = f.priority
	}
	if changed(cmd, "owner") {
		p.Owner = f.owner
	}
	if changed(cmd, "start") {
		d, err := parseOptionalDate("start", f.start)
		if err != nil {
			return err
		}
		p.StartDate = d
	}
	if changed(cmd, "due") {
		d, err := parseOptionalDate("due", f.due)
		if err != nil {
			return err
		}
		p.DueDate = d
	}
	if changed(cmd, "description") {
		p.Description = f.description
	}
	if changed(cmd, "archived") {
		p.Archived = f.archived
	}
	return nil
}

func newProjectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"case"},
		Short:   "Manage cases",
	}
	cmd.AddCommand(newProjectAddCmd(a))
	cmd.AddCommand(newProjectUpdateCmd(a))
	cmd.AddCommand(newProjectListCmd(a))
	cmd.AddCommand(newProjectShowCmd(a))
	return cmd
}

func newProjectAddCmd(a *app) *cobra.Command {
	var f projectFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a case",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := &types.Project{}
			if err := f.apply(cmd, p); err != nil {
				return err
			}
			return a.withTable(types.TableProjects, func(_ types.Store, tbl types.Table) error {
				id, err := tbl.Insert(p)
				if err != nil {
					return storeError("create project", err)
				}
				a.log.Info().Int64("project_id", id).Msg("project created")
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), p)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created project: %d\n", id)
				return nil
			})
		},
	}
	f.register(cmd.Flags())
	cmd.MarkFlagRequired("title")
	return cmd
}

func newProjectUpdateCmd(a *app) *cobra.Command {
	var f projectFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a case",
		Long:  "Update loads the case, applies the flags given and saves every field.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withTable(types.TableProjects, func(_ types.Store, tbl types.Table) error {
				got, err := tbl.Get(id)
				if err != nil {
					return storeError("get project", err)
				}
				p := got.(*types.Project)
				if err := f.apply(cmd, p); err != nil {
					return err
				}
				if err := tbl.Update(id, p); err != nil {
					return storeError("update project", err)
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), p)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated project: %d\n", id)
				return nil
			})
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newProjectListCmd(a *app) *cobra.Command {
	var (
		status, priority, owner, client string
		all, archived                   bool
		limit, offset                   int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cases, most recently updated first",
		Long:  "List cases. Archived cases are hidden unless --all or --archived is given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := map[string]any{
				"status":   status,
				"priority": priority,
				"owner":    owner,
				"client":   client,
				"limit":    limit,
				"offset":   offset,
			}
			switch {
			case archived:
				filter["archived"] = true
			case !all:
				filter["archived"] = false
			}

			return a.withTable(types.TableProjects, func(_ types.Store, tbl types.Table) error {
				rows, err := tbl.Fetch(filter)
				if err != nil {
					return storeError("list projects", err)
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), rows)
				}
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tPRIORITY\tOWNER\tDUE\tUPDATED")
				for _, row := range rows {
					p := row.(*types.Project)
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
						p.ID, truncate(p.Title, 40), p.Status, p.Priority, orDash(p.Owner),
						formatDate(p.DueDate), p.UpdatedAt.Format(types.DateLayout))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&priority, "priority", "", "filter by priority")
	cmd.Flags().StringVar(&owner, "owner", "", "filter by owner")
	cmd.Flags().StringVar(&client, "client", "", "filter by client")
	cmd.Flags().BoolVar(&all, "all", false, "include archived cases")
	cmd.Flags().BoolVar(&archived, "archived", false, "list archived cases only")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of cases")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of cases to skip")
	return cmd
}

// projectDetail is the JSON shape of "project show".
type projectDetail struct {
	Project   *types.Project `json:"project"`
	Notes     []any          `json:"notes"`
	Resources []any          `json:"resources"`
	Ideas     []any          `json:"ideas"`
}

func newProjectShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a case with its notes, resources and ideas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Detach()

			detail, err := loadProjectDetail(store, id)
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), detail)
			}
			printProjectDetail(cmd, detail)
			return nil
		},
	}
}

func loadProjectDetail(store types.Store, id int64) (*projectDetail, error) {
	projects, err := store.GetTable(types.TableProjects)
	if err != nil {
		return nil, sysError(err)
	}
	got, err := projects.Get(id)
	if err != nil {
		return nil, storeError("get project", err)
	}
	detail := &projectDetail{Project: got.(*types.Project)}

	byProject := map[string]any{"project_id": id}
	for _, part := range []struct {
		table string
		dest  *[]any
	}{
		{types.TableNotes, &detail.Notes},
		{types.TableResources, &detail.Resources},
		{types.TableIdeas, &detail.Ideas},
	} {
		tbl, err := store.GetTable(part.table)
		if err != nil {
			return nil, sysError(err)
		}
		rows, err := tbl.Fetch(byProject)
		if err != nil {
			return nil, storeError("list "+part.table, err)
		}
		*part.dest = rows
	}
	return detail, nil
}

func printProjectDetail(cmd *cobra.Command, d *projectDetail) {
	w := cmd.OutOrStdout()
	p := d.Project
	fmt.Fprintf(w, "#%d %s\n", p.ID, p.Title)
	fmt.Fprintf(w, "  status:   %s\n", p.Status)
	fmt.Fprintf(w, "  priority: %s\n", p.Priority)
	fmt.Fprintf(w, "  client:   %s\n", orDash(p.Client))
	fmt.Fprintf(w, "  owner:    %s\n", orDash(p.Owner))
	fmt.Fprintf(w, "  start:    %s\n", formatDate(p.StartDate))
	fmt.Fprintf(w, "  due:      %s\n", formatDate(p.DueDate))
	fmt.Fprintf(w, "  archived: %t\n", p.Archived)
	if p.Description != "" {
		fmt.Fprintf(w, "\n%s\n", p.Description)
	}

	fmt.Fprintf(w, "\nNotes (%d)\n", len(d.Notes))
	for _, row := range d.Notes {
		n := row.(*types.Note)
		fmt.Fprintf(w, "  %s [%d%%] %s\n", n.NoteDate.Format(types.DateLayout), n.Progress, truncate(n.Content, 60))
		if n.NextAction != "" {
			fmt.Fprintf(w, "    next: %s\n", n.NextAction)
		}
	}
	fmt.Fprintf(w, "\nResources (%d)\n", len(d.Resources))
	for _, row := range d.Resources {
		r := row.(*types.Resource)
		fmt.Fprintf(w, "  #%d %s (%s) %s\n", r.ID, orDash(r.Title), r.Kind, r.URL)
	}
	fmt.Fprintf(w, "\nIdeas (%d)\n", len(d.Ideas))
	for _, row := range d.Ideas {
		i := row.(*types.Idea)
		pin := ""
		if i.Pinned {
			pin = "* "
		}
		fmt.Fprintf(w, "  %s#%d %s\n", pin, i.ID, orDash(i.Title))
	}
}
