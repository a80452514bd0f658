package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/karte/pkg/types"
)

// searchHit is the JSON shape of one search result.
type searchHit struct {
	Kind         types.Kind `json:"kind"`
	ID           int64      `json:"id"`
	ProjectTitle *string    `json:"project_title"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Record       any        `json:"record"`
}

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query...>",
		Short: "Search every case, note, resource and idea",
		Long: "Search matches the query case-insensitively against every stored column\n" +
			"and lists hits most recently updated first. Words are joined with a space.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Detach()

			hits, err := store.Search(query)
			if err != nil {
				return sysError(fmt.Errorf("search: %w", err))
			}
			a.log.Debug().Str("query", query).Int("hits", len(hits)).Msg("search")

			if a.flags.jsonMode {
				out := make([]searchHit, 0, len(hits))
				for _, h := range hits {
					out = append(out, searchHit{
						Kind:         h.Kind,
						ID:           h.ID(),
						ProjectTitle: h.ProjectTitle,
						UpdatedAt:    h.UpdatedAt,
						Record:       hitRecord(h),
					})
				}
				return printJSON(cmd.OutOrStdout(), out)
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "KIND\tID\tUPDATED\tCASE\tSUMMARY")
			for _, h := range hits {
				title := "-"
				if h.ProjectTitle != nil {
					title = truncate(*h.ProjectTitle, 24)
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
					h.Kind, h.ID(), h.UpdatedAt.Format(time.DateTime), title, truncate(h.Summary(), 50))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d hit(s)\n", len(hits))
			return nil
		},
	}
}

// hitRecord returns the entity carried by h.
func hitRecord(h types.SearchHit) any {
	switch {
	case h.Project != nil:
		return h.Project
	case h.Note != nil:
		return h.Note
	case h.Resource != nil:
		return h.Resource
	case h.Idea != nil:
		return h.Idea
	}
	return nil
}
