package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/optionslab/strategy-cli/internal/model"
	"github.com/optionslab/strategy-cli/internal/store"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Inspect stored sources",
	Long:  "Commands for listing, viewing, and deleting ingested sources.",
}

// -- sources list --

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sources",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		sourceType, _ := cmd.Flags().GetString("type")
		limit, _ := cmd.Flags().GetInt("limit")

		sources, err := st.ListSources(ctx, store.SourceFilter{
			SourceType: model.SourceType(sourceType),
			Limit:      limit,
		})
		if err != nil {
			return eris.Wrap(err, "sources list")
		}

		if len(sources) == 0 {
			fmt.Fprintln(os.Stderr, "No sources found.")
			return nil
		}

		formatSourcesList(os.Stdout, sources)
		return nil
	},
}

// -- sources show --

var sourcesShowCmd = &cobra.Command{
	Use:   "show <source-id>",
	Short: "Show full details of a source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		src, err := st.GetSource(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "sources show")
		}
		if src == nil {
			return eris.Errorf("source not found: %s", args[0])
		}
		return printJSON(src)
	},
}

// -- sources delete --

var sourcesDeleteCmd = &cobra.Command{
	Use:   "delete <source-id>",
	Short: "Delete a stored source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.DeleteSource(ctx, args[0]); err != nil {
			return eris.Wrap(err, "sources delete")
		}
		fmt.Println("deleted", args[0])
		return nil
	},
}

func init() {
	sourcesListCmd.Flags().String("type", "", "filter by source type (youtube, reddit, article)")
	sourcesListCmd.Flags().Int("limit", 50, "max number of sources to display")

	sourcesCmd.AddCommand(sourcesListCmd)
	sourcesCmd.AddCommand(sourcesShowCmd)
	sourcesCmd.AddCommand(sourcesDeleteCmd)
	rootCmd.AddCommand(sourcesCmd)
}

// formatSourcesList writes a tabular list of sources to w.
func formatSourcesList(out io.Writer, sources []model.Source) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTYPE\tTITLE\tAUTHOR\tSPEC\tTRUST\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t----\t-----\t------\t----\t-----\t-------")

	for _, s := range sources {
		title := s.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}

		spec, trust := "-", "-"
		if s.Quality != nil {
			spec = fmt.Sprintf("%.1f", s.Quality.SpecificityScore)
			trust = fmt.Sprintf("%.1f", s.Quality.TrustScore)
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID,
			s.SourceType,
			title,
			s.Author,
			spec,
			trust,
			s.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}
