package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/optionslab/strategy-cli/internal/model"
	"github.com/optionslab/strategy-cli/internal/scorer"
)

var scoreCmd = &cobra.Command{
	Use:   "score <source-id-or-json-file>",
	Short: "Score a stored source or a strategy schema JSON file",
	Long:  "Recomputes specificity and trust scores. For a stored source the updated metrics are saved back; for a JSON file they are only printed.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// A path that exists on disk is a schema file; anything else is
		// treated as a stored source ID.
		if _, err := os.Stat(args[0]); err == nil {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return eris.Wrapf(err, "read %s", args[0])
			}
			schema := model.DefaultStrategySchema()
			if err := json.Unmarshal(data, schema); err != nil {
				return eris.Wrapf(err, "parse %s", args[0])
			}
			return printJSON(scorer.Score(schema))
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		src, err := st.GetSource(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "score")
		}
		if src == nil {
			return eris.Errorf("source not found: %s", args[0])
		}
		if src.Extracted == nil {
			return eris.Errorf("source %s has no extraction to score", args[0])
		}

		src.Quality = scorer.Score(src.Extracted)
		if err := st.SaveSource(ctx, src); err != nil {
			return eris.Wrap(err, "score: save")
		}
		return printJSON(src.Quality)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
