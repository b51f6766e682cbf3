package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/optionslab/strategy-cli/internal/model"
	"github.com/optionslab/strategy-cli/internal/store"
	"github.com/optionslab/strategy-cli/internal/synthesis"
)

var synthesizeName string

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize <source-id> <source-id> [source-id...]",
	Short: "Synthesize cross-source consensus over stored sources",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		aggregate, err := synthesizeSources(ctx, st, "", synthesizeName, args)
		if err != nil {
			return err
		}
		return printJSON(aggregate)
	},
}

func init() {
	synthesizeCmd.Flags().StringVar(&synthesizeName, "name", "", "strategy name for the saved aggregate")
	rootCmd.AddCommand(synthesizeCmd)
}

// synthesizeSources loads the schemas for the given source IDs, runs the
// consensus engine, and persists the aggregate. An empty id gets a fresh
// UUID; a caller-supplied id upserts that aggregate.
func synthesizeSources(ctx context.Context, st store.Store, id, name string, sourceIDs []string) (*model.StrategyAggregate, error) {
	if len(sourceIDs) < 2 {
		return nil, eris.New("synthesis requires at least 2 sources")
	}

	schemas := make([]*model.StrategySchema, 0, len(sourceIDs))
	for _, id := range sourceIDs {
		src, err := st.GetSource(ctx, id)
		if err != nil {
			return nil, eris.Wrapf(err, "load source %s", id)
		}
		if src == nil {
			return nil, eris.Errorf("source not found: %s", id)
		}
		if src.Extracted == nil {
			return nil, eris.Errorf("source %s has no extraction", id)
		}
		schemas = append(schemas, src.Extracted)
	}

	result := synthesis.Synthesize(schemas)

	if id == "" {
		id = uuid.New().String()
	}
	if name == "" {
		name = aggregateName(schemas)
	}
	aggregate := &model.StrategyAggregate{
		ID:        id,
		Name:      name,
		SourceIDs: sourceIDs,
		Consensus: result,
	}
	if err := st.SaveStrategy(ctx, aggregate); err != nil {
		return nil, eris.Wrap(err, "save strategy")
	}
	return aggregate, nil
}

// aggregateName picks the first extracted strategy name, if any.
func aggregateName(schemas []*model.StrategySchema) string {
	for _, s := range schemas {
		if s.StrategyName.Value != nil && *s.StrategyName.Value != "" {
			return *s.StrategyName.Value
		}
	}
	return "Unnamed Strategy"
}
