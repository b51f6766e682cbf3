package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"

	"github.com/optionslab/strategy-cli/internal/model"
	"github.com/optionslab/strategy-cli/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export <output.xlsx>",
	Short: "Export stored sources to an Excel workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		sources, err := st.ListSources(ctx, store.SourceFilter{Limit: 10000})
		if err != nil {
			return eris.Wrap(err, "export")
		}

		if err := writeSourcesWorkbook(args[0], sources); err != nil {
			return err
		}
		fmt.Printf("exported %d sources to %s\n", len(sources), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

// writeSourcesWorkbook writes one row per source with its key extraction
// fields and quality scores.
func writeSourcesWorkbook(path string, sources []model.Source) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sources")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{
		"ID", "URL", "Type", "Title", "Author",
		"Strategy", "Underlying", "DTE", "Profit Target", "Stop Loss",
		"Specificity", "Trust", "Has Backtest", "Has Real PnL", "Gaps",
	} {
		header.AddCell().SetString(h)
	}

	for _, s := range sources {
		row := sheet.AddRow()
		row.AddCell().SetString(s.ID)
		row.AddCell().SetString(s.URL)
		row.AddCell().SetString(string(s.SourceType))
		row.AddCell().SetString(s.Title)
		row.AddCell().SetString(s.Author)

		if e := s.Extracted; e != nil {
			row.AddCell().SetString(stringField(e.StrategyName))
			row.AddCell().SetString(stringField(e.SetupRules.Underlying))
			row.AddCell().SetString(numericField(e.SetupRules.DTE))
			row.AddCell().SetString(stringField(e.ManagementRules.ProfitTarget))
			row.AddCell().SetString(stringField(e.ManagementRules.StopLoss))
		} else {
			for range 5 {
				row.AddCell()
			}
		}

		if q := s.Quality; q != nil {
			row.AddCell().SetFloat(q.SpecificityScore)
			row.AddCell().SetFloat(q.TrustScore)
			row.AddCell().SetBool(q.HasBacktest)
			row.AddCell().SetBool(q.HasRealPnl)
			row.AddCell().SetString(fmt.Sprintf("%d", len(q.Gaps)))
		} else {
			for range 5 {
				row.AddCell()
			}
		}
	}

	return eris.Wrap(f.Save(path), "export: save workbook")
}

func stringField(f model.ExtractedField) string {
	if f.Value == nil {
		return ""
	}
	return *f.Value
}

func numericField(f model.ExtractedNumericField) string {
	if f.Value == nil {
		return ""
	}
	return fmt.Sprintf("%g", *f.Value)
}
