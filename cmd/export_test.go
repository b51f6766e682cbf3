package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/optionslab/strategy-cli/internal/model"
)

func TestWriteSourcesWorkbook(t *testing.T) {
	name := "Iron Condor"
	underlying := "SPY"
	dte := 45.0
	schema := model.DefaultStrategySchema()
	schema.StrategyName = model.ExtractedField{Value: &name, Confidence: 0.9, Interpretation: model.InterpretationExplicit}
	schema.SetupRules.Underlying = model.ExtractedField{Value: &underlying, Confidence: 0.9, Interpretation: model.InterpretationExplicit}
	schema.SetupRules.DTE = model.ExtractedNumericField{Value: &dte, Confidence: 0.9, Interpretation: model.InterpretationExplicit}

	sources := []model.Source{
		{
			ID:         "src-1",
			URL:        "https://youtu.be/abc12345678",
			SourceType: model.SourceTypeYouTube,
			Title:      "Iron Condor Basics",
			Author:     "Trader Joe",
			Extracted:  schema,
			Quality:    &model.QualityMetrics{SpecificityScore: 6.5, TrustScore: 4.2, HasBacktest: true},
		},
		{
			ID:         "src-2",
			URL:        "https://example.com/post",
			SourceType: model.SourceTypeArticle,
			Title:      "Empty Post",
		},
	}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, writeSourcesWorkbook(path, sources))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	sheet := f.Sheets[0]
	require.Len(t, sheet.Rows, 3) // header + 2 sources

	assert.Equal(t, "ID", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "src-1", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "Iron Condor", sheet.Rows[1].Cells[5].String())
	assert.Equal(t, "SPY", sheet.Rows[1].Cells[6].String())
	assert.Equal(t, "45", sheet.Rows[1].Cells[7].String())
	assert.Equal(t, "src-2", sheet.Rows[2].Cells[0].String())
}

func TestFormatSourcesList(t *testing.T) {
	var sb strings.Builder
	formatSourcesList(&sb, []model.Source{
		{
			ID:         "abc",
			SourceType: model.SourceTypeReddit,
			Title:      "Wheel thread",
			Author:     "thetaguy",
			Quality:    &model.QualityMetrics{SpecificityScore: 5.0, TrustScore: 3.1},
		},
	})
	out := sb.String()
	assert.Contains(t, out, "abc")
	assert.Contains(t, out, "reddit")
	assert.Contains(t, out, "5.0")
	assert.Contains(t, out, "3.1")
}
