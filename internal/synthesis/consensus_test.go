package synthesis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optionslab/strategy-cli/internal/model"
)

func schemaWithDTE(dte float64) *model.StrategySchema {
	s := model.DefaultStrategySchema()
	s.SetupRules.DTE = model.ExtractedNumericField{Value: &dte, Confidence: 0.9, Interpretation: model.InterpretationExplicit}
	return s
}

func schemaWithUnderlying(u string) *model.StrategySchema {
	s := model.DefaultStrategySchema()
	s.SetupRules.Underlying = model.ExtractedField{Value: &u, Confidence: 0.9, Interpretation: model.InterpretationExplicit}
	return s
}

func findConsensus(result *model.ConsensusResult, topic string) *model.ConsensusItem {
	for i := range result.Consensus {
		if result.Consensus[i].Topic == topic {
			return &result.Consensus[i]
		}
	}
	return nil
}

func findControversy(result *model.ConsensusResult, topic string) *model.Controversy {
	for i := range result.Controversies {
		if result.Controversies[i].Topic == topic {
			return &result.Controversies[i]
		}
	}
	return nil
}

func TestSynthesize_EmptyInput(t *testing.T) {
	result := Synthesize(nil)
	assert.Equal(t, 0, result.SourcesAnalyzed)
	assert.Empty(t, result.Consensus)
	assert.Empty(t, result.Controversies)
}

func TestSynthesize_MajorityRule(t *testing.T) {
	// 3-of-5 at dte=30, 2 at dte=45: majority consensus at 0.6.
	schemas := []*model.StrategySchema{
		schemaWithDTE(30),
		schemaWithDTE(30),
		schemaWithDTE(45),
		schemaWithDTE(30),
		schemaWithDTE(45),
	}
	result := Synthesize(schemas)

	item := findConsensus(result, "DTE")
	require.NotNil(t, item)
	assert.Equal(t, "30", item.ConsensusValue)
	assert.InDelta(t, 0.6, item.AgreementRate, 1e-9)
	assert.Equal(t, []int{0, 1, 3}, item.Sources)
	require.Len(t, item.Positions, 1)
	assert.Equal(t, "45", item.Positions[0].Value)
	assert.Equal(t, 2, item.Positions[0].SourceCount)

	assert.Nil(t, findControversy(result, "DTE"))
}

func TestSynthesize_EvenSplitIsControversy(t *testing.T) {
	schemas := []*model.StrategySchema{
		schemaWithDTE(30),
		schemaWithDTE(30),
		schemaWithDTE(30),
		schemaWithDTE(45),
		schemaWithDTE(45),
		schemaWithDTE(45),
	}
	result := Synthesize(schemas)

	assert.Nil(t, findConsensus(result, "DTE"))
	c := findControversy(result, "DTE")
	require.NotNil(t, c)
	require.Len(t, c.Positions, 2)
	// Stable tie-break: first-encountered value ranks first.
	assert.Equal(t, "30", c.Positions[0].Value)
	assert.Equal(t, "45", c.Positions[1].Value)
	assert.Equal(t, 3, c.Positions[0].SourceCount)
}

func TestSynthesize_FullAgreementRateCountsAllSources(t *testing.T) {
	// 2 of 3 sources name the underlying, both agree: rate = 2/3.
	schemas := []*model.StrategySchema{
		schemaWithUnderlying("SPY"),
		schemaWithUnderlying("spy"),
		model.DefaultStrategySchema(),
	}
	result := Synthesize(schemas)

	item := findConsensus(result, "Underlying")
	require.NotNil(t, item)
	assert.Equal(t, "SPY", item.ConsensusValue) // original case from first source
	assert.InDelta(t, 2.0/3.0, item.AgreementRate, 1e-9)
	assert.Equal(t, []int{0, 1}, item.Sources)
	assert.Empty(t, item.Positions)
}

func TestSynthesize_NormalizationFoldsCaseAndSpace(t *testing.T) {
	schemas := []*model.StrategySchema{
		schemaWithUnderlying("  SPY "),
		schemaWithUnderlying("spy"),
	}
	result := Synthesize(schemas)

	item := findConsensus(result, "Underlying")
	require.NotNil(t, item)
	assert.InDelta(t, 1.0, item.AgreementRate, 1e-9)
}

func TestSynthesize_MajorityAmongSourcesWithValue(t *testing.T) {
	// 5 sources, only 3 mention DTE: 2 vs 1 -> 2/3 of sources-with-a-value.
	schemas := []*model.StrategySchema{
		schemaWithDTE(30),
		schemaWithDTE(30),
		schemaWithDTE(45),
		model.DefaultStrategySchema(),
		model.DefaultStrategySchema(),
	}
	result := Synthesize(schemas)

	item := findConsensus(result, "DTE")
	require.NotNil(t, item)
	assert.InDelta(t, 2.0/3.0, item.AgreementRate, 1e-9)
}

func TestSynthesize_TopicAbsentEverywhereIsGap(t *testing.T) {
	schemas := []*model.StrategySchema{
		model.DefaultStrategySchema(),
		model.DefaultStrategySchema(),
	}
	result := Synthesize(schemas)

	assert.Contains(t, result.Gaps, "Underlying not mentioned in any source")
	assert.Contains(t, result.Gaps, "DTE not mentioned in any source")
	assert.Empty(t, result.Consensus)
	assert.Empty(t, result.Controversies)
}

func TestSynthesize_GlobalGapIndicators(t *testing.T) {
	winRate := 0.7
	withData := model.DefaultStrategySchema()
	stop := "2x credit"
	withData.ManagementRules.StopLoss = model.ExtractedField{Value: &stop, Confidence: 0.9, Interpretation: model.InterpretationExplicit}
	withData.FailureAnalysis.FailureModesMentioned = []string{"gap risk"}
	withData.RiskProfile.WinRate = model.ExtractedNumericField{Value: &winRate, Confidence: 0.9, Interpretation: model.InterpretationExplicit}

	schemas := []*model.StrategySchema{
		withData,
		model.DefaultStrategySchema(),
		model.DefaultStrategySchema(),
	}
	result := Synthesize(schemas)

	// Only 1 of 3 sources carries each indicator.
	assert.Contains(t, result.Gaps, "Failure Modes missing in most sources")
	assert.Contains(t, result.Gaps, "Backtest Data missing in most sources")
	// One source has a stop loss, so the topic-level gap is absent and the
	// missing-in-most variant applies.
	assert.Contains(t, result.Gaps, "Stop Loss missing in most sources")
}

func TestSynthesize_GlobalGapDedupedAgainstTopicGap(t *testing.T) {
	schemas := []*model.StrategySchema{
		model.DefaultStrategySchema(),
		model.DefaultStrategySchema(),
	}
	result := Synthesize(schemas)

	// The per-topic pass already reported "Stop Loss not mentioned in any
	// source"; the global indicator must not add a second Stop Loss gap.
	stopLossGaps := 0
	for _, g := range result.Gaps {
		if len(g) >= 9 && g[:9] == "Stop Loss" {
			stopLossGaps++
		}
	}
	assert.Equal(t, 1, stopLossGaps)
}
