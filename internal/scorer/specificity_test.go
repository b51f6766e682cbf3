package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optionslab/strategy-cli/internal/model"
)

func explicitField(value string, confidence float64) model.ExtractedField {
	return model.ExtractedField{Value: &value, Confidence: confidence, Interpretation: model.InterpretationExplicit}
}

func explicitNumeric(value, confidence float64) model.ExtractedNumericField {
	return model.ExtractedNumericField{Value: &value, Confidence: confidence, Interpretation: model.InterpretationExplicit}
}

// fullyPopulatedSchema is an all-explicit, maximal-confidence record.
func fullyPopulatedSchema() *model.StrategySchema {
	s := model.DefaultStrategySchema()
	s.StrategyName = explicitField("Iron Condor", 1.0)
	s.SetupRules.Underlying = explicitField("SPY", 1.0)
	s.SetupRules.StrikeSelection = explicitField("16 delta short strikes", 1.0)
	s.SetupRules.Delta = explicitNumeric(0.16, 1.0)
	s.SetupRules.DTE = explicitNumeric(45, 1.0)
	s.SetupRules.EntryCriteria = explicitField("IV rank above 50", 1.0)
	s.SetupRules.BuyingPowerEffect = explicitField("5% of account per trade", 1.0)
	s.ManagementRules.ProfitTarget = explicitField("50% of credit", 1.0)
	s.ManagementRules.StopLoss = explicitField("2x credit received", 1.0)
	s.ManagementRules.AdjustmentRules = explicitField("roll untested side at 30 delta", 1.0)
	s.RiskProfile.WinRate = explicitNumeric(0.85, 1.0)
	s.RiskProfile.MaxDrawdown = explicitNumeric(18, 1.0)
	s.Performance.StartingCapital = explicitNumeric(10000, 1.0)
	s.Performance.EndingCapital = explicitNumeric(14000, 1.0)
	s.Performance.TotalReturnPercent = explicitNumeric(40, 1.0)
	s.Performance.TimePeriod = explicitField("12 months", 1.0)
	s.FailureAnalysis.FailureModesMentioned = []string{"gamma risk", "vol expansion", "early assignment"}
	s.FailureAnalysis.DiscussesLosses = true
	s.FailureAnalysis.BiasDetected = false
	s.Warnings = []string{"not suitable for small accounts", "undefined risk"}
	return s
}

func TestFieldSpecificity_InterpretationTiers(t *testing.T) {
	value := "x"
	tests := []struct {
		name       string
		interp     model.Interpretation
		confidence float64
		want       float64
	}{
		{"explicit full confidence", model.InterpretationExplicit, 1.0, 10.0},
		{"explicit zero confidence", model.InterpretationExplicit, 0.0, 8.0},
		{"implicit full confidence", model.InterpretationImplicit, 1.0, 8.0},
		{"implicit zero confidence", model.InterpretationImplicit, 0.0, 5.0},
		{"inferred full confidence", model.InterpretationInferred, 1.0, 5.0},
		{"inferred zero confidence", model.InterpretationInferred, 0.0, 2.0},
		{"unrecognized tier", model.Interpretation("guessed"), 0.9, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := scalarField(model.ExtractedField{Value: &value, Confidence: tt.confidence, Interpretation: tt.interp})
			assert.InDelta(t, tt.want, fieldSpecificity(f), 1e-9)
		})
	}
}

func TestFieldSpecificity_MissingOrNilValueScoresZero(t *testing.T) {
	assert.Zero(t, fieldSpecificity(scalarField(model.MissingField())))

	// A value-less field scores 0 even with a non-missing interpretation.
	f := model.ExtractedField{Confidence: 0.9, Interpretation: model.InterpretationExplicit}
	assert.Zero(t, fieldSpecificity(scalarField(f)))
}

func TestFieldSpecificity_MonotonicInConfidence(t *testing.T) {
	value := "x"
	for _, interp := range []model.Interpretation{
		model.InterpretationExplicit,
		model.InterpretationImplicit,
		model.InterpretationInferred,
	} {
		prev := -1.0
		for c := 0.0; c <= 1.0; c += 0.1 {
			f := scalarField(model.ExtractedField{Value: &value, Confidence: c, Interpretation: interp})
			score := fieldSpecificity(f)
			assert.GreaterOrEqual(t, score, prev, "interp=%s confidence=%f", interp, c)
			prev = score
		}
	}
}

func TestFieldSpecificity_TierOrdering(t *testing.T) {
	value := "x"
	for c := 0.0; c <= 1.0; c += 0.25 {
		mk := func(i model.Interpretation) float64 {
			return fieldSpecificity(scalarField(model.ExtractedField{Value: &value, Confidence: c, Interpretation: i}))
		}
		explicit := mk(model.InterpretationExplicit)
		implicit := mk(model.InterpretationImplicit)
		inferred := mk(model.InterpretationInferred)
		assert.GreaterOrEqual(t, explicit, implicit)
		assert.GreaterOrEqual(t, implicit, inferred)
		assert.GreaterOrEqual(t, inferred, 0.0)
	}
}

func TestWeightSum_NormalizedToOne(t *testing.T) {
	assert.InDelta(t, 1.0, WeightSum(), 1e-9)
}

func TestScoreSpecificity_FullyPopulatedScoresHigh(t *testing.T) {
	m := ScoreSpecificity(fullyPopulatedSchema())
	assert.GreaterOrEqual(t, m.SpecificityScore, 9.0)
	assert.True(t, m.HasBacktest)
	assert.True(t, m.HasRealPnl)
	assert.Empty(t, m.Gaps)
}

func TestScoreSpecificity_DefaultSchemaGaps(t *testing.T) {
	m := ScoreSpecificity(model.DefaultStrategySchema())
	assert.LessOrEqual(t, m.SpecificityScore, 1.0)
	assert.GreaterOrEqual(t, len(m.Gaps), 5)
	assert.Contains(t, m.Gaps, "Stop loss not defined")
	assert.Contains(t, m.Gaps, "Adjustment/defense strategy not explained")
	assert.False(t, m.HasBacktest)
	assert.False(t, m.HasRealPnl)
}

func TestScoreSpecificity_StrikeAveragedWithDelta(t *testing.T) {
	s := model.DefaultStrategySchema()
	s.SetupRules.StrikeSelection = explicitField("one strike out of the money", 1.0)

	withoutDelta := ScoreSpecificity(s).SpecificityBreakdown.StrikeSelection
	assert.InDelta(t, 10.0, withoutDelta, 1e-9)

	// A low-confidence inferred delta drags the averaged criterion down.
	delta := 0.2
	s.SetupRules.Delta = model.ExtractedNumericField{Value: &delta, Confidence: 0.0, Interpretation: model.InterpretationInferred}
	withDelta := ScoreSpecificity(s).SpecificityBreakdown.StrikeSelection
	assert.InDelta(t, 6.0, withDelta, 1e-9)
}

func TestScoreSpecificity_AdjustmentsTakesMax(t *testing.T) {
	s := model.DefaultStrategySchema()
	s.ManagementRules.AdjustmentRules = model.ExtractedField{
		Value:          ptr("roll at 21 DTE"),
		Confidence:     0.0,
		Interpretation: model.InterpretationInferred,
	}
	s.ManagementRules.DefensiveManeuvers = explicitField("go inverted on the tested side", 1.0)

	m := ScoreSpecificity(s)
	assert.InDelta(t, 10.0, m.SpecificityBreakdown.Adjustments, 1e-9)
}

func TestScoreSpecificity_FailureModesFormula(t *testing.T) {
	s := model.DefaultStrategySchema()

	s.FailureAnalysis.FailureModesMentioned = []string{"a"}
	assert.InDelta(t, 7.0, ScoreSpecificity(s).SpecificityBreakdown.FailureModes, 1e-9)

	s.FailureAnalysis.FailureModesMentioned = []string{"a", "b", "c"}
	assert.InDelta(t, 10.0, ScoreSpecificity(s).SpecificityBreakdown.FailureModes, 1e-9)

	s.FailureAnalysis.FailureModesMentioned = nil
	s.FailureAnalysis.DiscussesLosses = true
	assert.InDelta(t, 5.0, ScoreSpecificity(s).SpecificityBreakdown.FailureModes, 1e-9)
}

func TestScoreSpecificity_RealPnlLadder(t *testing.T) {
	s := model.DefaultStrategySchema()
	assert.Zero(t, ScoreSpecificity(s).SpecificityBreakdown.RealPnl)

	s.Performance.TotalReturnPercent = explicitNumeric(120, 0.9)
	assert.InDelta(t, 6.0, ScoreSpecificity(s).SpecificityBreakdown.RealPnl, 1e-9)

	s.Performance.StartingCapital = explicitNumeric(5000, 0.9)
	s.Performance.EndingCapital = explicitNumeric(11000, 0.9)
	assert.InDelta(t, 8.0, ScoreSpecificity(s).SpecificityBreakdown.RealPnl, 1e-9)

	s.Performance.TimePeriod = explicitField("9 months", 0.9)
	m := ScoreSpecificity(s)
	assert.InDelta(t, 10.0, m.SpecificityBreakdown.RealPnl, 1e-9)
	assert.True(t, m.HasRealPnl)
}

func TestScoreSpecificity_BacktestEvidenceGate(t *testing.T) {
	s := model.DefaultStrategySchema()

	// Win rate below the confidence gate earns nothing.
	s.RiskProfile.WinRate = explicitNumeric(0.8, 0.5)
	assert.Zero(t, ScoreSpecificity(s).SpecificityBreakdown.BacktestEvidence)

	s.RiskProfile.WinRate = explicitNumeric(0.8, 0.9)
	m := ScoreSpecificity(s)
	assert.InDelta(t, 7.0, m.SpecificityBreakdown.BacktestEvidence, 1e-9)
	assert.True(t, m.HasBacktest)

	s.RiskProfile.MaxDrawdown = explicitNumeric(20, 0.9)
	assert.InDelta(t, 10.0, ScoreSpecificity(s).SpecificityBreakdown.BacktestEvidence, 1e-9)
}

func ptr[T any](v T) *T {
	return &v
}

func TestScore_CombinesSpecificityAndTrust(t *testing.T) {
	m := Score(fullyPopulatedSchema())
	require.NotNil(t, m)
	assert.Greater(t, m.SpecificityScore, 0.0)
	assert.Greater(t, m.TrustScore, 0.0)
}
