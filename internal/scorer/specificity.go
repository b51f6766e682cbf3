// Package scorer computes specificity and trust scores for extracted
// strategy records. Both scorers are pure functions over an immutable
// schema; callers may score concurrently without coordination.
package scorer

import (
	"math"

	"github.com/optionslab/strategy-cli/internal/model"
)

// Specificity criterion weights. The ten weights sum to 1.0.
const (
	weightStrikeSelection   = 0.12
	weightEntryCriteria     = 0.12
	weightDTE               = 0.08
	weightBuyingPowerEffect = 0.12
	weightProfitTarget      = 0.08
	weightStopLoss          = 0.12
	weightAdjustments       = 0.12
	weightFailureModes      = 0.08
	weightRealPnl           = 0.08
	weightBacktestEvidence  = 0.08
)

// gapThreshold: criteria scoring below this add a human-readable gap entry.
const gapThreshold = 3.0

// WeightSum returns the sum of the ten specificity weights. Exposed so the
// normalization invariant is testable.
func WeightSum() float64 {
	return weightStrikeSelection + weightEntryCriteria + weightDTE +
		weightBuyingPowerEffect + weightProfitTarget + weightStopLoss +
		weightAdjustments + weightFailureModes + weightRealPnl +
		weightBacktestEvidence
}

// scorable is the common shape of scalar and numeric extracted fields.
type scorable interface {
	specificityInputs() (model.Interpretation, float64, bool)
}

type scalarField model.ExtractedField

func (f scalarField) specificityInputs() (model.Interpretation, float64, bool) {
	return f.Interpretation, f.Confidence, f.Value != nil
}

type numericField model.ExtractedNumericField

func (f numericField) specificityInputs() (model.Interpretation, float64, bool) {
	return f.Interpretation, f.Confidence, f.Value != nil || f.ValueRange != nil
}

// fieldSpecificity scores a single field 0-10 from its interpretation tier
// and confidence. Missing or valueless fields score 0; explicit facts start
// at 8, implied at 5, inferred at 2, anything unrecognized scores a flat 1.
func fieldSpecificity(f scorable) float64 {
	interp, confidence, hasValue := f.specificityInputs()
	if interp == model.InterpretationMissing || !hasValue {
		return 0
	}

	var base float64
	switch interp {
	case model.InterpretationExplicit:
		base = 8.0 + confidence*2.0
	case model.InterpretationImplicit:
		base = 5.0 + confidence*3.0
	case model.InterpretationInferred:
		base = 2.0 + confidence*3.0
	default:
		base = 1.0
	}

	return math.Min(10.0, base)
}

// ScoreSpecificity computes the weighted specificity score, its per-criterion
// breakdown, the derived backtest/P&L flags, and the content gap list.
func ScoreSpecificity(s *model.StrategySchema) *model.QualityMetrics {
	var b model.SpecificityBreakdown
	var gaps []string

	b.StrikeSelection = fieldSpecificity(scalarField(s.SetupRules.StrikeSelection))
	if hasNumeric(s.SetupRules.Delta) {
		b.StrikeSelection = (b.StrikeSelection + fieldSpecificity(numericField(s.SetupRules.Delta))) / 2
	}
	if b.StrikeSelection < gapThreshold {
		gaps = append(gaps, "Strike selection not clearly defined")
	}

	b.EntryCriteria = fieldSpecificity(scalarField(s.SetupRules.EntryCriteria))
	if b.EntryCriteria < gapThreshold {
		gaps = append(gaps, "Entry criteria unclear")
	}

	b.DTE = fieldSpecificity(numericField(s.SetupRules.DTE))
	if b.DTE < gapThreshold {
		gaps = append(gaps, "DTE not specified")
	}

	b.BuyingPowerEffect = fieldSpecificity(scalarField(s.SetupRules.BuyingPowerEffect))
	if b.BuyingPowerEffect < gapThreshold {
		gaps = append(gaps, "Position sizing/BPE not defined")
	}

	b.ProfitTarget = fieldSpecificity(scalarField(s.ManagementRules.ProfitTarget))
	if b.ProfitTarget < gapThreshold {
		gaps = append(gaps, "Profit target not specified")
	}

	b.StopLoss = fieldSpecificity(scalarField(s.ManagementRules.StopLoss))
	if b.StopLoss < gapThreshold {
		gaps = append(gaps, "Stop loss not defined")
	}

	b.Adjustments = math.Max(
		fieldSpecificity(scalarField(s.ManagementRules.AdjustmentRules)),
		fieldSpecificity(scalarField(s.ManagementRules.DefensiveManeuvers)),
	)
	if b.Adjustments < gapThreshold {
		gaps = append(gaps, "Adjustment/defense strategy not explained")
	}

	b.FailureModes = failureModeScore(s.FailureAnalysis)
	if b.FailureModes < gapThreshold {
		gaps = append(gaps, "Failure modes not discussed")
	}

	b.RealPnl = realPnlScore(s.Performance)

	b.BacktestEvidence = backtestScore(s.RiskProfile)
	if b.BacktestEvidence < gapThreshold {
		gaps = append(gaps, "No backtest or historical data")
	}

	total := b.StrikeSelection*weightStrikeSelection +
		b.EntryCriteria*weightEntryCriteria +
		b.DTE*weightDTE +
		b.BuyingPowerEffect*weightBuyingPowerEffect +
		b.ProfitTarget*weightProfitTarget +
		b.StopLoss*weightStopLoss +
		b.Adjustments*weightAdjustments +
		b.FailureModes*weightFailureModes +
		b.RealPnl*weightRealPnl +
		b.BacktestEvidence*weightBacktestEvidence

	return &model.QualityMetrics{
		SpecificityScore:     round1(total),
		SpecificityBreakdown: b,
		HasBacktest:          b.BacktestEvidence >= 7.0,
		HasRealPnl:           b.RealPnl >= 6.0,
		Gaps:                 gaps,
	}
}

// failureModeScore rewards enumerated failure scenarios, with a partial
// credit for merely acknowledging losses.
func failureModeScore(fa model.FailureAnalysis) float64 {
	if n := len(fa.FailureModesMentioned); n > 0 {
		return math.Min(10, float64(n)*3+4)
	}
	if fa.DiscussesLosses {
		return 5.0
	}
	return 0.0
}

// realPnlScore: full account trajectory with a time period scores 10,
// trajectory alone 8, a bare return percentage 6.
func realPnlScore(pc model.PerformanceClaims) float64 {
	if hasNumeric(pc.StartingCapital) && hasNumeric(pc.EndingCapital) {
		if pc.TimePeriod.Value != nil {
			return 10.0
		}
		return 8.0
	}
	if hasNumeric(pc.TotalReturnPercent) {
		return 6.0
	}
	return 0.0
}

// backtestScore requires a confidently-extracted win rate; drawdown data
// upgrades it to full credit.
func backtestScore(rp model.RiskProfile) float64 {
	if !hasNumeric(rp.WinRate) || rp.WinRate.Confidence <= 0.7 {
		return 0.0
	}
	if hasNumeric(rp.MaxDrawdown) {
		return 10.0
	}
	return 7.0
}

// hasNumeric mirrors the truthiness check on numeric values: present and
// nonzero.
func hasNumeric(f model.ExtractedNumericField) bool {
	return f.Value != nil && *f.Value != 0
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
