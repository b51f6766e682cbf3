package model

// SpecificityBreakdown holds the ten per-criterion sub-scores (each 0-10)
// that combine into the total specificity score.
type SpecificityBreakdown struct {
	StrikeSelection   float64 `json:"strike_selection"`
	EntryCriteria     float64 `json:"entry_criteria"`
	DTE               float64 `json:"dte"`
	BuyingPowerEffect float64 `json:"buying_power_effect"`
	ProfitTarget      float64 `json:"profit_target"`
	StopLoss          float64 `json:"stop_loss"`
	Adjustments       float64 `json:"adjustments"`
	FailureModes      float64 `json:"failure_modes"`
	RealPnl           float64 `json:"real_pnl"`
	BacktestEvidence  float64 `json:"backtest_evidence"`
}

// QualityMetrics is the derived, read-only quality summary of one
// StrategySchema. Computed fresh each time, never mutated.
type QualityMetrics struct {
	SpecificityScore     float64              `json:"specificity_score"`
	SpecificityBreakdown SpecificityBreakdown `json:"specificity_breakdown"`
	TrustScore           float64              `json:"trust_score"`
	HasBacktest          bool                 `json:"has_backtest"`
	HasRealPnl           bool                 `json:"has_real_pnl"`
	Gaps                 []string             `json:"gaps"`
}
