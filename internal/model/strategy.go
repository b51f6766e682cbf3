package model

// SetupRules groups the fields describing how a position is opened.
type SetupRules struct {
	Underlying        ExtractedField        `json:"underlying"`
	OptionType        ExtractedField        `json:"option_type"`
	StrikeSelection   ExtractedField        `json:"strike_selection"`
	DTE               ExtractedNumericField `json:"dte"`
	Width             ExtractedNumericField `json:"width"`
	Delta             ExtractedNumericField `json:"delta"`
	EntryCriteria     ExtractedField        `json:"entry_criteria"`
	EntryTiming       ExtractedField        `json:"entry_timing"`
	BuyingPowerEffect ExtractedField        `json:"buying_power_effect"`
}

// ManagementRules groups the fields describing how a position is managed.
type ManagementRules struct {
	ProfitTarget       ExtractedField `json:"profit_target"`
	StopLoss           ExtractedField `json:"stop_loss"`
	TimeExit           ExtractedField `json:"time_exit"`
	AdjustmentRules    ExtractedField `json:"adjustment_rules"`
	RollingRules       ExtractedField `json:"rolling_rules"`
	DefensiveManeuvers ExtractedField `json:"defensive_maneuvers"`
}

// RiskProfile groups claimed risk characteristics.
type RiskProfile struct {
	MaxLossPerTrade ExtractedNumericField `json:"max_loss_per_trade"`
	WinRate         ExtractedNumericField `json:"win_rate"`
	RiskRewardRatio ExtractedField        `json:"risk_reward_ratio"`
	MaxDrawdown     ExtractedNumericField `json:"max_drawdown"`
}

// PerformanceClaims groups claimed P&L outcomes.
type PerformanceClaims struct {
	StartingCapital    ExtractedNumericField `json:"starting_capital"`
	EndingCapital      ExtractedNumericField `json:"ending_capital"`
	TotalReturnPercent ExtractedNumericField `json:"total_return_percent"`
	TimePeriod         ExtractedField        `json:"time_period"`
	ProfitsWithdrawn   ExtractedNumericField `json:"profits_withdrawn"`
	Verified           bool                  `json:"verified"`
}

// FailureAnalysis captures how honestly the source discusses losing outcomes.
// BiasDetected defaults to true: content is assumed survivorship-biased until
// the model explicitly finds otherwise.
type FailureAnalysis struct {
	FailureModesMentioned []string `json:"failure_modes_mentioned"`
	DiscussesLosses       bool     `json:"discusses_losses"`
	MaxDrawdownMentioned  *float64 `json:"max_drawdown_mentioned"`
	RecoveryStrategy      *string  `json:"recovery_strategy"`
	BiasDetected          bool     `json:"bias_detected"`
}

// StrategySchema is the full structured record produced by one extraction.
// Constructed once per extraction call and treated as immutable afterwards.
type StrategySchema struct {
	StrategyName    ExtractedField    `json:"strategy_name"`
	Variation       ExtractedField    `json:"variation"`
	TraderName      ExtractedField    `json:"trader_name"`
	ExperienceLevel ExtractedField    `json:"experience_level"`
	SetupRules      SetupRules        `json:"setup_rules"`
	ManagementRules ManagementRules   `json:"management_rules"`
	RiskProfile     RiskProfile       `json:"risk_profile"`
	Performance     PerformanceClaims `json:"performance_claims"`
	FailureAnalysis FailureAnalysis   `json:"failure_analysis"`
	KeyInsights     []string          `json:"key_insights"`
	Warnings        []string          `json:"warnings"`
	Quotes          []string          `json:"quotes"`
}

// DefaultStrategySchema returns the all-missing record. Every field is in the
// missing state with zero confidence; bias_detected is true.
func DefaultStrategySchema() *StrategySchema {
	return &StrategySchema{
		StrategyName:    MissingField(),
		Variation:       MissingField(),
		TraderName:      MissingField(),
		ExperienceLevel: MissingField(),
		SetupRules: SetupRules{
			Underlying:        MissingField(),
			OptionType:        MissingField(),
			StrikeSelection:   MissingField(),
			DTE:               MissingNumericField(),
			Width:             MissingNumericField(),
			Delta:             MissingNumericField(),
			EntryCriteria:     MissingField(),
			EntryTiming:       MissingField(),
			BuyingPowerEffect: MissingField(),
		},
		ManagementRules: ManagementRules{
			ProfitTarget:       MissingField(),
			StopLoss:           MissingField(),
			TimeExit:           MissingField(),
			AdjustmentRules:    MissingField(),
			RollingRules:       MissingField(),
			DefensiveManeuvers: MissingField(),
		},
		RiskProfile: RiskProfile{
			MaxLossPerTrade: MissingNumericField(),
			WinRate:         MissingNumericField(),
			RiskRewardRatio: MissingField(),
			MaxDrawdown:     MissingNumericField(),
		},
		Performance: PerformanceClaims{
			StartingCapital:    MissingNumericField(),
			EndingCapital:      MissingNumericField(),
			TotalReturnPercent: MissingNumericField(),
			TimePeriod:         MissingField(),
			ProfitsWithdrawn:   MissingNumericField(),
		},
		FailureAnalysis: FailureAnalysis{
			BiasDetected: true,
		},
	}
}
