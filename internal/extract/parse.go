package extract

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/optionslab/strategy-cli/internal/model"
)

// ParseStatus classifies a parse outcome. Parse failures are recovered
// locally into a default schema, never retried against the model.
type ParseStatus string

const (
	ParseOK          ParseStatus = "ok"
	ParseEmpty       ParseStatus = "empty_response"
	ParseInvalidJSON ParseStatus = "invalid_json"
)

// ParseResult is the explicit outcome of parsing a model response. Schema is
// always non-nil; on any failure it is the all-default record.
type ParseResult struct {
	Schema *model.StrategySchema
	Status ParseStatus
}

const (
	maxQuoteLen      = 500
	truncatedQuoteTo = 450
)

var numberRe = regexp.MustCompile(`-?\d+(\.\d+)?`)

// ParseExtraction repairs and parses a raw model response into a
// StrategySchema. Markdown fences and surrounding prose are stripped before
// the JSON parse; unparseable responses degrade to the default schema.
func ParseExtraction(raw string) ParseResult {
	cleaned := cleanJSON(raw)
	if cleaned == "" {
		return ParseResult{Schema: model.DefaultStrategySchema(), Status: ParseEmpty}
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return ParseResult{Schema: model.DefaultStrategySchema(), Status: ParseInvalidJSON}
	}

	setup := subObject(data, "setup_rules")
	mgmt := subObject(data, "management_rules")
	risk := subObject(data, "risk_profile")
	perf := subObject(data, "performance_claims")
	failure := subObject(data, "failure_analysis")

	schema := &model.StrategySchema{
		StrategyName:    parseField(data, "strategy_name"),
		Variation:       parseField(data, "variation"),
		TraderName:      parseField(data, "trader_name"),
		ExperienceLevel: parseField(data, "experience_level"),
		SetupRules: model.SetupRules{
			Underlying:        parseField(setup, "underlying"),
			OptionType:        parseField(setup, "option_type"),
			StrikeSelection:   parseField(setup, "strike_selection"),
			DTE:               parseNumericField(setup, "dte"),
			Width:             parseNumericField(setup, "width"),
			Delta:             parseNumericField(setup, "delta"),
			EntryCriteria:     parseField(setup, "entry_criteria"),
			EntryTiming:       parseField(setup, "entry_timing"),
			BuyingPowerEffect: parseField(setup, "buying_power_effect"),
		},
		ManagementRules: model.ManagementRules{
			ProfitTarget:       parseField(mgmt, "profit_target"),
			StopLoss:           parseField(mgmt, "stop_loss"),
			TimeExit:           parseField(mgmt, "time_exit"),
			AdjustmentRules:    parseField(mgmt, "adjustment_rules"),
			RollingRules:       parseField(mgmt, "rolling_rules"),
			DefensiveManeuvers: parseField(mgmt, "defensive_maneuvers"),
		},
		RiskProfile: model.RiskProfile{
			MaxLossPerTrade: parseNumericField(risk, "max_loss_per_trade"),
			WinRate:         parseNumericField(risk, "win_rate"),
			RiskRewardRatio: parseField(risk, "risk_reward_ratio"),
			MaxDrawdown:     parseNumericField(risk, "max_drawdown"),
		},
		Performance: model.PerformanceClaims{
			StartingCapital:    parseNumericField(perf, "starting_capital"),
			EndingCapital:      parseNumericField(perf, "ending_capital"),
			TotalReturnPercent: parseNumericField(perf, "total_return_percent"),
			TimePeriod:         parseField(perf, "time_period"),
			ProfitsWithdrawn:   parseNumericField(perf, "profits_withdrawn"),
			Verified:           boolValue(perf, "verified", false),
		},
		FailureAnalysis: model.FailureAnalysis{
			FailureModesMentioned: stringList(failure, "failure_modes_mentioned"),
			DiscussesLosses:       boolValue(failure, "discusses_losses", false),
			MaxDrawdownMentioned:  floatPtr(failure, "max_drawdown_mentioned"),
			RecoveryStrategy:      stringPtr(failure, "recovery_strategy"),
			BiasDetected:          boolValue(failure, "bias_detected", true),
		},
		KeyInsights: stringList(data, "key_insights"),
		Warnings:    stringList(data, "warnings"),
		Quotes:      stringList(data, "quotes"),
	}

	return ParseResult{Schema: schema, Status: ParseOK}
}

// cleanJSON strips markdown fences and surrounding prose, slicing to the
// outermost JSON object.
func cleanJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "```", 3)
		if len(parts) >= 2 {
			s = parts[1]
		}
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}

func subObject(data map[string]any, key string) map[string]any {
	if data == nil {
		return nil
	}
	if m, ok := data[key].(map[string]any); ok {
		return m
	}
	return nil
}

func parseField(data map[string]any, key string) model.ExtractedField {
	raw, ok := lookup(data, key)
	if !ok {
		return model.MissingField()
	}

	obj, isObj := raw.(map[string]any)
	if !isObj {
		// Bare scalar instead of the annotated object: keep the value as a
		// low-confidence guess.
		if s := scalarString(raw); s != "" {
			return model.ExtractedField{
				Value:          &s,
				Confidence:     0.5,
				Interpretation: model.InterpretationInferred,
			}
		}
		return model.MissingField()
	}

	f := model.ExtractedField{
		Confidence:     floatValue(obj, "confidence"),
		SourceQuote:    quotePtr(obj, "source_quote"),
		Interpretation: interpretation(obj),
	}
	if s := scalarString(obj["value"]); s != "" {
		f.Value = &s
	}
	return f
}

func parseNumericField(data map[string]any, key string) model.ExtractedNumericField {
	raw, ok := lookup(data, key)
	if !ok {
		return model.MissingNumericField()
	}

	obj, isObj := raw.(map[string]any)
	if !isObj {
		if v, found := coerceNumber(raw); found {
			return model.ExtractedNumericField{
				Value:          &v,
				Confidence:     0.5,
				Interpretation: model.InterpretationInferred,
			}
		}
		return model.MissingNumericField()
	}

	f := model.ExtractedNumericField{
		Confidence:     floatValue(obj, "confidence"),
		SourceQuote:    quotePtr(obj, "source_quote"),
		Interpretation: interpretation(obj),
	}
	if v, found := coerceNumber(obj["value"]); found {
		f.Value = &v
	}
	if r, found := coerceRange(obj["value_range"]); found {
		f.ValueRange = &r
	}
	return f
}

// coerceNumber accepts JSON numbers directly and extracts the first numeric
// substring from strings, tolerating values like "30 points" or "~45 dte".
func coerceNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case string:
		m := numberRe.FindString(v)
		if m == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func coerceRange(raw any) ([2]float64, bool) {
	list, ok := raw.([]any)
	if !ok || len(list) < 2 {
		return [2]float64{}, false
	}
	low, okLow := coerceNumber(list[0])
	high, okHigh := coerceNumber(list[1])
	if !okLow || !okHigh {
		return [2]float64{}, false
	}
	return [2]float64{low, high}, true
}

func lookup(data map[string]any, key string) (any, bool) {
	if data == nil {
		return nil, false
	}
	raw, ok := data[key]
	if !ok || raw == nil {
		return nil, false
	}
	return raw, true
}

func scalarString(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func interpretation(obj map[string]any) model.Interpretation {
	s, _ := obj["interpretation"].(string)
	switch model.Interpretation(s) {
	case model.InterpretationExplicit, model.InterpretationImplicit, model.InterpretationInferred:
		return model.Interpretation(s)
	default:
		return model.InterpretationMissing
	}
}

func floatValue(obj map[string]any, key string) float64 {
	if v, ok := obj[key].(float64); ok {
		return v
	}
	return 0
}

func boolValue(obj map[string]any, key string, def bool) bool {
	if obj == nil {
		return def
	}
	if v, ok := obj[key].(bool); ok {
		return v
	}
	return def
}

func floatPtr(obj map[string]any, key string) *float64 {
	if obj == nil {
		return nil
	}
	if v, found := coerceNumber(obj[key]); found {
		return &v
	}
	return nil
}

func stringPtr(obj map[string]any, key string) *string {
	if obj == nil {
		return nil
	}
	if s, ok := obj[key].(string); ok && s != "" {
		return &s
	}
	return nil
}

func quotePtr(obj map[string]any, key string) *string {
	s, ok := obj[key].(string)
	if !ok || s == "" {
		return nil
	}
	t := truncateQuote(s)
	return &t
}

// truncateQuote bounds a source quote to maxQuoteLen chars, truncating
// over-long quotes to the first 450 chars plus an ellipsis marker.
func truncateQuote(s string) string {
	runes := []rune(s)
	if len(runes) <= maxQuoteLen {
		return s
	}
	return string(runes[:truncatedQuoteTo]) + "..."
}

func stringList(data map[string]any, key string) []string {
	if data == nil {
		return nil
	}
	list, ok := data[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range list {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
