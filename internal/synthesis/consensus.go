// Package synthesis builds a cross-source consensus view over multiple
// strategy extractions: per-topic agreement, majority, or controversy
// groupings plus a global list of missing-data gaps.
package synthesis

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/optionslab/strategy-cli/internal/model"
)

// majorityThreshold is the share of sources-with-a-value the top position
// needs to count as consensus rather than controversy.
const majorityThreshold = 0.6

// topic pairs a display name with a typed accessor into the schema. The
// explicit function table replaces any reflective field walking.
type topic struct {
	name  string
	value func(*model.StrategySchema) *string
}

func comparableTopics() []topic {
	return []topic{
		{"Underlying", func(s *model.StrategySchema) *string { return scalarValue(s.SetupRules.Underlying) }},
		{"Option Type", func(s *model.StrategySchema) *string { return scalarValue(s.SetupRules.OptionType) }},
		{"Strike Selection", func(s *model.StrategySchema) *string { return scalarValue(s.SetupRules.StrikeSelection) }},
		{"DTE", func(s *model.StrategySchema) *string { return numericValue(s.SetupRules.DTE) }},
		{"Delta", func(s *model.StrategySchema) *string { return numericValue(s.SetupRules.Delta) }},
		{"Entry Criteria", func(s *model.StrategySchema) *string { return scalarValue(s.SetupRules.EntryCriteria) }},
		{"Profit Target", func(s *model.StrategySchema) *string { return scalarValue(s.ManagementRules.ProfitTarget) }},
		{"Stop Loss", func(s *model.StrategySchema) *string { return scalarValue(s.ManagementRules.StopLoss) }},
		{"Adjustments", func(s *model.StrategySchema) *string { return scalarValue(s.ManagementRules.AdjustmentRules) }},
		{"Time Exit", func(s *model.StrategySchema) *string { return scalarValue(s.ManagementRules.TimeExit) }},
	}
}

func scalarValue(f model.ExtractedField) *string {
	if f.Value == nil || *f.Value == "" {
		return nil
	}
	return f.Value
}

func numericValue(f model.ExtractedNumericField) *string {
	if f.Value == nil || *f.Value == 0 {
		return nil
	}
	s := strconv.FormatFloat(*f.Value, 'f', -1, 64)
	return &s
}

var foldCaser = cases.Fold()

func normalize(value string) string {
	return foldCaser.String(strings.TrimSpace(value))
}

// sourceValue is one source's contribution to a topic.
type sourceValue struct {
	original    string
	normalized  string
	sourceIndex int
}

// Synthesize computes the consensus view over the given extractions. The
// caller enforces the two-source minimum; zero inputs yield an empty result.
func Synthesize(schemas []*model.StrategySchema) *model.ConsensusResult {
	if len(schemas) == 0 {
		return &model.ConsensusResult{SourcesAnalyzed: 0}
	}

	n := len(schemas)
	result := &model.ConsensusResult{SourcesAnalyzed: n}

	for _, tp := range comparableTopics() {
		var values []sourceValue
		for i, s := range schemas {
			if v := tp.value(s); v != nil {
				values = append(values, sourceValue{
					original:    *v,
					normalized:  normalize(*v),
					sourceIndex: i,
				})
			}
		}

		if len(values) == 0 {
			result.Gaps = append(result.Gaps, fmt.Sprintf("%s not mentioned in any source", tp.name))
			continue
		}

		positions := groupPositions(values)

		if len(positions) == 1 {
			result.Consensus = append(result.Consensus, model.ConsensusItem{
				Topic:          tp.name,
				ConsensusValue: values[0].original,
				AgreementRate:  float64(len(values)) / float64(n),
				Sources:        positions[0].Sources,
			})
			continue
		}

		// Stable sort keeps first-encountered order for equal counts, so
		// ties break toward the earliest source.
		sort.SliceStable(positions, func(i, j int) bool {
			return positions[i].SourceCount > positions[j].SourceCount
		})

		agreementRate := float64(positions[0].SourceCount) / float64(len(values))
		if agreementRate >= majorityThreshold {
			result.Consensus = append(result.Consensus, model.ConsensusItem{
				Topic:          tp.name,
				ConsensusValue: positions[0].Value,
				AgreementRate:  agreementRate,
				Positions:      positions[1:],
				Sources:        positions[0].Sources,
			})
		} else {
			result.Controversies = append(result.Controversies, model.Controversy{
				Topic:     tp.name,
				Positions: positions,
			})
		}
	}

	result.Gaps = append(result.Gaps, globalGaps(schemas, result.Gaps)...)

	return result
}

// groupPositions groups source values by normalized value, preserving
// first-encountered order.
func groupPositions(values []sourceValue) []model.Position {
	index := make(map[string]int)
	var positions []model.Position
	for _, v := range values {
		i, seen := index[v.normalized]
		if !seen {
			index[v.normalized] = len(positions)
			positions = append(positions, model.Position{Value: v.original})
			i = len(positions) - 1
		}
		positions[i].SourceCount++
		positions[i].Sources = append(positions[i].Sources, v.sourceIndex)
	}
	return positions
}

// gapIndicator is a presence check for data most sources should carry.
type gapIndicator struct {
	name    string
	hasData func(*model.StrategySchema) bool
}

func gapIndicators() []gapIndicator {
	return []gapIndicator{
		{"Stop Loss", func(s *model.StrategySchema) bool {
			return s.ManagementRules.StopLoss.Interpretation != model.InterpretationMissing
		}},
		{"Adjustments", func(s *model.StrategySchema) bool {
			return s.ManagementRules.AdjustmentRules.Interpretation != model.InterpretationMissing
		}},
		{"Failure Modes", func(s *model.StrategySchema) bool {
			return len(s.FailureAnalysis.FailureModesMentioned) > 0
		}},
		{"Backtest Data", func(s *model.StrategySchema) bool {
			return s.RiskProfile.WinRate.Value != nil
		}},
	}
}

// globalGaps flags indicators carried by fewer than half of all sources,
// deduplicated by leading word against gaps already produced per topic.
func globalGaps(schemas []*model.StrategySchema, existing []string) []string {
	var gaps []string
	n := len(schemas)

	for _, ind := range gapIndicators() {
		withData := 0
		for _, s := range schemas {
			if ind.hasData(s) {
				withData++
			}
		}
		if float64(withData) >= float64(n)*0.5 {
			continue
		}
		if hasGapWithLeadingWord(existing, ind.name) {
			continue
		}
		gaps = append(gaps, fmt.Sprintf("%s missing in most sources", ind.name))
	}

	return gaps
}

func hasGapWithLeadingWord(gaps []string, name string) bool {
	lead := strings.Fields(name)[0]
	for _, g := range gaps {
		fields := strings.Fields(g)
		if len(fields) > 0 && fields[0] == lead {
			return true
		}
	}
	return false
}
