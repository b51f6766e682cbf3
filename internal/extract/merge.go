package extract

import "github.com/optionslab/strategy-cli/internal/model"

// maxMergedListLen caps the merged insight/warning/quote lists.
const maxMergedListLen = 10

// representativeConfidences returns the confidences of the fixed field
// subset used to rank chunk extractions: strategy name, underlying, DTE,
// profit target. The subset is a deliberate design choice pinned down by
// tests; changing it changes which chunk wins the merge.
func representativeConfidences(s *model.StrategySchema) []float64 {
	return []float64{
		s.StrategyName.Confidence,
		s.SetupRules.Underlying.Confidence,
		s.SetupRules.DTE.Confidence,
		s.ManagementRules.ProfitTarget.Confidence,
	}
}

// SelectBaseExtraction returns the index of the extraction with the highest
// mean confidence over the representative field subset. Ties keep the
// earliest extraction.
func SelectBaseExtraction(extractions []*model.StrategySchema) int {
	best := 0
	bestScore := 0.0
	for i, e := range extractions {
		confidences := representativeConfidences(e)
		var sum float64
		for _, c := range confidences {
			sum += c
		}
		avg := sum / float64(len(confidences))
		if avg > bestScore {
			best = i
			bestScore = avg
		}
	}
	return best
}

// MergeChunkExtractions merges per-chunk extractions winner-take-all: the
// most confident chunk supplies every structured field, while the insight,
// warning, and quote lists are unioned across all chunks, deduplicated in
// first-seen order, and capped.
func MergeChunkExtractions(extractions []*model.StrategySchema) *model.StrategySchema {
	if len(extractions) == 0 {
		return model.DefaultStrategySchema()
	}
	if len(extractions) == 1 {
		return extractions[0]
	}

	base := extractions[SelectBaseExtraction(extractions)]

	var insights, warnings, quotes []string
	for _, e := range extractions {
		insights = append(insights, e.KeyInsights...)
		warnings = append(warnings, e.Warnings...)
		quotes = append(quotes, e.Quotes...)
	}

	base.KeyInsights = dedupeCapped(insights, maxMergedListLen)
	base.Warnings = dedupeCapped(warnings, maxMergedListLen)
	base.Quotes = dedupeCapped(quotes, maxMergedListLen)

	return base
}

func dedupeCapped(items []string, limit int) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, item := range items {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
		if len(out) >= limit {
			break
		}
	}
	return out
}
