package scorer

import "github.com/optionslab/strategy-cli/internal/model"

// Score computes the full quality metrics (specificity plus trust) for one
// strategy record.
func Score(s *model.StrategySchema) *model.QualityMetrics {
	metrics := ScoreSpecificity(s)
	metrics.TrustScore = ScoreTrust(s)
	return metrics
}
