package scorer

import (
	"math"

	"github.com/optionslab/strategy-cli/internal/model"
)

// Trust component weights. The four weights sum to 1.0.
const (
	weightDiscussesFailures = 0.30
	weightMentionsDrawdowns = 0.25
	weightShowsLosingTrades = 0.25
	weightBalancedClaims    = 0.20
)

// ScoreTrust computes the 0-10 trust score measuring how balanced the
// source's reporting is: whether it discusses failures, drawdowns, and
// losing trades rather than only wins.
func ScoreTrust(s *model.StrategySchema) float64 {
	score := failureModeScore(s.FailureAnalysis) * weightDiscussesFailures

	if s.FailureAnalysis.MaxDrawdownMentioned != nil || hasNumeric(s.RiskProfile.MaxDrawdown) {
		score += 10.0 * weightMentionsDrawdowns
	}

	// Losing trades are hard to detect directly; the bias flag stands in.
	var losing float64
	switch {
	case !s.FailureAnalysis.BiasDetected:
		losing = 10.0
	case s.FailureAnalysis.DiscussesLosses:
		losing = 5.0
	}
	score += losing * weightShowsLosingTrades

	// Purely educational content without warnings is not necessarily
	// untrustworthy, just unscored on this axis.
	balanced := 2.0
	if n := len(s.Warnings); n > 0 {
		balanced = math.Min(10, float64(n)*3+4)
	}
	score += balanced * weightBalancedClaims

	return round1(score)
}
