package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/optionslab/strategy-cli/internal/model"
)

func TestScoreTrust_BalancedSourceScoresHigh(t *testing.T) {
	s := model.DefaultStrategySchema()
	s.FailureAnalysis.BiasDetected = false
	s.FailureAnalysis.FailureModesMentioned = []string{"gamma risk", "vol spike", "assignment"}
	s.RiskProfile.MaxDrawdown = explicitNumeric(15, 0.9)
	s.Warnings = []string{"needs margin approval", "not for small accounts"}

	// failures 10*0.30 + drawdowns 10*0.25 + losing 10*0.25 + balanced 10*0.20 = 10.0
	score := ScoreTrust(s)
	assert.GreaterOrEqual(t, score, 7.0)
	assert.InDelta(t, 10.0, score, 1e-9)
}

func TestScoreTrust_BiasedSourceScoresLow(t *testing.T) {
	s := model.DefaultStrategySchema() // bias_detected true, nothing else
	// balanced floor only: 2.0*0.20 = 0.4
	score := ScoreTrust(s)
	assert.Less(t, score, 3.0)
	assert.InDelta(t, 0.4, score, 1e-9)
}

func TestScoreTrust_DrawdownFromEitherSource(t *testing.T) {
	s := model.DefaultStrategySchema()
	dd := 22.5
	s.FailureAnalysis.MaxDrawdownMentioned = &dd
	assert.InDelta(t, 2.5+0.4, ScoreTrust(s), 1e-9)

	s2 := model.DefaultStrategySchema()
	s2.RiskProfile.MaxDrawdown = explicitNumeric(12, 0.8)
	assert.InDelta(t, 2.5+0.4, ScoreTrust(s2), 1e-9)
}

func TestScoreTrust_DiscussesLossesPartialCredit(t *testing.T) {
	s := model.DefaultStrategySchema()
	s.FailureAnalysis.DiscussesLosses = true
	// failures 5*0.30 + losing 5*0.25 + balanced 2*0.20 = 1.5 + 1.25 + 0.4 = 3.15 -> 3.2
	assert.InDelta(t, 3.2, ScoreTrust(s), 1e-9)
}

func TestScoreTrust_WarningsScaleBalancedClaims(t *testing.T) {
	s := model.DefaultStrategySchema()
	s.Warnings = []string{"w1"}
	// balanced min(10, 3*1+4)=7 -> 7*0.20 = 1.4
	assert.InDelta(t, 1.4, ScoreTrust(s), 1e-9)

	s.Warnings = []string{"w1", "w2", "w3"}
	// balanced min(10, 13)=10 -> 2.0
	assert.InDelta(t, 2.0, ScoreTrust(s), 1e-9)
}
