package extract

import "fmt"

// extractionPrompt is the fixed template sent to the model for every chunk.
// It embeds a worked JSON example to prevent schema drift in the response.
const extractionPrompt = `You are an expert options trading analyst. Extract structured strategy data from the following transcript/content.

CRITICAL RULES:
1. For each field, provide:
   - value: The extracted value (string or number)
   - confidence: 0.0-1.0 based on how explicit the information is
   - source_quote: Exact quote from text (max 150 chars)
   - interpretation: "explicit" (directly stated), "implicit" (clearly implied), "inferred" (educated guess), "missing" (not found)

2. Distinguish interpretation types:
   - EXPLICIT: "I trade 30 DTE" -> confidence: 1.0, interpretation: "explicit"
   - IMPLICIT: "Weekly options" -> DTE: 7, confidence: 0.9, interpretation: "implicit"
   - INFERRED: "Short-term trades" -> DTE: [5, 14], confidence: 0.5, interpretation: "inferred"
   - MISSING: Not mentioned at all -> confidence: 0, interpretation: "missing"

3. IMPORTANT: Look for FAILURE MODES. If the author only discusses wins, set bias_detected: true.

4. Extract key insights, warnings, and memorable quotes.

Return ONLY valid JSON matching this schema:

{
  "strategy_name": {"value": "string", "confidence": 0.0, "source_quote": "string", "interpretation": "explicit|implicit|inferred|missing"},
  "variation": {"value": "string", "confidence": 0.0, "source_quote": "string", "interpretation": "..."},
  "trader_name": {"value": "string", "confidence": 0.0, "source_quote": "string", "interpretation": "..."},
  "experience_level": {"value": "string", "confidence": 0.0, "source_quote": "string", "interpretation": "..."},

  "setup_rules": {
    "underlying": {"value": "string", "confidence": 0.0, "source_quote": "string", "interpretation": "..."},
    "option_type": {"value": "string", "confidence": 0.0, "source_quote": "string", "interpretation": "..."},
    "strike_selection": {"value": "string", "confidence": 0.0, "source_quote": "string", "interpretation": "..."},
    "dte": {"value": 30, "value_range": [25, 45], "confidence": 0.0, "source_quote": "string", "interpretation": "..."},
    "width": {"value": 10, "confidence": 0.0, "source_quote": "string", "interpretation": "..."},
    "delta": {"value": 0.16, "confidence": 0.0, "source_quote": "string", "interpretation": "..."},
    "entry_criteria": {"value": "string", "confidence": 0.0, "source_quote": "string", "interpretation": "..."},
    "entry_timing": {"value": "string", "confidence": 0.0, "source_quote": "string", "interpretation": "..."},
    "buying_power_effect": {"value": "string", "confidence": 0.0, "source_quote": "string", "interpretation": "..."}
  },

  "management_rules": {
    "profit_target": {"value": "string", "confidence": 0.0, "source_quote": "string", "interpretation": "..."},
    "stop_loss": {"value": "string", "confidence": 0.0, "source_quote": "string", "interpretation": "..."},
    "time_exit": {"value": "string", "confidence": 0.0, "source_quote": "string", "interpretation": "..."},
    "adjustment_rules": {"value": "string", "confidence": 0.0, "source_quote": "string", "interpretation": "..."},
    "rolling_rules": {"value": "string", "confidence": 0.0, "source_quote": "string", "interpretation": "..."},
    "defensive_maneuvers": {"value": "string", "confidence": 0.0, "source_quote": "string", "interpretation": "..."}
  },

  "risk_profile": {
    "max_loss_per_trade": {"value": 500, "confidence": 0.0, "source_quote": "string", "interpretation": "..."},
    "win_rate": {"value": 0.75, "confidence": 0.0, "source_quote": "string", "interpretation": "..."},
    "risk_reward_ratio": {"value": "string", "confidence": 0.0, "source_quote": "string", "interpretation": "..."},
    "max_drawdown": {"value": 15.0, "confidence": 0.0, "source_quote": "string", "interpretation": "..."}
  },

  "performance_claims": {
    "starting_capital": {"value": 3200, "confidence": 0.0, "source_quote": "string", "interpretation": "..."},
    "ending_capital": {"value": 12000, "confidence": 0.0, "source_quote": "string", "interpretation": "..."},
    "total_return_percent": {"value": 275.0, "confidence": 0.0, "source_quote": "string", "interpretation": "..."},
    "time_period": {"value": "9 months", "confidence": 0.0, "source_quote": "string", "interpretation": "..."},
    "profits_withdrawn": {"value": 0, "confidence": 0.0, "source_quote": "string", "interpretation": "..."},
    "verified": false
  },

  "failure_analysis": {
    "failure_modes_mentioned": ["list of failure scenarios mentioned"],
    "discusses_losses": false,
    "max_drawdown_mentioned": null,
    "recovery_strategy": null,
    "bias_detected": true
  },

  "key_insights": ["list of key takeaways"],
  "warnings": ["list of warnings or caveats mentioned"],
  "quotes": ["memorable direct quotes from the content"]
}

CONTENT TO ANALYZE:
---
%s
---

Return ONLY the JSON, no markdown formatting, no code blocks.`

// buildExtractionPrompt renders the extraction prompt for one content chunk.
func buildExtractionPrompt(content string) string {
	return fmt.Sprintf(extractionPrompt, content)
}
