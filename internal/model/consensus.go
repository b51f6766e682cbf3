package model

// Position is one distinct value for a topic and the sources that hold it.
type Position struct {
	Value       string `json:"value"`
	SourceCount int    `json:"source_count"`
	Sources     []int  `json:"sources"`
}

// ConsensusItem records a topic where sources agree (fully or by majority).
// Positions holds minority groups when the agreement is a majority rather
// than unanimous.
type ConsensusItem struct {
	Topic          string     `json:"topic"`
	ConsensusValue string     `json:"consensus_value"`
	AgreementRate  float64    `json:"agreement_rate"`
	Positions      []Position `json:"positions,omitempty"`
	Sources        []int      `json:"sources"`
}

// Controversy records a topic where no value reached the majority threshold.
type Controversy struct {
	Topic     string     `json:"topic"`
	Positions []Position `json:"positions"`
}

// ConsensusResult is the cross-source synthesis over N strategy records.
type ConsensusResult struct {
	SourcesAnalyzed int             `json:"sources_analyzed"`
	Consensus       []ConsensusItem `json:"consensus"`
	Controversies   []Controversy   `json:"controversies"`
	Gaps            []string        `json:"gaps"`
}
