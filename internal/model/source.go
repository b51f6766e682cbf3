package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// SourceType identifies which platform a source came from.
type SourceType string

const (
	SourceTypeYouTube SourceType = "youtube"
	SourceTypeReddit  SourceType = "reddit"
	SourceTypeArticle SourceType = "article"
)

// PlatformMetrics holds engagement counters from the source platform.
// All fields are optional; platforms expose different subsets.
type PlatformMetrics struct {
	Views       *int64 `json:"views,omitempty"`
	Likes       *int64 `json:"likes,omitempty"`
	Dislikes    *int64 `json:"dislikes,omitempty"`
	Upvotes     *int64 `json:"upvotes,omitempty"`
	Downvotes   *int64 `json:"downvotes,omitempty"`
	Comments    *int64 `json:"comments,omitempty"`
	Subscribers *int64 `json:"subscribers,omitempty"`
}

// MarketContext records market conditions at publication time.
type MarketContext struct {
	PublishedDate *time.Time `json:"published_date,omitempty"`
	VIXLevel      *float64   `json:"vix_level,omitempty"`
	VIXPercentile *float64   `json:"vix_percentile,omitempty"`
	SPX30DTrend   *string    `json:"spx_30d_trend,omitempty"`
	SPX30DReturn  *float64   `json:"spx_30d_return,omitempty"`
	RegimeLabel   *string    `json:"regime_label,omitempty"`
}

// Source is a complete ingested source with its extraction and scores.
type Source struct {
	ID            string     `json:"id"`
	URL           string     `json:"url"`
	SourceType    SourceType `json:"source_type"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	PublishedDate *time.Time `json:"published_date,omitempty"`

	PlatformMetrics PlatformMetrics `json:"platform_metrics"`
	MarketContext   MarketContext   `json:"market_context"`

	Content        string `json:"transcript_or_content"`
	CommentContent string `json:"comment_content,omitempty"`

	Extracted *StrategySchema `json:"extracted_data"`
	Quality   *QualityMetrics `json:"quality_metrics"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StrategyAggregate is a named cross-source synthesis over stored sources.
type StrategyAggregate struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	SourceIDs []string         `json:"source_ids"`
	Consensus *ConsensusResult `json:"consensus"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// SourceID derives a stable source identifier from its URL.
func SourceID(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])[:16]
}
