// Package fetcher retrieves raw strategy content from YouTube transcripts,
// Reddit threads, and web articles, normalizing each into plain text ready
// for extraction.
package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/optionslab/strategy-cli/internal/model"
)

// Content is the normalized output of a fetch: plain text plus whatever
// metadata the platform exposes without authenticated APIs.
type Content struct {
	URL            string
	SourceType     model.SourceType
	Title          string
	Author         string
	PublishedDate  *time.Time
	Content        string
	CommentContent *string
	Metrics        model.PlatformMetrics
}

// FullText returns the text handed to extraction. Sources with comments
// combine post and discussion into a single document.
func (c *Content) FullText() string {
	if c.CommentContent == nil || *c.CommentContent == "" {
		return c.Content
	}
	return fmt.Sprintf("# %s\n\n%s\n\n## Comments\n\n%s", c.Title, c.Content, *c.CommentContent)
}

// Fetcher retrieves content for one platform.
type Fetcher interface {
	Supports(rawURL string) bool
	Fetch(ctx context.Context, rawURL string) (*Content, error)
}

// DetectSourceType classifies a URL by host. Anything that is not YouTube
// or Reddit is treated as an article.
func DetectSourceType(rawURL string) model.SourceType {
	u, err := url.Parse(rawURL)
	if err != nil {
		return model.SourceTypeArticle
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	switch {
	case host == "youtube.com" || host == "youtu.be" || strings.HasSuffix(host, ".youtube.com"):
		return model.SourceTypeYouTube
	case host == "reddit.com" || host == "redd.it" || strings.HasSuffix(host, ".reddit.com"):
		return model.SourceTypeReddit
	default:
		return model.SourceTypeArticle
	}
}

// Registry routes URLs to the first fetcher that supports them.
type Registry struct {
	fetchers []Fetcher
}

// NewRegistry builds the default fetcher set sharing one rate-limited client.
func NewRegistry(client *Client) *Registry {
	return &Registry{
		fetchers: []Fetcher{
			NewYouTubeFetcher(client),
			NewRedditFetcher(client),
			NewArticleFetcher(client),
		},
	}
}

// For returns the fetcher handling the given URL. The article fetcher
// accepts any http(s) URL, so every valid URL resolves to something.
func (r *Registry) For(rawURL string) Fetcher {
	for _, f := range r.fetchers {
		if f.Supports(rawURL) {
			return f
		}
	}
	return nil
}
