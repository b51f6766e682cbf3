package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/optionslab/strategy-cli/internal/model"
)

var redditIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:https?://)?(?:www\.)?reddit\.com/r/(\w+)/comments/(\w+)`),
	regexp.MustCompile(`(?:https?://)?(?:old\.)?reddit\.com/r/(\w+)/comments/(\w+)`),
	regexp.MustCompile(`(?:https?://)?redd\.it/(\w+)`),
}

// RedditFetcher pulls posts and comment trees from Reddit's public JSON
// endpoints. No OAuth credentials needed.
type RedditFetcher struct {
	client  *Client
	baseURL string
}

// NewRedditFetcher creates a RedditFetcher using the shared client.
func NewRedditFetcher(client *Client) *RedditFetcher {
	return &RedditFetcher{
		client:  client,
		baseURL: "https://www.reddit.com",
	}
}

func (f *RedditFetcher) Supports(rawURL string) bool {
	return PostID(rawURL) != ""
}

// PostID extracts the post ID from a Reddit URL, or "" if none matches.
func PostID(rawURL string) string {
	for _, p := range redditIDPatterns {
		m := p.FindStringSubmatch(rawURL)
		if m == nil {
			continue
		}
		// redd.it short links carry only the ID.
		return m[len(m)-1]
	}
	return ""
}

// redditThing is one node of the listing tree. Replies is either a nested
// listing or the empty string, so it stays raw until inspected.
type redditThing struct {
	Kind string `json:"kind"`
	Data struct {
		Title       string          `json:"title"`
		Author      string          `json:"author"`
		SelfText    string          `json:"selftext"`
		Body        string          `json:"body"`
		Score       int64           `json:"score"`
		NumComments int64           `json:"num_comments"`
		CreatedUTC  float64         `json:"created_utc"`
		Children    []redditThing   `json:"children"`
		Replies     json.RawMessage `json:"replies"`
	} `json:"data"`
}

// Fetch downloads the post and its full comment tree.
func (f *RedditFetcher) Fetch(ctx context.Context, rawURL string) (*Content, error) {
	id := PostID(rawURL)
	if id == "" {
		return nil, eris.Errorf("reddit: invalid URL %q", rawURL)
	}

	body, err := f.client.Get(ctx, fmt.Sprintf("%s/comments/%s.json?limit=500", f.baseURL, id))
	if err != nil {
		return nil, eris.Wrap(err, "reddit: fetch thread")
	}

	var listings []redditThing
	if err := json.Unmarshal(body, &listings); err != nil {
		return nil, eris.Wrap(err, "reddit: parse thread")
	}
	if len(listings) < 1 || len(listings[0].Data.Children) == 0 {
		return nil, eris.Errorf("reddit: post %s not found", id)
	}

	post := listings[0].Data.Children[0].Data
	author := post.Author
	if author == "" {
		author = "[deleted]"
	}

	var comments []string
	if len(listings) > 1 {
		collectComments(listings[1].Data.Children, &comments)
	}
	commentContent := strings.Join(comments, "\n\n---\n\n")

	published := time.Unix(int64(post.CreatedUTC), 0).UTC()

	return &Content{
		URL:            rawURL,
		SourceType:     model.SourceTypeReddit,
		Title:          post.Title,
		Author:         author,
		PublishedDate:  &published,
		Content:        post.SelfText,
		CommentContent: &commentContent,
		Metrics: model.PlatformMetrics{
			Upvotes:  &post.Score,
			Comments: &post.NumComments,
		},
	}, nil
}

// collectComments walks the comment tree depth-first, formatting each
// comment as "[author | +score]: body".
func collectComments(things []redditThing, out *[]string) {
	for _, t := range things {
		if t.Kind != "t1" || t.Data.Body == "" {
			continue
		}
		author := t.Data.Author
		if author == "" {
			author = "[deleted]"
		}
		*out = append(*out, fmt.Sprintf("[%s | +%d]: %s", author, t.Data.Score, t.Data.Body))

		if len(t.Data.Replies) > 0 && t.Data.Replies[0] == '{' {
			var nested redditThing
			if err := json.Unmarshal(t.Data.Replies, &nested); err == nil {
				collectComments(nested.Data.Children, out)
			}
		}
	}
}
