package fetcher

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/optionslab/strategy-cli/internal/model"
)

// youtubeIDPatterns match the URL forms a video link shows up as.
var youtubeIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/watch\?v=([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtu\.be/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
}

// YouTubeFetcher pulls video transcripts from the public timedtext endpoint.
// No API key, so platform metrics and real titles are unavailable.
type YouTubeFetcher struct {
	client  *Client
	baseURL string
}

// NewYouTubeFetcher creates a YouTubeFetcher using the shared client.
func NewYouTubeFetcher(client *Client) *YouTubeFetcher {
	return &YouTubeFetcher{
		client:  client,
		baseURL: "https://www.youtube.com/api/timedtext",
	}
}

func (f *YouTubeFetcher) Supports(rawURL string) bool {
	return VideoID(rawURL) != ""
}

// VideoID extracts the 11-character video ID, or "" if none matches.
func VideoID(rawURL string) string {
	for _, p := range youtubeIDPatterns {
		if m := p.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	return ""
}

type timedText struct {
	Lines []struct {
		Text string `xml:",chardata"`
	} `xml:"text"`
}

// Fetch downloads and flattens the English transcript.
func (f *YouTubeFetcher) Fetch(ctx context.Context, rawURL string) (*Content, error) {
	id := VideoID(rawURL)
	if id == "" {
		return nil, eris.Errorf("youtube: invalid URL %q", rawURL)
	}

	q := url.Values{}
	q.Set("v", id)
	q.Set("lang", "en")
	body, err := f.client.Get(ctx, f.baseURL+"?"+q.Encode())
	if err != nil {
		return nil, eris.Wrap(err, "youtube: fetch transcript")
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, eris.Errorf("youtube: no transcript available for video %s", id)
	}

	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, eris.Wrap(err, "youtube: parse transcript")
	}

	var parts []string
	for _, line := range tt.Lines {
		if s := strings.TrimSpace(line.Text); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return nil, eris.Errorf("youtube: empty transcript for video %s", id)
	}

	return &Content{
		URL:        rawURL,
		SourceType: model.SourceTypeYouTube,
		Title:      fmt.Sprintf("YouTube Video %s", id),
		Author:     "Unknown",
		Content:    strings.Join(parts, "\n"),
	}, nil
}
