package fetcher

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/optionslab/strategy-cli/internal/model"
)

// minArticleChars rejects pages that stripped down to nothing useful.
const minArticleChars = 100

// ArticleFetcher fetches arbitrary web pages and strips them to plaintext.
// It is the fallback for any URL that is not YouTube or Reddit.
type ArticleFetcher struct {
	client *Client
}

// NewArticleFetcher creates an ArticleFetcher using the shared client.
func NewArticleFetcher(client *Client) *ArticleFetcher {
	return &ArticleFetcher{client: client}
}

func (f *ArticleFetcher) Supports(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Fetch downloads the page, extracts title and author, and strips the HTML.
func (f *ArticleFetcher) Fetch(ctx context.Context, rawURL string) (*Content, error) {
	if !f.Supports(rawURL) {
		return nil, eris.Errorf("article: invalid URL %q", rawURL)
	}

	body, err := f.client.Get(ctx, rawURL)
	if err != nil {
		return nil, eris.Wrap(err, "article: fetch page")
	}

	html := string(body)
	text := stripHTML(html)
	if len(text) < minArticleChars {
		return nil, eris.Errorf("article: no meaningful content at %s", rawURL)
	}

	return &Content{
		URL:        rawURL,
		SourceType: model.SourceTypeArticle,
		Title:      extractTitle(html),
		Author:     extractAuthor(html),
		Content:    text,
	}, nil
}

var (
	ogTitleRe    = regexp.MustCompile(`(?i)<meta[^>]+property=["']og:title["'][^>]+content=["']([^"']*)["']`)
	titleRe      = regexp.MustCompile(`(?i)<title[^>]*>(.*?)</title>`)
	metaAuthorRe = regexp.MustCompile(`(?i)<meta[^>]+name=["']author["'][^>]+content=["']([^"']*)["']`)
)

func extractTitle(html string) string {
	if m := ogTitleRe.FindStringSubmatch(html); m != nil && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1])
	}
	if m := titleRe.FindStringSubmatch(html); m != nil {
		return strings.TrimSpace(m[1])
	}
	return "Unknown Article"
}

func extractAuthor(html string) string {
	if m := metaAuthorRe.FindStringSubmatch(html); m != nil && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1])
	}
	return "Unknown"
}

// stripHTML removes scripts/styles/nav/footer, strips tags, decodes entities,
// and collapses whitespace.
func stripHTML(html string) string {
	for _, tag := range []string{"script", "style", "nav", "header", "footer", "aside", "noscript"} {
		re := regexp.MustCompile(`(?is)<` + tag + `[^>]*>.*?</` + tag + `>`)
		html = re.ReplaceAllString(html, "")
	}

	tagRe := regexp.MustCompile(`<[^>]+>`)
	html = tagRe.ReplaceAllString(html, " ")

	r := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	html = r.Replace(html)

	spaceRe := regexp.MustCompile(`[ \t]+`)
	html = spaceRe.ReplaceAllString(html, " ")

	nlRe := regexp.MustCompile(`\n{3,}`)
	html = nlRe.ReplaceAllString(html, "\n\n")

	return strings.TrimSpace(html)
}
