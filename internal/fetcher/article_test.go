package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optionslab/strategy-cli/internal/model"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Fallback Title</title>
  <meta property="og:title" content="The 0DTE Iron Fly Playbook">
  <meta name="author" content="Jane Trader">
  <style>body { color: red; }</style>
  <script>trackPageView();</script>
</head>
<body>
  <nav><a href="/">Home</a><a href="/about">About</a></nav>
  <article>
    <h1>The 0DTE Iron Fly Playbook</h1>
    <p>Enter at 9:45am when VIX is under 20. Sell the at-the-money straddle
    and buy wings 30 points out. Target 25% of max profit &amp; stop at 2x credit.</p>
  </article>
  <footer>Copyright 2026</footer>
</body>
</html>`

func TestArticleFetcher_FetchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	f := NewArticleFetcher(fastTestClient())
	c, err := f.Fetch(context.Background(), srv.URL+"/playbook")
	require.NoError(t, err)

	assert.Equal(t, model.SourceTypeArticle, c.SourceType)
	assert.Equal(t, "The 0DTE Iron Fly Playbook", c.Title)
	assert.Equal(t, "Jane Trader", c.Author)

	assert.Contains(t, c.Content, "Enter at 9:45am when VIX is under 20")
	assert.Contains(t, c.Content, "Target 25% of max profit & stop at 2x credit")
	assert.NotContains(t, c.Content, "trackPageView")
	assert.NotContains(t, c.Content, "color: red")
	assert.NotContains(t, c.Content, "Copyright 2026")
	assert.NotContains(t, c.Content, "<p>")
}

func TestArticleFetcher_TooLittleContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>hi</p></body></html>"))
	}))
	defer srv.Close()

	f := NewArticleFetcher(fastTestClient())
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no meaningful content")
}

func TestArticleFetcher_InvalidURL(t *testing.T) {
	f := NewArticleFetcher(fastTestClient())
	_, err := f.Fetch(context.Background(), "not-a-url")
	require.Error(t, err)
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "a & b", stripHTML("<div>a &amp; b</div>"))
	assert.Equal(t, "first\n\nsecond", stripHTML("first\n\n\n\n\nsecond"))
}

func TestExtractTitle_Fallbacks(t *testing.T) {
	assert.Equal(t, "From Tag", extractTitle("<title>From Tag</title>"))
	assert.Equal(t, "Unknown Article", extractTitle("<p>no title here</p>"))
}
