package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/optionslab/strategy-cli/internal/extract"
	"github.com/optionslab/strategy-cli/internal/fetcher"
	"github.com/optionslab/strategy-cli/internal/model"
	"github.com/optionslab/strategy-cli/internal/scorer"
)

var extractNoSave bool

var extractCmd = &cobra.Command{
	Use:   "extract <url-or-file>",
	Short: "Extract a strategy record from a URL or local text file",
	Long:  "Fetches the content, runs LLM extraction and quality scoring, prints the resulting source as JSON, and saves it to the store.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		eng := initEngine()

		var src *model.Source
		var err error
		if _, statErr := os.Stat(args[0]); statErr == nil {
			src, err = ingestFile(ctx, eng, args[0])
		} else {
			src, err = ingestURL(ctx, initFetchers(), eng, args[0])
		}
		if err != nil {
			return err
		}

		if !extractNoSave {
			saveSourceBestEffort(ctx, src)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(src)
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractNoSave, "no-save", false, "skip saving the source to the store")
	rootCmd.AddCommand(extractCmd)
}

// ingestURL fetches, extracts, and scores one URL.
func ingestURL(ctx context.Context, reg *fetcher.Registry, eng *extract.Engine, rawURL string) (*model.Source, error) {
	f := reg.For(rawURL)
	if f == nil {
		return nil, eris.Errorf("no fetcher for URL %q", rawURL)
	}

	content, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	schema, err := eng.Extract(ctx, content.FullText())
	if err != nil {
		return nil, err
	}

	src := &model.Source{
		ID:              model.SourceID(rawURL),
		URL:             rawURL,
		SourceType:      content.SourceType,
		Title:           content.Title,
		Author:          content.Author,
		PublishedDate:   content.PublishedDate,
		PlatformMetrics: content.Metrics,
		Content:         content.Content,
		Extracted:       schema,
		Quality:         scorer.Score(schema),
	}
	if content.CommentContent != nil {
		src.CommentContent = *content.CommentContent
	}
	applyExtractedIdentity(src)
	return src, nil
}

// ingestFile extracts from a local plaintext file, treated as an article.
func ingestFile(ctx context.Context, eng *extract.Engine, path string) (*model.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}

	schema, err := eng.Extract(ctx, string(data))
	if err != nil {
		return nil, err
	}

	url := "file://" + path
	src := &model.Source{
		ID:         model.SourceID(url),
		URL:        url,
		SourceType: model.SourceTypeArticle,
		Title:      filepath.Base(path),
		Author:     "Unknown",
		Content:    string(data),
		Extracted:  schema,
		Quality:    scorer.Score(schema),
	}
	applyExtractedIdentity(src)
	return src, nil
}

// applyExtractedIdentity fills title/author from the extraction when the
// platform gave only placeholders.
func applyExtractedIdentity(src *model.Source) {
	if src.Extracted == nil {
		return
	}
	if src.Author == "Unknown" && src.Extracted.TraderName.Value != nil {
		src.Author = *src.Extracted.TraderName.Value
	}
	if name := src.Extracted.StrategyName.Value; name != nil && src.SourceType == model.SourceTypeYouTube {
		src.Title = *name + " - " + src.Author
	}
}

// saveSourceBestEffort persists the source, logging failures instead of
// failing the extraction.
func saveSourceBestEffort(ctx context.Context, src *model.Source) {
	st, err := initStore(ctx)
	if err != nil {
		zap.L().Warn("store unavailable, source not saved",
			zap.String("url", src.URL),
			zap.Error(err),
		)
		return
	}
	defer st.Close() //nolint:errcheck

	if err := st.SaveSource(ctx, src); err != nil {
		zap.L().Warn("failed to save source",
			zap.String("url", src.URL),
			zap.Error(err),
		)
	}
}
