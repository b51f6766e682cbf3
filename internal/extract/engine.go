package extract

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/optionslab/strategy-cli/internal/model"
	"github.com/optionslab/strategy-cli/internal/resilience"
	"github.com/optionslab/strategy-cli/pkg/anthropic"
)

// Config controls extraction behavior.
type Config struct {
	// Model is the Anthropic model ID used for extraction.
	Model string

	// MaxResponseTokens bounds the model's response. Default: 8192.
	MaxResponseTokens int64

	// MaxContentTokens is the content size (token estimate, ~4 chars per
	// token) above which chunked extraction kicks in. Default: 30000.
	MaxContentTokens int

	// ChunkSize is the chunk window in chars. Default: 5000.
	ChunkSize int

	// ChunkOverlap is the shared span between consecutive chunks. Default: 500.
	ChunkOverlap int

	// MaxParallelChunks bounds concurrent chunk extractions. Default: 3.
	MaxParallelChunks int
}

func (c Config) withDefaults() Config {
	if c.MaxResponseTokens <= 0 {
		c.MaxResponseTokens = 8192
	}
	if c.MaxContentTokens <= 0 {
		c.MaxContentTokens = 30000
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = 5000
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		c.ChunkOverlap = 500
	}
	if c.MaxParallelChunks <= 0 {
		c.MaxParallelChunks = 3
	}
	return c
}

// Engine converts raw content into StrategySchema records via the model.
// The client is passed in at construction; a nil client means no API key is
// configured and every extraction degrades to the default schema.
type Engine struct {
	client  anthropic.Client
	cfg     Config
	retry   resilience.RetryConfig
	breaker *resilience.CircuitBreaker
}

// New creates an extraction engine around the given client.
func New(client anthropic.Client, cfg Config) *Engine {
	return &Engine{
		client: client,
		cfg:    cfg.withDefaults(),
		retry:  resilience.DefaultRetryConfig(),
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			OnStateChange: func(from, to resilience.CircuitState) {
				zap.L().Warn("anthropic circuit state change",
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		}),
	}
}

// Extract runs the chunked extraction protocol over content. Content that
// exceeds the token budget is split into overlapping chunks extracted
// concurrently and merged; parse failures degrade to the default schema
// while transport failures surface as errors.
func (e *Engine) Extract(ctx context.Context, content string) (*model.StrategySchema, error) {
	if e.client == nil {
		zap.L().Debug("no anthropic client configured, returning empty extraction")
		return model.DefaultStrategySchema(), nil
	}

	if len(content) <= e.cfg.MaxContentTokens*4 {
		return e.extractChunk(ctx, content)
	}

	chunks := ChunkText(content, e.cfg.ChunkSize, e.cfg.ChunkOverlap)
	zap.L().Info("chunking long content",
		zap.Int("content_chars", len(content)),
		zap.Int("chunks", len(chunks)),
	)

	results := make([]*model.StrategySchema, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.MaxParallelChunks)
	for i, chunk := range chunks {
		g.Go(func() error {
			schema, err := e.extractChunk(gctx, chunk)
			if err != nil {
				return eris.Wrapf(err, "extract: chunk %d", i)
			}
			results[i] = schema
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return MergeChunkExtractions(results), nil
}

func (e *Engine) extractChunk(ctx context.Context, content string) (*model.StrategySchema, error) {
	prompt := buildExtractionPrompt(content)

	retry := e.retry
	retry.OnRetry = resilience.RetryLogger("anthropic", "extract")

	temperature := 0.0
	resp, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return resilience.ExecuteVal(ctx, e.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
			return e.client.CreateMessage(ctx, anthropic.MessageRequest{
				Model:       e.cfg.Model,
				MaxTokens:   e.cfg.MaxResponseTokens,
				Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
				Temperature: &temperature,
			})
		})
	})
	if err != nil {
		return nil, eris.Wrap(err, "extract: model call")
	}

	resp.Usage.LogCost(e.cfg.Model, "extract")

	result := ParseExtraction(resp.Text())
	if result.Status != ParseOK {
		zap.L().Warn("unparseable extraction response, using default schema",
			zap.String("status", string(result.Status)),
		)
	}
	return result.Schema, nil
}
