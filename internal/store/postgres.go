package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/optionslab/strategy-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"get_source":    `SELECT id, url, source_type, title, author, published_date, platform_metrics, market_context, content, comment_content, extracted, quality, created_at, updated_at FROM sources WHERE id = $1`,
	"delete_source": `DELETE FROM sources WHERE id = $1`,
	"get_strategy":  `SELECT id, name, source_ids, consensus, created_at, updated_at FROM strategies WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS sources (
	id                TEXT PRIMARY KEY,
	url               TEXT NOT NULL UNIQUE,
	source_type       TEXT NOT NULL,
	title             TEXT NOT NULL DEFAULT '',
	author            TEXT NOT NULL DEFAULT '',
	published_date    TIMESTAMPTZ,
	platform_metrics  JSONB NOT NULL DEFAULT '{}',
	market_context    JSONB NOT NULL DEFAULT '{}',
	content           TEXT NOT NULL DEFAULT '',
	comment_content   TEXT NOT NULL DEFAULT '',
	extracted         JSONB,
	quality           JSONB,
	specificity_score DOUBLE PRECISION,
	trust_score       DOUBLE PRECISION,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS strategies (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	source_ids JSONB NOT NULL DEFAULT '[]',
	consensus  JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_sources_source_type ON sources(source_type);
CREATE INDEX IF NOT EXISTS idx_sources_created_at ON sources(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_strategies_name ON strategies(name);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveSource(ctx context.Context, src *model.Source) error {
	now := time.Now().UTC()
	if src.ID == "" {
		src.ID = model.SourceID(src.URL)
	}
	if src.CreatedAt.IsZero() {
		src.CreatedAt = now
	}
	src.UpdatedAt = now

	metricsJSON, err := json.Marshal(src.PlatformMetrics)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal platform metrics")
	}
	contextJSON, err := json.Marshal(src.MarketContext)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal market context")
	}
	var extractedJSON, qualityJSON []byte
	if src.Extracted != nil {
		if extractedJSON, err = json.Marshal(src.Extracted); err != nil {
			return eris.Wrap(err, "postgres: marshal extraction")
		}
	}
	var specificity, trust any
	if src.Quality != nil {
		if qualityJSON, err = json.Marshal(src.Quality); err != nil {
			return eris.Wrap(err, "postgres: marshal quality")
		}
		specificity = src.Quality.SpecificityScore
		trust = src.Quality.TrustScore
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO sources
		 (id, url, source_type, title, author, published_date, platform_metrics, market_context,
		  content, comment_content, extracted, quality, specificity_score, trust_score, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 ON CONFLICT (id) DO UPDATE SET
		   url = $2, source_type = $3, title = $4, author = $5, published_date = $6,
		   platform_metrics = $7, market_context = $8, content = $9, comment_content = $10,
		   extracted = $11, quality = $12, specificity_score = $13, trust_score = $14, updated_at = $16`,
		src.ID, src.URL, string(src.SourceType), src.Title, src.Author, src.PublishedDate,
		metricsJSON, contextJSON, src.Content, src.CommentContent,
		extractedJSON, qualityJSON, specificity, trust, src.CreatedAt, src.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: save source %s", src.ID)
}

func (s *PostgresStore) GetSource(ctx context.Context, id string) (*model.Source, error) {
	var src model.Source
	var sourceType string
	var metricsJSON, contextJSON []byte
	var extractedJSON, qualityJSON []byte
	var published *time.Time

	err := s.pool.QueryRow(ctx,
		`SELECT id, url, source_type, title, author, published_date, platform_metrics, market_context,
		        content, comment_content, extracted, quality, created_at, updated_at
		 FROM sources WHERE id = $1`,
		id,
	).Scan(&src.ID, &src.URL, &sourceType, &src.Title, &src.Author, &published,
		&metricsJSON, &contextJSON, &src.Content, &src.CommentContent,
		&extractedJSON, &qualityJSON, &src.CreatedAt, &src.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get source %s", id)
	}

	src.SourceType = model.SourceType(sourceType)
	src.PublishedDate = published
	if err := unmarshalSourceJSON(&src, metricsJSON, contextJSON, extractedJSON, qualityJSON); err != nil {
		return nil, err
	}
	return &src, nil
}

func (s *PostgresStore) ListSources(ctx context.Context, filter SourceFilter) ([]model.Source, error) {
	query := `SELECT id, url, source_type, title, author, published_date, platform_metrics, market_context,
	                 content, comment_content, extracted, quality, created_at, updated_at
	          FROM sources WHERE true`
	args := []any{}
	argIdx := 1

	if filter.SourceType != "" {
		query += fmt.Sprintf(` AND source_type = $%d`, argIdx)
		args = append(args, string(filter.SourceType))
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list sources")
	}
	defer rows.Close()

	var sources []model.Source
	for rows.Next() {
		var src model.Source
		var sourceType string
		var metricsJSON, contextJSON, extractedJSON, qualityJSON []byte
		var published *time.Time

		if err := rows.Scan(&src.ID, &src.URL, &sourceType, &src.Title, &src.Author, &published,
			&metricsJSON, &contextJSON, &src.Content, &src.CommentContent,
			&extractedJSON, &qualityJSON, &src.CreatedAt, &src.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan source")
		}
		src.SourceType = model.SourceType(sourceType)
		src.PublishedDate = published
		if err := unmarshalSourceJSON(&src, metricsJSON, contextJSON, extractedJSON, qualityJSON); err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, eris.Wrap(rows.Err(), "postgres: list sources iterate")
}

func (s *PostgresStore) DeleteSource(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sources WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete source %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("source not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) SaveStrategy(ctx context.Context, st *model.StrategyAggregate) error {
	now := time.Now().UTC()
	if st.CreatedAt.IsZero() {
		st.CreatedAt = now
	}
	st.UpdatedAt = now

	idsJSON, err := json.Marshal(st.SourceIDs)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal source ids")
	}
	var consensusJSON []byte
	if st.Consensus != nil {
		if consensusJSON, err = json.Marshal(st.Consensus); err != nil {
			return eris.Wrap(err, "postgres: marshal consensus")
		}
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO strategies (id, name, source_ids, consensus, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
		   name = $2, source_ids = $3, consensus = $4, updated_at = $6`,
		st.ID, st.Name, idsJSON, consensusJSON, st.CreatedAt, st.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: save strategy %s", st.ID)
}

func (s *PostgresStore) GetStrategy(ctx context.Context, id string) (*model.StrategyAggregate, error) {
	var st model.StrategyAggregate
	var idsJSON, consensusJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, name, source_ids, consensus, created_at, updated_at FROM strategies WHERE id = $1`,
		id,
	).Scan(&st.ID, &st.Name, &idsJSON, &consensusJSON, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get strategy %s", id)
	}

	if err := unmarshalStrategyJSON(&st, idsJSON, consensusJSON); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *PostgresStore) ListStrategies(ctx context.Context) ([]model.StrategyAggregate, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, source_ids, consensus, created_at, updated_at FROM strategies ORDER BY created_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list strategies")
	}
	defer rows.Close()

	var strategies []model.StrategyAggregate
	for rows.Next() {
		var st model.StrategyAggregate
		var idsJSON, consensusJSON []byte
		if err := rows.Scan(&st.ID, &st.Name, &idsJSON, &consensusJSON, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan strategy")
		}
		if err := unmarshalStrategyJSON(&st, idsJSON, consensusJSON); err != nil {
			return nil, err
		}
		strategies = append(strategies, st)
	}
	return strategies, eris.Wrap(rows.Err(), "postgres: list strategies iterate")
}

func unmarshalSourceJSON(src *model.Source, metrics, mktContext, extracted, quality []byte) error {
	if err := json.Unmarshal(metrics, &src.PlatformMetrics); err != nil {
		return eris.Wrap(err, "postgres: unmarshal platform metrics")
	}
	if err := json.Unmarshal(mktContext, &src.MarketContext); err != nil {
		return eris.Wrap(err, "postgres: unmarshal market context")
	}
	if len(extracted) > 0 {
		src.Extracted = &model.StrategySchema{}
		if err := json.Unmarshal(extracted, src.Extracted); err != nil {
			return eris.Wrap(err, "postgres: unmarshal extraction")
		}
	}
	if len(quality) > 0 {
		src.Quality = &model.QualityMetrics{}
		if err := json.Unmarshal(quality, src.Quality); err != nil {
			return eris.Wrap(err, "postgres: unmarshal quality")
		}
	}
	return nil
}

func unmarshalStrategyJSON(st *model.StrategyAggregate, ids, consensus []byte) error {
	if err := json.Unmarshal(ids, &st.SourceIDs); err != nil {
		return eris.Wrap(err, "postgres: unmarshal source ids")
	}
	if len(consensus) > 0 {
		st.Consensus = &model.ConsensusResult{}
		if err := json.Unmarshal(consensus, st.Consensus); err != nil {
			return eris.Wrap(err, "postgres: unmarshal consensus")
		}
	}
	return nil
}
