package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/optionslab/strategy-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS sources (
	id                TEXT PRIMARY KEY,
	url               TEXT NOT NULL UNIQUE,
	source_type       TEXT NOT NULL,
	title             TEXT NOT NULL DEFAULT '',
	author            TEXT NOT NULL DEFAULT '',
	published_date    DATETIME,
	platform_metrics  TEXT NOT NULL DEFAULT '{}',
	market_context    TEXT NOT NULL DEFAULT '{}',
	content           TEXT NOT NULL DEFAULT '',
	comment_content   TEXT NOT NULL DEFAULT '',
	extracted         TEXT,
	quality           TEXT,
	specificity_score REAL,
	trust_score       REAL,
	created_at        DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS strategies (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	source_ids TEXT NOT NULL DEFAULT '[]',
	consensus  TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_sources_source_type ON sources(source_type);
CREATE INDEX IF NOT EXISTS idx_sources_created_at ON sources(created_at);
CREATE INDEX IF NOT EXISTS idx_strategies_name ON strategies(name);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveSource(ctx context.Context, src *model.Source) error {
	now := time.Now().UTC()
	if src.ID == "" {
		src.ID = model.SourceID(src.URL)
	}
	if src.CreatedAt.IsZero() {
		src.CreatedAt = now
	}
	src.UpdatedAt = now

	metricsJSON, contextJSON, extractedJSON, qualityJSON, err := marshalSource(src)
	if err != nil {
		return err
	}

	var specificity, trust any
	if src.Quality != nil {
		specificity = src.Quality.SpecificityScore
		trust = src.Quality.TrustScore
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sources
		 (id, url, source_type, title, author, published_date, platform_metrics, market_context,
		  content, comment_content, extracted, quality, specificity_score, trust_score, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   url = excluded.url, source_type = excluded.source_type, title = excluded.title,
		   author = excluded.author, published_date = excluded.published_date,
		   platform_metrics = excluded.platform_metrics, market_context = excluded.market_context,
		   content = excluded.content, comment_content = excluded.comment_content,
		   extracted = excluded.extracted, quality = excluded.quality,
		   specificity_score = excluded.specificity_score, trust_score = excluded.trust_score,
		   updated_at = excluded.updated_at`,
		src.ID, src.URL, string(src.SourceType), src.Title, src.Author, src.PublishedDate,
		metricsJSON, contextJSON, src.Content, src.CommentContent,
		extractedJSON, qualityJSON, specificity, trust, src.CreatedAt, src.UpdatedAt,
	)
	return eris.Wrapf(err, "sqlite: save source %s", src.ID)
}

const sourceColumns = `id, url, source_type, title, author, published_date, platform_metrics,
	market_context, content, comment_content, extracted, quality, created_at, updated_at`

func (s *SQLiteStore) GetSource(ctx context.Context, id string) (*model.Source, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sourceColumns+` FROM sources WHERE id = ?`, id)
	src, err := scanSource(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return src, err
}

func (s *SQLiteStore) ListSources(ctx context.Context, filter SourceFilter) ([]model.Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM sources WHERE 1=1`
	var args []any

	if filter.SourceType != "" {
		query += ` AND source_type = ?`
		args = append(args, string(filter.SourceType))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list sources")
	}
	defer rows.Close()

	var sources []model.Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, *src)
	}
	return sources, eris.Wrap(rows.Err(), "sqlite: list sources iterate")
}

func (s *SQLiteStore) DeleteSource(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sources WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete source %s", id)
	}
	return checkRowsAffected(res, "source", id)
}

func (s *SQLiteStore) SaveStrategy(ctx context.Context, st *model.StrategyAggregate) error {
	now := time.Now().UTC()
	if st.CreatedAt.IsZero() {
		st.CreatedAt = now
	}
	st.UpdatedAt = now

	idsJSON, err := json.Marshal(st.SourceIDs)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal source ids")
	}
	var consensusJSON any
	if st.Consensus != nil {
		consensusJSON, err = marshalNullable(st.Consensus)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal consensus")
		}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO strategies (id, name, source_ids, consensus, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name, source_ids = excluded.source_ids,
		   consensus = excluded.consensus, updated_at = excluded.updated_at`,
		st.ID, st.Name, string(idsJSON), consensusJSON, st.CreatedAt, st.UpdatedAt,
	)
	return eris.Wrapf(err, "sqlite: save strategy %s", st.ID)
}

func (s *SQLiteStore) GetStrategy(ctx context.Context, id string) (*model.StrategyAggregate, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, source_ids, consensus, created_at, updated_at FROM strategies WHERE id = ?`, id)
	st, err := scanStrategy(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return st, err
}

func (s *SQLiteStore) ListStrategies(ctx context.Context) ([]model.StrategyAggregate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, source_ids, consensus, created_at, updated_at FROM strategies ORDER BY created_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list strategies")
	}
	defer rows.Close()

	var strategies []model.StrategyAggregate
	for rows.Next() {
		st, err := scanStrategy(rows)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, *st)
	}
	return strategies, eris.Wrap(rows.Err(), "sqlite: list strategies iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

func marshalNullable(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func marshalSource(src *model.Source) (metrics, mktContext string, extracted, quality any, err error) {
	m, err := json.Marshal(src.PlatformMetrics)
	if err != nil {
		return "", "", nil, nil, eris.Wrap(err, "sqlite: marshal platform metrics")
	}
	c, err := json.Marshal(src.MarketContext)
	if err != nil {
		return "", "", nil, nil, eris.Wrap(err, "sqlite: marshal market context")
	}
	if src.Extracted != nil {
		extracted, err = marshalNullable(src.Extracted)
		if err != nil {
			return "", "", nil, nil, eris.Wrap(err, "sqlite: marshal extraction")
		}
	}
	if src.Quality != nil {
		quality, err = marshalNullable(src.Quality)
		if err != nil {
			return "", "", nil, nil, eris.Wrap(err, "sqlite: marshal quality")
		}
	}
	return string(m), string(c), extracted, quality, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSource(row scannable) (*model.Source, error) {
	var src model.Source
	var sourceType, metricsJSON, contextJSON string
	var extractedJSON, qualityJSON sql.NullString
	var published sql.NullTime

	err := row.Scan(&src.ID, &src.URL, &sourceType, &src.Title, &src.Author, &published,
		&metricsJSON, &contextJSON, &src.Content, &src.CommentContent,
		&extractedJSON, &qualityJSON, &src.CreatedAt, &src.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan source")
	}

	src.SourceType = model.SourceType(sourceType)
	if published.Valid {
		t := published.Time
		src.PublishedDate = &t
	}
	if err := json.Unmarshal([]byte(metricsJSON), &src.PlatformMetrics); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal platform metrics")
	}
	if err := json.Unmarshal([]byte(contextJSON), &src.MarketContext); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal market context")
	}
	if extractedJSON.Valid {
		src.Extracted = &model.StrategySchema{}
		if err := json.Unmarshal([]byte(extractedJSON.String), src.Extracted); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal extraction")
		}
	}
	if qualityJSON.Valid {
		src.Quality = &model.QualityMetrics{}
		if err := json.Unmarshal([]byte(qualityJSON.String), src.Quality); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal quality")
		}
	}
	return &src, nil
}

func scanStrategy(row scannable) (*model.StrategyAggregate, error) {
	var st model.StrategyAggregate
	var idsJSON string
	var consensusJSON sql.NullString

	err := row.Scan(&st.ID, &st.Name, &idsJSON, &consensusJSON, &st.CreatedAt, &st.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan strategy")
	}

	if err := json.Unmarshal([]byte(idsJSON), &st.SourceIDs); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal source ids")
	}
	if consensusJSON.Valid {
		st.Consensus = &model.ConsensusResult{}
		if err := json.Unmarshal([]byte(consensusJSON.String), st.Consensus); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal consensus")
		}
	}
	return &st, nil
}
