package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/sourceinfo/sourceinfo/pkg/source"
)

// ErrNotFound reports a domain absent from the catalogue.
var ErrNotFound = errors.New("source not found")

// ListOpts filters and paginates catalogue listing. Nil filters are not
// applied; a nil Lean is "any lean", not Center.
type ListOpts struct {
	Lean           *int
	MinCredibility *float64
	SourceType     source.Type
	Limit          int
	Offset         int
}

// Store is the catalogue and usage-log persistence interface.
type Store interface {
	GetByDomain(ctx context.Context, domain string) (*source.Source, error)
	GetByDomains(ctx context.Context, domains []string) (map[string]source.Source, error)
	ListSources(ctx context.Context, opts ListOpts) ([]source.Source, int, error)
	AllSources(ctx context.Context) ([]source.Source, error)
	UpsertSource(ctx context.Context, src *source.Source) error
	UpsertSources(ctx context.Context, srcs []source.Source) error

	LogUsage(ctx context.Context, entry *UsageEntry) error
	UsageStats(ctx context.Context, days int) (*UsageStats, error)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetByDomain(ctx context.Context, domain string) (*source.Source, error) {
	var src source.Source
	err := s.db.GetContext(ctx, &src, "SELECT * FROM sources WHERE domain = ?", domain)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, domain)
	}
	if err != nil {
		return nil, fmt.Errorf("get source %s: %w", domain, err)
	}
	decodeCriteria(&src)
	return &src, nil
}

func (s *SQLiteStore) GetByDomains(ctx context.Context, domains []string) (map[string]source.Source, error) {
	if len(domains) == 0 {
		return map[string]source.Source{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM sources WHERE domain IN (?)", domains)
	if err != nil {
		return nil, fmt.Errorf("build bulk lookup: %w", err)
	}

	var srcs []source.Source
	if err := s.db.SelectContext(ctx, &srcs, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("bulk lookup: %w", err)
	}

	result := make(map[string]source.Source, len(srcs))
	for i := range srcs {
		decodeCriteria(&srcs[i])
		result[srcs[i].Domain] = srcs[i]
	}
	return result, nil
}

func (s *SQLiteStore) ListSources(ctx context.Context, opts ListOpts) ([]source.Source, int, error) {
	var conds sq.And
	if opts.Lean != nil {
		conds = append(conds, sq.Eq{"political_lean": *opts.Lean})
	}
	if opts.MinCredibility != nil {
		conds = append(conds, sq.GtOrEq{"newsguard_score": *opts.MinCredibility})
	}
	if opts.SourceType != "" {
		conds = append(conds, sq.Eq{"source_type": string(opts.SourceType)})
	}

	countQ := sq.Select("COUNT(*)").From("sources")
	listQ := sq.Select("*").From("sources")
	if len(conds) > 0 {
		countQ = countQ.Where(conds)
		listQ = listQ.Where(conds)
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err := s.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count sources: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	listQ = listQ.
		OrderBy("newsguard_score DESC", "name ASC").
		Limit(uint64(limit)).
		Offset(uint64(opts.Offset))

	listSQL, listArgs, err := listQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	var srcs []source.Source
	if err := s.db.SelectContext(ctx, &srcs, listSQL, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list sources: %w", err)
	}
	for i := range srcs {
		decodeCriteria(&srcs[i])
	}
	return srcs, total, nil
}

func (s *SQLiteStore) AllSources(ctx context.Context) ([]source.Source, error) {
	var srcs []source.Source
	if err := s.db.SelectContext(ctx, &srcs, "SELECT * FROM sources ORDER BY domain"); err != nil {
		return nil, fmt.Errorf("load all sources: %w", err)
	}
	for i := range srcs {
		decodeCriteria(&srcs[i])
	}
	return srcs, nil
}

func (s *SQLiteStore) UpsertSource(ctx context.Context, src *source.Source) error {
	criteriaJSON := src.CriteriaJSON
	if src.Criteria != nil {
		b, _ := json.Marshal(src.Criteria)
		criteriaJSON = string(b)
	}
	createdAt := src.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sources (domain, name, newsguard_score, newsguard_rating, criteria_json,
			political_lean, political_lean_label, source_type, description, ownership_summary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(domain) DO UPDATE SET
			name = excluded.name,
			newsguard_score = excluded.newsguard_score,
			newsguard_rating = excluded.newsguard_rating,
			criteria_json = excluded.criteria_json,
			political_lean = excluded.political_lean,
			political_lean_label = excluded.political_lean_label,
			source_type = excluded.source_type,
			description = excluded.description,
			ownership_summary = excluded.ownership_summary
	`, src.Domain, src.Name, src.NewsguardScore, src.NewsguardRating, criteriaJSON,
		src.PoliticalLean, src.PoliticalLeanLabel, string(src.SourceType),
		src.Description, src.OwnershipSummary, createdAt)
	if err != nil {
		return fmt.Errorf("upsert source %s: %w", src.Domain, err)
	}
	return nil
}

func (s *SQLiteStore) UpsertSources(ctx context.Context, srcs []source.Source) error {
	for i := range srcs {
		if err := s.UpsertSource(ctx, &srcs[i]); err != nil {
			return err
		}
	}
	return nil
}

func decodeCriteria(src *source.Source) {
	if src.CriteriaJSON == "" {
		return
	}
	json.Unmarshal([]byte(src.CriteriaJSON), &src.Criteria)
}
