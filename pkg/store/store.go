// Package store persists articles, persons, and their relations in
// Postgres. The unique constraint on articles.url is the dedup barrier for
// concurrent ingestion; violations surface as ErrDuplicate.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"

	"newsdesk/pkg/domain"
)

var (
	// ErrDuplicate marks a uniqueness-constraint violation, e.g. two
	// concurrent ingests of the same URL. Callers treat it as a no-op.
	ErrDuplicate = errors.New("duplicate record")

	// ErrNotFound marks a lookup that matched nothing.
	ErrNotFound = errors.New("record not found")
)

const pgUniqueViolation = "23505"

// Store wraps a sql.DB handle with newsdesk queries.
type Store struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

// New builds a Store over the given handle.
func New(db *sql.DB) *Store {
	return &Store{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// CreateArticle inserts the article and its keyword set in one
// transaction. A URL or identifier collision returns ErrDuplicate.
func (s *Store) CreateArticle(ctx context.Context, a *domain.Article) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var publishTime any
	if !a.PublishTime.IsZero() {
		publishTime = a.PublishTime
	}

	_, err = s.sb.Insert("articles").
		Columns("identifier", "url", "title", "slug", "authors", "description",
			"language", "body", "publish_time", "site_name", "domain", "images",
			"summary", "ingested_at").
		Values(a.Identifier, a.URL, a.Title, a.Slug, a.Authors, a.Description,
			a.Language, a.Text, publishTime, a.SiteName, a.Domain, a.Images,
			a.Summary, a.IngestedAt).
		RunWith(tx).ExecContext(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: url %s", ErrDuplicate, a.URL)
		}
		return fmt.Errorf("insert article: %w", err)
	}

	if len(a.Keywords) > 0 {
		insert := s.sb.Insert("article_keywords").Columns("article_id", "position", "keyword")
		for i, kw := range a.Keywords {
			insert = insert.Values(a.Identifier, i, kw)
		}
		if _, err := insert.RunWith(tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("insert keywords: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: url %s", ErrDuplicate, a.URL)
		}
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ArticleURLExists reports whether an article with this URL is already
// persisted.
func (s *Store) ArticleURLExists(ctx context.Context, url string) (bool, error) {
	var one int
	err := s.sb.Select("1").From("articles").Where(sq.Eq{"url": url}).
		RunWith(s.db).QueryRowContext(ctx).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check url: %w", err)
	}
	return true, nil
}

// IDByURL returns the identifier of the article with the given source URL.
func (s *Store) IDByURL(ctx context.Context, url string) (int64, error) {
	var id int64
	err := s.sb.Select("identifier").From("articles").Where(sq.Eq{"url": url}).
		RunWith(s.db).QueryRowContext(ctx).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: url %s", ErrNotFound, url)
	}
	if err != nil {
		return 0, fmt.Errorf("id by url: %w", err)
	}
	return id, nil
}

const articleColumns = "identifier, url, title, slug, authors, description, language, body, publish_time, site_name, domain, images, summary, views, ingested_at"

func scanArticle(row sq.RowScanner) (*domain.Article, error) {
	var a domain.Article
	var publishTime sql.NullTime
	err := row.Scan(&a.Identifier, &a.URL, &a.Title, &a.Slug, &a.Authors,
		&a.Description, &a.Language, &a.Text, &publishTime, &a.SiteName,
		&a.Domain, &a.Images, &a.Summary, &a.Views, &a.IngestedAt)
	if err != nil {
		return nil, err
	}
	if publishTime.Valid {
		a.PublishTime = publishTime.Time
	}
	return &a, nil
}

// ArticleByID loads one article with its keywords.
func (s *Store) ArticleByID(ctx context.Context, id int64) (*domain.Article, error) {
	row := s.sb.Select(articleColumns).From("articles").Where(sq.Eq{"identifier": id}).
		RunWith(s.db).QueryRowContext(ctx)

	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: article %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("article by id: %w", err)
	}

	a.Keywords, err = s.keywords(ctx, id)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) keywords(ctx context.Context, articleID int64) ([]string, error) {
	rows, err := s.sb.Select("keyword").From("article_keywords").
		Where(sq.Eq{"article_id": articleID}).OrderBy("position").
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("load keywords: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var kw string
		if err := rows.Scan(&kw); err != nil {
			return nil, fmt.Errorf("scan keyword: %w", err)
		}
		out = append(out, kw)
	}
	return out, rows.Err()
}

// ListArticles returns headline records ordered by publish time, newest
// first. search, when non-empty, matches titles and keywords.
func (s *Store) ListArticles(ctx context.Context, search string, limit, offset uint64) ([]domain.Article, error) {
	q := s.sb.Select("identifier", "url", "title", "slug", "authors", "description",
		"language", "publish_time", "site_name", "domain", "images", "views").
		From("articles").
		OrderBy("publish_time DESC NULLS LAST", "views").
		Limit(limit).Offset(offset)

	if search != "" {
		pattern := "%" + search + "%"
		q = q.Where(sq.Or{
			sq.ILike{"title": pattern},
			sq.Expr("EXISTS (SELECT 1 FROM article_keywords k WHERE k.article_id = articles.identifier AND k.keyword ILIKE ?)", pattern),
		})
	}

	rows, err := q.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	var out []domain.Article
	for rows.Next() {
		var a domain.Article
		var publishTime sql.NullTime
		if err := rows.Scan(&a.Identifier, &a.URL, &a.Title, &a.Slug, &a.Authors,
			&a.Description, &a.Language, &publishTime, &a.SiteName, &a.Domain,
			&a.Images, &a.Views); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		if publishTime.Valid {
			a.PublishTime = publishTime.Time
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// RelatedByKeywords returns headline records of articles sharing at least
// one keyword with the given set, excluding the article itself.
func (s *Store) RelatedByKeywords(ctx context.Context, articleID int64, keywords []string, limit uint64) ([]domain.Article, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	rows, err := s.sb.Select("a.identifier", "a.title", "a.images", "a.site_name", "a.domain", "a.publish_time").
		From("articles a").
		Join("article_keywords k ON k.article_id = a.identifier").
		Where(sq.Eq{"k.keyword": keywords}).
		Where(sq.NotEq{"a.identifier": articleID}).
		GroupBy("a.identifier", "a.title", "a.images", "a.site_name", "a.domain", "a.publish_time").
		OrderBy("a.publish_time DESC NULLS LAST").
		Limit(limit).
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("related articles: %w", err)
	}
	defer rows.Close()

	var out []domain.Article
	for rows.Next() {
		var a domain.Article
		var publishTime sql.NullTime
		if err := rows.Scan(&a.Identifier, &a.Title, &a.Images, &a.SiteName, &a.Domain, &publishTime); err != nil {
			return nil, fmt.Errorf("scan related: %w", err)
		}
		if publishTime.Valid {
			a.PublishTime = publishTime.Time
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteArticle removes one article; relations cascade.
func (s *Store) DeleteArticle(ctx context.Context, id int64) error {
	res, err := s.sb.Delete("articles").Where(sq.Eq{"identifier": id}).
		RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: article %d", ErrNotFound, id)
	}
	return nil
}

// ArticleStats returns the view and save counts for one article.
func (s *Store) ArticleStats(ctx context.Context, id int64) (views, saves int, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT
		(SELECT count(*) FROM article_viewed_by WHERE article_id = $1),
		(SELECT count(*) FROM article_saved_by WHERE article_id = $1)`, id).
		Scan(&views, &saves)
	if err != nil {
		return 0, 0, fmt.Errorf("article stats: %w", err)
	}
	return views, saves, nil
}
