package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"FeedDigest/internal/domain"
	"FeedDigest/internal/ports"
)

var _ ports.ArticleStore = (*Store)(nil)

// UpsertArticle persists or overwrites the record for a uid. All extracted
// fields and last_updated_at take the new values; fetched_at keeps its
// insert-time value on conflict.
func (s *Store) UpsertArticle(ctx context.Context, rec domain.ArticleRecord) error {
	query, args, err := qb.Insert("articles").
		Columns("uid", "feed_url", "journal", "title_en", "title_cn", "type",
			"pub_date", "doi", "article_url", "abstract_en", "abstract_cn",
			"raw_jsonld", "fetched_at", "last_updated_at").
		Values(rec.UID, rec.FeedURL, rec.Journal, rec.TitleEN, rec.TitleCN, rec.Type,
			rec.PubDate, rec.DOI, rec.ArticleURL, rec.AbstractEN, rec.AbstractCN,
			rec.RawStructured, rec.FetchedAt, rec.LastUpdatedAt).
		Suffix(`ON CONFLICT(uid) DO UPDATE SET
			feed_url=excluded.feed_url,
			journal=excluded.journal,
			title_en=excluded.title_en,
			title_cn=excluded.title_cn,
			type=excluded.type,
			pub_date=excluded.pub_date,
			doi=excluded.doi,
			article_url=excluded.article_url,
			abstract_en=excluded.abstract_en,
			abstract_cn=excluded.abstract_cn,
			raw_jsonld=excluded.raw_jsonld,
			last_updated_at=excluded.last_updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert article: %w", err)
	}
	return nil
}

// TopJournal returns the most frequent non-empty journal recorded for a
// feed, or the empty string when the feed has no journal history.
func (s *Store) TopJournal(ctx context.Context, feedURL string) (string, error) {
	query, args, err := qb.Select("journal").
		From("articles").
		Where(sq.And{
			sq.Eq{"feed_url": feedURL},
			sq.NotEq{"journal": nil},
			sq.NotEq{"journal": ""},
		}).
		GroupBy("journal").
		OrderBy("COUNT(*) DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build top-journal query: %w", err)
	}

	var journal string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&journal)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query top journal: %w", err)
	}
	return journal, nil
}

// Article loads one article record by uid; nil when absent. Exposed for
// external inspection and tests, not used by the pipeline itself.
func (s *Store) Article(ctx context.Context, uid string) (*domain.ArticleRecord, error) {
	query, args, err := qb.Select("uid", "feed_url", "journal", "title_en", "title_cn",
		"type", "pub_date", "doi", "article_url", "abstract_en", "abstract_cn",
		"raw_jsonld", "fetched_at", "last_updated_at").
		From("articles").
		Where(sq.Eq{"uid": uid}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build article query: %w", err)
	}

	rec := &domain.ArticleRecord{}
	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&rec.UID, &rec.FeedURL, &rec.Journal, &rec.TitleEN, &rec.TitleCN,
		&rec.Type, &rec.PubDate, &rec.DOI, &rec.ArticleURL, &rec.AbstractEN,
		&rec.AbstractCN, &rec.RawStructured, &rec.FetchedAt, &rec.LastUpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query article: %w", err)
	}
	return rec, nil
}
