package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"FeedDigest/internal/domain"
	"FeedDigest/internal/ports"
)

var _ ports.DedupStore = (*Store)(nil)

// FilterNew returns the uids that have no seen record yet, preserving the
// input order. The uid space is global across feeds: an item already seen
// via another feed is not new.
func (s *Store) FilterNew(ctx context.Context, uids []string) ([]string, error) {
	if len(uids) == 0 {
		return nil, nil
	}

	query, args, err := qb.Select("uid").From("seen").Where(sq.Eq{"uid": uids}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build filter query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query seen: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("scan uid: %w", err)
		}
		seen[uid] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	fresh := make([]string, 0, len(uids))
	for _, uid := range uids {
		if !seen[uid] {
			fresh = append(fresh, uid)
		}
	}
	return fresh, nil
}

// MarkSeen inserts a seen record with insert-or-ignore semantics. Existing
// rows are never touched; calling twice with the same uid is a no-op.
func (s *Store) MarkSeen(ctx context.Context, rec domain.SeenRecord) error {
	query, args, err := qb.Insert("seen").
		Options("OR IGNORE").
		Columns("uid", "feed_url", "article_url", "doi", "pub_date", "first_seen_at").
		Values(rec.UID, rec.FeedURL, rec.ArticleURL, rec.DOI, rec.PubDate, rec.FirstSeenAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark seen: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}
	return nil
}

// LastNewTimestamp reports when the feed most recently produced a new
// article, or the empty string when it never has.
func (s *Store) LastNewTimestamp(ctx context.Context, feedURL string) (string, error) {
	query, args, err := qb.Select("MAX(first_seen_at)").
		From("seen").
		Where(sq.Eq{"feed_url": feedURL}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build last-new query: %w", err)
	}

	var ts sql.NullString
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&ts); err != nil {
		return "", fmt.Errorf("query last new: %w", err)
	}
	return ts.String, nil
}
