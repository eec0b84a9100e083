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

var _ ports.FeedStateStore = (*Store)(nil)

// FeedState loads the cache validators for a feed URL. A feed never
// fetched before returns a zero state with the URL set.
func (s *Store) FeedState(ctx context.Context, feedURL string) (domain.FeedCacheState, error) {
	query, args, err := qb.Select("etag", "last_modified", "last_checked_at").
		From("feeds").
		Where(sq.Eq{"feed_url": feedURL}).
		ToSql()
	if err != nil {
		return domain.FeedCacheState{}, fmt.Errorf("build feed-state query: %w", err)
	}

	state := domain.FeedCacheState{FeedURL: feedURL}
	var etag, lastModified, lastChecked sql.NullString
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&etag, &lastModified, &lastChecked)
	if errors.Is(err, sql.ErrNoRows) {
		return state, nil
	}
	if err != nil {
		return domain.FeedCacheState{}, fmt.Errorf("query feed state: %w", err)
	}

	state.ETag = etag.String
	state.LastModified = lastModified.String
	state.LastCheckedAt = lastChecked.String
	return state, nil
}

// SaveFeedState replaces the stored validators for a feed URL. Called on
// every fetch attempt regardless of outcome, so last_checked_at always
// advances.
func (s *Store) SaveFeedState(ctx context.Context, state domain.FeedCacheState) error {
	query, args, err := qb.Insert("feeds").
		Options("OR REPLACE").
		Columns("feed_url", "etag", "last_modified", "last_checked_at").
		Values(state.FeedURL, state.ETag, state.LastModified, state.LastCheckedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build save feed state: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save feed state: %w", err)
	}
	return nil
}
