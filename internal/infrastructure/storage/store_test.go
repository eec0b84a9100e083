package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeedDigest/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFilterNew(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.MarkSeen(ctx, domain.SeenRecord{
		UID: "doi:10.1000/seen", FeedURL: "https://f.example/rss", FirstSeenAt: "2026-08-29T10:00:00Z",
	}))

	fresh, err := s.FilterNew(ctx, []string{"doi:10.1000/new", "doi:10.1000/seen", "id:other"})
	require.NoError(t, err)
	assert.Equal(t, []string{"doi:10.1000/new", "id:other"}, fresh)
}

func TestFilterNewGlobalAcrossFeeds(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Seen through one feed, filtered out for every feed.
	require.NoError(t, s.MarkSeen(ctx, domain.SeenRecord{
		UID: "doi:10.1000/shared", FeedURL: "https://a.example/rss", FirstSeenAt: "2026-08-29T10:00:00Z",
	}))

	fresh, err := s.FilterNew(ctx, []string{"doi:10.1000/shared"})
	require.NoError(t, err)
	assert.Empty(t, fresh)
}

func TestMarkSeenIdempotentAppendOnly(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := domain.SeenRecord{
		UID: "id:abc", FeedURL: "https://f.example/rss",
		ArticleURL: "https://f.example/articles/abc", FirstSeenAt: "2026-08-29T10:00:00Z",
	}
	require.NoError(t, s.MarkSeen(ctx, first))

	// Second insert with different values must be ignored, not error.
	second := first
	second.ArticleURL = "https://f.example/changed"
	second.FirstSeenAt = "2026-08-30T10:00:00Z"
	require.NoError(t, s.MarkSeen(ctx, second))

	last, err := s.LastNewTimestamp(ctx, "https://f.example/rss")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-29T10:00:00Z", last, "original row must survive re-insertion")
}

func TestLastNewTimestamp(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	last, err := s.LastNewTimestamp(ctx, "https://f.example/rss")
	require.NoError(t, err)
	assert.Empty(t, last, "feed without seen rows has no timestamp")

	for i, ts := range []string{"2026-08-27T09:00:00Z", "2026-08-29T09:00:00Z", "2026-08-28T09:00:00Z"} {
		require.NoError(t, s.MarkSeen(ctx, domain.SeenRecord{
			UID: string(rune('a' + i)), FeedURL: "https://f.example/rss", FirstSeenAt: ts,
		}))
	}
	require.NoError(t, s.MarkSeen(ctx, domain.SeenRecord{
		UID: "other", FeedURL: "https://other.example/rss", FirstSeenAt: "2026-08-31T09:00:00Z",
	}))

	last, err = s.LastNewTimestamp(ctx, "https://f.example/rss")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-29T09:00:00Z", last)
}

func TestUpsertArticleOverwrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := domain.ArticleRecord{
		UID: "doi:10.1000/xyz", FeedURL: "https://f.example/rss",
		Journal: "Nature", TitleEN: "Original title",
		FetchedAt: "2026-08-29T10:00:00Z", LastUpdatedAt: "2026-08-29T10:00:00Z",
	}
	require.NoError(t, s.UpsertArticle(ctx, rec))

	rec.TitleEN = "Corrected title"
	rec.AbstractEN = "Now with abstract"
	rec.FetchedAt = "2026-08-30T10:00:00Z"
	rec.LastUpdatedAt = "2026-08-30T10:00:00Z"
	require.NoError(t, s.UpsertArticle(ctx, rec))

	got, err := s.Article(ctx, "doi:10.1000/xyz")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Corrected title", got.TitleEN)
	assert.Equal(t, "Now with abstract", got.AbstractEN)
	assert.Equal(t, "2026-08-30T10:00:00Z", got.LastUpdatedAt)
	assert.Equal(t, "2026-08-29T10:00:00Z", got.FetchedAt, "fetched_at keeps its insert-time value")
}

func TestArticleMissing(t *testing.T) {
	s := openTestStore(t)

	got, err := s.Article(context.Background(), "doi:10.1000/nothing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTopJournal(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	top, err := s.TopJournal(ctx, "https://f.example/rss")
	require.NoError(t, err)
	assert.Empty(t, top)

	for uid, journal := range map[string]string{
		"a": "Nature", "b": "Nature", "c": "Science", "d": "",
	} {
		require.NoError(t, s.UpsertArticle(ctx, domain.ArticleRecord{
			UID: uid, FeedURL: "https://f.example/rss", Journal: journal,
		}))
	}

	top, err = s.TopJournal(ctx, "https://f.example/rss")
	require.NoError(t, err)
	assert.Equal(t, "Nature", top)
}

func TestFeedStateRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	state, err := s.FeedState(ctx, "https://f.example/rss")
	require.NoError(t, err)
	assert.Equal(t, "https://f.example/rss", state.FeedURL)
	assert.Empty(t, state.ETag)

	require.NoError(t, s.SaveFeedState(ctx, domain.FeedCacheState{
		FeedURL: "https://f.example/rss", ETag: `"v1"`,
		LastModified: "Sat, 29 Aug 2026 06:00:00 GMT", LastCheckedAt: "2026-08-29T06:00:00Z",
	}))

	// Updated every cycle: the replace must win.
	require.NoError(t, s.SaveFeedState(ctx, domain.FeedCacheState{
		FeedURL: "https://f.example/rss", ETag: `"v2"`, LastCheckedAt: "2026-08-30T06:00:00Z",
	}))

	state, err = s.FeedState(ctx, "https://f.example/rss")
	require.NoError(t, err)
	assert.Equal(t, `"v2"`, state.ETag)
	assert.Empty(t, state.LastModified, "absent validator clears the cached one")
	assert.Equal(t, "2026-08-30T06:00:00Z", state.LastCheckedAt)
}
