package research

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
)

func TestCachedSourceServesRepeatSearchFromRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	inner := &stubSource{kind: types.SourceTypeArxiv, results: sourcesFor("A", 2)}
	cached := NewCachedSource(inner, rdb, time.Minute, logger.NewNop())

	first, err := cached.Search(context.Background(), "Go", 2)
	require.NoError(t, err)
	second, err := cached.Search(context.Background(), " go ", 2)
	require.NoError(t, err)

	assert.Equal(t, titles(first), titles(second))
	assert.Len(t, inner.quotas, 1, "second search must be a cache hit")
	assert.Len(t, mr.Keys(), 1)

	mr.FastForward(2 * time.Minute)
	_, err = cached.Search(context.Background(), "Go", 2)
	require.NoError(t, err)
	assert.Len(t, inner.quotas, 2)
}

func TestCachedSourceDoesNotCacheFailures(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	inner := &stubSource{kind: types.SourceTypeWikipedia, err: errors.New("down")}
	cached := NewCachedSource(inner, rdb, time.Minute, logger.NewNop())

	_, err := cached.Search(context.Background(), "Go", 2)
	require.Error(t, err)
	assert.Empty(t, mr.Keys())
}

func TestCachedSourceFallsThroughWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	inner := &stubSource{kind: types.SourceTypeWebSearch, results: sourcesFor("W", 1)}
	cached := NewCachedSource(inner, rdb, time.Minute, logger.NewNop())

	got, err := cached.Search(context.Background(), "Go", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"W-0"}, titles(got))
}
