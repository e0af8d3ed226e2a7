package research

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
)

const cacheKeyPrefix = "skilltree:research:"

// CachedSource memoizes Search results in Redis. Cache errors never fail a
// search; they fall through to the wrapped source.
type CachedSource struct {
	inner ResearchSource
	rdb   goredis.UniversalClient
	ttl   time.Duration
	log   *logger.Logger
}

func NewCachedSource(inner ResearchSource, rdb goredis.UniversalClient, ttl time.Duration, baseLog *logger.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &CachedSource{
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
		log:   baseLog.With("research_cache", string(inner.SourceType())),
	}
}

func (c *CachedSource) SourceType() types.SourceType { return c.inner.SourceType() }

func (c *CachedSource) CanHandle(rawURL string) bool { return c.inner.CanHandle(rawURL) }

func (c *CachedSource) FetchDetails(ctx context.Context, rawURL string) (*types.Source, error) {
	return c.inner.FetchDetails(ctx, rawURL)
}

func (c *CachedSource) Search(ctx context.Context, query string, maxResults int) ([]*types.Source, error) {
	key := c.key(query, maxResults)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []*types.Source
		if jerr := json.Unmarshal(raw, &cached); jerr == nil {
			return cached, nil
		}
		c.log.Warn("Discarding corrupt research cache entry", "key", key)
	case errors.Is(err, goredis.Nil):
	default:
		c.log.Warn("Research cache read failed", "key", key, "error", err)
	}

	out, err := c.inner.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(out)
	if err == nil {
		if serr := c.rdb.Set(ctx, key, payload, c.ttl).Err(); serr != nil {
			c.log.Warn("Research cache write failed", "key", key, "error", serr)
		}
	}
	return out, nil
}

func (c *CachedSource) key(query string, maxResults int) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return fmt.Sprintf("%s%s:%s:%d", cacheKeyPrefix, c.inner.SourceType(), hex.EncodeToString(sum[:12]), maxResults)
}
