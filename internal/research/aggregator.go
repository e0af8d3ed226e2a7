package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
)

// SourcePersister stores a source by URL, returning the stored row (new or
// pre-existing).
type SourcePersister interface {
	CreateSource(ctx context.Context, s *types.Source) (*types.Source, error)
}

// SearchObserver receives one callback per provider search.
type SearchObserver interface {
	ObserveSearch(sourceType string, results int, err error, elapsed time.Duration)
}

type Aggregator struct {
	log      *logger.Logger
	store    SourcePersister
	sources  []ResearchSource
	observer SearchObserver
}

func NewAggregator(baseLog *logger.Logger, store SourcePersister, observer SearchObserver, sources ...ResearchSource) *Aggregator {
	return &Aggregator{
		log:      baseLog.With("service", "SourceAggregator"),
		store:    store,
		sources:  sources,
		observer: observer,
	}
}

// PerProviderQuota never returns less than 1.
func PerProviderQuota(maxSources, numProviders int) int {
	if numProviders < 1 {
		numProviders = 1
	}
	q := maxSources / numProviders
	if q < 1 {
		return 1
	}
	return q
}

// ResearchTopic queries every provider concurrently, persists the results
// and returns at most maxSources of them in provider registration order.
// Provider failures only zero that provider's contribution and malformed
// records are skipped; any other persistence failure is returned.
func (a *Aggregator) ResearchTopic(ctx context.Context, topic string, maxSources int) ([]*types.Source, error) {
	quota := PerProviderQuota(maxSources, len(a.sources))
	slots := make([][]*types.Source, len(a.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range a.sources {
		g.Go(func() error {
			start := time.Now()
			found, err := src.Search(gctx, topic, quota)
			if a.observer != nil {
				a.observer.ObserveSearch(string(src.SourceType()), len(found), err, time.Since(start))
			}
			if err != nil {
				a.log.Warn("Research source search failed",
					"source_type", string(src.SourceType()),
					"topic", topic,
					"error", err,
				)
				return nil
			}
			slots[i] = found
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]*types.Source, 0, maxSources)
	seen := make(map[uint]struct{})
	for i, found := range slots {
		sourceType := string(a.sources[i].SourceType())
		for _, s := range found {
			if s == nil {
				continue
			}
			if strings.TrimSpace(s.Title) == "" || strings.TrimSpace(s.URL) == "" {
				a.log.Warn("Skipping malformed research result", "source_type", sourceType, "url", s.URL)
				continue
			}
			saved, err := a.store.CreateSource(ctx, s)
			if errors.Is(err, ErrInvalidSource) {
				a.log.Warn("Skipping malformed research result", "source_type", sourceType, "url", s.URL, "error", err)
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("persist source %q: %w", s.URL, err)
			}
			if _, dup := seen[saved.ID]; dup {
				continue
			}
			seen[saved.ID] = struct{}{}
			out = append(out, saved)
		}
	}
	if maxSources >= 0 && len(out) > maxSources {
		out = out[:maxSources]
	}
	a.log.Info("Research complete", "topic", topic, "providers", len(a.sources), "sources", len(out))
	return out, nil
}
