package research

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
)

type stubSource struct {
	kind    types.SourceType
	results []*types.Source
	err     error
	delay   time.Duration

	mu     sync.Mutex
	quotas []int
}

func (s *stubSource) SourceType() types.SourceType { return s.kind }
func (s *stubSource) CanHandle(string) bool        { return false }
func (s *stubSource) FetchDetails(context.Context, string) (*types.Source, error) {
	return nil, nil
}

func (s *stubSource) Search(ctx context.Context, _ string, maxResults int) ([]*types.Source, error) {
	s.mu.Lock()
	s.quotas = append(s.quotas, maxResults)
	s.mu.Unlock()
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*types.Source, len(s.results))
	for i, r := range s.results {
		cp := *r
		out[i] = &cp
	}
	return out, nil
}

type memStore struct {
	mu    sync.Mutex
	byURL map[string]*types.Source
	next  uint
	err   error

	// rejects holds URLs the store refuses as invalid records.
	rejects map[string]bool
}

func newMemStore() *memStore { return &memStore{byURL: map[string]*types.Source{}} }

func (m *memStore) CreateSource(_ context.Context, s *types.Source) (*types.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.rejects[s.URL] {
		return nil, fmt.Errorf("bad record: %w", ErrInvalidSource)
	}
	if existing, ok := m.byURL[s.URL]; ok {
		return existing, nil
	}
	m.next++
	cp := *s
	cp.ID = m.next
	m.byURL[s.URL] = &cp
	return &cp, nil
}

type countingObserver struct {
	mu     sync.Mutex
	calls  int
	failed int
}

func (o *countingObserver) ObserveSearch(_ string, _ int, err error, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	if err != nil {
		o.failed++
	}
}

func sourcesFor(prefix string, n int) []*types.Source {
	out := make([]*types.Source, n)
	for i := range out {
		out[i] = &types.Source{
			Title:      fmt.Sprintf("%s-%d", prefix, i),
			URL:        fmt.Sprintf("https://%s.test/%d", prefix, i),
			SourceType: types.SourceTypeOther,
		}
	}
	return out
}

func titles(in []*types.Source) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = s.Title
	}
	return out
}

func TestPerProviderQuota(t *testing.T) {
	assert.Equal(t, 1, PerProviderQuota(1, 5))
	assert.Equal(t, 1, PerProviderQuota(0, 3))
	assert.Equal(t, 3, PerProviderQuota(10, 3))
	assert.Equal(t, 10, PerProviderQuota(10, 0))
	for max := 1; max <= 50; max++ {
		for n := 1; n <= 6; n++ {
			want := max / n
			if want < 1 {
				want = 1
			}
			assert.Equal(t, want, PerProviderQuota(max, n), "max=%d n=%d", max, n)
		}
	}
}

func TestResearchTopicQuotaFloorIsSentToProviders(t *testing.T) {
	defer goleak.VerifyNone(t)

	var stubs []ResearchSource
	for i := 0; i < 5; i++ {
		stubs = append(stubs, &stubSource{kind: types.SourceTypeOther, results: sourcesFor(fmt.Sprintf("p%d", i), 1)})
	}
	agg := NewAggregator(logger.NewNop(), newMemStore(), nil, stubs...)

	_, err := agg.ResearchTopic(context.Background(), "Go", 1)
	require.NoError(t, err)
	for _, s := range stubs {
		assert.Equal(t, []int{1}, s.(*stubSource).quotas)
	}
}

func TestResearchTopicToleratesProviderFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	a := &stubSource{kind: types.SourceTypeArxiv, results: sourcesFor("A", 1), delay: 20 * time.Millisecond}
	broken := &stubSource{kind: types.SourceTypeWikipedia, err: &SourceError{SourceType: types.SourceTypeWikipedia, Op: "search", Err: errors.New("503")}}
	b := &stubSource{kind: types.SourceTypeWebSearch, results: sourcesFor("B", 1)}
	obs := &countingObserver{}
	agg := NewAggregator(logger.NewNop(), newMemStore(), obs, a, broken, b)

	got, err := agg.ResearchTopic(context.Background(), "Go", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"A-0", "B-0"}, titles(got))
	assert.Equal(t, 3, obs.calls)
	assert.Equal(t, 1, obs.failed)
}

func TestResearchTopicAllProvidersFail(t *testing.T) {
	defer goleak.VerifyNone(t)

	agg := NewAggregator(logger.NewNop(), newMemStore(), nil,
		&stubSource{kind: types.SourceTypeArxiv, err: errors.New("down")},
		&stubSource{kind: types.SourceTypeWikipedia, err: errors.New("down")},
	)
	got, err := agg.ResearchTopic(context.Background(), "Go", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResearchTopicTruncatesInDispatchOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	p1 := &stubSource{kind: types.SourceTypeArxiv, results: sourcesFor("one", 4), delay: 30 * time.Millisecond}
	p2 := &stubSource{kind: types.SourceTypeWikipedia, results: sourcesFor("two", 4)}
	p3 := &stubSource{kind: types.SourceTypeWebSearch, results: sourcesFor("three", 4), delay: 10 * time.Millisecond}
	agg := NewAggregator(logger.NewNop(), newMemStore(), nil, p1, p2, p3)

	got, err := agg.ResearchTopic(context.Background(), "Go", 5)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, []string{"one-0", "one-1", "one-2", "one-3", "two-0"}, titles(got))
}

func TestResearchTopicDeduplicatesByURL(t *testing.T) {
	shared := &types.Source{Title: "shared", URL: "https://shared.test", SourceType: types.SourceTypeOther}
	agg := NewAggregator(logger.NewNop(), newMemStore(), nil,
		&stubSource{kind: types.SourceTypeArxiv, results: []*types.Source{shared}},
		&stubSource{kind: types.SourceTypeWikipedia, results: []*types.Source{shared}},
	)
	got, err := agg.ResearchTopic(context.Background(), "Go", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint(1), got[0].ID)
}

func TestResearchTopicPersistFailure(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("db down")
	agg := NewAggregator(logger.NewNop(), store, nil,
		&stubSource{kind: types.SourceTypeArxiv, results: sourcesFor("A", 1)},
	)
	_, err := agg.ResearchTopic(context.Background(), "Go", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestResearchTopicSkipsMalformedResults(t *testing.T) {
	defer goleak.VerifyNone(t)

	mixed := []*types.Source{
		{Title: "", URL: "https://blank-title.test", SourceType: types.SourceTypeWebSearch},
		{Title: "no url", URL: "  ", SourceType: types.SourceTypeWebSearch},
		{Title: "good", URL: "https://good.test", SourceType: types.SourceTypeWebSearch},
	}
	store := newMemStore()
	agg := NewAggregator(logger.NewNop(), store, nil,
		&stubSource{kind: types.SourceTypeArxiv, results: sourcesFor("A", 1)},
		&stubSource{kind: types.SourceTypeWebSearch, results: mixed},
	)

	got, err := agg.ResearchTopic(context.Background(), "Go", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"A-0", "good"}, titles(got))
	assert.Len(t, store.byURL, 2)
}

func TestResearchTopicSkipsRecordsRejectedByStore(t *testing.T) {
	store := newMemStore()
	store.rejects = map[string]bool{"https://A.test/0": true}
	agg := NewAggregator(logger.NewNop(), store, nil,
		&stubSource{kind: types.SourceTypeArxiv, results: sourcesFor("A", 2)},
	)

	got, err := agg.ResearchTopic(context.Background(), "Go", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"A-1"}, titles(got))
}

func TestResearchTopicCanceled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	agg := NewAggregator(logger.NewNop(), newMemStore(), nil,
		&stubSource{kind: types.SourceTypeArxiv, results: sourcesFor("A", 1), delay: time.Second},
	)
	_, err := agg.ResearchTopic(ctx, "Go", 10)
	assert.ErrorIs(t, err, context.Canceled)
}
