package results

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/veto/internal/resolve"
	"github.com/fortuna/veto/internal/scrape"
)

const listingPage = `
	<div>
		<a class="wf-module-item" href="/12345/c9-vs-sen">
			<div class="match-item-vs-team">
				<div class="match-item-vs-team-name"><div class="text-of">Cloud9</div></div>
				<div class="match-item-vs-team-score">2</div>
			</div>
			<div class="match-item-vs-team">
				<div class="match-item-vs-team-name"><div class="text-of">Sentinels</div></div>
				<div class="match-item-vs-team-score">0</div>
			</div>
			<div class="match-item-event">Valorant Champions 2026</div>
		</a>
		<a class="wf-module-item" href="/12346/fnc-vs-tl">
			<div class="match-item-vs-team">
				<div class="match-item-vs-team-name"><div class="text-of">Fnatic</div></div>
				<div class="match-item-vs-team-score">1</div>
			</div>
			<div class="match-item-vs-team">
				<div class="match-item-vs-team-name"><div class="text-of">Team Liquid</div></div>
				<div class="match-item-vs-team-score">2</div>
			</div>
			<div class="match-item-event">VCT EMEA</div>
		</a>
	</div>
`

// fakeFetcher serves canned bodies and counts calls.
type fakeFetcher struct {
	mu    sync.Mutex
	body  []byte
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.body, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type capturingPublisher struct {
	mu         sync.Mutex
	dimensions []string
}

func (p *capturingPublisher) PublishResults(ctx context.Context, dimension string, records []scrape.MatchRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dimensions = append(p.dimensions, dimension)
	return nil
}

func newTestService(f Fetcher) *Service {
	return NewService("https://example.test", f, resolve.New())
}

func TestGetOrFetchCachesWithinTTL(t *testing.T) {
	fetcher := &fakeFetcher{body: []byte(listingPage)}
	svc := newTestService(fetcher)

	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	now := base
	svc.now = func() time.Time { return now }

	records, err := svc.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, fetcher.callCount())

	// Second read inside the TTL is served from cache.
	now = base.Add(4 * time.Minute)
	records, err = svc.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, fetcher.callCount())

	// Past the TTL a fresh fetch happens.
	now = base.Add(6 * time.Minute)
	_, err = svc.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.callCount())
}

func TestGetOrFetchAppliesLimit(t *testing.T) {
	svc := newTestService(&fakeFetcher{body: []byte(listingPage)})

	records, err := svc.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Cloud9", records[0].TeamA.Value)
}

func TestFetchFailureIsDistinguishableFromEmpty(t *testing.T) {
	failing := &fakeFetcher{err: errors.New("connection refused")}
	svc := newTestService(failing)

	records, err := svc.Recent(context.Background(), 5)
	require.Error(t, err)
	assert.Nil(t, records)
	assert.Equal(t, 1, svc.Health().ConsecutiveFailures())

	// An empty but well-formed page is a successful fetch with no
	// matches, not an error.
	empty := &fakeFetcher{body: []byte(`<div><p>no matches</p></div>`)}
	svc = newTestService(empty)

	records, err = svc.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 0, svc.Health().ConsecutiveFailures())
}

func TestTeamDimensionFiltersRecords(t *testing.T) {
	svc := newTestService(&fakeFetcher{body: []byte(listingPage)})

	records, resolved, err := svc.ForTeam(context.Background(), "c9", 5)
	require.NoError(t, err)
	assert.Equal(t, "cloud9", resolved)
	require.Len(t, records, 1)
	assert.Equal(t, "Cloud9", records[0].TeamA.Value)

	records, resolved, err = svc.ForTournament(context.Background(), "champs", 5)
	require.NoError(t, err)
	assert.Equal(t, "valorant champions", resolved)
	require.Len(t, records, 1)
	assert.Equal(t, "Valorant Champions 2026", records[0].Event.Value)
}

func TestFilteredDimensionsAreIndependentSlots(t *testing.T) {
	fetcher := &fakeFetcher{body: []byte(listingPage)}
	svc := newTestService(fetcher)

	_, _, err := svc.ForTeam(context.Background(), "cloud9", 5)
	require.NoError(t, err)
	_, _, err = svc.ForTeam(context.Background(), "fnatic", 5)
	require.NoError(t, err)

	// Different teams mean different cache slots, so two fetches.
	assert.Equal(t, 2, fetcher.callCount())
	assert.Equal(t, 2, svc.CacheStats())

	// Same team again hits its slot.
	_, _, err = svc.ForTeam(context.Background(), "c9", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.callCount())
}

func TestFallbackFetcherUsedOnZeroBlocks(t *testing.T) {
	primary := &fakeFetcher{body: []byte(`<div><p>js required</p></div>`)}
	rendered := &fakeFetcher{body: []byte(listingPage)}

	svc := newTestService(primary)
	svc.SetFallbackFetcher(rendered)

	records, err := svc.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, primary.callCount())
	assert.Equal(t, 1, rendered.callCount())
}

func TestFallbackNotUsedWhenPrimaryYieldsBlocks(t *testing.T) {
	primary := &fakeFetcher{body: []byte(listingPage)}
	rendered := &fakeFetcher{body: []byte(listingPage)}

	svc := newTestService(primary)
	svc.SetFallbackFetcher(rendered)

	_, err := svc.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 0, rendered.callCount())
}

func TestPublishersReceiveRefreshes(t *testing.T) {
	svc := newTestService(&fakeFetcher{body: []byte(listingPage)})
	pub := &capturingPublisher{}
	svc.AddPublisher(pub)

	_, err := svc.Recent(context.Background(), 5)
	require.NoError(t, err)

	_, err = svc.UpcomingMatches(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, []string{"recent", "upcoming"}, pub.dimensions)
}

func TestConsecutiveFailuresAccumulateAndReset(t *testing.T) {
	fetcher := &fakeFetcher{err: fmt.Errorf("status 503")}
	svc := newTestService(fetcher)

	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	now := base
	svc.now = func() time.Time { return now }

	for i := 1; i <= AlertThreshold; i++ {
		now = now.Add(6 * time.Minute)
		_, err := svc.Recent(context.Background(), 5)
		require.Error(t, err)
		assert.Equal(t, i, svc.Health().ConsecutiveFailures())
	}
	assert.True(t, svc.Health().Alerting())

	fetcher.mu.Lock()
	fetcher.err = nil
	fetcher.body = []byte(listingPage)
	fetcher.mu.Unlock()

	now = now.Add(6 * time.Minute)
	_, err := svc.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 0, svc.Health().ConsecutiveFailures())
}
