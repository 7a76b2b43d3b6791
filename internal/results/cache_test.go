package results

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/veto/internal/scrape"
)

func sampleRecords(teams ...string) []scrape.MatchRecord {
	records := make([]scrape.MatchRecord, 0, len(teams))
	for _, team := range teams {
		records = append(records, scrape.MatchRecord{TeamA: scrape.Some(team)})
	}
	return records
}

func TestCacheFreshness(t *testing.T) {
	c := NewCache(5 * time.Minute)
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	_, ok := c.Get(RecentDim(), base)
	assert.False(t, ok)

	c.Put(RecentDim(), sampleRecords("cloud9"), base)

	got, ok := c.Get(RecentDim(), base.Add(4*time.Minute))
	require.True(t, ok)
	assert.Equal(t, "cloud9", got[0].TeamA.Value)

	// Exactly at the TTL boundary the entry is stale.
	_, ok = c.Get(RecentDim(), base.Add(5*time.Minute))
	assert.False(t, ok)
}

func TestCacheDimensionsAreIndependent(t *testing.T) {
	c := NewCache(5 * time.Minute)
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	c.Put(RecentDim(), sampleRecords("a"), base)
	c.Put(UpcomingDim(), sampleRecords("b"), base)
	c.Put(TeamDim("Cloud9"), sampleRecords("c"), base)
	c.Put(TournamentDim("champions"), sampleRecords("d"), base)

	assert.Equal(t, 4, c.Len())

	got, ok := c.Get(TeamDim("cloud9"), base)
	require.True(t, ok)
	assert.Equal(t, "c", got[0].TeamA.Value)

	_, ok = c.Get(TeamDim("sentinels"), base)
	assert.False(t, ok)
}

func TestCacheLastWriterWins(t *testing.T) {
	c := NewCache(5 * time.Minute)
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	c.Put(RecentDim(), sampleRecords("old"), base)
	c.Put(RecentDim(), sampleRecords("new"), base.Add(time.Minute))

	got, ok := c.Get(RecentDim(), base.Add(2*time.Minute))
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].TeamA.Value)
}

func TestCacheZeroTTLUsesDefault(t *testing.T) {
	c := NewCache(0)
	base := time.Now()

	c.Put(RecentDim(), sampleRecords("x"), base)
	_, ok := c.Get(RecentDim(), base.Add(DefaultTTL-time.Second))
	assert.True(t, ok)
}

func TestDimensionKeys(t *testing.T) {
	assert.Equal(t, "recent", RecentDim().Key())
	assert.Equal(t, "upcoming", UpcomingDim().Key())
	assert.Equal(t, "team:cloud9", TeamDim("Cloud9").Key())
	assert.Equal(t, "tournament:vct masters", TournamentDim("VCT Masters").Key())
}

func TestDimensionMatches(t *testing.T) {
	rec := scrape.MatchRecord{
		TeamA: scrape.Some("Cloud9"),
		TeamB: scrape.Some("Sentinels"),
		Event: scrape.Some("Valorant Champions 2026"),
		Stage: scrape.Some("Playoffs"),
	}

	assert.True(t, TeamDim("cloud9").Matches(rec))
	assert.True(t, TeamDim("sentinels").Matches(rec))
	assert.False(t, TeamDim("fnatic").Matches(rec))

	assert.True(t, TournamentDim("champions").Matches(rec))
	assert.True(t, TournamentDim("playoffs").Matches(rec))
	assert.False(t, TournamentDim("masters").Matches(rec))

	assert.True(t, RecentDim().Matches(rec))
	assert.True(t, UpcomingDim().Matches(rec))
}
