package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const structuredCard = `
	<a class="wf-module-item" href="/12345/c9-vs-sen">
		<div class="match-item-time">9:00 PM</div>
		<div class="match-item-vs">
			<div class="match-item-vs-team">
				<div class="match-item-vs-team-name"><div class="text-of">Cloud9</div></div>
				<div class="match-item-vs-team-score">2</div>
			</div>
			<div class="match-item-vs-team">
				<div class="match-item-vs-team-name"><div class="text-of">Sentinels</div></div>
				<div class="match-item-vs-team-score">0</div>
			</div>
		</div>
		<div class="match-item-event">
			<div class="match-item-event-series">Playoffs</div>
			Valorant Champions 2026
		</div>
	</a>
`

func TestExtractStructuredCard(t *testing.T) {
	doc := parseDoc(t, structuredCard)
	blocks := Locate(doc)
	require.Len(t, blocks, 1)

	rec := Extract(blocks[0], Completed, BaseURL)

	assert.Equal(t, "Cloud9", rec.TeamA.Or(UnknownTeam))
	assert.Equal(t, "Sentinels", rec.TeamB.Or(UnknownTeam))
	assert.Equal(t, "2", rec.ScoreA.Or(UnknownScore))
	assert.Equal(t, "0", rec.ScoreB.Or(UnknownScore))
	assert.Equal(t, "Valorant Champions 2026", rec.Event.Or(UnknownEvent))
	assert.Equal(t, "Playoffs", rec.Stage.Or(""))
	assert.Equal(t, BaseURL+"/12345/c9-vs-sen", rec.URL)
}

func TestExtractUpcomingCardKeepsTime(t *testing.T) {
	card := `
		<a class="wf-module-item" href="/555/fnc-vs-tl">
			<div class="match-item-time">10:30 PM</div>
			<div class="match-item-vs-team">
				<div class="match-item-vs-team-name"><div class="text-of">Fnatic</div></div>
				<div class="match-item-vs-team-score">–</div>
			</div>
			<div class="match-item-vs-team">
				<div class="match-item-vs-team-name"><div class="text-of">Team Liquid</div></div>
				<div class="match-item-vs-team-score">–</div>
			</div>
			<div class="match-item-event">VCT EMEA</div>
		</a>
	`
	doc := parseDoc(t, card)
	blocks := Locate(doc)
	require.Len(t, blocks, 1)

	rec := Extract(blocks[0], Upcoming, BaseURL)

	assert.Equal(t, "Fnatic", rec.TeamA.Or(UnknownTeam))
	assert.Equal(t, "Team Liquid", rec.TeamB.Or(UnknownTeam))
	// Placeholder scores resolve the slot but leave the field unset.
	assert.False(t, rec.ScoreA.Set)
	assert.Equal(t, UnknownScore, rec.ScoreA.Or(UnknownScore))
	assert.Equal(t, "10:30 PM", rec.StartTime.Or(""))
}

func TestExtractPositionalClockPattern(t *testing.T) {
	// No structured slots at all, but the flattened text starts with a
	// clock token followed by team/score pairs.
	block := `
		<a href="/999/drx-vs-prx">
			<span>10:30 PM</span>
			<span>DRX</span>
			<span>1</span>
			<span>Paper Rex</span>
			<span>2</span>
			<span>Completed</span>
			<span>Group Stage – Champions Tour Pacific</span>
		</a>
	`
	doc := parseDoc(t, block)
	blocks := Locate(doc)
	require.Len(t, blocks, 1)

	rec := Extract(blocks[0], Completed, BaseURL)

	assert.Equal(t, "DRX", rec.TeamA.Or(UnknownTeam))
	assert.Equal(t, "1", rec.ScoreA.Or(UnknownScore))
	assert.Equal(t, "Paper Rex", rec.TeamB.Or(UnknownTeam))
	assert.Equal(t, "2", rec.ScoreB.Or(UnknownScore))
	assert.Equal(t, "Champions Tour Pacific", rec.Event.Or(UnknownEvent))
	assert.Equal(t, "Group Stage", rec.Stage.Or(""))
}

func TestExtractPositionalScanPattern(t *testing.T) {
	// Enough tokens for the scan heuristic, no leading clock.
	block := `
		<a href="/1001/geng-vs-t1">
			<span>1w</span>
			<span>vs</span>
			<span>Gen.G</span>
			<span>2</span>
			<span>-</span>
			<span>T1 Esports</span>
			<span>1</span>
			<span>Live</span>
			<span>ico</span>
			<span>VCT Pacific Finals</span>
		</a>
	`
	doc := parseDoc(t, block)
	blocks := Locate(doc)
	require.Len(t, blocks, 1)

	rec := Extract(blocks[0], Completed, BaseURL)

	assert.Equal(t, "Gen.G", rec.TeamA.Or(UnknownTeam))
	assert.Equal(t, "2", rec.ScoreA.Or(UnknownScore))
	assert.Equal(t, "T1 Esports", rec.TeamB.Or(UnknownTeam))
	assert.Equal(t, "1", rec.ScoreB.Or(UnknownScore))
}

func TestExtractUnresolvableBlockLeavesFieldsUnset(t *testing.T) {
	doc := parseDoc(t, `<a href="/77/mystery"><span>tbd</span></a>`)
	blocks := Locate(doc)
	require.Len(t, blocks, 1)

	rec := Extract(blocks[0], Completed, BaseURL)

	assert.False(t, rec.TeamA.Set)
	assert.False(t, rec.Event.Set)
	assert.Equal(t, UnknownTeam, rec.TeamA.Or(UnknownTeam))
	assert.Equal(t, UnknownEvent, rec.Event.Or(UnknownEvent))
}

func TestExtractAllSurvivesBadBlock(t *testing.T) {
	doc := parseDoc(t, structuredCard+`<a class="wf-module-item" href="/88/empty"></a>`)
	blocks := Locate(doc)
	require.Len(t, blocks, 2)

	records := ExtractAll(blocks, Completed, BaseURL)
	require.Len(t, records, 2)
	assert.Equal(t, "Cloud9", records[0].TeamA.Or(UnknownTeam))
}

func TestScoreField(t *testing.T) {
	got, ok := scoreField("13")
	assert.True(t, ok)
	assert.Equal(t, "13", got.Value)

	got, ok = scoreField("–")
	assert.True(t, ok)
	assert.False(t, got.Set)

	_, ok = scoreField("")
	assert.False(t, ok)

	_, ok = scoreField("n/a")
	assert.False(t, ok)
}

func TestLooksLikeClock(t *testing.T) {
	assert.True(t, looksLikeClock("10:30 PM"))
	assert.True(t, looksLikeClock("22:15"))
	assert.False(t, looksLikeClock("2:1:3"))
	assert.False(t, looksLikeClock("Group A: Round 1 of 3"))
}
