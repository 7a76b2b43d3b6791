package results

import (
	"strings"

	"github.com/fortuna/veto/internal/scrape"
)

// Kind enumerates the query axes results are cached under.
type Kind int

const (
	Recent Kind = iota
	Upcoming
	ByTeam
	ByTournament
)

// Dimension names one cache slot: a bulk axis (recent/upcoming) or a
// filtered axis parameterized by a canonical team or tournament name.
// Filtered dimensions are independent entries, not views over the bulk
// ones.
type Dimension struct {
	Kind   Kind
	Filter string
}

func RecentDim() Dimension              { return Dimension{Kind: Recent} }
func UpcomingDim() Dimension            { return Dimension{Kind: Upcoming} }
func TeamDim(name string) Dimension     { return Dimension{Kind: ByTeam, Filter: strings.ToLower(name)} }
func TournamentDim(name string) Dimension {
	return Dimension{Kind: ByTournament, Filter: strings.ToLower(name)}
}

// Key is the cache-slot identifier.
func (d Dimension) Key() string {
	switch d.Kind {
	case Recent:
		return "recent"
	case Upcoming:
		return "upcoming"
	case ByTeam:
		return "team:" + d.Filter
	case ByTournament:
		return "tournament:" + d.Filter
	}
	return "unknown"
}

// Mode returns the extraction mode for this dimension's source page.
func (d Dimension) Mode() scrape.Mode {
	if d.Kind == Upcoming {
		return scrape.Upcoming
	}
	return scrape.Completed
}

// Path returns the vlr.gg listing path this dimension fetches from.
func (d Dimension) Path() string {
	if d.Kind == Upcoming {
		return scrape.SchedulePath
	}
	return scrape.ResultsPath
}

// Matches reports whether a record passes this dimension's filter.
// Bulk dimensions pass everything; filtered ones use case-insensitive
// substring containment over the relevant fields.
func (d Dimension) Matches(rec scrape.MatchRecord) bool {
	switch d.Kind {
	case ByTeam:
		return containsFold(rec.TeamA.Value, d.Filter) || containsFold(rec.TeamB.Value, d.Filter)
	case ByTournament:
		return containsFold(rec.Event.Value, d.Filter) || containsFold(rec.Stage.Value, d.Filter)
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}
