package resolve

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Domain selects which canonical-key set an input resolves against.
type Domain int

const (
	Team Domain = iota
	Tournament
)

// MinScore is the similarity cutoff (0-100) below which a fuzzy match
// is rejected and the raw input passes through unchanged.
const MinScore = 80

// Resolver maps free-text team and tournament names to canonical keys.
// Resolution is advisory: a miss returns the input unchanged, and
// downstream substring filtering still works on the raw text.
type Resolver struct {
	aliases   map[Domain]map[string]string
	canonical map[Domain][]string
}

// New creates a resolver seeded with the built-in alias tables.
func New() *Resolver {
	return &Resolver{
		aliases: map[Domain]map[string]string{
			Team:       teamAliases,
			Tournament: tournamentAliases,
		},
		canonical: map[Domain][]string{
			Team:       canonicalTeams,
			Tournament: canonicalTournaments,
		},
	}
}

// Resolve maps input to a canonical key: alias table, then exact or
// substring match against the canonical set, then fuzzy similarity with
// the MinScore cutoff. Failing all three, the input comes back as-is.
func (r *Resolver) Resolve(input string, domain Domain) string {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" {
		return input
	}

	if canonical, ok := r.aliases[domain][in]; ok {
		return canonical
	}

	for _, key := range r.canonical[domain] {
		if key == in || strings.Contains(key, in) || strings.Contains(in, key) {
			return key
		}
	}

	best, bestScore := "", 0
	for _, key := range r.canonical[domain] {
		if score := Similarity(in, key); score > bestScore {
			best, bestScore = key, score
		}
	}
	if bestScore >= MinScore {
		return best
	}

	return input
}

// Similarity scores two strings 0-100 as a Levenshtein ratio.
func Similarity(a, b string) int {
	if a == b {
		return 100
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return (longest - dist) * 100 / longest
}
