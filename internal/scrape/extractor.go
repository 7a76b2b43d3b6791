package scrape

import (
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// statusKeywords anchor the event-text search in the flattened token
// sequence; vlr.gg prints one of these between the scoreline and the
// event name.
var statusKeywords = map[string]bool{
	"Completed": true,
	"Live":      true,
	"Upcoming":  true,
	"Scheduled": true,
}

// ExtractAll runs field extraction over every candidate block. A block
// that panics mid-extraction is logged and skipped; the batch continues.
func ExtractAll(blocks []*goquery.Selection, mode Mode, baseURL string) []MatchRecord {
	records := make([]MatchRecord, 0, len(blocks))
	for _, block := range blocks {
		if rec, ok := extractSafe(block, mode, baseURL); ok {
			records = append(records, rec)
		}
	}
	return records
}

func extractSafe(block *goquery.Selection, mode Mode, baseURL string) (rec MatchRecord, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[extractor] skipping block: %v", r)
			ok = false
		}
	}()
	return Extract(block, mode, baseURL), true
}

// Extract pulls the typed fields of one match out of a candidate block.
// Pass 1 reads the known structured slots; pass 2 falls back to
// positional rules over the flattened text for anything still missing.
// Fields neither pass resolves stay unset.
func Extract(block *goquery.Selection, mode Mode, baseURL string) MatchRecord {
	rec := MatchRecord{URL: blockURL(block, baseURL)}

	extractStructured(block, mode, &rec)
	extractPositional(block, mode, &rec)

	return rec
}

// extractStructured is the precise pass: it looks up the vlr.gg slot
// elements by class. The core fields (teams, scores, event) are accepted
// together or not at all, so a half-matched card falls through to the
// positional rules instead of mixing the two sources.
func extractStructured(block *goquery.Selection, mode Mode, rec *MatchRecord) {
	names := block.Find(".match-item-vs-team-name .text-of")
	scores := block.Find(".match-item-vs-team-score")
	event := block.Find(".match-item-event")

	if names.Length() < 2 || scores.Length() < 2 || event.Length() == 0 {
		return
	}

	teamA := strings.TrimSpace(names.Eq(0).Text())
	teamB := strings.TrimSpace(names.Eq(1).Text())
	scoreA, okA := scoreField(strings.TrimSpace(scores.Eq(0).Text()))
	scoreB, okB := scoreField(strings.TrimSpace(scores.Eq(1).Text()))
	eventText := strings.TrimSpace(event.First().Text())

	if teamA == "" || teamB == "" || !okA || !okB || eventText == "" {
		return
	}

	rec.TeamA = Some(teamA)
	rec.TeamB = Some(teamB)
	rec.ScoreA = scoreA
	rec.ScoreB = scoreB

	stage := strings.TrimSpace(event.Find(".match-item-event-series").First().Text())
	if stage != "" {
		rec.Stage = Some(stage)
		eventText = strings.TrimSpace(strings.Replace(eventText, stage, "", 1))
	}
	if eventText != "" {
		rec.Event = Some(eventText)
	}

	if mode == Upcoming {
		if t := strings.TrimSpace(block.Find(".match-item-time").First().Text()); t != "" {
			rec.StartTime = Some(t)
		}
	}
}

// scoreField interprets a score slot. Digits are a real score; the
// placeholder glyphs vlr.gg shows before a match starts count as a
// resolvable-but-empty slot. Anything else rejects the structured pass.
func scoreField(text string) (Opt, bool) {
	switch {
	case text == "":
		return Opt{}, false
	case isDigits(text):
		return Some(text), true
	case text == "?" || text == "-" || text == "–":
		return Opt{}, true
	default:
		return Opt{}, false
	}
}

// extractPositional applies the textual fallback rules to fields the
// structured pass left unset.
func extractPositional(block *goquery.Selection, mode Mode, rec *MatchRecord) {
	texts := strippedStrings(block)
	if len(texts) == 0 {
		return
	}

	if !rec.TeamA.Set || !rec.TeamB.Set {
		if len(texts) >= 5 && looksLikeClock(texts[0]) {
			// Pattern: [time, teamA, scoreA, teamB, scoreB, ...]
			fillTeams(rec, texts[1], texts[2], texts[3], texts[4])
			if mode == Upcoming && !rec.StartTime.Set {
				rec.StartTime = Some(texts[0])
			}
		} else if len(texts) >= 10 && hasDigitTokenInFirstHalf(texts) {
			scanTeams(rec, texts)
		}
	}

	if !rec.Event.Set {
		fillEvent(rec, texts)
	}

	if mode == Upcoming && !rec.StartTime.Set {
		for _, t := range texts {
			if looksLikeClock(t) {
				rec.StartTime = Some(t)
				break
			}
		}
	}
}

func fillTeams(rec *MatchRecord, teamA, scoreA, teamB, scoreB string) {
	if !rec.TeamA.Set && teamA != "" {
		rec.TeamA = Some(teamA)
	}
	if !rec.TeamB.Set && teamB != "" {
		rec.TeamB = Some(teamB)
	}
	if !rec.ScoreA.Set && isScoreToken(scoreA) && scoreA != "?" {
		rec.ScoreA = Some(scoreA)
	}
	if !rec.ScoreB.Set && isScoreToken(scoreB) && scoreB != "?" {
		rec.ScoreB = Some(scoreB)
	}
}

// scanTeams handles the looser layout: find the first token that reads
// like a name (not numeric, not a clock, longer than 2), then alternate
// name / score twice.
func scanTeams(rec *MatchRecord, texts []string) {
	type want int
	const (
		wantTeamA want = iota
		wantScoreA
		wantTeamB
		wantScoreB
	)

	state := wantTeamA
	for _, t := range texts {
		switch state {
		case wantTeamA, wantTeamB:
			if isDigits(t) || looksLikeClock(t) || len(t) <= 2 {
				continue
			}
			if state == wantTeamA {
				if !rec.TeamA.Set {
					rec.TeamA = Some(t)
				}
				state = wantScoreA
			} else {
				if !rec.TeamB.Set {
					rec.TeamB = Some(t)
				}
				state = wantScoreB
			}
		case wantScoreA, wantScoreB:
			if !isScoreToken(t) {
				continue
			}
			if state == wantScoreA {
				if !rec.ScoreA.Set && t != "?" {
					rec.ScoreA = Some(t)
				}
				state = wantTeamB
			} else {
				if !rec.ScoreB.Set && t != "?" {
					rec.ScoreB = Some(t)
				}
				return
			}
		}
	}
}

// fillEvent looks for a status keyword, then takes the first subsequent
// token that reads like an event name. An en-dash (or hyphen) splits it
// once into stage and name.
func fillEvent(rec *MatchRecord, texts []string) {
	statusAt := -1
	for i, t := range texts {
		if statusKeywords[t] {
			statusAt = i
			break
		}
	}
	if statusAt < 0 {
		return
	}

	for _, t := range texts[statusAt+1:] {
		if len(t) <= 3 || isDigits(t) || strings.Contains(t, ":") {
			continue
		}
		stage, name := splitEventText(t)
		if stage != "" && !rec.Stage.Set {
			rec.Stage = Some(stage)
		}
		rec.Event = Some(name)
		return
	}
}

func splitEventText(t string) (stage, name string) {
	for _, sep := range []string{"–", "-"} {
		if strings.Contains(t, sep) {
			parts := strings.SplitN(t, sep, 2)
			return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		}
	}
	return "", strings.TrimSpace(t)
}

// strippedStrings flattens a block into its non-empty trimmed text
// nodes, in document order.
func strippedStrings(s *goquery.Selection) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				out = append(out, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return out
}

func blockURL(block *goquery.Selection, baseURL string) string {
	href, ok := block.Attr("href")
	if !ok {
		return ""
	}
	if strings.HasPrefix(href, "/") {
		return strings.TrimSuffix(baseURL, "/") + href
	}
	return href
}

// looksLikeClock reports whether a token reads like a wall-clock time:
// exactly one ':' and at most one space ("10:30 PM").
func looksLikeClock(t string) bool {
	return strings.Count(t, ":") == 1 && strings.Count(t, " ") <= 1
}

func isDigits(t string) bool {
	if t == "" {
		return false
	}
	for _, r := range t {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isScoreToken accepts a digit run or the "?" placeholder.
func isScoreToken(t string) bool {
	return t == "?" || isDigits(t)
}

func hasDigitTokenInFirstHalf(texts []string) bool {
	for _, t := range texts[:len(texts)/2] {
		if isDigits(t) {
			return true
		}
	}
	return false
}
