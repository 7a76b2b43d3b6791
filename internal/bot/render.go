package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/fortuna/veto/internal/reminder"
	"github.com/fortuna/veto/internal/scrape"
	"github.com/fortuna/veto/internal/store"
)

const (
	fetchFailureText = "vlr.gg is not responding right now, try again in a few minutes."
	attribution      = "data from vlr.gg"

	helpText = `Valorant match results and reminders.

/results [n|team] - latest completed matches
/upcoming [n] - next scheduled matches
/team <name> - matches for a team (aliases like c9, sen work)
/event <name> - matches for a tournament
/remind <n> <when> - remind before match n from the last /upcoming
/reminders - your reminders
/set <name> <value> - venue settings (count, timezone, announce)`
)

// renderMatches formats a match listing, applying display sentinels to
// fields the scraper could not resolve.
func renderMatches(title string, records []scrape.MatchRecord, mode scrape.Mode) string {
	if len(records) == 0 {
		return "No matches found right now."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🎯 %s\n\n", title)

	for i, rec := range records {
		teamA := rec.TeamA.Or(scrape.UnknownTeam)
		teamB := rec.TeamB.Or(scrape.UnknownTeam)

		if mode == scrape.Upcoming {
			fmt.Fprintf(&sb, "%d. %s vs %s", i+1, teamA, teamB)
			if t := rec.StartTime.Or(""); t != "" {
				fmt.Fprintf(&sb, " — %s", t)
			}
		} else {
			fmt.Fprintf(&sb, "%d. %s %s : %s %s",
				i+1,
				teamA, rec.ScoreA.Or(scrape.UnknownScore),
				rec.ScoreB.Or(scrape.UnknownScore), teamB,
			)
		}
		sb.WriteByte('\n')

		event := rec.Event.Or(scrape.UnknownEvent)
		if stage := rec.Stage.Or(""); stage != "" {
			fmt.Fprintf(&sb, "   %s · %s\n", event, stage)
		} else {
			fmt.Fprintf(&sb, "   %s\n", event)
		}
	}

	sb.WriteByte('\n')
	sb.WriteString(attribution)
	return sb.String()
}

// renderReminders formats a user's reminder list in the venue's
// timezone, delivered ones marked.
func renderReminders(list []*store.ReminderRequest, loc *time.Location) string {
	var sb strings.Builder
	sb.WriteString("⏰ Your reminders\n\n")

	now := time.Now()
	for _, rem := range list {
		mark := "•"
		if rem.Delivered {
			mark = "✓"
		}
		fmt.Fprintf(&sb, "%s #%d %s vs %s — %s (%s)\n",
			mark, rem.ID, rem.TeamA, rem.TeamB,
			reminder.FormatInZone(rem.MatchTime, loc),
			reminder.RelativeQualifier(rem.MatchTime, now),
		)
	}

	return strings.TrimRight(sb.String(), "\n")
}
