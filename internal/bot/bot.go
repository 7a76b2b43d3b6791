package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/fortuna/veto/internal/reminder"
	"github.com/fortuna/veto/internal/results"
	"github.com/fortuna/veto/internal/scrape"
	"github.com/fortuna/veto/internal/store"
	"github.com/fortuna/veto/internal/store/repository"
)

const (
	pollTimeout = 10 * time.Second

	// remindUnique tags the per-match inline reminder buttons.
	remindUnique = "remind"
)

// Bot is the Telegram front end. Each chat is a venue with its own
// settings row; commands read through the shared results cache.
type Bot struct {
	tele      *tele.Bot
	results   *results.Service
	reminders *repository.ReminderRepository
	settings  *repository.SettingsRepository

	// lastUpcoming remembers the most recent /upcoming listing per
	// chat so /remind can reference matches by list position.
	mu           sync.Mutex
	lastUpcoming map[int64][]scrape.MatchRecord
}

// New creates the bot and registers its command handlers.
func New(token string, svc *results.Service, rems *repository.ReminderRepository, sets *repository.SettingsRepository) (*Bot, error) {
	tb, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: pollTimeout},
	})
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}

	b := &Bot{
		tele:         tb,
		results:      svc,
		reminders:    rems,
		settings:     sets,
		lastUpcoming: make(map[int64][]scrape.MatchRecord),
	}

	tb.Handle("/results", b.handleResults)
	tb.Handle("/upcoming", b.handleUpcoming)
	tb.Handle("/team", b.handleTeam)
	tb.Handle("/event", b.handleEvent)
	tb.Handle("/remind", b.handleRemind)
	tb.Handle(&tele.Btn{Unique: remindUnique}, b.handleRemindButton)
	tb.Handle("/reminders", b.handleReminders)
	tb.Handle("/set", b.handleSet)
	tb.Handle("/help", b.handleHelp)
	tb.Handle("/start", b.handleHelp)

	return b, nil
}

// Start begins long polling. Blocks until Stop is called.
func (b *Bot) Start() {
	log.Println("→ Telegram bot polling started")
	b.tele.Start()
}

// Stop stops the long poller.
func (b *Bot) Stop() {
	b.tele.Stop()
	log.Println("→ Telegram bot stopped")
}

// venue loads the chat's settings, falling back to defaults on error.
func (b *Bot) venue(ctx context.Context, chatID int64) store.VenueSettings {
	if b.settings == nil {
		return store.DefaultVenueSettings(chatID)
	}
	s, err := b.settings.Get(ctx, chatID)
	if err != nil {
		log.Printf("[bot] ⚠️  loading settings for %d: %v", chatID, err)
		return store.DefaultVenueSettings(chatID)
	}
	return s
}

// countArg interprets an optional numeric argument, clamped to the
// venue's allowed range.
func countArg(args []string, fallback int) (int, bool) {
	if len(args) == 0 {
		return fallback, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fallback, false
	}
	if n < 1 {
		n = 1
	}
	if n > store.MaxDefaultCount {
		n = store.MaxDefaultCount
	}
	return n, true
}

func (b *Bot) handleResults(c tele.Context) error {
	ctx := context.Background()
	venue := b.venue(ctx, c.Chat().ID)
	args := c.Args()

	count, isCount := countArg(args, venue.DefaultCount)
	if len(args) > 0 && !isCount {
		// Non-numeric argument: treat as a team query.
		return b.sendTeamResults(c, strings.Join(args, " "), venue.DefaultCount)
	}

	records, err := b.results.Recent(ctx, count)
	if err != nil {
		return c.Send(fetchFailureText)
	}
	return c.Send(renderMatches("Recent results", records, scrape.Completed), tele.NoPreview)
}

func (b *Bot) handleUpcoming(c tele.Context) error {
	ctx := context.Background()
	venue := b.venue(ctx, c.Chat().ID)
	count, _ := countArg(c.Args(), venue.DefaultCount)

	records, err := b.results.UpcomingMatches(ctx, count)
	if err != nil {
		return c.Send(fetchFailureText)
	}

	b.mu.Lock()
	b.lastUpcoming[c.Chat().ID] = records
	b.mu.Unlock()

	text := renderMatches("Upcoming matches", records, scrape.Upcoming)
	if len(records) == 0 {
		return c.Send(text)
	}
	return c.Send(text, remindKeyboard(records), tele.NoPreview)
}

// remindKeyboard builds one inline reminder button per listed match.
func remindKeyboard(records []scrape.MatchRecord) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	var rows []tele.Row
	for i := range records {
		btn := markup.Data(fmt.Sprintf("⏰ %d", i+1), remindUnique, strconv.Itoa(i+1))
		rows = append(rows, markup.Row(btn))
	}
	markup.Inline(rows...)
	return markup
}

// handleRemindButton creates a reminder for the tapped match, using its
// scraped start time. Matches without a parseable time fall back to the
// explicit /remind command.
func (b *Bot) handleRemindButton(c tele.Context) error {
	if b.reminders == nil {
		return c.Respond(&tele.CallbackResponse{Text: "Reminders need a database."})
	}

	idx, err := strconv.Atoi(strings.TrimSpace(c.Data()))
	if err != nil || idx < 1 {
		return c.Respond(&tele.CallbackResponse{Text: "That listing has expired, run /upcoming again."})
	}

	b.mu.Lock()
	listing := b.lastUpcoming[c.Chat().ID]
	b.mu.Unlock()

	if idx > len(listing) {
		return c.Respond(&tele.CallbackResponse{Text: "That listing has expired, run /upcoming again."})
	}
	match := listing[idx-1]

	ctx := context.Background()

	start := match.StartTime.Or("")
	if start == "" {
		return c.Respond(&tele.CallbackResponse{Text: "No start time listed, use /remind " + c.Data() + " <when>."})
	}
	matchTime, err := reminder.ParseMatchTime(start, time.Now())
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Could not read the start time, use /remind " + c.Data() + " <when>."})
	}

	rem := &store.ReminderRequest{
		RequesterID: c.Sender().ID,
		TargetID:    c.Chat().ID,
		MatchURL:    match.URL,
		MatchTime:   matchTime,
		TeamA:       match.TeamA.Or(scrape.UnknownTeam),
		TeamB:       match.TeamB.Or(scrape.UnknownTeam),
	}
	if err := b.reminders.Add(ctx, rem); err != nil {
		log.Printf("[bot] ⚠️  saving reminder: %v", err)
		return c.Respond(&tele.CallbackResponse{Text: "Could not save the reminder."})
	}

	return c.Respond(&tele.CallbackResponse{
		Text: fmt.Sprintf("✓ Reminder set for %s vs %s", rem.TeamA, rem.TeamB),
	})
}

func (b *Bot) handleTeam(c tele.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return c.Send("Usage: /team <name>\nExample: /team c9")
	}
	venue := b.venue(context.Background(), c.Chat().ID)
	return b.sendTeamResults(c, strings.Join(args, " "), venue.DefaultCount)
}

func (b *Bot) sendTeamResults(c tele.Context, query string, count int) error {
	records, resolved, err := b.results.ForTeam(context.Background(), query, count)
	if err != nil {
		return c.Send(fetchFailureText)
	}
	if len(records) == 0 {
		return c.Send(fmt.Sprintf("No recent matches found for %s.", resolved))
	}
	title := fmt.Sprintf("Recent matches for %s", resolved)
	return c.Send(renderMatches(title, records, scrape.Completed), tele.NoPreview)
}

func (b *Bot) handleEvent(c tele.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return c.Send("Usage: /event <name>\nExample: /event champs")
	}
	venue := b.venue(context.Background(), c.Chat().ID)

	records, resolved, err := b.results.ForTournament(context.Background(), strings.Join(args, " "), venue.DefaultCount)
	if err != nil {
		return c.Send(fetchFailureText)
	}
	if len(records) == 0 {
		return c.Send(fmt.Sprintf("No recent matches found for %s.", resolved))
	}
	title := fmt.Sprintf("Recent matches in %s", resolved)
	return c.Send(renderMatches(title, records, scrape.Completed), tele.NoPreview)
}

func (b *Bot) handleRemind(c tele.Context) error {
	if b.reminders == nil {
		return c.Send("Reminders are not available: no database configured.")
	}

	args := c.Args()
	if len(args) < 2 {
		return c.Send("Usage: /remind <match number> <when>\nRun /upcoming first, then e.g. /remind 2 in 3h")
	}

	idx, err := strconv.Atoi(args[0])
	if err != nil || idx < 1 {
		return c.Send("The match number must come from the last /upcoming list.")
	}

	b.mu.Lock()
	listing := b.lastUpcoming[c.Chat().ID]
	b.mu.Unlock()

	if idx > len(listing) {
		if len(listing) == 0 {
			return c.Send("Run /upcoming first so I know which matches you mean.")
		}
		return c.Send(fmt.Sprintf("The last /upcoming list only had %d matches.", len(listing)))
	}
	match := listing[idx-1]

	ctx := context.Background()
	venue := b.venue(ctx, c.Chat().ID)
	loc := venue.Location()

	matchTime, err := reminder.ParseMatchTime(strings.Join(args[1:], " "), time.Now())
	if err != nil {
		return c.Send(err.Error())
	}

	rem := &store.ReminderRequest{
		RequesterID: c.Sender().ID,
		TargetID:    c.Chat().ID,
		MatchURL:    match.URL,
		MatchTime:   matchTime,
		TeamA:       match.TeamA.Or(scrape.UnknownTeam),
		TeamB:       match.TeamB.Or(scrape.UnknownTeam),
	}
	if err := b.reminders.Add(ctx, rem); err != nil {
		log.Printf("[bot] ⚠️  saving reminder: %v", err)
		return c.Send("Could not save the reminder, try again later.")
	}

	return c.Send(fmt.Sprintf("✓ Reminder #%d set: %s vs %s at %s (%s)",
		rem.ID, rem.TeamA, rem.TeamB,
		reminder.FormatInZone(matchTime, loc),
		reminder.RelativeQualifier(matchTime, time.Now()),
	))
}

func (b *Bot) handleReminders(c tele.Context) error {
	if b.reminders == nil {
		return c.Send("Reminders are not available: no database configured.")
	}

	ctx := context.Background()
	list, err := b.reminders.ListByRequester(ctx, c.Sender().ID)
	if err != nil {
		log.Printf("[bot] ⚠️  listing reminders: %v", err)
		return c.Send("Could not load your reminders, try again later.")
	}
	if len(list) == 0 {
		return c.Send("You have no reminders. Set one with /remind after /upcoming.")
	}

	venue := b.venue(ctx, c.Chat().ID)
	return c.Send(renderReminders(list, venue.Location()))
}

func (b *Bot) handleSet(c tele.Context) error {
	if b.settings == nil {
		return c.Send("Settings are not available: no database configured.")
	}

	args := c.Args()
	if len(args) < 2 {
		return c.Send(fmt.Sprintf("Usage: /set <name> <value>\nSettings: %s", strings.Join(store.SettingNames, ", ")))
	}

	ctx := context.Background()
	venue := b.venue(ctx, c.Chat().ID)
	if err := store.ApplySetting(&venue, args[0], strings.Join(args[1:], " ")); err != nil {
		return c.Send(err.Error())
	}
	if err := b.settings.Upsert(ctx, venue); err != nil {
		log.Printf("[bot] ⚠️  saving settings for %d: %v", venue.VenueID, err)
		return c.Send("Could not save the setting, try again later.")
	}

	return c.Send(fmt.Sprintf("✓ %s updated", strings.ToLower(args[0])))
}

func (b *Bot) handleHelp(c tele.Context) error {
	return c.Send(helpText)
}

// SendReminder delivers a reminder message to its target chat. It
// satisfies the reminder scheduler's Notifier interface.
func (b *Bot) SendReminder(ctx context.Context, rem *store.ReminderRequest, text string) error {
	_, err := b.tele.Send(&tele.Chat{ID: rem.TargetID}, text, tele.NoPreview)
	if errors.Is(err, tele.ErrChatNotFound) || errors.Is(err, tele.ErrBlockedByUser) {
		return fmt.Errorf("%w: chat %d", reminder.ErrTargetNotFound, rem.TargetID)
	}
	return err
}

// ZoneFor returns the display timezone configured for a chat.
func (b *Bot) ZoneFor(ctx context.Context, targetID int64) *time.Location {
	return b.venue(ctx, targetID).Location()
}

// Announce fans a health alert out to every venue with an announce
// target configured.
func (b *Bot) Announce(msg string) {
	if b.settings == nil {
		return
	}

	targets, err := b.settings.ListAnnounceTargets(context.Background())
	if err != nil {
		log.Printf("[bot] ⚠️  loading announce targets: %v", err)
		return
	}

	for _, target := range targets {
		chatID, err := strconv.ParseInt(target, 10, 64)
		if err != nil {
			log.Printf("[bot] skipping malformed announce target %q", target)
			continue
		}
		if _, err := b.tele.Send(&tele.Chat{ID: chatID}, "⚠️ "+msg); err != nil {
			log.Printf("[bot] ⚠️  announcing to %d: %v", chatID, err)
		}
	}
}
