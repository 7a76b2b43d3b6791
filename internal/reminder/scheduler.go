package reminder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fortuna/veto/internal/store"
)

// Delivery window around match start. A reminder is due once the match
// is at most LeadTime away, and stays deliverable until GraceTime after
// start so a missed sweep still fires instead of going silent forever.
const (
	LeadTime  = 15 * time.Minute
	GraceTime = 30 * time.Minute

	// DefaultInterval is how often the scheduler sweeps for due
	// reminders.
	DefaultInterval = 5 * time.Minute
)

// ErrTargetNotFound is returned by a Notifier when the reminder's
// target chat no longer exists or has blocked the bot.
var ErrTargetNotFound = errors.New("reminder target not found")

// Store is the persistence surface the scheduler sweeps against.
type Store interface {
	Pending(ctx context.Context) ([]*store.ReminderRequest, error)
	MarkDelivered(ctx context.Context, id int64) error
}

// Notifier delivers a reminder message to its target chat.
type Notifier interface {
	SendReminder(ctx context.Context, rem *store.ReminderRequest, text string) error
}

// Due reports whether a reminder for matchTime should fire at now.
func Due(matchTime, now time.Time) bool {
	delta := matchTime.Sub(now)
	return delta > -GraceTime && delta <= LeadTime
}

// Scheduler sweeps pending reminders on an interval and delivers the
// due ones. Delivered is monotone: once marked, a reminder is never
// re-sent even if delivery only partially succeeded.
type Scheduler struct {
	store    Store
	notifier Notifier
	interval time.Duration

	// zoneFor returns the display timezone for a target chat. Optional;
	// nil means UTC.
	zoneFor func(ctx context.Context, targetID int64) *time.Location

	now func() time.Time
}

// NewScheduler creates a reminder scheduler with the default sweep
// interval.
func NewScheduler(s Store, n Notifier) *Scheduler {
	return &Scheduler{
		store:    s,
		notifier: n,
		interval: DefaultInterval,
		now:      time.Now,
	}
}

// SetInterval overrides the sweep interval.
func (s *Scheduler) SetInterval(d time.Duration) {
	if d > 0 {
		s.interval = d
	}
}

// SetZoneSource installs the per-target timezone lookup used for
// display formatting.
func (s *Scheduler) SetZoneSource(f func(ctx context.Context, targetID int64) *time.Location) {
	s.zoneFor = f
}

// Run sweeps until the context is cancelled. The first sweep happens
// immediately so reminders queued while the process was down are not
// delayed a full interval.
func (s *Scheduler) Run(ctx context.Context) {
	log.Printf("→ Reminder scheduler started (interval: %v)", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Println("→ Reminder scheduler stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep loads pending reminders and delivers the due ones. Errors on
// individual reminders are logged and do not stop the sweep.
func (s *Scheduler) Sweep(ctx context.Context) {
	pending, err := s.store.Pending(ctx)
	if err != nil {
		log.Printf("[reminder] ⚠️  loading pending reminders: %v", err)
		return
	}

	now := s.now()
	delivered := 0
	for _, rem := range pending {
		if !Due(rem.MatchTime, now) {
			continue
		}
		if err := s.deliver(ctx, rem, now); err != nil {
			log.Printf("[reminder] ⚠️  delivering reminder %d: %v", rem.ID, err)
			continue
		}
		delivered++
	}

	if delivered > 0 {
		log.Printf("[reminder] ✓ delivered %d of %d pending reminders", delivered, len(pending))
	}
}

// deliver sends one reminder and marks it delivered. A vanished target
// also marks the reminder delivered: retrying a chat that no longer
// exists would just fail every sweep forever.
func (s *Scheduler) deliver(ctx context.Context, rem *store.ReminderRequest, now time.Time) error {
	loc := time.UTC
	if s.zoneFor != nil {
		if l := s.zoneFor(ctx, rem.TargetID); l != nil {
			loc = l
		}
	}

	text := fmt.Sprintf("⏰ %s vs %s starts %s (%s)\n%s",
		rem.TeamA, rem.TeamB,
		RelativeQualifier(rem.MatchTime, now),
		FormatInZone(rem.MatchTime, loc),
		rem.MatchURL,
	)

	err := s.notifier.SendReminder(ctx, rem, text)
	if err != nil && !errors.Is(err, ErrTargetNotFound) {
		return err
	}
	if errors.Is(err, ErrTargetNotFound) {
		log.Printf("[reminder] target %d gone, retiring reminder %d", rem.TargetID, rem.ID)
	}

	if err := s.store.MarkDelivered(ctx, rem.ID); err != nil {
		return fmt.Errorf("marking delivered: %w", err)
	}
	return nil
}
