package results

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/fortuna/veto/internal/resolve"
	"github.com/fortuna/veto/internal/scrape"
)

// Fetcher retrieves a raw document by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Publisher receives freshly refreshed result sets (websocket hub,
// redis stream). Publish errors are logged, never surfaced to callers.
type Publisher interface {
	PublishResults(ctx context.Context, dimension string, records []scrape.MatchRecord) error
}

// Service owns the result cache and health state and runs the
// fetch -> locate -> extract -> filter cycle on cache misses.
type Service struct {
	baseURL  string
	fetcher  Fetcher
	fallback Fetcher // optional rendered-page fetcher
	resolver *resolve.Resolver

	cache      *Cache
	health     *Health
	publishers []Publisher

	now func() time.Time
}

// NewService creates a results service backed by the given fetcher.
func NewService(baseURL string, fetcher Fetcher, resolver *resolve.Resolver) *Service {
	return &Service{
		baseURL:  baseURL,
		fetcher:  fetcher,
		resolver: resolver,
		cache:    NewCache(DefaultTTL),
		health:   &Health{},
		now:      time.Now,
	}
}

// SetFallbackFetcher installs a second fetcher tried when the primary
// fetch succeeds but yields zero candidate blocks.
func (s *Service) SetFallbackFetcher(f Fetcher) {
	s.fallback = f
}

// AddPublisher registers a refresh-event consumer.
func (s *Service) AddPublisher(p Publisher) {
	s.publishers = append(s.publishers, p)
}

// Health exposes the process-wide fetch health state.
func (s *Service) Health() *Health {
	return s.health
}

// CacheStats returns the number of populated cache slots.
func (s *Service) CacheStats() int {
	return s.cache.Len()
}

// Recent returns the latest completed matches, at most limit.
func (s *Service) Recent(ctx context.Context, limit int) ([]scrape.MatchRecord, error) {
	return s.GetOrFetch(ctx, RecentDim(), limit)
}

// UpcomingMatches returns the next scheduled matches, at most limit.
func (s *Service) UpcomingMatches(ctx context.Context, limit int) ([]scrape.MatchRecord, error) {
	return s.GetOrFetch(ctx, UpcomingDim(), limit)
}

// ForTeam resolves the free-text team name and returns its recent
// matches. The resolved canonical name is returned alongside so callers
// can echo it back to the user.
func (s *Service) ForTeam(ctx context.Context, name string, limit int) ([]scrape.MatchRecord, string, error) {
	canonical := s.resolver.Resolve(name, resolve.Team)
	records, err := s.GetOrFetch(ctx, TeamDim(canonical), limit)
	return records, canonical, err
}

// ForTournament resolves the free-text tournament name and returns its
// recent matches.
func (s *Service) ForTournament(ctx context.Context, name string, limit int) ([]scrape.MatchRecord, string, error) {
	canonical := s.resolver.Resolve(name, resolve.Tournament)
	records, err := s.GetOrFetch(ctx, TournamentDim(canonical), limit)
	return records, canonical, err
}

// GetOrFetch returns records for a dimension, from cache when fresh.
// A non-nil error is a fetch failure; an empty slice with nil error
// means the fetch succeeded and nothing matched. Concurrent fetches for
// the same dimension are not deduplicated; the later write wins.
func (s *Service) GetOrFetch(ctx context.Context, d Dimension, limit int) ([]scrape.MatchRecord, error) {
	if records, ok := s.cache.Get(d, s.now()); ok {
		return clip(records, limit), nil
	}

	records, err := s.refresh(ctx, d)
	if err != nil {
		return nil, err
	}
	return clip(records, limit), nil
}

// refresh runs one full fetch cycle for a dimension and updates the
// cache and health state.
func (s *Service) refresh(ctx context.Context, d Dimension) ([]scrape.MatchRecord, error) {
	url := s.baseURL + d.Path()

	fetchCtx, cancel := context.WithTimeout(ctx, scrape.FetchTimeout)
	defer cancel()

	body, err := s.fetcher.Fetch(fetchCtx, url)
	if err != nil {
		n := s.health.RecordFailure()
		log.Printf("[results] ⚠️  fetch failed for %s (consecutive failures: %d): %v", d.Key(), n, err)
		return nil, fmt.Errorf("fetch %s: %w", d.Key(), err)
	}

	blocks, err := s.locate(body)
	if err != nil {
		n := s.health.RecordFailure()
		log.Printf("[results] ⚠️  parse failed for %s (consecutive failures: %d): %v", d.Key(), n, err)
		return nil, fmt.Errorf("parse %s: %w", d.Key(), err)
	}

	// No blocks on a structurally parsed page: try the rendered-page
	// fallback once before accepting the empty outcome.
	if len(blocks) == 0 && s.fallback != nil {
		if rendered, ferr := s.fallback.Fetch(ctx, url); ferr == nil {
			if fblocks, perr := s.locate(rendered); perr == nil && len(fblocks) > 0 {
				blocks = fblocks
			}
		} else {
			log.Printf("[results] fallback fetch failed for %s: %v", d.Key(), ferr)
		}
	}

	records := scrape.ExtractAll(blocks, d.Mode(), s.baseURL)
	records = filter(records, d)

	now := s.now()
	s.cache.Put(d, records, now)
	s.health.RecordSuccess(now)

	for _, p := range s.publishers {
		if perr := p.PublishResults(ctx, d.Key(), records); perr != nil {
			log.Printf("[results] publish failed for %s: %v", d.Key(), perr)
		}
	}

	log.Printf("[results] ✓ refreshed %s: %d records", d.Key(), len(records))
	return records, nil
}

func (s *Service) locate(body []byte) ([]*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return scrape.Locate(doc), nil
}

func filter(records []scrape.MatchRecord, d Dimension) []scrape.MatchRecord {
	if d.Kind == Recent || d.Kind == Upcoming {
		return records
	}
	filtered := make([]scrape.MatchRecord, 0, len(records))
	for _, rec := range records {
		if d.Matches(rec) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

func clip(records []scrape.MatchRecord, limit int) []scrape.MatchRecord {
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}

// RunHealthMonitor periodically checks fetch health, probing for
// recovery past ProbeThreshold and calling alert once per excursion
// past AlertThreshold. It also runs one check immediately on start.
func (s *Service) RunHealthMonitor(ctx context.Context, interval time.Duration, alert func(msg string)) {
	log.Printf("→ Health monitor started (interval: %v, alert at %d failures, probe at %d)",
		interval, AlertThreshold, ProbeThreshold)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	alerted := false
	check := func() {
		if s.health.NeedsProbe() {
			s.probe(ctx)
		}
		if s.health.Alerting() {
			if !alerted && alert != nil {
				alert(fmt.Sprintf("vlr.gg fetches failing: %d consecutive failures", s.health.ConsecutiveFailures()))
			}
			alerted = true
		} else {
			alerted = false
		}
	}

	check()
	for {
		select {
		case <-ctx.Done():
			log.Println("→ Health monitor stopped")
			return
		case <-ticker.C:
			check()
		}
	}
}

// probe issues a low-cost single-record fetch so recovery is noticed
// without waiting for user traffic. Success resets the counter inside
// the normal refresh path.
func (s *Service) probe(ctx context.Context) {
	log.Printf("[results] probing for recovery (consecutive failures: %d)", s.health.ConsecutiveFailures())
	if _, err := s.refresh(ctx, RecentDim()); err != nil {
		log.Printf("[results] probe failed: %v", err)
	} else {
		log.Println("[results] ✓ probe succeeded; fetch health recovered")
	}
}
