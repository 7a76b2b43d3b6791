package results

import (
	"sync"
	"time"
)

const (
	// AlertThreshold is the consecutive-failure count at which the
	// health monitor raises an operator alert.
	AlertThreshold = 5

	// ProbeThreshold is the count at which the monitor starts issuing
	// synthetic single-record fetches to detect recovery without
	// waiting for user traffic.
	ProbeThreshold = 3
)

// Health tracks back-to-back fetch failures, process-wide. All mutation
// goes through the results service; it is never persisted.
type Health struct {
	mu                  sync.Mutex
	consecutiveFailures int
	lastSuccess         time.Time
}

// RecordFailure increments the consecutive-failure counter and returns
// the new count.
func (h *Health) RecordFailure() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.consecutiveFailures++
	return h.consecutiveFailures
}

// RecordSuccess resets the counter and records the success instant.
func (h *Health) RecordSuccess(now time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.consecutiveFailures = 0
	h.lastSuccess = now
}

// ConsecutiveFailures returns the current failure streak.
func (h *Health) ConsecutiveFailures() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.consecutiveFailures
}

// LastSuccess returns the last successful fetch instant, if any.
func (h *Health) LastSuccess() (time.Time, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastSuccess, !h.lastSuccess.IsZero()
}

// Alerting reports whether the failure streak has crossed the alert
// threshold.
func (h *Health) Alerting() bool {
	return h.ConsecutiveFailures() >= AlertThreshold
}

// NeedsProbe reports whether a recovery probe is warranted.
func (h *Health) NeedsProbe() bool {
	return h.ConsecutiveFailures() >= ProbeThreshold
}

// Snapshot is the health state as exposed on the REST health endpoint.
type Snapshot struct {
	ConsecutiveFailures int    `json:"consecutive_failures"`
	Alerting            bool   `json:"alerting"`
	LastSuccess         string `json:"last_success,omitempty"`
}

// Snapshot returns a point-in-time copy of the health state.
func (h *Health) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := Snapshot{
		ConsecutiveFailures: h.consecutiveFailures,
		Alerting:            h.consecutiveFailures >= AlertThreshold,
	}
	if !h.lastSuccess.IsZero() {
		s.LastSuccess = h.lastSuccess.Format(time.RFC3339)
	}
	return s
}
