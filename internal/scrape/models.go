package scrape

import "encoding/json"

// Display sentinels for fields the extractor could not resolve.
// They are applied at render time only; MatchRecord keeps unresolved
// fields unset so a team genuinely named "Unknown" stays unambiguous.
const (
	UnknownTeam  = "Unknown"
	UnknownScore = "?"
	UnknownEvent = "Unknown Event"
)

// Mode selects which vlr.gg listing a document came from and whether
// the extractor attempts the scheduled-time slot.
type Mode int

const (
	Completed Mode = iota
	Upcoming
)

// Opt is an optional string field. It marshals as the bare string when
// set and as null when not.
type Opt struct {
	Value string
	Set   bool
}

// MarshalJSON implements json.Marshaler.
func (o Opt) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Opt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = Opt{}
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// Some returns a set Opt.
func Some(v string) Opt {
	return Opt{Value: v, Set: true}
}

// Or returns the value, or fallback if the field was never resolved.
func (o Opt) Or(fallback string) string {
	if o.Set {
		return o.Value
	}
	return fallback
}

// MatchRecord is one observed or scheduled match extracted from a
// candidate block. Immutable once returned by the extractor.
type MatchRecord struct {
	TeamA  Opt `json:"team_a"`
	TeamB  Opt `json:"team_b"`
	ScoreA Opt `json:"score_a"`
	ScoreB Opt `json:"score_b"`
	Event  Opt `json:"event"`
	Stage  Opt `json:"stage"`
	// StartTime is the raw scheduled-time text as it appears on the page
	// (e.g. "10:00 PM"). Only attempted in Upcoming mode.
	StartTime Opt    `json:"start_time"`
	URL       string `json:"url"`
}
