package models

import (
	"strconv"
	"strings"
)

// MatchStatus classifies a segment from the provider's free-text status fields.
type MatchStatus int

const (
	StatusOther MatchStatus = iota
	StatusUpcoming
	StatusLive
)

func (s MatchStatus) String() string {
	switch s {
	case StatusUpcoming:
		return "upcoming"
	case StatusLive:
		return "live"
	default:
		return "other"
	}
}

// OptInt is an integer field that may be absent. vlrggapi serves most numeric
// fields as strings ("6"), occasionally as numbers or empty strings, so the
// decoder accepts all three. Anything unparseable counts as absent rather than
// failing the whole snapshot.
type OptInt struct {
	Value   int
	Present bool
}

func (o *OptInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*o = OptInt{}
		return nil
	}
	s = strings.TrimSpace(strings.Trim(s, `"`))
	if s == "" {
		*o = OptInt{}
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		*o = OptInt{}
		return nil
	}
	*o = OptInt{Value: n, Present: true}
	return nil
}

// MarshalJSON writes the value as a number, or null when absent, so segments
// survive a marshal/unmarshal round trip (the session store keeps them as JSON).
func (o OptInt) MarshalJSON() ([]byte, error) {
	if !o.Present {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(o.Value)), nil
}

// Or returns the value, or def when the field was absent.
func (o OptInt) Or(def int) int {
	if !o.Present {
		return def
	}
	return o.Value
}

// MatchSegment is one match record in a provider snapshot. Only the fields
// listed here matter; the provider sends more and they are ignored.
type MatchSegment struct {
	Team1          string `json:"team1"`
	Team2          string `json:"team2"`
	Event          string `json:"match_event"`
	RawStatus      string `json:"status"`
	TimeUntilMatch string `json:"time_until_match"`
	MapScore1      OptInt `json:"score1"`
	MapScore2      OptInt `json:"score2"`
	MapNumber      OptInt `json:"map_number"`
	RoundCT1       OptInt `json:"team1_round_ct"`
	RoundT1        OptInt `json:"team1_round_t"`
	RoundCT2       OptInt `json:"team2_round_ct"`
	RoundT2        OptInt `json:"team2_round_t"`
}

// Status derives the segment status. vlrggapi reports liveness either in
// "status" or in "time_until_match" depending on the query mode.
func (s *MatchSegment) Status() MatchStatus {
	raw := strings.TrimSpace(s.RawStatus)
	if raw == "" {
		raw = strings.TrimSpace(s.TimeUntilMatch)
	}
	switch {
	case strings.EqualFold(raw, "live"):
		return StatusLive
	case strings.EqualFold(raw, "upcoming"):
		return StatusUpcoming
	case strings.TrimSpace(s.TimeUntilMatch) != "":
		// A countdown like "1h 20m from now" means the match has not started.
		return StatusUpcoming
	default:
		return StatusOther
	}
}

// Rounds returns the comparable round-score tuple; absent fields read as 0.
func (s *MatchSegment) Rounds() RoundScore {
	return RoundScore{
		CT1: s.RoundCT1.Or(0),
		T1:  s.RoundT1.Or(0),
		CT2: s.RoundCT2.Or(0),
		T2:  s.RoundT2.Or(0),
	}
}

// PairKey returns the segment's identity within a polling session.
func (s *MatchSegment) PairKey() string {
	return TeamPairKey(s.Team1, s.Team2)
}

// Name returns a display name like "Sentinels vs Fnatic".
func (s *MatchSegment) Name() string {
	return strings.TrimSpace(s.Team1) + " vs " + strings.TrimSpace(s.Team2)
}

// RoundScore is the last-observed round state of a tracked match.
type RoundScore struct {
	CT1, T1, CT2, T2 int
}

// MatchSnapshot is a decoded provider response. Re-fetched on every poll,
// never mutated.
type MatchSnapshot struct {
	Data struct {
		Segments []MatchSegment `json:"segments"`
	} `json:"data"`
}

// FindPair returns the first segment whose team pair matches key.
// The provider has no stable match ID, so if two concurrent matches share both
// team names the first one in provider order wins.
func (m *MatchSnapshot) FindPair(key string) (MatchSegment, bool) {
	for _, seg := range m.Data.Segments {
		if seg.PairKey() == key {
			return seg, true
		}
	}
	return MatchSegment{}, false
}
