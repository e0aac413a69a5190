package vlr

import (
	"log/slog"
	"strings"

	"github.com/dkotenko/vlrbot/internal/pkg/models"
)

// DefaultMaxMatches caps how many matches are offered for selection.
const DefaultMaxMatches = 20

// ExtractRelevant walks a snapshot in provider order and keeps segments that
// have both team names and an event name, where the event name contains at
// least one of the given tournament keywords. Collection stops at maxCount;
// later segments are silently dropped. A snapshot without a segments container
// yields an empty result, never an error.
func ExtractRelevant(snapshot *models.MatchSnapshot, keywords []string, maxCount int) []models.MatchSegment {
	if maxCount <= 0 {
		maxCount = DefaultMaxMatches
	}
	if snapshot == nil || snapshot.Data.Segments == nil {
		slog.Warn("vlr: snapshot has no segments container, treating as empty")
		return nil
	}

	var out []models.MatchSegment
	for _, seg := range snapshot.Data.Segments {
		if strings.TrimSpace(seg.Team1) == "" ||
			strings.TrimSpace(seg.Team2) == "" ||
			strings.TrimSpace(seg.Event) == "" {
			continue
		}
		if !eventRelevant(seg.Event, keywords) {
			continue
		}
		out = append(out, seg)
		if len(out) >= maxCount {
			break
		}
	}
	return out
}

// eventRelevant reports whether any keyword appears in the event name.
// The substring test runs against the event name for every keyword;
// keywords are case-sensitive.
func eventRelevant(event string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(event, kw) {
			return true
		}
	}
	return false
}
