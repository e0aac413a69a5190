package models

import (
	"sort"
	"strings"
)

// TeamPairKey builds an order-independent match identifier from the two team
// names. The provider gives no stable match ID, so the pair is the best
// identity available within one polling session.
//
// IMPORTANT: this assumes team names stay spelled the same between polls of
// the same source, which vlrggapi does. It is NOT safe across sources.
func TeamPairKey(team1, team2 string) string {
	a := normalizeKeyPart(team1)
	b := normalizeKeyPart(team2)
	pair := []string{a, b}
	sort.Strings(pair)
	return pair[0] + "|" + pair[1]
}

func normalizeKeyPart(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ReplaceAll(s, "/", " ")
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "|", " ")
	s = strings.Join(strings.Fields(s), " ")
	return s
}
