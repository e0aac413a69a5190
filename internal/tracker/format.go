package tracker

import (
	"fmt"
	"strings"

	"github.com/dkotenko/vlrbot/internal/pkg/models"
)

// FormatScoreUpdate renders one live score notification.
func FormatScoreUpdate(seg models.MatchSegment) string {
	t1 := strings.TrimSpace(seg.Team1)
	t2 := strings.TrimSpace(seg.Team2)

	var b strings.Builder
	fmt.Fprintf(&b, "🔴 %s vs %s\n", t1, t2)
	fmt.Fprintf(&b, "Map: %d\n", seg.MapNumber.Or(0))
	fmt.Fprintf(&b, "%s %d - %d %s\n", t1, seg.MapScore1.Or(0), seg.MapScore2.Or(0), t2)
	fmt.Fprintf(&b, "%s CT: %d T: %d\n", t1, seg.RoundCT1.Or(0), seg.RoundT1.Or(0))
	fmt.Fprintf(&b, "%s CT: %d T: %d", t2, seg.RoundCT2.Or(0), seg.RoundT2.Or(0))
	return b.String()
}

func formatStopped(reason StopReason, team1, team2 string) string {
	name := strings.TrimSpace(team1) + " vs " + strings.TrimSpace(team2)
	switch reason {
	case StopCancelled:
		return fmt.Sprintf("🛑 Stopped tracking %s.", name)
	case StopMatchOver:
		return fmt.Sprintf("🏁 %s is no longer live. Tracking finished.", name)
	default:
		return fmt.Sprintf("⚠️ Tracking %s stopped due to an internal error.", name)
	}
}
