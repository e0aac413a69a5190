package bot

import (
	"fmt"
	"strings"

	"github.com/dkotenko/vlrbot/internal/pkg/models"
)

const helpText = `🎯 *VLR Score Bot*

I follow one live Valorant match for you and message you whenever the
round score changes.

*Commands:*

/start - pick an upcoming match to track
/live - show current live matches
/stop - stop tracking your match
/cancel - abort match selection
/help - this message

After /start, reply with the number of the match you want.`

// formatSelection renders the numbered match list a subscriber picks from.
func formatSelection(segments []models.MatchSegment) string {
	var b strings.Builder
	b.WriteString("Pick a match to track — reply with its number:\n\n")
	for i, seg := range segments {
		fmt.Fprintf(&b, "*%d.* %s\n    _%s_\n",
			i+1, escapeMarkdown(seg.Name()), escapeMarkdown(seg.Event))
	}
	b.WriteString("\nSend /cancel to abort.")
	return b.String()
}
