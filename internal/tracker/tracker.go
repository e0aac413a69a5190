// Package tracker implements the per-subscriber live match tracking loop and
// the registry that enforces at most one tracker per subscriber.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/dkotenko/vlrbot/internal/pkg/models"
	"github.com/dkotenko/vlrbot/internal/vlr"
)

// MatchSource fetches the current snapshot of known matches.
type MatchSource interface {
	Fetch(ctx context.Context, mode vlr.QueryMode) (*models.MatchSnapshot, error)
}

// NotifySink delivers a message to a chat. Fire-and-forget: delivery failures
// are the sink's problem, the tracker never sees them.
type NotifySink interface {
	Notify(chatID int64, text string)
}

// StopReason is the terminal state of a tracker.
type StopReason int

const (
	StopCancelled StopReason = iota // subscriber asked to stop
	StopMatchOver                   // match fell out of LIVE for too long
	StopError                       // unexpected failure in the diff/notify step
)

func (r StopReason) String() string {
	switch r {
	case StopCancelled:
		return "cancelled"
	case StopMatchOver:
		return "match_over"
	case StopError:
		return "error"
	default:
		return "unknown"
	}
}

// Tracker polls the live snapshot for one subscriber's match, notifies on
// round-score changes, and terminates on cancel, error, or match end. All of
// its state is owned by its own goroutine; nothing here needs locking.
type Tracker struct {
	chatID       int64
	team1, team2 string
	pairKey      string

	source       MatchSource
	sink         NotifySink
	clock        clockwork.Clock
	interval     time.Duration
	notLiveLimit int

	last          *models.RoundScore
	seenLive      bool
	notLiveStreak int

	// finish removes the registry entry and signals the handle; runs exactly once.
	finish func()
}

// run is the tracker goroutine body. Whatever path the loop exits through,
// exactly one terminal notification goes out and cleanup runs exactly once.
func (t *Tracker) run(ctx context.Context) {
	defer t.finish()

	slog.Info("tracker: started",
		"chat_id", t.chatID, "match", t.matchName(), "interval", t.interval)

	reason := t.loop(ctx)

	slog.Info("tracker: stopped",
		"chat_id", t.chatID, "match", t.matchName(), "reason", reason.String())
	t.sink.Notify(t.chatID, formatStopped(reason, t.team1, t.team2))
}

func (t *Tracker) loop(ctx context.Context) StopReason {
	for {
		select {
		case <-ctx.Done():
			return StopCancelled
		default:
		}

		if err := t.cycle(ctx); err != nil {
			slog.Error("tracker: diff/notify step failed",
				"chat_id", t.chatID, "match", t.matchName(), "error", err)
			return StopError
		}

		if t.seenLive && t.notLiveStreak >= t.notLiveLimit {
			return StopMatchOver
		}

		select {
		case <-ctx.Done():
			return StopCancelled
		case <-t.clock.After(t.interval):
		}
	}
}

// cycle runs one poll. Fetch failures are transient: logged and skipped, the
// next tick tries again. Only a failure inside the diff/notify step is fatal.
func (t *Tracker) cycle(ctx context.Context) error {
	snapshot, err := t.source.Fetch(ctx, vlr.ModeLive)
	if err != nil {
		slog.Warn("tracker: fetch failed, will retry next cycle",
			"chat_id", t.chatID, "match", t.matchName(), "error", err)
		return nil
	}

	seg, found := snapshot.FindPair(t.pairKey)
	if !found {
		// Not currently reported. Single absences happen on provider
		// staleness; only a long streak after the match went live counts
		// as the match being over.
		t.observeNotLive()
		return nil
	}
	if seg.Status() != models.StatusLive {
		t.observeNotLive()
		return nil
	}

	t.seenLive = true
	t.notLiveStreak = 0
	return t.diffNotify(seg)
}

func (t *Tracker) observeNotLive() {
	if t.seenLive {
		t.notLiveStreak++
	}
}

// diffNotify compares the segment's round scores against the last-observed
// tuple and emits one update when anything changed. A panic here is the
// tracker's ERROR terminal path, isolated to this subscriber.
func (t *Tracker) diffNotify(seg models.MatchSegment) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in diff/notify: %v", r)
		}
	}()

	score := seg.Rounds()
	if t.last != nil && *t.last == score {
		return nil
	}
	t.last = &score
	t.sink.Notify(t.chatID, FormatScoreUpdate(seg))
	return nil
}

func (t *Tracker) matchName() string {
	return t.team1 + " vs " + t.team2
}
