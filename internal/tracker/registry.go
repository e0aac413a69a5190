package tracker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/dkotenko/vlrbot/internal/pkg/config"
	"github.com/dkotenko/vlrbot/internal/pkg/models"
)

var (
	// ErrAlreadyTracking means the subscriber already has an active tracker.
	ErrAlreadyTracking = errors.New("already tracking a match")
	// ErrNotTracking means there is no active tracker for the subscriber.
	ErrNotTracking = errors.New("no active tracking")
)

// Handle is the registry entry for one running tracker.
type Handle struct {
	ChatID    int64
	Match     string
	StartedAt time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// Done is closed once the tracker goroutine has fully finished, terminal
// notification included.
func (h *Handle) Done() <-chan struct{} { return h.done }

// HandleInfo is the read-only view exposed on the health endpoint.
type HandleInfo struct {
	ChatID    int64     `json:"chat_id"`
	Match     string    `json:"match"`
	StartedAt time.Time `json:"started_at"`
}

// Registry maps subscribers to their active tracker. It is the only shared
// mutable structure in the process; everything behind it is goroutine-owned.
type Registry struct {
	source MatchSource
	sink   NotifySink
	clock  clockwork.Clock
	cfg    config.TrackerConfig

	mu       sync.Mutex
	trackers map[int64]*Handle
}

func NewRegistry(source MatchSource, sink NotifySink, clock clockwork.Clock, cfg config.TrackerConfig) *Registry {
	return &Registry{
		source:   source,
		sink:     sink,
		clock:    clock,
		cfg:      cfg,
		trackers: make(map[int64]*Handle),
	}
}

// Start launches a tracker for the given match. A second start for the same
// subscriber while one is active returns ErrAlreadyTracking and leaves the
// existing tracker untouched; under concurrent starts exactly one wins.
func (r *Registry) Start(ctx context.Context, chatID int64, seg models.MatchSegment) (*Handle, error) {
	trackerCtx, cancel := context.WithCancel(ctx)

	h := &Handle{
		ChatID:    chatID,
		Match:     seg.Name(),
		StartedAt: r.clock.Now(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	r.mu.Lock()
	if _, exists := r.trackers[chatID]; exists {
		r.mu.Unlock()
		cancel()
		return nil, ErrAlreadyTracking
	}
	r.trackers[chatID] = h
	r.mu.Unlock()

	t := &Tracker{
		chatID:       chatID,
		team1:        strings.TrimSpace(seg.Team1),
		team2:        strings.TrimSpace(seg.Team2),
		pairKey:      seg.PairKey(),
		source:       r.source,
		sink:         r.sink,
		clock:        r.clock,
		interval:     r.cfg.Interval,
		notLiveLimit: r.cfg.NotLiveLimit,
		finish: func() {
			r.remove(chatID, h)
			close(h.done)
		},
	}
	go t.run(trackerCtx)

	return h, nil
}

// Cancel asks the subscriber's tracker to stop. Fire-and-forget: the tracker
// goroutine still sends its terminal notification and cleans up after Cancel
// returns; wait on Handle.Done when completion matters.
func (r *Registry) Cancel(chatID int64) error {
	r.mu.Lock()
	h, ok := r.trackers[chatID]
	r.mu.Unlock()
	if !ok {
		return ErrNotTracking
	}
	h.cancel()
	return nil
}

// Active returns the subscriber's handle, if any.
func (r *Registry) Active(chatID int64) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.trackers[chatID]
	return h, ok
}

// Count returns the number of running trackers.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.trackers)
}

// Snapshot lists the running trackers for the health endpoint.
func (r *Registry) Snapshot() []HandleInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]HandleInfo, 0, len(r.trackers))
	for _, h := range r.trackers {
		out = append(out, HandleInfo{ChatID: h.ChatID, Match: h.Match, StartedAt: h.StartedAt})
	}
	return out
}

// Shutdown cancels every tracker and waits for all of them to finish.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	handles := make([]*Handle, 0, len(r.trackers))
	for _, h := range r.trackers {
		handles = append(handles, h)
	}
	r.mu.Unlock()

	for _, h := range handles {
		h.cancel()
	}
	for _, h := range handles {
		<-h.done
	}
}

// remove deletes the entry only if it still belongs to this handle, so a late
// cleanup cannot evict a successor tracker for the same chat.
func (r *Registry) remove(chatID int64, h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.trackers[chatID] == h {
		delete(r.trackers, chatID)
	}
}
