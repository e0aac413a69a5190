package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkotenko/vlrbot/internal/pkg/config"
	"github.com/dkotenko/vlrbot/internal/pkg/models"
	"github.com/dkotenko/vlrbot/internal/vlr"
)

const testInterval = 30 * time.Second

// scriptedSource serves whatever snapshot (or error) the test last installed.
type scriptedSource struct {
	mu   sync.Mutex
	snap *models.MatchSnapshot
	err  error
}

func (s *scriptedSource) set(snap *models.MatchSnapshot, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap, s.err = snap, err
}

func (s *scriptedSource) Fetch(_ context.Context, _ vlr.QueryMode) (*models.MatchSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap, s.err
}

// recordSink records every notification; optionally panics on the next one.
type recordSink struct {
	mu        sync.Mutex
	msgs      []string
	panicNext bool
}

func (s *recordSink) Notify(_ int64, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panicNext {
		s.panicNext = false
		panic("sink exploded")
	}
	s.msgs = append(s.msgs, text)
}

func (s *recordSink) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.msgs...)
}

func opt(v int) models.OptInt { return models.OptInt{Value: v, Present: true} }

func liveSegment(t1, t2 string, score1, score2, mapNum, ct1, tr1, ct2, tr2 int) models.MatchSegment {
	return models.MatchSegment{
		Team1: t1, Team2: t2,
		Event:     "VCT Masters",
		RawStatus: "LIVE",
		MapScore1: opt(score1), MapScore2: opt(score2),
		MapNumber: opt(mapNum),
		RoundCT1:  opt(ct1), RoundT1: opt(tr1),
		RoundCT2: opt(ct2), RoundT2: opt(tr2),
	}
}

func snapshotOf(segs ...models.MatchSegment) *models.MatchSnapshot {
	snap := &models.MatchSnapshot{}
	snap.Data.Segments = append([]models.MatchSegment{}, segs...)
	return snap
}

func newTestRegistry(src MatchSource, sink NotifySink, notLiveLimit int) (*Registry, clockwork.FakeClock) {
	fc := clockwork.NewFakeClock()
	reg := NewRegistry(src, sink, fc, config.TrackerConfig{
		Interval:     testInterval,
		NotLiveLimit: notLiveLimit,
	})
	return reg, fc
}

// waitForSleep blocks until the tracker goroutine finished its current cycle
// and parked on the interval timer.
func waitForSleep(fc clockwork.FakeClock) { fc.BlockUntil(1) }

func TestTracker_NotifiesOnChangeOnly(t *testing.T) {
	src := &scriptedSource{}
	sink := &recordSink{}
	src.set(snapshotOf(liveSegment("A", "B", 1, 0, 1, 6, 5, 4, 4)), nil)

	reg, fc := newTestRegistry(src, sink, 10)
	h, err := reg.Start(context.Background(), 7, models.MatchSegment{Team1: "A", Team2: "B", Event: "VCT Masters"})
	require.NoError(t, err)

	waitForSleep(fc)
	msgs := sink.messages()
	require.Len(t, msgs, 1, "first LIVE observation must notify")
	assert.Contains(t, msgs[0], "Map: 1")
	assert.Contains(t, msgs[0], "A 1 - 0 B")
	assert.Contains(t, msgs[0], "A CT: 6 T: 5")
	assert.Contains(t, msgs[0], "B CT: 4 T: 4")

	// Same tuple again: no new notification.
	fc.Advance(testInterval)
	waitForSleep(fc)
	assert.Len(t, sink.messages(), 1, "identical poll must not notify")

	// One field changes: exactly one more notification.
	src.set(snapshotOf(liveSegment("A", "B", 1, 0, 1, 6, 6, 4, 4)), nil)
	fc.Advance(testInterval)
	waitForSleep(fc)
	msgs = sink.messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[1], "A CT: 6 T: 6")

	require.NoError(t, reg.Cancel(7))
	<-h.Done()
}

func TestTracker_CancelSendsOneTerminalNotice(t *testing.T) {
	src := &scriptedSource{}
	sink := &recordSink{}
	src.set(snapshotOf(), nil)

	reg, fc := newTestRegistry(src, sink, 10)
	h, err := reg.Start(context.Background(), 7, models.MatchSegment{Team1: "A", Team2: "B"})
	require.NoError(t, err)
	waitForSleep(fc)

	require.NoError(t, reg.Cancel(7))
	<-h.Done()

	msgs := sink.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Stopped tracking A vs B")
	assert.Equal(t, 0, reg.Count())
	assert.ErrorIs(t, reg.Cancel(7), ErrNotTracking)
}

func TestTracker_ConcurrentDoubleCancel(t *testing.T) {
	src := &scriptedSource{}
	sink := &recordSink{}
	src.set(snapshotOf(), nil)

	reg, fc := newTestRegistry(src, sink, 10)
	h, err := reg.Start(context.Background(), 7, models.MatchSegment{Team1: "A", Team2: "B"})
	require.NoError(t, err)
	waitForSleep(fc)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = reg.Cancel(7)
		}()
	}
	wg.Wait()
	<-h.Done()

	assert.Len(t, sink.messages(), 1, "double cancel must produce one terminal notice")
	assert.Equal(t, 0, reg.Count())
}

func TestTracker_FetchErrorsAreTolerated(t *testing.T) {
	src := &scriptedSource{}
	sink := &recordSink{}
	src.set(nil, &vlr.TransportError{URL: "http://x", Err: errors.New("connection refused")})

	reg, fc := newTestRegistry(src, sink, 2)
	h, err := reg.Start(context.Background(), 7, models.MatchSegment{Team1: "A", Team2: "B"})
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		waitForSleep(fc)
		fc.Advance(testInterval)
	}
	waitForSleep(fc)

	assert.Equal(t, 1, reg.Count(), "fetch failures must not terminate the tracker")
	assert.Empty(t, sink.messages())

	require.NoError(t, reg.Cancel(7))
	<-h.Done()
}

func TestTracker_NoTerminationBeforeFirstLive(t *testing.T) {
	src := &scriptedSource{}
	sink := &recordSink{}
	// Match known but not live yet.
	src.set(snapshotOf(models.MatchSegment{Team1: "A", Team2: "B", RawStatus: "Upcoming"}), nil)

	reg, fc := newTestRegistry(src, sink, 2)
	h, err := reg.Start(context.Background(), 7, models.MatchSegment{Team1: "A", Team2: "B"})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		waitForSleep(fc)
		fc.Advance(testInterval)
	}
	waitForSleep(fc)

	assert.Equal(t, 1, reg.Count(), "non-live polls before first LIVE must not terminate")
	assert.Empty(t, sink.messages())

	require.NoError(t, reg.Cancel(7))
	<-h.Done()
}

func TestTracker_TerminatesAfterMatchLeavesLive(t *testing.T) {
	src := &scriptedSource{}
	sink := &recordSink{}
	src.set(snapshotOf(liveSegment("A", "B", 1, 0, 1, 6, 5, 4, 4)), nil)

	reg, fc := newTestRegistry(src, sink, 2)
	h, err := reg.Start(context.Background(), 7, models.MatchSegment{Team1: "A", Team2: "B"})
	require.NoError(t, err)
	waitForSleep(fc)
	require.Len(t, sink.messages(), 1)

	// Match disappears from the live feed.
	src.set(snapshotOf(), nil)
	fc.Advance(testInterval) // streak 1
	waitForSleep(fc)
	fc.Advance(testInterval) // streak 2 -> match over
	<-h.Done()

	msgs := sink.messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[1], "no longer live")
	assert.Equal(t, 0, reg.Count())
}

func TestTracker_NotifyPanicTerminatesWithError(t *testing.T) {
	src := &scriptedSource{}
	sink := &recordSink{panicNext: true}
	src.set(snapshotOf(liveSegment("A", "B", 0, 0, 1, 1, 0, 0, 0)), nil)

	reg, _ := newTestRegistry(src, sink, 10)
	h, err := reg.Start(context.Background(), 7, models.MatchSegment{Team1: "A", Team2: "B"})
	require.NoError(t, err)
	<-h.Done()

	msgs := sink.messages()
	require.Len(t, msgs, 1, "only the terminal notice should be recorded")
	assert.Contains(t, msgs[0], "internal error")
	assert.Equal(t, 0, reg.Count(), "error exit must still clean up the registry")
}

func TestRegistry_AtMostOneTrackerPerSubscriber(t *testing.T) {
	src := &scriptedSource{}
	sink := &recordSink{}
	src.set(snapshotOf(), nil)

	reg, fc := newTestRegistry(src, sink, 10)
	h1, err := reg.Start(context.Background(), 7, models.MatchSegment{Team1: "A", Team2: "B"})
	require.NoError(t, err)
	waitForSleep(fc)

	_, err = reg.Start(context.Background(), 7, models.MatchSegment{Team1: "C", Team2: "D"})
	assert.ErrorIs(t, err, ErrAlreadyTracking)

	active, ok := reg.Active(7)
	require.True(t, ok)
	assert.Same(t, h1, active, "a refused start must not replace the running tracker")

	// A different subscriber is unaffected.
	h2, err := reg.Start(context.Background(), 8, models.MatchSegment{Team1: "C", Team2: "D"})
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Count())

	reg.Shutdown()
	<-h1.Done()
	<-h2.Done()
	assert.Equal(t, 0, reg.Count())
}
