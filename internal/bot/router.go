package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dkotenko/vlrbot/internal/pkg/config"
	"github.com/dkotenko/vlrbot/internal/pkg/models"
	"github.com/dkotenko/vlrbot/internal/session"
	"github.com/dkotenko/vlrbot/internal/tracker"
	"github.com/dkotenko/vlrbot/internal/vlr"
)

// Messenger is the outbound half of the chat transport, as the router sees it.
type Messenger interface {
	SendText(chatID int64, text string)
	SendMarkdown(chatID int64, text string)
	Typing(chatID int64)
}

// Router dispatches inbound messages to handlers. Thin by design: all the
// long-lived work lives in the tracker package.
type Router struct {
	out      Messenger
	source   tracker.MatchSource
	registry *tracker.Registry
	sessions session.Store
	cfg      config.TrackerConfig
}

func NewRouter(out Messenger, source tracker.MatchSource, registry *tracker.Registry, sessions session.Store, cfg config.TrackerConfig) *Router {
	return &Router{
		out:      out,
		source:   source,
		registry: registry,
		sessions: sessions,
		cfg:      cfg,
	}
}

// HandleMessage routes one inbound message. ctx is the bot's run context, not
// a per-request one: trackers started here must outlive this call.
func (r *Router) HandleMessage(ctx context.Context, chatID int64, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	if strings.HasPrefix(text, "/") {
		command := strings.ToLower(strings.Fields(text)[0])
		// Group chats address commands as /start@BotName.
		if at := strings.Index(command, "@"); at > 0 {
			command = command[:at]
		}

		switch command {
		case "/start":
			r.handleStart(ctx, chatID)
		case "/help":
			r.out.SendMarkdown(chatID, helpText)
		case "/live":
			r.handleLive(ctx, chatID)
		case "/stop":
			r.handleStop(chatID)
		case "/cancel":
			r.handleCancelSelection(ctx, chatID)
		default:
			r.out.SendText(chatID, "Unknown command. Use /help to see available commands.")
		}
		return
	}

	r.handleChoice(ctx, chatID, text)
}

func (r *Router) handleStart(ctx context.Context, chatID int64) {
	if h, ok := r.registry.Active(chatID); ok {
		r.out.SendText(chatID, fmt.Sprintf(
			"You are already tracking %s. Send /stop first if you want to switch.", h.Match))
		return
	}

	r.out.Typing(chatID)
	snapshot, err := r.source.Fetch(ctx, vlr.ModeUpcoming)
	if err != nil {
		slog.Error("router: fetching upcoming matches failed", "chat_id", chatID, "error", err)
		r.out.SendText(chatID, "Couldn't reach vlr.gg right now. Please try again in a minute.")
		return
	}

	segments := vlr.ExtractRelevant(snapshot, r.cfg.Keywords, r.cfg.MaxMatches)
	if len(segments) == 0 {
		r.out.SendText(chatID, "No upcoming matches from tracked tournaments right now. Try again later.")
		return
	}

	if err := r.sessions.Put(ctx, chatID, segments); err != nil {
		slog.Error("router: storing selection failed", "chat_id", chatID, "error", err)
		r.out.SendText(chatID, "Something went wrong on my side. Please try again.")
		return
	}

	r.out.SendMarkdown(chatID, formatSelection(segments))
}

func (r *Router) handleChoice(ctx context.Context, chatID int64, text string) {
	segments, err := r.sessions.Get(ctx, chatID)
	if errors.Is(err, session.ErrNoSession) {
		r.out.SendText(chatID, "Nothing to pick right now. Send /start to choose a match, or /help for commands.")
		return
	}
	if err != nil {
		slog.Error("router: reading selection failed", "chat_id", chatID, "error", err)
		r.out.SendText(chatID, "Something went wrong on my side. Please try again.")
		return
	}

	seg, err := session.Choose(text, segments)
	if err != nil {
		// Session stays open for another attempt.
		r.out.SendText(chatID, fmt.Sprintf(
			"Please reply with a number between 1 and %d, or /cancel.", len(segments)))
		return
	}

	if _, err := r.registry.Start(ctx, chatID, seg); err != nil {
		if errors.Is(err, tracker.ErrAlreadyTracking) {
			r.out.SendText(chatID, "You are already tracking a match. Send /stop first.")
		} else {
			slog.Error("router: starting tracker failed", "chat_id", chatID, "error", err)
			r.out.SendText(chatID, "Couldn't start tracking. Please try again.")
		}
		return
	}

	if err := r.sessions.Clear(ctx, chatID); err != nil {
		slog.Warn("router: clearing selection failed", "chat_id", chatID, "error", err)
	}
	r.out.SendText(chatID, fmt.Sprintf(
		"✅ Tracking %s. I'll message you whenever the score changes. Send /stop to stop.", seg.Name()))
}

func (r *Router) handleLive(ctx context.Context, chatID int64) {
	r.out.Typing(chatID)
	snapshot, err := r.source.Fetch(ctx, vlr.ModeLive)
	if err != nil {
		slog.Error("router: fetching live matches failed", "chat_id", chatID, "error", err)
		r.out.SendText(chatID, "Couldn't reach vlr.gg right now. Please try again in a minute.")
		return
	}

	segments := vlr.ExtractRelevant(snapshot, r.cfg.Keywords, r.cfg.MaxMatches)
	var live []string
	for _, seg := range segments {
		if seg.Status() == models.StatusLive {
			live = append(live, tracker.FormatScoreUpdate(seg))
		}
	}
	if len(live) == 0 {
		r.out.SendText(chatID, "No live matches from tracked tournaments right now.")
		return
	}
	r.out.SendText(chatID, strings.Join(live, "\n\n"))
}

func (r *Router) handleStop(chatID int64) {
	err := r.registry.Cancel(chatID)
	if errors.Is(err, tracker.ErrNotTracking) {
		r.out.SendText(chatID, "You are not tracking any match. Send /start to pick one.")
		return
	}
	// The tracker itself sends the "stopped" notice when it finishes.
}

func (r *Router) handleCancelSelection(ctx context.Context, chatID int64) {
	if err := r.sessions.Clear(ctx, chatID); err != nil {
		slog.Warn("router: clearing selection failed", "chat_id", chatID, "error", err)
	}
	r.out.SendText(chatID, "Selection cancelled. Send /start whenever you want to pick a match.")
}
