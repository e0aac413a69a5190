// Package session holds per-chat selection state: the list of matches offered
// to a subscriber, kept only between presenting choices and a successful pick
// or cancellation.
package session

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/dkotenko/vlrbot/internal/pkg/models"
)

var (
	// ErrNoSession means the chat has no selection in progress.
	ErrNoSession = errors.New("no selection in progress")
	// ErrInvalidChoice means the reply did not resolve to an offered match.
	ErrInvalidChoice = errors.New("invalid choice")
)

// Store keeps the offered match list per chat.
type Store interface {
	Put(ctx context.Context, chatID int64, segments []models.MatchSegment) error
	Get(ctx context.Context, chatID int64) ([]models.MatchSegment, error)
	Clear(ctx context.Context, chatID int64) error
}

// Choose resolves a raw reply against the offered list. The reply must parse
// as a 1-based integer within the list; anything else is ErrInvalidChoice and
// leaves the stored list untouched so the subscriber can try again.
func Choose(raw string, segments []models.MatchSegment) (models.MatchSegment, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 || n > len(segments) {
		return models.MatchSegment{}, ErrInvalidChoice
	}
	return segments[n-1], nil
}
