package health

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkotenko/vlrbot/internal/pkg/config"
	"github.com/dkotenko/vlrbot/internal/tracker"
)

func TestHandleTrackers_Empty(t *testing.T) {
	reg := tracker.NewRegistry(nil, nil, clockwork.NewFakeClock(), config.TrackerConfig{
		Interval:     30 * time.Second,
		NotLiveLimit: 10,
	})

	rec := httptest.NewRecorder()
	handleTrackers(reg)(rec, httptest.NewRequest("GET", "/trackers", nil))

	require.Equal(t, 200, rec.Code)
	var resp struct {
		Count    int               `json:"count"`
		Trackers []json.RawMessage `json:"trackers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
	assert.Empty(t, resp.Trackers)
}

func TestHandlePing(t *testing.T) {
	rec := httptest.NewRecorder()
	handlePing(rec, httptest.NewRequest("GET", "/ping", nil))
	assert.Equal(t, "pong\n", rec.Body.String())
}
