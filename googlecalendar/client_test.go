package googlecalendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/NextMind-AI/rigbot/scheduling"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	loc, err := time.LoadLocation("America/Santiago")
	require.NoError(t, err)

	client, err := NewClient(context.Background(),
		Config{CalendarID: "clinic@example.com", Location: loc},
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestListBusyIntervals(t *testing.T) {
	loc, err := time.LoadLocation("America/Santiago")
	require.NoError(t, err)
	start := time.Date(2025, time.October, 13, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 7)

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/calendars/clinic@example.com/events"), r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, "true", q.Get("singleEvents"))
		assert.Equal(t, "startTime", q.Get("orderBy"))
		assert.Equal(t, start.Format(time.RFC3339), q.Get("timeMin"))
		assert.Equal(t, end.Format(time.RFC3339), q.Get("timeMax"))

		if q.Get("pageToken") == "" {
			writeJSON(t, w, map[string]any{
				"items": []map[string]any{
					{
						"id":     "a",
						"status": "confirmed",
						"start":  map[string]string{"dateTime": "2025-10-13T10:00:00-03:00"},
						"end":    map[string]string{"dateTime": "2025-10-13T10:30:00-03:00"},
					},
					{
						"id":     "cancelled",
						"status": "cancelled",
						"start":  map[string]string{"dateTime": "2025-10-13T11:00:00-03:00"},
						"end":    map[string]string{"dateTime": "2025-10-13T12:00:00-03:00"},
					},
					{
						"id":           "free",
						"status":       "confirmed",
						"transparency": "transparent",
						"start":        map[string]string{"dateTime": "2025-10-13T12:00:00-03:00"},
						"end":          map[string]string{"dateTime": "2025-10-13T13:00:00-03:00"},
					},
				},
				"nextPageToken": "page-2",
			})
			return
		}

		assert.Equal(t, "page-2", q.Get("pageToken"))
		writeJSON(t, w, map[string]any{
			"items": []map[string]any{
				{
					"id":     "holiday",
					"status": "confirmed",
					"start":  map[string]string{"date": "2025-10-15"},
					"end":    map[string]string{"date": "2025-10-16"},
				},
				{
					"id":     "utc",
					"status": "tentative",
					"start":  map[string]string{"dateTime": "2025-10-16T20:00:00Z"},
					"end":    map[string]string{"dateTime": "2025-10-16T21:00:00Z"},
				},
			},
		})
	})

	busy, err := client.ListBusyIntervals(context.Background(), start, end)
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())

	require.Len(t, busy, 3)
	assert.True(t, busy[0].Start.Equal(time.Date(2025, time.October, 13, 10, 0, 0, 0, loc)))
	assert.True(t, busy[0].End.Equal(time.Date(2025, time.October, 13, 10, 30, 0, 0, loc)))

	assert.True(t, busy[1].Start.Equal(time.Date(2025, time.October, 15, 0, 0, 0, 0, loc)))
	assert.True(t, busy[1].End.Equal(time.Date(2025, time.October, 16, 0, 0, 0, 0, loc)))

	assert.True(t, busy[2].Start.Equal(time.Date(2025, time.October, 16, 17, 0, 0, 0, loc)))
}

func TestListBusyIntervals_AllDayEventBlocksCalculator(t *testing.T) {
	loc, err := time.LoadLocation("America/Santiago")
	require.NoError(t, err)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"items": []map[string]any{{
				"id":     "vacation",
				"status": "confirmed",
				"start":  map[string]string{"date": "2025-10-14"},
				"end":    map[string]string{"date": "2025-10-15"},
			}},
		})
	})

	bc := scheduling.DefaultBusinessCalendar(loc)
	now := time.Date(2025, time.October, 13, 9, 0, 0, 0, loc)
	day := bc.Today(now).AddDays(1)
	q := scheduling.Query{Date: &day}

	start, end := bc.Window(q, now)
	busy, err := client.ListBusyIntervals(context.Background(), start, end)
	require.NoError(t, err)
	assert.Empty(t, bc.AvailableSlots(q, busy, now))
}

func TestListBusyIntervals_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"forbidden"}}`))
	})

	_, err := client.ListBusyIntervals(context.Background(), time.Now(), time.Now().Add(time.Hour))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "googlecalendar: list events")
}

func TestListBusyIntervals_ContextTimeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.ListBusyIntervals(ctx, time.Now(), time.Now().Add(time.Hour))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestListBusyIntervals_MalformedEvent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"items": []map[string]any{{
				"id":     "broken",
				"status": "confirmed",
				"start":  map[string]string{"dateTime": "yesterday"},
				"end":    map[string]string{"dateTime": "2025-10-13T10:30:00-03:00"},
			}},
		})
	})

	_, err := client.ListBusyIntervals(context.Background(), time.Now(), time.Now().Add(time.Hour))
	require.Error(t, err)
}

func TestNewClient_BadCredentials(t *testing.T) {
	_, err := NewClient(context.Background(), Config{CredentialsJSON: "{not json"})
	require.Error(t, err)

	_, err = NewClient(context.Background(), Config{CredentialsFile: "/does/not/exist.json"})
	require.Error(t, err)
}
