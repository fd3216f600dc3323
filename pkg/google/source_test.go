package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/klokku/calinvoice/pkg/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

type capturedRequest struct {
	Authorization string
	TimeMin       string
	TimeMax       string
	SingleEvents  string
	OrderBy       string
}

func newCalendarAPI(t *testing.T, captured *[]capturedRequest) *httptest.Server {
	t.Helper()
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me/calendarList", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			writeJSON(w, map[string]any{"error": map[string]any{"code": 401, "message": "invalid credentials"}})
			return
		}
		if r.URL.Query().Get("pageToken") == "" {
			writeJSON(w, map[string]any{
				"items":         []map[string]any{{"id": "work", "summary": "Work"}},
				"nextPageToken": "page2",
			})
			return
		}
		writeJSON(w, map[string]any{
			"items": []map[string]any{{"id": "home", "summary": "Home"}},
		})
	})
	mux.HandleFunc("/calendars/work/events", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		*captured = append(*captured, capturedRequest{
			Authorization: r.Header.Get("Authorization"),
			TimeMin:       q.Get("timeMin"),
			TimeMax:       q.Get("timeMax"),
			SingleEvents:  q.Get("singleEvents"),
			OrderBy:       q.Get("orderBy"),
		})
		writeJSON(w, map[string]any{
			"items": []map[string]any{
				{
					"id":          "e1",
					"summary":     "Acme-ProjectX",
					"description": "Planning",
					"colorId":     "1",
					"start":       map[string]any{"dateTime": "2024-03-01T09:00:00-05:00"},
					"end":         map[string]any{"dateTime": "2024-03-01T17:00:00-05:00"},
				},
				{
					"id":      "e2",
					"summary": "Holiday",
					"start":   map[string]any{"date": "2024-03-04"},
					"end":     map[string]any{"date": "2024-03-05"},
				},
				{
					"id":      "e3",
					"summary": "No times",
				},
			},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCalendarSource_ListCalendars_AllPages(t *testing.T) {
	api := newCalendarAPI(t, &[]capturedRequest{})
	source, err := NewSourceFactory(option.WithEndpoint(api.URL+"/"))(context.Background(), "good-token")
	require.NoError(t, err)

	calendars, err := source.ListCalendars(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []calendar.CalendarItem{
		{ID: "work", Summary: "Work"},
		{ID: "home", Summary: "Home"},
	}, calendars)
}

func TestCalendarSource_ListCalendars_Unauthorized(t *testing.T) {
	api := newCalendarAPI(t, &[]capturedRequest{})
	source, err := NewCalendarSource(context.Background(), "expired-token", option.WithEndpoint(api.URL+"/"))
	require.NoError(t, err)

	_, err = source.ListCalendars(context.Background())

	assert.Error(t, err)
}

func TestCalendarSource_ListEvents(t *testing.T) {
	var captured []capturedRequest
	api := newCalendarAPI(t, &captured)
	source, err := NewCalendarSource(context.Background(), "good-token", option.WithEndpoint(api.URL+"/"))
	require.NoError(t, err)
	loc := time.FixedZone("", -5*3600)
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, loc)
	to := time.Date(2024, 4, 1, 0, 0, 0, 0, loc)

	events, err := source.ListEvents(context.Background(), "work", from, to)

	require.NoError(t, err)
	require.Len(t, captured, 1)
	assert.Equal(t, capturedRequest{
		Authorization: "Bearer good-token",
		TimeMin:       "2024-03-01T00:00:00-05:00",
		TimeMax:       "2024-04-01T00:00:00-05:00",
		SingleEvents:  "true",
		OrderBy:       "startTime",
	}, captured[0])
	assert.Equal(t, []calendar.RawEvent{
		{
			UID:         "e1",
			Summary:     "Acme-ProjectX",
			Description: "Planning",
			ColorId:     "1",
			Start:       calendar.EventTime{DateTime: "2024-03-01T09:00:00-05:00"},
			End:         calendar.EventTime{DateTime: "2024-03-01T17:00:00-05:00"},
		},
		{
			UID:     "e2",
			Summary: "Holiday",
			Start:   calendar.EventTime{Date: "2024-03-04"},
			End:     calendar.EventTime{Date: "2024-03-05"},
		},
		{
			UID:     "e3",
			Summary: "No times",
		},
	}, events)
}

func TestNewCalendarSource_RequiresToken(t *testing.T) {
	_, err := NewCalendarSource(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
