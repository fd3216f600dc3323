package calendar

import (
	"context"
	"sync"
	"time"
)

type ListEventsCall struct {
	CalendarId string
	From       time.Time
	To         time.Time
}

// StubSource serves canned calendars and events and records ListEvents calls.
type StubSource struct {
	mu        sync.Mutex
	Calendars []CalendarItem
	Events    map[string][]RawEvent
	ListErr   error
	EventsErr error
	// Block, when set, is waited on before ListCalendars returns.
	Block <-chan struct{}
	calls []ListEventsCall
}

func NewStubSource(calendars []CalendarItem, events map[string][]RawEvent) *StubSource {
	if events == nil {
		events = map[string][]RawEvent{}
	}
	return &StubSource{Calendars: calendars, Events: events}
}

func (s *StubSource) ListCalendars(ctx context.Context) ([]CalendarItem, error) {
	if s.Block != nil {
		select {
		case <-s.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	return s.Calendars, nil
}

func (s *StubSource) ListEvents(_ context.Context, calendarId string, from time.Time, to time.Time) ([]RawEvent, error) {
	s.mu.Lock()
	s.calls = append(s.calls, ListEventsCall{CalendarId: calendarId, From: from, To: to})
	s.mu.Unlock()
	if s.EventsErr != nil {
		return nil, s.EventsErr
	}
	return s.Events[calendarId], nil
}

func (s *StubSource) Calls() []ListEventsCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ListEventsCall(nil), s.calls...)
}

// Factory returns a SourceFactory that always hands out s and records the tokens.
func (s *StubSource) Factory(tokens *[]string) SourceFactory {
	var mu sync.Mutex
	return func(_ context.Context, token string) (Source, error) {
		mu.Lock()
		defer mu.Unlock()
		if tokens != nil {
			*tokens = append(*tokens, token)
		}
		return s, nil
	}
}
