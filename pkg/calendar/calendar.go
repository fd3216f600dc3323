package calendar

import (
	"context"
	"time"
)

type CalendarItem struct {
	ID      string
	Summary string
}

// Source is a read-only view of the calendars a single credential can access.
type Source interface {
	ListCalendars(ctx context.Context) ([]CalendarItem, error)
	ListEvents(ctx context.Context, calendarId string, from time.Time, to time.Time) ([]RawEvent, error)
}

// SourceFactory builds a Source authorised with the given bearer token.
type SourceFactory func(ctx context.Context, token string) (Source, error)
