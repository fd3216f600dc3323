package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/klokku/calinvoice/pkg/calendar"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

var ErrUnauthenticated = errors.New("no access token, authentication is required")

// CalendarSource reads calendars and events through the Google Calendar API.
type CalendarSource struct {
	service *gcal.Service
}

var _ calendar.Source = (*CalendarSource)(nil)

// NewSourceFactory returns a factory that authorises every request with the bearer
// token it is given. opts are appended to the client options, e.g. an endpoint override.
func NewSourceFactory(opts ...option.ClientOption) calendar.SourceFactory {
	return func(ctx context.Context, token string) (calendar.Source, error) {
		return NewCalendarSource(ctx, token, opts...)
	}
}

func NewCalendarSource(ctx context.Context, token string, opts ...option.ClientOption) (*CalendarSource, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
	clientOpts := append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	service, err := gcal.NewService(ctx, clientOpts...)
	if err != nil {
		err := fmt.Errorf("unable to create Calendar client: %w", err)
		log.Error(err)
		return nil, err
	}
	return &CalendarSource{service: service}, nil
}

// ListCalendars returns every calendar on the user's calendar list in API order.
func (c *CalendarSource) ListCalendars(ctx context.Context) ([]calendar.CalendarItem, error) {
	var calendars []calendar.CalendarItem
	err := c.service.CalendarList.List().Context(ctx).Pages(ctx, func(page *gcal.CalendarList) error {
		for _, item := range page.Items {
			calendars = append(calendars, calendar.CalendarItem{
				ID:      item.Id,
				Summary: item.Summary,
			})
		}
		return nil
	})
	if err != nil {
		err := fmt.Errorf("unable to retrieve calendars from Google Calendar: %w", err)
		log.Error(err)
		return nil, err
	}
	log.Debugf("Received %d calendars", len(calendars))
	return calendars, nil
}

// ListEvents returns the events of calendarId overlapping [from, to), recurring
// events expanded into single instances.
func (c *CalendarSource) ListEvents(ctx context.Context, calendarId string, from time.Time, to time.Time) ([]calendar.RawEvent, error) {
	var events []calendar.RawEvent
	err := c.service.Events.List(calendarId).
		Context(ctx).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Pages(ctx, func(page *gcal.Events) error {
			events = append(events, googleEventsToEvents(page.Items)...)
			return nil
		})
	if err != nil {
		err := fmt.Errorf("unable to retrieve events from Google Calendar: %w", err)
		log.Error(err)
		return nil, err
	}
	log.Debugf("Received %d events from calendar %s", len(events), calendarId)
	return events, nil
}

func googleEventsToEvents(googleEvents []*gcal.Event) []calendar.RawEvent {
	events := make([]calendar.RawEvent, 0, len(googleEvents))
	for _, item := range googleEvents {
		if item == nil {
			continue
		}
		events = append(events, calendar.RawEvent{
			UID:         item.Id,
			Summary:     item.Summary,
			Description: item.Description,
			Start:       eventTime(item.Start),
			End:         eventTime(item.End),
			ColorId:     item.ColorId,
		})
	}
	return events
}

func eventTime(t *gcal.EventDateTime) calendar.EventTime {
	if t == nil {
		return calendar.EventTime{}
	}
	return calendar.EventTime{DateTime: t.DateTime, Date: t.Date}
}
