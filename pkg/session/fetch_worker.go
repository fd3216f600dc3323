package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/klokku/calinvoice/internal/event_bus"
	"github.com/klokku/calinvoice/pkg/calendar"
	"github.com/klokku/calinvoice/pkg/daterange"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNoCalendars = errors.New("no calendars available for this account")
	ErrTimedOut    = errors.New("timed out fetching events")
)

// Dispatcher starts a background fetch for year/month and returns immediately.
// The outcome arrives later as an event_bus.Events or event_bus.FetchFailed message.
type Dispatcher interface {
	Dispatch(token string, year int, month daterange.Month)
}

// FetchWorker loads the events of the first calendar of an account for one month.
type FetchWorker struct {
	ctx     context.Context
	sources calendar.SourceFactory
	sender  event_bus.Sender
	timeout time.Duration
	offset  string
}

var _ Dispatcher = (*FetchWorker)(nil)

// NewFetchWorker creates a worker whose fetches are bounded by timeout and cancelled
// with ctx. Month ranges are resolved at the "+hh:mm" offset.
func NewFetchWorker(ctx context.Context, sources calendar.SourceFactory, sender event_bus.Sender, timeout time.Duration, offset string) *FetchWorker {
	if offset == "" {
		offset = daterange.DefaultOffset
	}
	return &FetchWorker{
		ctx:     ctx,
		sources: sources,
		sender:  sender,
		timeout: timeout,
		offset:  offset,
	}
}

func (w *FetchWorker) Dispatch(token string, year int, month daterange.Month) {
	go w.Fetch(w.ctx, token, year, month)
}

// Fetch runs one fetch on the calling goroutine and sends exactly one message.
func (w *FetchWorker) Fetch(ctx context.Context, token string, year int, month daterange.Month) {
	log.Infof("Getting events for %s %d", month, year)
	events, err := w.fetch(ctx, token, year, month)
	var msg event_bus.Message
	if err != nil {
		log.Errorf("fetching events for %s %d failed: %v", month, year, err)
		msg = event_bus.FetchFailed{Year: year, Month: month, Err: err}
	} else {
		log.Infof("Events received: %d", len(events))
		msg = event_bus.Events{Year: year, Month: month, Items: events}
	}
	if err := w.sender.Send(msg); err != nil {
		log.Warnf("unable to deliver %T: %v", msg, err)
	}
}

func (w *FetchWorker) fetch(ctx context.Context, token string, year int, month daterange.Month) ([]calendar.RawEvent, error) {
	dateRange, err := daterange.ResolveAt(year, month, w.offset)
	if err != nil {
		return nil, err
	}

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	events, err := w.fetchRange(ctx, token, dateRange.ThroughEndOfDay())
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w after %s: %v", ErrTimedOut, w.timeout, err)
	}
	return events, err
}

func (w *FetchWorker) fetchRange(ctx context.Context, token string, dateRange daterange.Range) ([]calendar.RawEvent, error) {
	source, err := w.sources(ctx, token)
	if err != nil {
		return nil, err
	}
	calendars, err := source.ListCalendars(ctx)
	if err != nil {
		return nil, err
	}
	if len(calendars) == 0 {
		return nil, ErrNoCalendars
	}
	// no calendar picker: the first one on the account's list is used
	selected := calendars[0]
	log.Debugf("Using calendar %q (%s) of %d", selected.Summary, selected.ID, len(calendars))

	return source.ListEvents(ctx, selected.ID, dateRange.Start, dateRange.End)
}
