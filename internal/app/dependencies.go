package app

import (
	"context"

	"github.com/klokku/calinvoice/internal/config"
	"github.com/klokku/calinvoice/internal/event_bus"
	"github.com/klokku/calinvoice/internal/utils"
	"github.com/klokku/calinvoice/pkg/calendar"
	"github.com/klokku/calinvoice/pkg/google"
	"github.com/klokku/calinvoice/pkg/session"
)

// Dependencies holds the workers and the controller of one session.
type Dependencies struct {
	Mailbox *event_bus.Mailbox
	Clock   utils.Clock

	GoogleAuth     *google.GoogleAuth
	CalendarSource calendar.SourceFactory

	FetchWorker *session.FetchWorker
	Controller  *session.Controller
}

// BuildDependencies wires a session. sources may be nil, in which case the Google
// Calendar API is used.
func BuildDependencies(ctx context.Context, cfg config.Application, sources calendar.SourceFactory) *Dependencies {
	deps := &Dependencies{}

	deps.Mailbox = event_bus.NewMailbox()
	deps.Clock = utils.SystemClock{}

	deps.GoogleAuth = google.NewGoogleAuth(cfg)
	deps.CalendarSource = sources
	if deps.CalendarSource == nil {
		deps.CalendarSource = google.NewSourceFactory()
	}

	deps.FetchWorker = session.NewFetchWorker(ctx, deps.CalendarSource, deps.Mailbox, cfg.Fetch.Timeout, cfg.Timezone.Offset)
	deps.Controller = session.NewController(deps.Mailbox, deps.FetchWorker, deps.Clock)

	return deps
}
