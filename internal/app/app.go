package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klokku/calinvoice/internal/config"
	"github.com/klokku/calinvoice/pkg/calendar"
	"github.com/klokku/calinvoice/pkg/daterange"
	"github.com/klokku/calinvoice/pkg/session"
	log "github.com/sirupsen/logrus"
)

const tickInterval = 100 * time.Millisecond

// Application owns one interactive session: the auth worker, the fetch worker and the
// controller they report to.
type Application struct {
	cfg    config.Application
	deps   *Dependencies
	ctx    context.Context
	cancel context.CancelFunc
}

func NewApplication(cfg config.Application, sources calendar.SourceFactory) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Application{
		cfg:    cfg,
		deps:   BuildDependencies(ctx, cfg, sources),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Start launches the auth worker in the background.
func (a *Application) Start() {
	go a.deps.GoogleAuth.Run(a.ctx, a.deps.Mailbox)
}

func (a *Application) Controller() *session.Controller {
	return a.deps.Controller
}

// Ready fires when a worker has sent a message.
func (a *Application) Ready() <-chan struct{} {
	return a.deps.Mailbox.Ready()
}

// Close cancels outstanding work and stops accepting worker messages.
func (a *Application) Close() {
	a.cancel()
	a.deps.Mailbox.Close()
}

// Export writes the loaded invoice to the export directory and returns its path.
func (a *Application) Export() (string, error) {
	name, content, err := a.deps.Controller.Invoice()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(a.cfg.Export.Dir, 0o755); err != nil {
		return "", fmt.Errorf("unable to create export directory: %w", err)
	}
	path := filepath.Join(a.cfg.Export.Dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("unable to write invoice: %w", err)
	}
	log.Infof("Invoice written to %s", path)
	return path, nil
}

// RunHeadless drives the controller without a UI: it prints the authorization URL to
// out, fetches year/month once the token arrives and writes the invoice.
func (a *Application) RunHeadless(ctx context.Context, out io.Writer, year int, month daterange.Month) (string, error) {
	controller := a.deps.Controller
	controller.SelectYear(year)
	controller.SelectMonth(month)
	a.Start()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	printedURL := false
	requested := false
	for {
		controller.Drain()
		state := controller.State()

		switch {
		case state.AuthErr != nil:
			return "", fmt.Errorf("authorization failed: %w", state.AuthErr)
		case state.FetchErr != nil:
			return "", fmt.Errorf("fetching events failed: %w", state.FetchErr)
		case state.LoadedEvents:
			return a.Export()
		}

		if state.OauthURL != "" && !printedURL {
			fmt.Fprintf(out, "Open this URL to log in:\n%s\n", state.OauthURL)
			printedURL = true
		}
		if state.Authenticated() && !requested {
			if err := controller.RequestFetch(); err != nil && !errors.Is(err, session.ErrFetchInFlight) {
				return "", err
			}
			fmt.Fprintf(out, "Loading events for %s %d...\n", month, year)
			requested = true
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-a.Ready():
		case <-ticker.C:
		}
	}
}
