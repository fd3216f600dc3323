package session

import (
	"errors"

	"github.com/klokku/calinvoice/internal/event_bus"
	"github.com/klokku/calinvoice/internal/utils"
	"github.com/klokku/calinvoice/pkg/daterange"
	"github.com/klokku/calinvoice/pkg/invoice"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated yet")
	ErrNoMonthSelected  = errors.New("no month selected")
	ErrFetchInFlight    = errors.New("a fetch is already in progress")
	ErrNothingLoaded    = errors.New("no events loaded")
)

// Inbox is the consumer side of the worker mailbox.
type Inbox interface {
	TryReceive() (event_bus.Message, bool)
}

// State is a snapshot of everything the presentation layer shows.
type State struct {
	OauthURL string
	Token    string
	AuthErr  error

	Year  int
	Month daterange.Month // zero until the user picks one

	WaitingForEvents bool
	LoadedEvents     bool
	FetchErr         error

	// Lines belong to LinesYear/LinesMonth, which may differ from the selection
	// when the user changed it after the fetch completed.
	Lines      []invoice.InvoiceLine
	LinesYear  int
	LinesMonth daterange.Month
}

func (s State) Authenticated() bool {
	return s.Token != ""
}

// Controller owns the session state. It is not safe for concurrent use: every method
// must be called from the single loop that drives Tick. Workers only reach it through
// the Inbox.
type Controller struct {
	inbox      Inbox
	dispatcher Dispatcher
	state      State
}

func NewController(inbox Inbox, dispatcher Dispatcher, clock utils.Clock) *Controller {
	return &Controller{
		inbox:      inbox,
		dispatcher: dispatcher,
		state: State{
			Year: clock.Now().Year(),
		},
	}
}

// Tick applies at most one pending message and reports whether it did.
// It never blocks.
func (c *Controller) Tick() bool {
	msg, ok := c.inbox.TryReceive()
	if !ok {
		return false
	}
	c.apply(msg)
	return true
}

// Drain applies every pending message.
func (c *Controller) Drain() int {
	n := 0
	for c.Tick() {
		n++
	}
	return n
}

func (c *Controller) apply(msg event_bus.Message) {
	switch msg := msg.(type) {
	case event_bus.OauthURL:
		c.state.OauthURL = msg.URL
	case event_bus.AuthToken:
		c.state.Token = msg.Token
		c.state.AuthErr = nil
	case event_bus.AuthFailed:
		c.state.AuthErr = msg.Err
	case event_bus.Events:
		c.state.Lines = invoice.ClassifyAll(msg.Items)
		c.state.LinesYear = msg.Year
		c.state.LinesMonth = msg.Month
		c.state.LoadedEvents = true
		c.state.WaitingForEvents = false
		c.state.FetchErr = nil
		log.Infof("Loaded %d invoice lines from %d events for %s %d", len(c.state.Lines), len(msg.Items), msg.Month, msg.Year)
	case event_bus.FetchFailed:
		c.state.WaitingForEvents = false
		c.state.FetchErr = msg.Err
	default:
		log.Warnf("ignoring unknown message %T", msg)
	}
}

func (c *Controller) SelectMonth(month daterange.Month) {
	if month == c.state.Month || !month.Valid() {
		return
	}
	c.state.Month = month
	c.selectionChanged()
}

func (c *Controller) SelectYear(year int) {
	if year == c.state.Year || year < 1 || year > 9999 {
		return
	}
	c.state.Year = year
	c.selectionChanged()
}

func (c *Controller) selectionChanged() {
	c.state.LoadedEvents = false
	c.state.FetchErr = nil
}

// CanFetch reports whether RequestFetch would launch a fetch.
func (c *Controller) CanFetch() bool {
	return c.checkFetch() == nil
}

func (c *Controller) checkFetch() error {
	switch {
	case c.state.Token == "":
		return ErrNotAuthenticated
	case !c.state.Month.Valid():
		return ErrNoMonthSelected
	case c.state.WaitingForEvents:
		return ErrFetchInFlight
	}
	return nil
}

// RequestFetch launches a fetch for the selected year and month. At most one fetch
// is in flight at any time.
func (c *Controller) RequestFetch() error {
	if err := c.checkFetch(); err != nil {
		return err
	}
	c.state.WaitingForEvents = true
	c.state.FetchErr = nil
	c.dispatcher.Dispatch(c.state.Token, c.state.Year, c.state.Month)
	return nil
}

// State returns a snapshot; the caller may keep it across ticks.
func (c *Controller) State() State {
	s := c.state
	s.Lines = append([]invoice.InvoiceLine(nil), c.state.Lines...)
	return s
}

// Invoice renders the loaded lines and returns the file name they belong under.
func (c *Controller) Invoice() (fileName string, content string, err error) {
	if !c.state.LoadedEvents {
		return "", "", ErrNothingLoaded
	}
	content, err = invoice.RenderCSV(c.state.Lines)
	if err != nil {
		return "", "", err
	}
	return invoice.FileName(c.state.LinesYear, c.state.LinesMonth), content, nil
}
