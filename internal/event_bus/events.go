package event_bus

import (
	"github.com/klokku/calinvoice/pkg/calendar"
	"github.com/klokku/calinvoice/pkg/daterange"
)

// Message is the closed set of notifications workers send to the session controller.
// Only the types in this file implement it.
type Message interface {
	message()
}

// OauthURL carries the authorization URL the user has to open.
type OauthURL struct {
	URL string
}

// AuthToken carries the bearer credential obtained from the redirect.
type AuthToken struct {
	Token string
}

// AuthFailed reports that no token will arrive: the listener could not bind, the
// exchange failed or the wait timed out.
type AuthFailed struct {
	Err error
}

// Events is one fetched batch for Year/Month.
type Events struct {
	Year  int
	Month daterange.Month
	Items []calendar.RawEvent
}

// FetchFailed reports that the fetch for Year/Month will not produce a batch.
type FetchFailed struct {
	Year  int
	Month daterange.Month
	Err   error
}

func (OauthURL) message()    {}
func (AuthToken) message()   {}
func (AuthFailed) message()  {}
func (Events) message()      {}
func (FetchFailed) message() {}
