package session

import (
	"sync"

	"github.com/klokku/calinvoice/pkg/daterange"
)

type DispatchCall struct {
	Token string
	Year  int
	Month daterange.Month
}

// StubDispatcher records fetch requests without running them.
type StubDispatcher struct {
	mu    sync.Mutex
	calls []DispatchCall
}

func (d *StubDispatcher) Dispatch(token string, year int, month daterange.Month) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, DispatchCall{Token: token, Year: year, Month: month})
}

func (d *StubDispatcher) Calls() []DispatchCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]DispatchCall(nil), d.calls...)
}
