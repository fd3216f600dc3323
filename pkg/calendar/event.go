package calendar

// RawEvent is a calendar entry as returned by the remote service. Every field is
// optional and an empty string means the service did not send it.
type RawEvent struct {
	UID         string
	Summary     string
	Description string
	Start       EventTime
	End         EventTime
	ColorId     string
}

// EventTime holds either an RFC3339 DateTime for timed events or a YYYY-MM-DD Date
// for all-day events.
type EventTime struct {
	DateTime string
	Date     string
}
