package invoice

import (
	"strconv"
	"strings"
	"time"

	"github.com/klokku/calinvoice/pkg/calendar"
	log "github.com/sirupsen/logrus"
)

// DefaultRate applies to color tags missing from the rate table.
const DefaultRate = 50.0

const summaryDelimiter = "-"

// hourly rate by calendar color tag
var rates = map[string]float64{
	"1": 50.0,
	"2": 40.0,
	"3": 36.0,
}

type InvoiceLine struct {
	Client      string
	SubClient   string
	Description string
	// Date is YYYY-MM-DD, taken from the event start in the event's own offset.
	Date  string
	Hours float64
	Rate  float64
	Total float64
}

// RateFor maps a color tag to its hourly rate.
func RateFor(colorId string) float64 {
	if rate, ok := rates[colorId]; ok {
		return rate
	}
	return DefaultRate
}

// Classify turns a calendar event into a billing line. Events without a color tag
// are not billable and yield false. Malformed fields never fail: they produce
// zero hours or empty strings instead.
func Classify(event calendar.RawEvent) (InvoiceLine, bool) {
	if event.ColorId == "" {
		return InvoiceLine{}, false
	}

	client, subClient := splitSummary(event.Summary)
	hours := durationHours(event.Start.DateTime, event.End.DateTime)
	rate := RateFor(event.ColorId)

	return InvoiceLine{
		Client:      client,
		SubClient:   subClient,
		Description: event.Description,
		Date:        eventDate(event.Start),
		Hours:       hours,
		Rate:        rate,
		Total:       hours * rate,
	}, true
}

// ClassifyAll applies Classify to every event and keeps the billable ones in order.
func ClassifyAll(events []calendar.RawEvent) []InvoiceLine {
	lines := make([]InvoiceLine, 0, len(events))
	for _, event := range events {
		line, ok := Classify(event)
		if !ok {
			log.Tracef("skipping event without color tag: %q", event.Summary)
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func splitSummary(summary string) (string, string) {
	parts := strings.Split(summary, summaryDelimiter)
	client := parts[0]
	subClient := ""
	if len(parts) > 1 {
		subClient = parts[1]
	}
	return client, subClient
}

func durationHours(start, end string) float64 {
	startTime, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return 0
	}
	endTime, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return 0
	}
	minutes := int64(endTime.Sub(startTime) / time.Minute)
	return float64(minutes) / 60
}

func eventDate(start calendar.EventTime) string {
	if t, err := time.Parse(time.RFC3339, start.DateTime); err == nil {
		return t.Format(time.DateOnly)
	}
	if t, err := time.Parse(time.DateOnly, start.Date); err == nil {
		return t.Format(time.DateOnly)
	}
	return ""
}

// FormatDecimal renders v with as few digits as needed: 8 -> "8", 7.5 -> "7.5".
func FormatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Record returns the line in export column order.
func (l InvoiceLine) Record() []string {
	return []string{
		l.Date,
		l.Client,
		l.SubClient,
		FormatDecimal(l.Hours),
		l.Description,
		FormatDecimal(l.Rate),
		FormatDecimal(l.Total),
	}
}
