package invoice

import (
	"testing"

	"github.com/klokku/calinvoice/pkg/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timedEvent(summary, colorId, start, end string) calendar.RawEvent {
	return calendar.RawEvent{
		Summary:     summary,
		Description: "Weekly sync",
		Start:       calendar.EventTime{DateTime: start},
		End:         calendar.EventTime{DateTime: end},
		ColorId:     colorId,
	}
}

func TestClassify_FullDay(t *testing.T) {
	event := timedEvent("Acme-ProjectX", "1", "2024-03-01T09:00:00-05:00", "2024-03-01T17:00:00-05:00")

	line, ok := Classify(event)

	require.True(t, ok)
	assert.Equal(t, "Acme", line.Client)
	assert.Equal(t, "ProjectX", line.SubClient)
	assert.Equal(t, "Weekly sync", line.Description)
	assert.Equal(t, "2024-03-01", line.Date)
	assert.Equal(t, []string{"2024-03-01", "Acme", "ProjectX", "8", "Weekly sync", "50", "400"}, line.Record())
}

func TestClassify_IsDeterministic(t *testing.T) {
	event := timedEvent("Acme-ProjectX", "2", "2024-03-01T09:00:00-05:00", "2024-03-01T10:30:00-05:00")

	first, ok1 := Classify(event)
	second, ok2 := Classify(event)

	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first, second)
	assert.Equal(t, 1.5, first.Hours)
	assert.Equal(t, 60.0, first.Total)
}

func TestClassify_WithoutColorIsDropped(t *testing.T) {
	events := []calendar.RawEvent{
		timedEvent("Acme-ProjectX", "", "2024-03-01T09:00:00-05:00", "2024-03-01T17:00:00-05:00"),
		{},
		{Summary: "Lunch", Description: "with Bob"},
	}
	for _, event := range events {
		_, ok := Classify(event)
		assert.False(t, ok, "%+v", event)
	}
}

func TestClassify_Rates(t *testing.T) {
	tests := []struct {
		colorId string
		want    float64
	}{
		{"1", 50},
		{"2", 40},
		{"3", 36},
		{"4", 50},
		{"11", 50},
		{"banana", 50},
	}
	for _, tt := range tests {
		t.Run(tt.colorId, func(t *testing.T) {
			line, ok := Classify(timedEvent("Acme", tt.colorId, "2024-03-01T09:00:00Z", "2024-03-01T10:00:00Z"))
			require.True(t, ok)
			assert.Equal(t, tt.want, line.Rate)
			assert.Equal(t, tt.want, line.Total)
		})
	}
	assert.Equal(t, DefaultRate, RateFor(""))
}

func TestClassify_MalformedTimestamps(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
	}{
		{"bad start", "yesterday", "2024-03-01T17:00:00-05:00"},
		{"bad end", "2024-03-01T09:00:00-05:00", "2024-03-01 17:00"},
		{"both missing", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, ok := Classify(timedEvent("Acme", "3", tt.start, tt.end))
			require.True(t, ok)
			assert.Equal(t, "0", FormatDecimal(line.Hours))
			assert.Equal(t, "0", FormatDecimal(line.Total))
			assert.Equal(t, 36.0, line.Rate)
		})
	}
}

func TestClassify_SummaryParsing(t *testing.T) {
	tests := []struct {
		summary       string
		wantClient    string
		wantSubClient string
	}{
		{"Acme", "Acme", ""},
		{"", "", ""},
		{"Acme-", "Acme", ""},
		{"-ProjectX", "", "ProjectX"},
		{"Acme - ProjectX", "Acme ", " ProjectX"},
		{"Acme-ProjectX-Phase2", "Acme", "ProjectX"},
	}
	for _, tt := range tests {
		t.Run(tt.summary, func(t *testing.T) {
			line, ok := Classify(timedEvent(tt.summary, "1", "", ""))
			require.True(t, ok)
			assert.Equal(t, tt.wantClient, line.Client)
			assert.Equal(t, tt.wantSubClient, line.SubClient)
		})
	}
}

func TestClassify_Date(t *testing.T) {
	line, _ := Classify(timedEvent("Acme", "1", "2024-03-31T23:30:00-05:00", "2024-04-01T00:30:00-05:00"))
	assert.Equal(t, "2024-03-31", line.Date)
	assert.Equal(t, 1.0, line.Hours)

	allDay := calendar.RawEvent{
		Summary: "Acme",
		ColorId: "1",
		Start:   calendar.EventTime{Date: "2024-03-05"},
		End:     calendar.EventTime{Date: "2024-03-06"},
	}
	line, _ = Classify(allDay)
	assert.Equal(t, "2024-03-05", line.Date)
	assert.Equal(t, 0.0, line.Hours)
}

func TestClassifyAll(t *testing.T) {
	events := []calendar.RawEvent{
		timedEvent("Acme-X", "1", "2024-03-01T09:00:00Z", "2024-03-01T11:00:00Z"),
		timedEvent("Personal", "", "2024-03-01T12:00:00Z", "2024-03-01T13:00:00Z"),
		timedEvent("Globex-Y", "2", "2024-03-02T09:00:00Z", "2024-03-02T09:45:00Z"),
	}

	lines := ClassifyAll(events)

	require.Len(t, lines, 2)
	assert.Equal(t, "Acme", lines[0].Client)
	assert.Equal(t, "Globex", lines[1].Client)
	assert.Equal(t, 0.75, lines[1].Hours)
	assert.Equal(t, 30.0, lines[1].Total)
	assert.Empty(t, ClassifyAll(nil))
}
