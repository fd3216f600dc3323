package daterange

import (
	"errors"
	"fmt"
	"time"
)

var ErrDateParse = errors.New("unable to parse date")

// DefaultOffset is the UTC offset every range is expressed in.
const DefaultOffset = "-05:00"

// Range spans one calendar month. Both ends sit at midnight: End is the start of the
// last day of the month, not its end, so callers that need the whole last day must
// extend it themselves (see ThroughEndOfDay).
type Range struct {
	Start time.Time
	End   time.Time
}

// Resolve returns the range for year/month at DefaultOffset.
func Resolve(year int, month Month) (Range, error) {
	return ResolveAt(year, month, DefaultOffset)
}

// ResolveAt returns the range for year/month at the given "+hh:mm" offset.
func ResolveAt(year int, month Month, offset string) (Range, error) {
	if !month.Valid() {
		return Range{}, fmt.Errorf("%w: %v", ErrDateParse, month)
	}
	start, err := parse(year, month, 1, offset)
	if err != nil {
		return Range{}, err
	}
	end, err := parse(year, month, month.EndDay(year), offset)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: start, End: end}, nil
}

func parse(year int, month Month, day int, offset string) (time.Time, error) {
	value := fmt.Sprintf("%04d-%s-%02dT00:00:00%s", year, month.TwoDigit(), day, offset)
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", ErrDateParse, value, err)
	}
	return t, nil
}

// ThroughEndOfDay moves End to the first instant of the following month, which makes
// the range cover every event on the last day.
func (r Range) ThroughEndOfDay() Range {
	return Range{Start: r.Start, End: r.End.AddDate(0, 0, 1)}
}
