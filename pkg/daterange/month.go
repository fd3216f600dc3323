package daterange

import (
	"fmt"
	"strings"
	"time"
)

// Month is one of the twelve calendar months, January == 1.
type Month int

const (
	January Month = iota + 1
	February
	March
	April
	May
	June
	July
	August
	September
	October
	November
	December
)

var Months = []Month{
	January, February, March, April, May, June,
	July, August, September, October, November, December,
}

func (m Month) Valid() bool {
	return m >= January && m <= December
}

func (m Month) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Month(%d)", int(m))
	}
	return time.Month(m).String()
}

// TwoDigit returns the zero padded month number, "01" to "12".
func (m Month) TwoDigit() string {
	return fmt.Sprintf("%02d", int(m))
}

// EndDay returns the last day of the month in the given year. Day zero of the
// following month normalises to the last day of this one, so leap years and the
// December rollover need no special casing.
func (m Month) EndDay(year int) int {
	return time.Date(year, time.Month(m)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Next and Prev wrap around the year.
func (m Month) Next() Month {
	if m >= December || !m.Valid() {
		return January
	}
	return m + 1
}

func (m Month) Prev() Month {
	if m <= January || !m.Valid() {
		return December
	}
	return m - 1
}

// ParseMonth accepts an English month name (full or three letter) or a number 1-12.
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	for _, m := range Months {
		name := strings.ToLower(m.String())
		if s == name || s == name[:3] || s == m.TwoDigit() || s == fmt.Sprint(int(m)) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("invalid month: %q", s)
}
