/* parse.go
 * Contains the permissive number and date parsers. Historical exports store numbers as strings, numbers, blanks and
 * placeholder text interchangeably; anything that cannot be read as a number is treated as zero
 */

package record

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// placeholders that some spreadsheets wrote into empty numeric cells
var numericPlaceholders = map[string]bool{
	"":     true,
	"-":    true,
	"--":   true,
	"n/a":  true,
	"na":   true,
	"#n/a": true,
	"null": true,
}

// ParseFloat parses a decoded JSON value as a float64.
// Preconditions: Receives any value produced by encoding/json (with or without UseNumber)
// Postconditions: Returns the parsed value and true, or 0 and false if the value is missing or not numeric
func ParseFloat(v any) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case nil:
		return 0, false
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(val)
		if numericPlaceholders[strings.ToLower(s)] {
			return 0, false
		}
		divisor := 1.0
		if strings.HasSuffix(s, "%") {
			s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
			divisor = 100
		}
		s = strings.ReplaceAll(s, ",", "")
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed / divisor
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseInt parses a decoded JSON value as an int, rounding fractional values to the nearest whole number
func ParseInt(v any) (int, bool) {
	f, ok := ParseFloat(v)
	if !ok {
		return 0, false
	}
	return int(math.Round(f)), true
}

// ParsePercent parses a win percentage. Values written as "75%" or as a bare number above 1 are scaled to a fraction
func ParsePercent(v any) (float64, bool) {
	f, ok := ParseFloat(v)
	if !ok {
		return 0, false
	}
	if s, isString := v.(string); isString && strings.HasSuffix(strings.TrimSpace(s), "%") {
		return f, true
	}
	if f > 1 && f <= 100 {
		f = f / 100
	}
	return f, true
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"January 2, 2006",
	"Jan 2, 2006",
}

// spreadsheet day zero, see the 1900 leap year bug
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseDate parses the date formats found across the export vintages: ISO dates, RFC3339 timestamps, US style
// M/D/YYYY dates, epoch milliseconds and spreadsheet serial day numbers.
// Preconditions: Receives any decoded JSON value
// Postconditions: Returns the calendar date at midnight UTC and true, or the zero time and false
func ParseDate(v any) (time.Time, bool) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return truncateDay(t), true
			}
		}
	}

	n, ok := ParseFloat(v)
	if !ok {
		return time.Time{}, false
	}
	switch {
	case n >= 1e11:
		return truncateDay(time.UnixMilli(int64(n))), true
	case n >= 20000 && n < 100000:
		return serialEpoch.AddDate(0, 0, int(n)), true
	default:
		return time.Time{}, false
	}
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	y, m, d := u.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
