/* record.go
 * Contains the Record type used to carry raw rows from the historical exports, and the helpers used to look up a field
 * through a prioritised list of candidate keys. Every export vintage named its columns differently, so all field access
 * in the normalizer and fixer goes through these helpers
 */

package record

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is one raw row decoded from a JSON export
type Record map[string]any

// Has reports whether key is present in the record, even if its value is null
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// IsNull reports whether key is present with a null value
func (r Record) IsNull(key string) bool {
	return r.Has(key) && r[key] == nil
}

// Lookup returns the value of the first candidate key that holds a non-empty value.
// Preconditions: Receives the candidate keys in priority order
// Postconditions: Returns the value, the key it was found under, and true; or nil, "" and false if no candidate matched
func (r Record) Lookup(keys ...string) (any, string, bool) {
	for _, key := range keys {
		v, ok := r[key]
		if !ok || isEmpty(v) {
			continue
		}
		return v, key, true
	}
	return nil, "", false
}

// String returns the trimmed string form of the first non-empty candidate, or "" if none matched
func (r Record) String(keys ...string) string {
	v, _, ok := r.Lookup(keys...)
	if !ok {
		return ""
	}
	return ToString(v)
}

// Int returns the first non-empty candidate parsed permissively as an int. Unparseable values become 0
func (r Record) Int(keys ...string) int {
	n, _ := r.IntOK(keys...)
	return n
}

// IntOK is Int but also reports whether a candidate was present and parsed
func (r Record) IntOK(keys ...string) (int, bool) {
	v, _, ok := r.Lookup(keys...)
	if !ok {
		return 0, false
	}
	return ParseInt(v)
}

// Float returns the first non-empty candidate parsed permissively as a float64. Unparseable values become 0
func (r Record) Float(keys ...string) float64 {
	f, _ := r.FloatOK(keys...)
	return f
}

// FloatOK is Float but also reports whether a candidate was present and parsed
func (r Record) FloatOK(keys ...string) (float64, bool) {
	v, _, ok := r.Lookup(keys...)
	if !ok {
		return 0, false
	}
	return ParseFloat(v)
}

// PercentOK returns the first non-empty candidate as a fraction in the 0-1 range where the source wrote a percentage
func (r Record) PercentOK(keys ...string) (float64, bool) {
	v, _, ok := r.Lookup(keys...)
	if !ok {
		return 0, false
	}
	return ParsePercent(v)
}

// Clone returns a shallow copy of the record
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ToString converts a decoded JSON value into its trimmed string form
func ToString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	default:
		return false
	}
}
