package inter

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// timestampLayouts are tried in order. The node writes naive UTC datetimes,
// sometimes with a space separator.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp is a point in time reported by the node. Values that cannot be
// parsed are kept verbatim so they can still be displayed.
type Timestamp struct {
	time.Time
	raw string
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

// ParseTimestamp parses a node timestamp. It never fails: unparseable input
// yields a zero time with the raw text preserved.
func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t.UTC()}
		}
	}
	return Timestamp{raw: s}
}

// Raw returns the original text of an unparseable timestamp.
func (ts Timestamp) Raw() string {
	return ts.raw
}

func (ts Timestamp) String() string {
	if ts.Time.IsZero() {
		return ts.raw
	}
	return ts.Time.Format(time.RFC3339Nano)
}

// MarshalJSON writes RFC 3339 when parsed, otherwise the raw text.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.Time.IsZero() && ts.raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(ts.String())
}

// UnmarshalJSON accepts a datetime string, unix seconds or null.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*ts = Timestamp{}
		return nil
	}
	if strings.HasPrefix(trimmed, "\"") {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*ts = ParseTimestamp(s)
		return nil
	}
	secs, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		*ts = Timestamp{raw: trimmed}
		return nil
	}
	whole := int64(secs)
	nanos := int64((secs - float64(whole)) * float64(time.Second))
	*ts = Timestamp{Time: time.Unix(whole, nanos).UTC()}
	return nil
}

// CompareTimestamps orders a before b. Unparsed timestamps sort first.
func CompareTimestamps(a, b Timestamp) int {
	switch {
	case a.Time.Before(b.Time):
		return -1
	case a.Time.After(b.Time):
		return 1
	default:
		return 0
	}
}
