package service

import (
	"bytes"
	"fmt"
	"time"
)

// TimeLayout is how the server writes timestamps: UTC without a zone offset.
const TimeLayout = "2006-01-02T15:04:05.999999"

// Accepted layouts, most specific first. A fractional second is optional in
// each; a missing offset means UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// Time is a timestamp exchanged with the server. It decodes both RFC 3339
// and zone-less ISO 8601 values and encodes as naive UTC.
type Time struct {
	time.Time
}

// At wraps t, converted to UTC.
func At(t time.Time) Time {
	return Time{Time: t.UTC()}
}

// TimeRef is At returning a pointer, for optional fields.
func TimeRef(t time.Time) *Time {
	v := At(t)
	return &v
}

// ParseTime parses a server timestamp.
func ParseTime(s string) (Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return At(t), nil
		}
	}
	return Time{}, fmt.Errorf("invalid timestamp: %q", s)
}

// MarshalJSON implements json.Marshaler.
func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(TimeLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler. null leaves t unchanged.
func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid timestamp: %s", data)
	}
	parsed, err := ParseTime(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
