package orders

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Timestamp is an upstream date. It keeps the original text, which is what gets
// serialized back to clients, next to the parsed instant used for arithmetic.
type Timestamp struct {
	time.Time
	raw string
}

// ParseTimestamp returns nil for blank or unparsable input.
func ParseTimestamp(raw string) *Timestamp {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return &Timestamp{Time: t, raw: trimmed}
		}
	}
	return nil
}

func (t Timestamp) String() string {
	if t.raw == "" {
		return t.Time.Format(time.RFC3339)
	}
	return t.raw
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed := ParseTimestamp(raw)
	if parsed == nil {
		return fmt.Errorf("invalid timestamp %q", raw)
	}
	*t = *parsed
	return nil
}
