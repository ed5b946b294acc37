package types

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a decimal amount that serializes as a bare JSON number.
type Money struct {
	decimal.Decimal
}

// ZeroMoney is the additive identity.
var ZeroMoney = Money{Decimal: decimal.Zero}

// NewMoney wraps an existing decimal.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// ParseMoney parses a decimal string. Blank or non-numeric input yields zero.
func ParseMoney(raw string) Money {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return ZeroMoney
	}
	return Money{Decimal: d}
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Decimal: m.Decimal.Add(other.Decimal)}
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

// UnmarshalJSON accepts both quoted and bare numbers; anything unparsable becomes zero.
func (m *Money) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*m = ZeroMoney
		return nil
	}
	if trimmed[0] == '"' {
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		*m = ParseMoney(raw)
		return nil
	}
	*m = ParseMoney(string(trimmed))
	return nil
}
