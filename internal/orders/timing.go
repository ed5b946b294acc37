package orders

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// BeforeDeliverySentinel is the wire value for a refund that did not come after delivery.
const BeforeDeliverySentinel = "before_delivery"

type TimingKind uint8

const (
	// TimingUnknown means delivery or refund date is missing.
	TimingUnknown TimingKind = iota
	// TimingBeforeDelivery means the refund landed on or before the delivery day.
	TimingBeforeDelivery
	// TimingMeasured carries a positive whole number of days.
	TimingMeasured
)

// RefundTiming is the days-to-refund value of an order. The zero value is unknown.
type RefundTiming struct {
	kind TimingKind
	days uint
}

func Measured(days uint) RefundTiming {
	return RefundTiming{kind: TimingMeasured, days: days}
}

func BeforeDelivery() RefundTiming {
	return RefundTiming{kind: TimingBeforeDelivery}
}

func (r RefundTiming) Kind() TimingKind {
	return r.kind
}

// Days returns the measured day count; ok is false for the other kinds.
func (r RefundTiming) Days() (uint, bool) {
	if r.kind != TimingMeasured {
		return 0, false
	}
	return r.days, true
}

func (r RefundTiming) String() string {
	switch r.kind {
	case TimingMeasured:
		return strconv.FormatUint(uint64(r.days), 10)
	case TimingBeforeDelivery:
		return BeforeDeliverySentinel
	default:
		return ""
	}
}

// MarshalJSON renders a number, the sentinel string or null.
func (r RefundTiming) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case TimingMeasured:
		return []byte(strconv.FormatUint(uint64(r.days), 10)), nil
	case TimingBeforeDelivery:
		return json.Marshal(BeforeDeliverySentinel)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *RefundTiming) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*r = RefundTiming{}
		return nil
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		if s != BeforeDeliverySentinel {
			return fmt.Errorf("invalid days to refund %q", s)
		}
		*r = BeforeDelivery()
		return nil
	default:
		days, err := strconv.ParseUint(string(trimmed), 10, 32)
		if err != nil {
			return fmt.Errorf("invalid days to refund %s: %w", trimmed, err)
		}
		*r = Measured(uint(days))
		return nil
	}
}
