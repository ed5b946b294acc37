package analytics

import (
	"math"

	"github.com/angelmondragon/refundlens/internal/orders"
	"github.com/angelmondragon/refundlens/pkg/enums"
	"github.com/angelmondragon/refundlens/pkg/types"
	"github.com/shopspring/decimal"
)

// Snapshot holds the refund statistics of one window.
type Snapshot struct {
	TotalOrders       int         `json:"totalOrders"`
	TotalRefunds      int         `json:"totalRefunds"`
	AvgDaysToRefund   float64     `json:"avgDaysToRefund"`
	TotalRefundAmount types.Money `json:"totalRefundAmount"`
	RefundRate        float64     `json:"refundRate"`
	AvgRefundAmount   types.Money `json:"avgRefundAmount"`
}

const moneyPlaces = 2

// Aggregate computes the snapshot for window. Orders are counted by order date;
// refunds are the fully refunded orders whose refund date is in the window.
// Partial refunds never count. The result depends only on the inputs.
func Aggregate(list []orders.EnrichedOrder, window Window) Snapshot {
	var (
		totalOrders  int
		totalRefunds int
		measured     int
		daysSum      uint64
		amount       = decimal.Zero
	)
	for i := range list {
		o := &list[i]
		if o.OrderDate != nil && window.Contains(o.OrderDate.Time) {
			totalOrders++
		}
		if !isRefundInWindow(o, window) {
			continue
		}
		totalRefunds++
		amount = amount.Add(o.RefundAmount.Decimal)
		if days, ok := o.DaysToRefund.Days(); ok {
			daysSum += uint64(days)
			measured++
		}
	}

	snap := Snapshot{
		TotalOrders:       totalOrders,
		TotalRefunds:      totalRefunds,
		TotalRefundAmount: types.NewMoney(amount),
		AvgRefundAmount:   types.ZeroMoney,
	}
	if measured > 0 {
		snap.AvgDaysToRefund = roundTo(float64(daysSum)/float64(measured), 1)
	}
	if totalRefunds > 0 {
		snap.AvgRefundAmount = types.NewMoney(amount.DivRound(decimal.NewFromInt(int64(totalRefunds)), moneyPlaces))
	}
	if totalOrders > 0 {
		snap.RefundRate = float64(totalRefunds) / float64(totalOrders) * 100
	}
	return snap
}

func isRefundInWindow(o *orders.EnrichedOrder, window Window) bool {
	return o.RefundStatus == enums.RefundStatusRefunded &&
		o.RefundDate != nil &&
		window.Contains(o.RefundDate.Time)
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
