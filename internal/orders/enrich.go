package orders

import (
	"math"
	"strings"

	"github.com/angelmondragon/refundlens/pkg/enums"
	"github.com/angelmondragon/refundlens/pkg/types"
)

// Delivery timing is read from a single fulfillment and a single refund. Split
// shipments and follow-up refunds never move either date; the refund amount, in
// contrast, always sums every refund.
const (
	UseFirstFulfillmentOnly = true
	UseFirstRefundDateOnly  = true
)

const (
	placeholderNA = "N/A"
	msPerDay      = 86400000
)

// EnrichAll maps every raw order through Enrich, preserving order.
func EnrichAll(raw []RawOrder) []EnrichedOrder {
	out := make([]EnrichedOrder, 0, len(raw))
	for i := range raw {
		out = append(out, Enrich(raw[i]))
	}
	return out
}

// Enrich derives the dashboard record for one order. It never fails: missing or
// malformed fields fall back to N/A, null or zero.
func Enrich(raw RawOrder) EnrichedOrder {
	fulfillment := deliveryFulfillment(raw.Fulfillments)
	deliveryDate := deliveryDateOf(fulfillment)
	refundDate := refundDateOf(raw.Refunds)

	enriched := EnrichedOrder{
		ID:                raw.ID,
		OrderNumber:       raw.OrderNumber,
		OrderDate:         ParseTimestamp(raw.CreatedAt),
		ShippingName:      shippingName(raw.ShippingAddress),
		FulfillmentStatus: fulfillmentStatus(raw.FulfillmentStatus),
		RefundStatus:      enums.RefundStatusFor(raw.FinancialStatus),
		DeliveryDate:      deliveryDate,
		RefundDate:        refundDate,
		DaysToRefund:      refundTiming(deliveryDate, refundDate),
		TotalPrice:        types.ParseMoney(raw.TotalPrice),
		RefundAmount:      refundAmount(raw.Refunds),
		Products:          products(raw.LineItems),
	}
	if fulfillment != nil {
		enriched.TrackingNumber = nonBlank(fulfillment.TrackingNumber)
		enriched.TrackingURL = nonBlank(fulfillment.TrackingURL)
		if fulfillment.ShipmentStatus != nil {
			enriched.TransitStatus = nonBlank((*string)(fulfillment.ShipmentStatus))
		}
	}
	return enriched
}

// deliveryFulfillment applies UseFirstFulfillmentOnly.
func deliveryFulfillment(list []Fulfillment) *Fulfillment {
	if len(list) == 0 {
		return nil
	}
	return &list[0]
}

// deliveryDateOf prefers the carrier's delivered timestamp and falls back to the
// fulfillment's creation when it merely succeeded.
func deliveryDateOf(f *Fulfillment) *Timestamp {
	if f == nil {
		return nil
	}
	if f.ShipmentStatus != nil && *f.ShipmentStatus == enums.ShipmentStatusDelivered {
		return ParseTimestamp(f.UpdatedAt)
	}
	if f.Status == enums.FulfillmentStatusSuccess {
		return ParseTimestamp(f.CreatedAt)
	}
	return nil
}

// refundDateOf applies UseFirstRefundDateOnly.
func refundDateOf(refunds []Refund) *Timestamp {
	if len(refunds) == 0 {
		return nil
	}
	return ParseTimestamp(refunds[0].CreatedAt)
}

// refundTiming rounds the gap to whole days. Only a strictly positive count is
// measured; a same-day or earlier refund is reported as before delivery.
func refundTiming(delivery, refund *Timestamp) RefundTiming {
	if delivery == nil || refund == nil {
		return RefundTiming{}
	}
	deltaMs := float64(refund.Sub(delivery.Time).Milliseconds())
	days := math.Floor(deltaMs/msPerDay + 0.5)
	if days > 0 {
		return Measured(uint(days))
	}
	return BeforeDelivery()
}

func refundAmount(refunds []Refund) types.Money {
	total := types.ZeroMoney
	for _, r := range refunds {
		for _, tx := range r.Transactions {
			total = total.Add(types.ParseMoney(tx.Amount))
		}
	}
	return total
}

func products(items []LineItem) []Product {
	out := make([]Product, 0, len(items))
	for _, item := range items {
		sku := strings.TrimSpace(item.SKU)
		if sku == "" {
			sku = placeholderNA
		}
		out = append(out, Product{
			ID:       item.ProductID,
			Title:    item.Title,
			SKU:      sku,
			Quantity: item.Quantity,
			Price:    types.ParseMoney(item.Price),
		})
	}
	return out
}

func shippingName(addr *ShippingAddress) string {
	if addr == nil || strings.TrimSpace(addr.Name) == "" {
		return placeholderNA
	}
	return addr.Name
}

func fulfillmentStatus(status *string) string {
	if status == nil || strings.TrimSpace(*status) == "" {
		return enums.OrderFulfillmentUnfulfilled
	}
	return *status
}

func nonBlank(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := *s
	return &v
}
