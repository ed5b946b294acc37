package orders

import (
	"github.com/angelmondragon/refundlens/pkg/enums"
	"github.com/angelmondragon/refundlens/pkg/types"
)

// EnrichedOrder is the derived per-order record served to the dashboard.
// Optional values are pointers (or the zero RefundTiming) so they encode as null.
type EnrichedOrder struct {
	ID                int64              `json:"id"`
	OrderNumber       int64              `json:"orderNumber"`
	OrderDate         *Timestamp         `json:"orderDate"`
	ShippingName      string             `json:"shippingName"`
	FulfillmentStatus string             `json:"fulfillmentStatus"`
	TrackingNumber    *string            `json:"trackingNumber"`
	TrackingURL       *string            `json:"trackingUrl"`
	RefundStatus      enums.RefundStatus `json:"refundStatus"`
	DeliveryDate      *Timestamp         `json:"deliveryDate"`
	TransitStatus     *string            `json:"transitStatus"`
	RefundDate        *Timestamp         `json:"refundDate"`
	DaysToRefund      RefundTiming       `json:"daysToRefund"`
	TotalPrice        types.Money        `json:"totalPrice"`
	RefundAmount      types.Money        `json:"refundAmount"`
	Products          []Product          `json:"products"`
}

type Product struct {
	ID       *int64      `json:"id"`
	Title    string      `json:"title"`
	SKU      string      `json:"sku"`
	Quantity int         `json:"quantity"`
	Price    types.Money `json:"price"`
}

// DedupeBySKU keeps the first product seen for every SKU, preserving order.
func DedupeBySKU(products []Product) []Product {
	seen := make(map[string]struct{}, len(products))
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.SKU]; ok {
			continue
		}
		seen[p.SKU] = struct{}{}
		out = append(out, p)
	}
	return out
}
