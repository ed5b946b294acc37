package orders

import "github.com/angelmondragon/refundlens/pkg/enums"

// RawOrder is an order document as returned by the order-listing API. Only the
// projected fields are decoded; timestamps and money stay as upstream text and
// are interpreted by Enrich.
type RawOrder struct {
	ID                int64                 `json:"id"`
	OrderNumber       int64                 `json:"order_number"`
	CreatedAt         string                `json:"created_at"`
	FinancialStatus   enums.FinancialStatus `json:"financial_status"`
	FulfillmentStatus *string               `json:"fulfillment_status"`
	ShippingAddress   *ShippingAddress      `json:"shipping_address"`
	Fulfillments      []Fulfillment         `json:"fulfillments"`
	Refunds           []Refund              `json:"refunds"`
	LineItems         []LineItem            `json:"line_items"`
	TotalPrice        string                `json:"total_price"`
}

type ShippingAddress struct {
	Name string `json:"name"`
}

// Fulfillment is a shipment record attached to an order.
type Fulfillment struct {
	Status         enums.FulfillmentStatus `json:"status"`
	ShipmentStatus *enums.ShipmentStatus   `json:"shipment_status"`
	CreatedAt      string                  `json:"created_at"`
	UpdatedAt      string                  `json:"updated_at"`
	TrackingNumber *string                 `json:"tracking_number"`
	TrackingURL    *string                 `json:"tracking_url"`
}

// Refund is a monetary reversal holding one or more transactions.
type Refund struct {
	CreatedAt    string              `json:"created_at"`
	Transactions []RefundTransaction `json:"transactions"`
}

type RefundTransaction struct {
	Amount string `json:"amount"`
}

type LineItem struct {
	ProductID *int64 `json:"product_id"`
	Title     string `json:"title"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

// ProjectedFields lists the order fields requested from upstream; it covers
// exactly what Enrich reads.
var ProjectedFields = []string{
	"id",
	"order_number",
	"created_at",
	"financial_status",
	"fulfillment_status",
	"shipping_address",
	"fulfillments",
	"refunds",
	"line_items",
	"total_price",
}
