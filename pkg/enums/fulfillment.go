package enums

// FulfillmentStatus is the state of a single fulfillment (shipment) record.
type FulfillmentStatus string

const (
	FulfillmentStatusPending   FulfillmentStatus = "pending"
	FulfillmentStatusOpen      FulfillmentStatus = "open"
	FulfillmentStatusSuccess   FulfillmentStatus = "success"
	FulfillmentStatusCancelled FulfillmentStatus = "cancelled"
	FulfillmentStatusError     FulfillmentStatus = "error"
	FulfillmentStatusFailure   FulfillmentStatus = "failure"
)

// ShipmentStatus is the carrier-reported transit state of a fulfillment.
type ShipmentStatus string

const (
	ShipmentStatusLabelPrinted      ShipmentStatus = "label_printed"
	ShipmentStatusConfirmed         ShipmentStatus = "confirmed"
	ShipmentStatusInTransit         ShipmentStatus = "in_transit"
	ShipmentStatusOutForDelivery    ShipmentStatus = "out_for_delivery"
	ShipmentStatusAttemptedDelivery ShipmentStatus = "attempted_delivery"
	ShipmentStatusDelivered         ShipmentStatus = "delivered"
	ShipmentStatusFailure           ShipmentStatus = "failure"
	ShipmentStatusReadyForPickup    ShipmentStatus = "ready_for_pickup"
	ShipmentStatusPickedUp          ShipmentStatus = "picked_up"
)

// OrderFulfillmentUnfulfilled is reported when the order-level fulfillment status is null.
const OrderFulfillmentUnfulfilled = "unfulfilled"
