package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/angelmondragon/refundlens/internal/orders"
)

// ContentType is the media type written by WriteCSV.
const ContentType = "text/csv; charset=utf-8"

var header = []string{
	"Order Number",
	"Order Date",
	"Shipping Name",
	"Fulfillment Status",
	"Tracking Number",
	"Tracking URL",
	"Refund Status",
	"Delivery Date",
	"Transit Status",
	"Refund Date",
	"Days To Refund",
	"Total Price",
	"Refund Amount",
	"Products",
}

// Filename names the attachment for a date range, e.g. refunds_2024-01-01_2024-01-31.csv.
func Filename(start, end string) string {
	return fmt.Sprintf("refunds_%s_%s.csv", start, end)
}

// WriteCSV renders one row per order. Missing values are empty cells and the
// product column lists titles of SKU-distinct products.
func WriteCSV(w io.Writer, list []orders.EnrichedOrder) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range list {
		if err := cw.Write(row(&list[i])); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func row(o *orders.EnrichedOrder) []string {
	return []string{
		strconv.FormatInt(o.OrderNumber, 10),
		timestamp(o.OrderDate),
		o.ShippingName,
		o.FulfillmentStatus,
		deref(o.TrackingNumber),
		deref(o.TrackingURL),
		o.RefundStatus.String(),
		timestamp(o.DeliveryDate),
		deref(o.TransitStatus),
		timestamp(o.RefundDate),
		o.DaysToRefund.String(),
		o.TotalPrice.StringFixed(2),
		o.RefundAmount.StringFixed(2),
		productTitles(o.Products),
	}
}

func productTitles(products []orders.Product) string {
	unique := orders.DedupeBySKU(products)
	titles := make([]string, 0, len(unique))
	for _, p := range unique {
		titles = append(titles, p.Title)
	}
	return strings.Join(titles, "; ")
}

func timestamp(ts *orders.Timestamp) string {
	if ts == nil {
		return ""
	}
	return ts.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
