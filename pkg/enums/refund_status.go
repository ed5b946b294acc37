package enums

// RefundStatus is the coarse refund classification surfaced on enriched orders.
type RefundStatus string

const (
	RefundStatusRefunded          RefundStatus = "Refunded"
	RefundStatusPartiallyRefunded RefundStatus = "PartiallyRefunded"
	RefundStatusNotRefunded       RefundStatus = "NotRefunded"
)

// String implements fmt.Stringer.
func (r RefundStatus) String() string {
	return string(r)
}

// RefundStatusFor classifies an order solely by its financial status.
func RefundStatusFor(status FinancialStatus) RefundStatus {
	switch status {
	case FinancialStatusRefunded:
		return RefundStatusRefunded
	case FinancialStatusPartiallyRefunded:
		return RefundStatusPartiallyRefunded
	default:
		return RefundStatusNotRefunded
	}
}
