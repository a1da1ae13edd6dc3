package domain

const (
	RoleClient = "CLIENT"
	RoleAdmin  = "ADMIN"
)

const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusFailed    = "FAILED"
	PaymentStatusRefunded  = "REFUNDED"
	PaymentStatusUnknown   = "UNKNOWN"
)

const (
	BookingStatusPendingPayment = "PENDING_PAYMENT"
	BookingStatusConfirmed      = "CONFIRMED"
	BookingStatusCancelled      = "CANCELLED"
)

// Provenance of a reconciled payment record.
const (
	SourceLedger  = "paymentCollection"
	SourceBooking = "bookingCollection"
)

// UnknownPaymentID is the placeholder some legacy records carry instead of a
// real provider order id.
const UnknownPaymentID = "unknown"

const DefaultCurrency = "EUR"
