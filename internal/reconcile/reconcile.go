// Package reconcile merges payment records from the primary ledger with
// legacy payment data embedded in booking rows into one deduplicated,
// filtered, sorted view. The transform is pure: it holds no state across
// calls and never fails on a malformed record; bad fields degrade to safe
// defaults instead of aborting the batch.
package reconcile

import (
	"sort"
	"strings"
	"time"

	"photohunt/internal/domain"
)

// Filter selects which statuses appear in the merged view.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterCompleted Filter = "completed"
	FilterPending   Filter = "pending"
)

// ParseFilter maps a query-string value to a Filter, defaulting to all.
func ParseFilter(s string) Filter {
	switch strings.ToLower(s) {
	case string(FilterCompleted):
		return FilterCompleted
	case string(FilterPending):
		return FilterPending
	default:
		return FilterAll
	}
}

// Payer is the loose payer shape found in legacy embedded payment data.
type Payer struct {
	Email string `json:"email"`
}

// ProviderDetails is the subset of the raw provider capture payload the
// merge reads: the provider-assigned order id (the authoritative dedup key)
// and the payer's provider-side email.
type ProviderDetails struct {
	ID    string `json:"id"`
	Payer *struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
}

// LedgerRecord is a raw row from the primary payments ledger. Amount and
// CreatedAt are deliberately untyped: legacy imports carry strings, epoch
// numbers and {"seconds":N} containers in those positions.
type LedgerRecord struct {
	DocID       string
	PaymentID   string
	FullDetails *ProviderDetails
	Payer       *Payer
	PayerEmail  string
	Amount      any
	Currency    string
	Status      string
	EventID     string
	UserID      string
	BookingID   string
	CreatedAt   any
}

// EmbeddedPayment is the payment blob stored inline on legacy bookings.
type EmbeddedPayment struct {
	ID        string `json:"id"`
	Amount    any    `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	CreatedAt any    `json:"createdAt"`
	Payer     *Payer `json:"payer"`
}

// PaymentDetails is the secondary legacy blob some bookings carry.
type PaymentDetails struct {
	PaymentID  string `json:"paymentId"`
	PayerEmail string `json:"payerEmail"`
}

// BookingRecord is a raw booking row with whatever payment data it embeds.
// Bookings without embedded payment data contribute nothing to the view.
type BookingRecord struct {
	DocID        string
	EventID      string
	UserID       string
	ContactEmail string
	CreatedAt    any
	Payment      *EmbeddedPayment
	Details      *PaymentDetails
}

// Record is one canonical payment in the merged view. LogicalID is the
// provider-issued transaction id; two raw records sharing it are the same
// real-world payment and collapse into one Record.
type Record struct {
	DocID      string    `json:"id"`
	LogicalID  string    `json:"payment_id"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	Status     string    `json:"status"`
	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id"`
	BookingID  string    `json:"booking_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UserEmail  string    `json:"user_email"`
	PayerEmail string    `json:"payer_email"`
	Source     string    `json:"source"`
}

type Stats struct {
	Total       int     `json:"total"`
	Completed   int     `json:"completed"`
	Pending     int     `json:"pending"`
	TotalAmount float64 `json:"total_amount"`
}

// View is the merged result: records newest-first plus aggregates over the
// filtered set. It is recomputed from scratch on every call, never cached.
type View struct {
	Records []Record `json:"records"`
	Stats   Stats    `json:"stats"`
}

// Reconcile merges ledger and legacy booking records, deduplicates by
// logical transaction id, drops records with untrustworthy ids, applies the
// status filter, sorts newest-first and aggregates stats.
func Reconcile(ledger []LedgerRecord, bookings []BookingRecord, f Filter) View {
	byID := make(map[string]*Record)
	var order []string // insertion order keeps ties deterministic

	for _, raw := range ledger {
		rec := canonicalizeLedger(raw)
		existing, ok := byID[rec.LogicalID]
		if !ok {
			r := rec
			byID[rec.LogicalID] = &r
			order = append(order, rec.LogicalID)
			continue
		}
		// A duplicate ledger row only contributes a booking reference the
		// first-seen row lacked; every other first-seen field wins.
		if existing.BookingID == "" && rec.BookingID != "" {
			existing.BookingID = rec.BookingID
		}
	}

	for _, b := range bookings {
		if b.Payment == nil {
			continue
		}
		logicalID := bookingLogicalID(b)
		if existing, ok := byID[logicalID]; ok {
			mergeBookingInto(existing, b)
			continue
		}
		r := recordFromBooking(b, logicalID)
		byID[logicalID] = &r
		order = append(order, logicalID)
	}

	records := make([]Record, 0, len(order))
	for _, id := range order {
		rec := byID[id]
		if !trustworthyID(rec.LogicalID) {
			continue
		}
		if !matchesFilter(rec.Status, f) {
			continue
		}
		records = append(records, *rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return View{Records: records, Stats: aggregate(records)}
}

func canonicalizeLedger(raw LedgerRecord) Record {
	logicalID := raw.DocID
	switch {
	case raw.FullDetails != nil && raw.FullDetails.ID != "":
		logicalID = raw.FullDetails.ID
	case raw.PaymentID != "" && raw.PaymentID != domain.UnknownPaymentID && len(raw.PaymentID) > 10:
		// Short or placeholder stored ids are untrustworthy; fall through to
		// the row id instead.
		logicalID = raw.PaymentID
	}

	currency := raw.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	status := raw.Status
	if status == "" {
		status = domain.PaymentStatusPending
	}

	return Record{
		DocID:      raw.DocID,
		LogicalID:  logicalID,
		Amount:     parseAmount(raw.Amount),
		Currency:   currency,
		Status:     status,
		EventID:    raw.EventID,
		UserID:     raw.UserID,
		BookingID:  raw.BookingID,
		CreatedAt:  coerceTime(raw.CreatedAt),
		UserEmail:  raw.PayerEmail,
		PayerEmail: ledgerProviderEmail(raw),
		Source:     domain.SourceLedger,
	}
}

// ledgerProviderEmail picks the provider-side payer email by trust: the
// capture payload's payer, then the loose payer blob, then the stored
// payer email only when it plausibly is a provider address.
func ledgerProviderEmail(raw LedgerRecord) string {
	if raw.FullDetails != nil && raw.FullDetails.Payer != nil && raw.FullDetails.Payer.EmailAddress != "" {
		return raw.FullDetails.Payer.EmailAddress
	}
	if raw.Payer != nil && raw.Payer.Email != "" {
		return raw.Payer.Email
	}
	if raw.PayerEmail != "" &&
		(strings.Contains(raw.PayerEmail, "sandbox") || strings.Contains(raw.PayerEmail, "paypal")) {
		return raw.PayerEmail
	}
	return ""
}

func bookingLogicalID(b BookingRecord) string {
	if b.Payment.ID != "" && b.Payment.ID != domain.UnknownPaymentID {
		return b.Payment.ID
	}
	if b.Details != nil && b.Details.PaymentID != "" {
		return b.Details.PaymentID
	}
	return b.DocID
}

// mergeBookingInto enriches an existing record non-destructively: the ledger
// row stays authoritative, the booking only fills gaps.
func mergeBookingInto(existing *Record, b BookingRecord) {
	if existing.BookingID == "" {
		existing.BookingID = b.DocID
	}
	if b.ContactEmail != "" {
		existing.UserEmail = b.ContactEmail
	}
	if existing.PayerEmail == "" || existing.PayerEmail == domain.UnknownPaymentID {
		existing.PayerEmail = bookingProviderEmail(b)
	}
}

func bookingProviderEmail(b BookingRecord) string {
	if b.Payment != nil && b.Payment.Payer != nil && b.Payment.Payer.Email != "" {
		return b.Payment.Payer.Email
	}
	if b.Details != nil && b.Details.PayerEmail != "" {
		return b.Details.PayerEmail
	}
	return ""
}

func recordFromBooking(b BookingRecord, logicalID string) Record {
	currency := b.Payment.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	status := b.Payment.Status
	if status == "" {
		status = domain.PaymentStatusPending
	}
	createdAt := coerceTime(b.Payment.CreatedAt)
	if createdAt.IsZero() {
		createdAt = coerceTime(b.CreatedAt)
	}
	return Record{
		DocID:      b.DocID,
		LogicalID:  logicalID,
		Amount:     parseAmount(b.Payment.Amount),
		Currency:   currency,
		Status:     status,
		EventID:    b.EventID,
		UserID:     b.UserID,
		BookingID:  b.DocID,
		CreatedAt:  createdAt,
		UserEmail:  b.ContactEmail,
		PayerEmail: bookingProviderEmail(b),
		Source:     domain.SourceBooking,
	}
}

// trustworthyID rejects ids too short or too generic to be provider-issued.
func trustworthyID(id string) bool {
	return id != "" && id != domain.UnknownPaymentID && len(id) > 8
}

func isCompleted(status string) bool {
	return strings.EqualFold(status, domain.PaymentStatusCompleted)
}

func matchesFilter(status string, f Filter) bool {
	switch f {
	case FilterCompleted:
		return isCompleted(status)
	case FilterPending:
		return !isCompleted(status)
	default:
		return true
	}
}

func aggregate(records []Record) Stats {
	var s Stats
	s.Total = len(records)
	for _, r := range records {
		if isCompleted(r.Status) {
			s.Completed++
			s.TotalAmount += r.Amount
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}
