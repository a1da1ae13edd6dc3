package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ledgerFixture(logicalID string, created time.Time) LedgerRecord {
	return LedgerRecord{
		DocID:       "ledger-doc-" + logicalID,
		FullDetails: &ProviderDetails{ID: logicalID},
		Amount:      25.0,
		Currency:    "EUR",
		Status:      "COMPLETED",
		EventID:     "event-1",
		UserID:      "user-1",
		PayerEmail:  "alice@example.com",
		CreatedAt:   created,
	}
}

func bookingFixture(logicalID string, created time.Time) BookingRecord {
	return BookingRecord{
		DocID:        "booking-doc-9001",
		EventID:      "event-1",
		UserID:       "user-1",
		ContactEmail: "alice@contact.example.com",
		CreatedAt:    created,
		Payment: &EmbeddedPayment{
			ID:        logicalID,
			Amount:    25.0,
			Currency:  "EUR",
			Status:    "COMPLETED",
			CreatedAt: created,
			Payer:     &Payer{Email: "alice@sandbox.paypal.com"},
		},
	}
}

func TestReconcileDeduplicatesAcrossSources(t *testing.T) {
	created := time.Date(2025, 4, 20, 18, 0, 0, 0, time.UTC)
	ledger := []LedgerRecord{ledgerFixture("5KX12345AB678901C", created)}
	bookings := []BookingRecord{bookingFixture("5KX12345AB678901C", created)}

	view := Reconcile(ledger, bookings, FilterAll)

	require.Len(t, view.Records, 1)
	rec := view.Records[0]
	assert.Equal(t, "5KX12345AB678901C", rec.LogicalID)
	// The booking contributed its reference and contact email without
	// displacing the ledger row's authoritative fields.
	assert.Equal(t, "booking-doc-9001", rec.BookingID)
	assert.Equal(t, "alice@contact.example.com", rec.UserEmail)
	assert.Equal(t, 25.0, rec.Amount)
	assert.Equal(t, "paymentCollection", rec.Source)
}

func TestReconcileLedgerCollisionKeepsFirstSeenFields(t *testing.T) {
	created := time.Date(2025, 4, 20, 18, 0, 0, 0, time.UTC)
	first := ledgerFixture("5KX12345AB678901C", created)
	second := ledgerFixture("5KX12345AB678901C", created.Add(time.Hour))
	second.Amount = 999.0
	second.BookingID = "booking-doc-7777"

	view := Reconcile([]LedgerRecord{first, second}, nil, FilterAll)

	require.Len(t, view.Records, 1)
	rec := view.Records[0]
	assert.Equal(t, 25.0, rec.Amount, "duplicate must not overwrite first-seen fields")
	assert.Equal(t, created, rec.CreatedAt)
	assert.Equal(t, "booking-doc-7777", rec.BookingID, "duplicate may contribute a missing booking reference")
}

func TestLedgerLogicalIDPriority(t *testing.T) {
	cases := []struct {
		name string
		raw  LedgerRecord
		want string
	}{
		{
			name: "provider details id wins",
			raw: LedgerRecord{
				DocID:       "doc-123456789",
				PaymentID:   "STORED1234567890",
				FullDetails: &ProviderDetails{ID: "PROVIDER123456789"},
			},
			want: "PROVIDER123456789",
		},
		{
			name: "stored payment id when plausible",
			raw:  LedgerRecord{DocID: "doc-123456789", PaymentID: "STORED1234567890"},
			want: "STORED1234567890",
		},
		{
			name: "short stored id falls back to doc id",
			raw:  LedgerRecord{DocID: "doc-123456789", PaymentID: "short"},
			want: "doc-123456789",
		},
		{
			name: "unknown placeholder falls back to doc id",
			raw:  LedgerRecord{DocID: "doc-123456789", PaymentID: "unknown"},
			want: "doc-123456789",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			view := Reconcile([]LedgerRecord{tc.raw}, nil, FilterAll)
			require.Len(t, view.Records, 1)
			assert.Equal(t, tc.want, view.Records[0].LogicalID)
		})
	}
}

func TestReconcileDropsUntrustworthyIDs(t *testing.T) {
	created := time.Now()
	ledger := []LedgerRecord{
		{DocID: "short", CreatedAt: created},                                // len <= 8
		{DocID: "unknown", CreatedAt: created},                              // placeholder
		{DocID: "", CreatedAt: created},                                     // empty
		{DocID: "trustworthy-id-1", Status: "COMPLETED", CreatedAt: created}, // kept
	}

	for _, f := range []Filter{FilterAll, FilterCompleted, FilterPending} {
		view := Reconcile(ledger, nil, f)
		for _, rec := range view.Records {
			assert.Equal(t, "trustworthy-id-1", rec.LogicalID,
				"untrustworthy ids must never appear regardless of filter %q", f)
		}
	}
}

func TestReconcileBookingOnlyRecord(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	view := Reconcile(nil, []BookingRecord{bookingFixture("9AB87654CD321098E", created)}, FilterAll)

	require.Len(t, view.Records, 1)
	rec := view.Records[0]
	assert.Equal(t, "bookingCollection", rec.Source)
	assert.Equal(t, "booking-doc-9001", rec.BookingID)
	assert.Equal(t, "alice@sandbox.paypal.com", rec.PayerEmail)
	assert.Equal(t, created, rec.CreatedAt)
}

func TestReconcileSkipsBookingsWithoutPaymentData(t *testing.T) {
	view := Reconcile(nil, []BookingRecord{{DocID: "booking-doc-1234", EventID: "event-1"}}, FilterAll)
	assert.Empty(t, view.Records)
}

func TestReconcileStatusFilter(t *testing.T) {
	created := time.Now()
	completed := ledgerFixture("completed-id-1234", created)
	pending := ledgerFixture("pending-id-123456", created.Add(-time.Hour))
	pending.Status = "PENDING"
	lowercase := ledgerFixture("lowercase-id-1234", created.Add(-2*time.Hour))
	lowercase.Status = "completed"
	ledger := []LedgerRecord{completed, pending, lowercase}

	all := Reconcile(ledger, nil, FilterAll)
	assert.Len(t, all.Records, 3)

	done := Reconcile(ledger, nil, FilterCompleted)
	require.Len(t, done.Records, 2, "completed filter matches case-insensitively")

	rest := Reconcile(ledger, nil, FilterPending)
	require.Len(t, rest.Records, 1)
	assert.Equal(t, "pending-id-123456", rest.Records[0].LogicalID)
}

func TestReconcileSortsNewestFirst(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ledger := []LedgerRecord{
		ledgerFixture("oldest-id-1234567", base),
		ledgerFixture("newest-id-1234567", base.Add(48*time.Hour)),
		ledgerFixture("middle-id-1234567", base.Add(24*time.Hour)),
	}
	broken := LedgerRecord{DocID: "unparseable-12345", CreatedAt: "not a date"}
	ledger = append(ledger, broken)

	view := Reconcile(ledger, nil, FilterAll)

	require.Len(t, view.Records, 4)
	assert.Equal(t, "newest-id-1234567", view.Records[0].LogicalID)
	assert.Equal(t, "middle-id-1234567", view.Records[1].LogicalID)
	assert.Equal(t, "oldest-id-1234567", view.Records[2].LogicalID)
	assert.Equal(t, "unparseable-12345", view.Records[3].LogicalID, "unparseable timestamps sort as earliest")
}

func TestReconcileStatsInvariant(t *testing.T) {
	created := time.Now()
	completed := ledgerFixture("completed-id-1234", created)
	completed.Amount = "19.90" // numeric string counts
	pending := ledgerFixture("pending-id-123456", created)
	pending.Status = "PENDING"
	pending.Amount = 5.0
	garbage := ledgerFixture("garbage-id-123456", created)
	garbage.Amount = "not a number" // counts as zero, never fails
	bookings := []BookingRecord{bookingFixture("9AB87654CD321098E", created)}

	for _, f := range []Filter{FilterAll, FilterCompleted, FilterPending} {
		view := Reconcile([]LedgerRecord{completed, pending, garbage}, bookings, f)
		s := view.Stats
		assert.Equal(t, s.Total, s.Completed+s.Pending, "filter %q", f)

		var wantAmount float64
		for _, rec := range view.Records {
			if rec.Status == "COMPLETED" || rec.Status == "completed" {
				wantAmount += rec.Amount
			}
		}
		assert.InDelta(t, wantAmount, s.TotalAmount, 1e-9, "filter %q", f)
	}

	all := Reconcile([]LedgerRecord{completed, pending, garbage}, bookings, FilterAll)
	assert.Equal(t, 4, all.Stats.Total)
	assert.Equal(t, 3, all.Stats.Completed)
	assert.Equal(t, 1, all.Stats.Pending)
	assert.InDelta(t, 19.90+0+25.0, all.Stats.TotalAmount, 1e-9)
}

func TestReconcileIsIdempotent(t *testing.T) {
	created := time.Date(2025, 4, 20, 18, 0, 0, 0, time.UTC)
	ledger := []LedgerRecord{
		ledgerFixture("5KX12345AB678901C", created),
		ledgerFixture("9AB87654CD321098E", created.Add(time.Hour)),
	}
	bookings := []BookingRecord{bookingFixture("5KX12345AB678901C", created)}

	first := Reconcile(ledger, bookings, FilterAll)
	second := Reconcile(ledger, bookings, FilterAll)

	assert.Equal(t, first, second, "no hidden state may leak between runs")
}

func TestMergePrefersExistingProviderEmail(t *testing.T) {
	created := time.Now()
	ledger := ledgerFixture("5KX12345AB678901C", created)
	ledger.FullDetails.Payer = &struct {
		EmailAddress string `json:"email_address"`
	}{EmailAddress: "payer@paypal.com"}
	booking := bookingFixture("5KX12345AB678901C", created)

	view := Reconcile([]LedgerRecord{ledger}, []BookingRecord{booking}, FilterAll)

	require.Len(t, view.Records, 1)
	assert.Equal(t, "payer@paypal.com", view.Records[0].PayerEmail,
		"booking payer email only fills an empty or unknown slot")
}

func TestCoerceTime(t *testing.T) {
	instant := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
	cases := []struct {
		name string
		in   any
		want time.Time
	}{
		{"native time", instant, instant},
		{"seconds container", map[string]any{"seconds": float64(1700000000)}, time.Unix(1700000000, 0)},
		{"underscore seconds container", map[string]any{"_seconds": float64(1700000000)}, time.Unix(1700000000, 0)},
		{"epoch float", float64(1700000000), time.Unix(1700000000, 0)},
		{"rfc3339 string", "2023-11-14T22:13:20Z", instant},
		{"date only string", "2023-11-14", time.Date(2023, 11, 14, 0, 0, 0, 0, time.UTC)},
		{"garbage string", "yesterday-ish", time.Time{}},
		{"nil", nil, time.Time{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := coerceTime(tc.in)
			assert.True(t, tc.want.Equal(got), "want %v got %v", tc.want, got)
		})
	}
}

func TestParseAmount(t *testing.T) {
	assert.Equal(t, 19.9, parseAmount(19.9))
	assert.Equal(t, 19.9, parseAmount("19.9"))
	assert.Equal(t, 7.0, parseAmount(7))
	assert.Equal(t, 0.0, parseAmount("free"))
	assert.Equal(t, 0.0, parseAmount(nil))
	assert.Equal(t, 0.0, parseAmount(map[string]any{"value": 3}))
}
