package service

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"photohunt/internal/models"
	"photohunt/internal/reconcile"
	"photohunt/internal/repository"
)

// PaymentService builds the merged payments view for admin surfaces. It
// holds no state between calls; every View call is a fresh snapshot over
// whatever the repositories return.
type PaymentService struct {
	paymentRepo *repository.PaymentRepository
	bookingRepo *repository.BookingRepository
	eventRepo   *repository.EventRepository
}

func NewPaymentService(
	paymentRepo *repository.PaymentRepository,
	bookingRepo *repository.BookingRepository,
	eventRepo *repository.EventRepository,
) *PaymentService {
	return &PaymentService{paymentRepo: paymentRepo, bookingRepo: bookingRepo, eventRepo: eventRepo}
}

// PaymentsView is the reconciled view plus presentation extras: resolved
// event titles (best effort) and the snapshot time.
type PaymentsView struct {
	Records     []reconcile.Record `json:"records"`
	Stats       reconcile.Stats    `json:"stats"`
	EventTitles map[string]string  `json:"event_titles"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// View fetches both payment sources, reconciles them, and resolves event
// titles. Only the storage fetches can fail; everything downstream degrades
// per record instead of failing the view.
func (s *PaymentService) View(eventID uint, filter reconcile.Filter) (*PaymentsView, error) {
	ledgerRows, err := s.paymentRepo.List(eventID)
	if err != nil {
		return nil, fmt.Errorf("fetch payments: %w", err)
	}
	bookingRows, err := s.bookingRepo.ListWithPaymentData(eventID)
	if err != nil {
		return nil, fmt.Errorf("fetch bookings: %w", err)
	}

	ledger := make([]reconcile.LedgerRecord, 0, len(ledgerRows))
	for _, row := range ledgerRows {
		ledger = append(ledger, ledgerRecordFromRow(row))
	}
	bookings := make([]reconcile.BookingRecord, 0, len(bookingRows))
	for _, row := range bookingRows {
		bookings = append(bookings, bookingRecordFromRow(row))
	}

	view := reconcile.Reconcile(ledger, bookings, filter)

	return &PaymentsView{
		Records:     view.Records,
		Stats:       view.Stats,
		EventTitles: s.resolveEventTitles(view.Records),
		GeneratedAt: time.Now(),
	}, nil
}

// ledgerRecordFromRow adapts a gorm Payment row to the reconciler's raw
// shape. The raw provider payload is parsed leniently: a corrupt blob just
// means fewer fields, never an error.
func ledgerRecordFromRow(row models.Payment) reconcile.LedgerRecord {
	var details *reconcile.ProviderDetails
	if row.FullDetails != "" {
		var parsed reconcile.ProviderDetails
		if err := json.Unmarshal([]byte(row.FullDetails), &parsed); err == nil && parsed.ID != "" {
			details = &parsed
		}
	}
	// Webhook-created rows persist the provider order id in its own column;
	// treat it as the capture payload id when the blob lacks one.
	if details == nil && row.OrderID != "" {
		details = &reconcile.ProviderDetails{ID: row.OrderID}
	}

	rec := reconcile.LedgerRecord{
		DocID:       fmt.Sprintf("pay_%08d", row.ID),
		PaymentID:   row.PaymentID,
		FullDetails: details,
		PayerEmail:  row.PayerEmail,
		Amount:      row.Amount,
		Currency:    row.Currency,
		Status:      row.Status,
		EventID:     formatID(row.EventID),
		UserID:      formatID(row.UserID),
		CreatedAt:   row.CreatedAt,
	}
	if row.BookingID != nil {
		rec.BookingID = fmt.Sprintf("bkg_%08d", *row.BookingID)
	}
	return rec
}

// bookingRecordFromRow adapts a gorm Booking row, parsing the legacy
// embedded payment blobs it carries.
func bookingRecordFromRow(row models.Booking) reconcile.BookingRecord {
	rec := reconcile.BookingRecord{
		DocID:        fmt.Sprintf("bkg_%08d", row.ID),
		EventID:      formatID(row.EventID),
		UserID:       formatID(row.UserID),
		ContactEmail: row.ContactEmail,
		CreatedAt:    row.CreatedAt,
	}
	if row.PaymentJSON != "" {
		var embedded reconcile.EmbeddedPayment
		if err := json.Unmarshal([]byte(row.PaymentJSON), &embedded); err == nil {
			rec.Payment = &embedded
		} else {
			log.Printf("[payments view] booking %d has unparseable payment blob: %v", row.ID, err)
		}
	}
	if row.PaymentDetailsJSON != "" {
		var details reconcile.PaymentDetails
		if err := json.Unmarshal([]byte(row.PaymentDetailsJSON), &details); err == nil {
			rec.Details = &details
		}
	}
	return rec
}

// resolveEventTitles looks up a title per distinct event id concurrently.
// Lookups are best effort: a failed or missing event leaves its id out of
// the map and has no effect on the merge result.
func (s *PaymentService) resolveEventTitles(records []reconcile.Record) map[string]string {
	seen := make(map[string]struct{})
	var ids []string
	for _, rec := range records {
		if rec.EventID == "" {
			continue
		}
		if _, ok := seen[rec.EventID]; ok {
			continue
		}
		seen[rec.EventID] = struct{}{}
		ids = append(ids, rec.EventID)
	}

	titles := make(map[string]string, len(ids))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			numeric, err := strconv.ParseUint(id, 10, 64)
			if err != nil {
				return
			}
			event, err := s.eventRepo.GetByID(uint(numeric))
			if err != nil {
				return
			}
			mu.Lock()
			titles[id] = event.Title
			mu.Unlock()
		}(id)
	}
	wg.Wait()
	return titles
}

func formatID(id uint) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(id), 10)
}
