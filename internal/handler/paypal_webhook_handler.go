package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"photohunt/internal/domain"
	"photohunt/internal/middleware"
	"photohunt/internal/models"
	"photohunt/internal/paypal"
	"photohunt/internal/repository"
	"photohunt/internal/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// maxWebhookBody caps inbound notification payloads at 1 MiB.
const maxWebhookBody = 1 << 20

type PayPalWebhookHandler struct {
	verifier    *paypal.Verifier
	webhookRepo *repository.WebhookEventRepository
	paymentRepo *repository.PaymentRepository
	bookingRepo *repository.BookingRepository
	auditRepo   *repository.AuditLogRepository
	hub         *ws.Hub
}

func NewPayPalWebhookHandler(
	verifier *paypal.Verifier,
	webhookRepo *repository.WebhookEventRepository,
	paymentRepo *repository.PaymentRepository,
	bookingRepo *repository.BookingRepository,
	auditRepo *repository.AuditLogRepository,
	hub *ws.Hub,
) *PayPalWebhookHandler {
	return &PayPalWebhookHandler{
		verifier:    verifier,
		webhookRepo: webhookRepo,
		paymentRepo: paymentRepo,
		bookingRepo: bookingRepo,
		auditRepo:   auditRepo,
		hub:         hub,
	}
}

// webhookEnvelope is the subset of the notification body ingestion reads.
type webhookEnvelope struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Resource  struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Amount struct {
			Value        string `json:"value"`
			CurrencyCode string `json:"currency_code"`
		} `json:"amount"`
		CustomID string `json:"custom_id"`
		Payer    struct {
			EmailAddress string `json:"email_address"`
		} `json:"payer"`
	} `json:"resource"`
}

// Handle ingests one provider notification: verify the signature over the
// exact received bytes, record the delivery for idempotency, then apply the
// payment effect. Replayed deliveries are acknowledged without reprocessing.
func (h *PayPalWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	req := paypal.RequestFromHTTP(c.Request, body)
	verdict := h.verifier.Verify(c.Request.Context(), req)
	middleware.CountWebhookVerdict(verdict.Reason)
	h.audit(c, verdict)

	if !verdict.Verified {
		log.Printf("[webhook] rejected: %s", verdict.Reason)
		c.JSON(http.StatusBadRequest, gin.H{"verified": false, "reason": verdict.Reason})
		return
	}
	if verdict.Warning {
		log.Printf("[webhook] accepted with warning: %s", verdict.Reason)
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		return
	}

	// Endpoint health probes carry no payment effect.
	if strings.EqualFold(envelope.EventType, "VALIDATION") {
		c.JSON(http.StatusOK, gin.H{"verified": true, "reason": verdict.Reason})
		return
	}
	if envelope.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing event id"})
		return
	}

	event := &models.WebhookEvent{
		Provider:        "paypal",
		ProviderEventID: envelope.ID,
		EventType:       envelope.EventType,
		PayloadJSON:     string(body),
		SignatureValid:  verdict.Verified,
		VerifyReason:    verdict.Reason,
		VerifyWarning:   verdict.Warning,
	}
	if err := h.webhookRepo.Record(event); err != nil {
		if errors.Is(err, repository.ErrDuplicateEvent) {
			c.JSON(http.StatusOK, gin.H{"verified": true, "duplicate": true})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record event"})
		return
	}

	processingErr := ""
	if err := h.applyPaymentEffect(&envelope); err != nil {
		processingErr = err.Error()
		log.Printf("[webhook] processing %s failed: %v", envelope.ID, err)
	}
	if err := h.webhookRepo.MarkProcessed(event, processingErr); err != nil {
		log.Printf("[webhook] mark processed %s failed: %v", envelope.ID, err)
	}

	// Returning 200 even when processing failed keeps the provider from
	// retrying a delivery we already persisted.
	c.JSON(http.StatusOK, gin.H{"verified": true, "warning": verdict.Warning})
}

// applyPaymentEffect upserts the ledger row for capture events and confirms
// the linked booking once the capture completes.
func (h *PayPalWebhookHandler) applyPaymentEffect(envelope *webhookEnvelope) error {
	status, ok := paymentStatusForEvent(envelope.EventType)
	if !ok {
		return nil
	}
	orderID := envelope.Resource.ID
	if orderID == "" {
		return fmt.Errorf("event %s has no resource id", envelope.ID)
	}

	amount, _ := strconv.ParseFloat(envelope.Resource.Amount.Value, 64)
	currency := envelope.Resource.Amount.CurrencyCode
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	rawResource, _ := json.Marshal(envelope.Resource)

	payment, err := h.paymentRepo.GetByOrderID(orderID)
	switch {
	case err == nil:
		payment.Status = status
		if amount > 0 {
			payment.Amount = amount
		}
		if envelope.Resource.Payer.EmailAddress != "" {
			payment.PayerEmail = envelope.Resource.Payer.EmailAddress
		}
		payment.FullDetails = string(rawResource)
		if err := h.paymentRepo.Update(payment); err != nil {
			return fmt.Errorf("update payment: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		payment = &models.Payment{
			OrderID:     orderID,
			PaymentID:   orderID,
			Amount:      amount,
			Currency:    currency,
			Status:      status,
			PayerEmail:  envelope.Resource.Payer.EmailAddress,
			FullDetails: string(rawResource),
		}
		h.linkBooking(payment, envelope.Resource.CustomID)
		if err := h.paymentRepo.Create(payment); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
	default:
		return fmt.Errorf("lookup payment: %w", err)
	}

	if status == domain.PaymentStatusCompleted && payment.BookingID != nil {
		if err := h.confirmBooking(*payment.BookingID); err != nil {
			return err
		}
	}

	h.hub.Broadcast(gin.H{
		"type":     "payment",
		"order_id": payment.OrderID,
		"status":   payment.Status,
		"amount":   payment.Amount,
		"currency": payment.Currency,
	})
	return nil
}

// linkBooking resolves the booking referenced in the capture's custom id and
// copies its event and user onto the ledger row.
func (h *PayPalWebhookHandler) linkBooking(payment *models.Payment, customID string) {
	if customID == "" {
		return
	}
	bookingID, err := strconv.ParseUint(customID, 10, 64)
	if err != nil {
		return
	}
	booking, err := h.bookingRepo.GetByID(uint(bookingID))
	if err != nil {
		return
	}
	id := booking.ID
	payment.BookingID = &id
	payment.EventID = booking.EventID
	payment.UserID = booking.UserID
}

func (h *PayPalWebhookHandler) confirmBooking(bookingID uint) error {
	booking, err := h.bookingRepo.GetByID(bookingID)
	if err != nil {
		return fmt.Errorf("load booking %d: %w", bookingID, err)
	}
	if booking.Status == domain.BookingStatusConfirmed {
		return nil
	}
	booking.Status = domain.BookingStatusConfirmed
	if err := h.bookingRepo.Update(booking); err != nil {
		return fmt.Errorf("confirm booking %d: %w", bookingID, err)
	}
	return nil
}

// paymentStatusForEvent maps provider event types to ledger statuses. Event
// types outside this map are recorded but carry no payment effect.
func paymentStatusForEvent(eventType string) (string, bool) {
	switch eventType {
	case "PAYMENT.CAPTURE.COMPLETED", "CHECKOUT.ORDER.COMPLETED":
		return domain.PaymentStatusCompleted, true
	case "PAYMENT.CAPTURE.PENDING":
		return domain.PaymentStatusPending, true
	case "PAYMENT.CAPTURE.DENIED", "PAYMENT.CAPTURE.DECLINED":
		return domain.PaymentStatusFailed, true
	case "PAYMENT.CAPTURE.REFUNDED", "PAYMENT.CAPTURE.REVERSED":
		return domain.PaymentStatusRefunded, true
	default:
		return "", false
	}
}

func (h *PayPalWebhookHandler) audit(c *gin.Context, verdict paypal.Verdict) {
	detail, _ := json.Marshal(verdict)
	entry := &models.AuditLog{
		Action:    "webhook.verify",
		Resource:  "paypal",
		Detail:    string(detail),
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if err := h.auditRepo.Create(entry); err != nil {
		log.Printf("[webhook] audit write failed: %v", err)
	}
}
