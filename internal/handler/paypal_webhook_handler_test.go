package handler

import (
	"testing"

	"photohunt/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestPaymentStatusForEvent(t *testing.T) {
	cases := []struct {
		eventType string
		status    string
		handled   bool
	}{
		{"PAYMENT.CAPTURE.COMPLETED", domain.PaymentStatusCompleted, true},
		{"CHECKOUT.ORDER.COMPLETED", domain.PaymentStatusCompleted, true},
		{"PAYMENT.CAPTURE.PENDING", domain.PaymentStatusPending, true},
		{"PAYMENT.CAPTURE.DENIED", domain.PaymentStatusFailed, true},
		{"PAYMENT.CAPTURE.REFUNDED", domain.PaymentStatusRefunded, true},
		{"PAYMENT.CAPTURE.REVERSED", domain.PaymentStatusRefunded, true},
		{"BILLING.SUBSCRIPTION.CREATED", "", false},
		{"VALIDATION", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		status, handled := paymentStatusForEvent(tc.eventType)
		assert.Equal(t, tc.handled, handled, tc.eventType)
		assert.Equal(t, tc.status, status, tc.eventType)
	}
}
