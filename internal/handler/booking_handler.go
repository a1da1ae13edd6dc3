package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"photohunt/internal/domain"
	"photohunt/internal/middleware"
	"photohunt/internal/models"
	"photohunt/internal/repository"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	bookingRepo *repository.BookingRepository
	eventRepo   *repository.EventRepository
}

func NewBookingHandler(bookingRepo *repository.BookingRepository, eventRepo *repository.EventRepository) *BookingHandler {
	return &BookingHandler{bookingRepo: bookingRepo, eventRepo: eventRepo}
}

type createBookingRequest struct {
	EventID      uint   `json:"event_id" binding:"required"`
	ContactEmail string `json:"contact_email" binding:"required,email"`
	ContactPhone string `json:"contact_phone"`
	Participants int    `json:"participants"`
	Notes        string `json:"notes"`
}

// Create reserves a spot. Free events confirm immediately; paid events stay
// PENDING_PAYMENT until the provider webhook lands.
func (h *BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	event, err := h.eventRepo.GetByID(req.EventID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		return
	}
	if !event.IsBookable(time.Now()) {
		c.JSON(http.StatusConflict, gin.H{"error": "event is not bookable"})
		return
	}
	status := domain.BookingStatusPendingPayment
	if event.IsFree() {
		status = domain.BookingStatusConfirmed
	}
	participants := req.Participants
	if participants < 1 {
		participants = 1
	}
	booking := &models.Booking{
		UserID:       middleware.GetUserID(c),
		EventID:      req.EventID,
		Status:       status,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Participants: participants,
		Notes:        req.Notes,
	}
	if err := h.bookingRepo.CreateWithSpot(booking); err != nil {
		if errors.Is(err, repository.ErrEventFull) {
			c.JSON(http.StatusConflict, gin.H{"error": "event is fully booked"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create booking"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}

func (h *BookingHandler) ListMine(c *gin.Context) {
	bookings, err := h.bookingRepo.ListByUser(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}
	booking, err := h.bookingRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	if booking.UserID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your booking"})
		return
	}
	if booking.Status == domain.BookingStatusCancelled {
		c.JSON(http.StatusOK, gin.H{"booking": booking})
		return
	}
	if err := h.bookingRepo.CancelWithSpot(booking); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel booking"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}
