package handler

import (
	"net/http"
	"strconv"

	"photohunt/internal/models"
	"photohunt/internal/repository"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	userRepo    *repository.UserRepository
	eventRepo   *repository.EventRepository
	bookingRepo *repository.BookingRepository
	paymentRepo *repository.PaymentRepository
	webhookRepo *repository.WebhookEventRepository
	auditRepo   *repository.AuditLogRepository
}

func NewAdminHandler(
	userRepo *repository.UserRepository,
	eventRepo *repository.EventRepository,
	bookingRepo *repository.BookingRepository,
	paymentRepo *repository.PaymentRepository,
	webhookRepo *repository.WebhookEventRepository,
	auditRepo *repository.AuditLogRepository,
) *AdminHandler {
	return &AdminHandler{
		userRepo:    userRepo,
		eventRepo:   eventRepo,
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		webhookRepo: webhookRepo,
		auditRepo:   auditRepo,
	}
}

// userRow is one entry of the admin user table: the profile plus contact
// phone pulled from the user's earliest booking and the titles of the events
// they booked.
type userRow struct {
	models.User
	Phone        string   `json:"phone"`
	BookedEvents []string `json:"booked_events"`
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	users, total, err := h.userRepo.List(c.Query("search"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}

	titleCache := make(map[uint]string)
	rows := make([]userRow, 0, len(users))
	for _, u := range users {
		row := userRow{User: u}
		if b, err := h.bookingRepo.FirstByUser(u.ID); err == nil {
			row.Phone = b.ContactPhone
		}
		eventIDs, _ := h.bookingRepo.ListEventIDsByUser(u.ID)
		for _, id := range eventIDs {
			title, ok := titleCache[id]
			if !ok {
				if ev, err := h.eventRepo.GetByID(id); err == nil {
					title = ev.Title
				}
				titleCache[id] = title
			}
			if title != "" {
				row.BookedEvents = append(row.BookedEvents, title)
			}
		}
		rows = append(rows, row)
	}

	c.JSON(http.StatusOK, gin.H{
		"users": rows,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// editableUserFields is the whitelist for admin profile patches. Credentials
// and identity links are never patchable here.
var editableUserFields = map[string]bool{
	"name":                true,
	"surname":             true,
	"tax_id":              true,
	"address":             true,
	"instagram":           true,
	"membership_years":    true,
	"current_year_member": true,
	"role":                true,
}

func (h *AdminHandler) PatchUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	var patch map[string]interface{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fields := make(map[string]interface{}, len(patch))
	for k, v := range patch {
		if editableUserFields[k] {
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no editable fields in request"})
		return
	}
	if err := h.userRepo.UpdateFields(uint(id), fields); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}
	user, err := h.userRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	if err := h.userRepo.Delete(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	users, _ := h.userRepo.Count()
	events, _ := h.eventRepo.Count()
	bookings, _ := h.bookingRepo.Count()
	payments, _ := h.paymentRepo.Count()
	c.JSON(http.StatusOK, gin.H{
		"users":    users,
		"events":   events,
		"bookings": bookings,
		"payments": payments,
	})
}

func (h *AdminHandler) ListWebhookEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	events, err := h.webhookRepo.List(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list webhook events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *AdminHandler) ListAuditLog(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	entries, err := h.auditRepo.List(c.Query("action"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list audit log"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
