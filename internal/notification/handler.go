package notification

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/apperr"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/auth"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/fleet"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/pagination"
)

type Handler struct {
	Dispatcher *Dispatcher
	// Production hides emailContent and database error messages.
	Production bool
}

func NewHandler(d *Dispatcher, production bool) *Handler {
	return &Handler{Dispatcher: d, Production: production}
}

// Daftarkan route notifications (butuh login)
func (h *Handler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/notifications", h.ListNotifications)
	router.GET("/notifications/:id", h.GetNotification)
}

// RegisterSendRoute dipisah supaya bisa diberi rate limiter sendiri.
func (h *Handler) RegisterSendRoute(router gin.IRoutes) {
	router.POST("/notifications/send-email", h.SendEmail)
}

// RegisterPublicRoutes: lookup by email token for the upload and booking pages.
func (h *Handler) RegisterPublicRoutes(router gin.IRoutes) {
	router.GET("/public/notifications/:token", h.GetByToken)
}

type sendEmailRequest struct {
	NotificationID         int64   `json:"notificationId"`
	Subject                *string `json:"subject"`
	EmailBody              *string `json:"emailBody"`
	Hold                   *bool   `json:"hold"`
	IncludeAppointmentLink *bool   `json:"includeAppointmentLink"`
}

func (h *Handler) SendEmail(c *gin.Context) {
	cu, ok := auth.GetCurrentUser(c)
	if !ok {
		apperr.Respond(c, apperr.ErrAuth, h.Production)
		return
	}

	var req sendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Invalid("invalid JSON body"), h.Production)
		return
	}
	if req.NotificationID <= 0 {
		apperr.Respond(c, apperr.Invalid("notificationId is required"), h.Production)
		return
	}

	identity := cu.Identity()
	res, err := h.Dispatcher.Send(c.Request.Context(), SendInput{
		NotificationID:         req.NotificationID,
		Subject:                req.Subject,
		Body:                   req.EmailBody,
		Hold:                   req.Hold,
		IncludeAppointmentLink: req.IncludeAppointmentLink,
		Origin:                 c.GetHeader("Origin"),
		Actor:                  &identity,
	})
	if err != nil {
		apperr.Respond(c, err, h.Production)
		return
	}

	message := "Email sent successfully"
	if res.SMTPSkipped {
		message = "SMTP not configured, email was not delivered but the notification was marked as sent"
	}
	if res.Hold != nil {
		message += " and the entity was put on hold"
	}

	out := gin.H{"success": true, "message": message}
	if !h.Production {
		out["emailContent"] = gin.H{
			"to":              res.Message.To,
			"subject":         res.Message.Subject,
			"body":            res.Message.Text,
			"html":            res.Message.HTML,
			"uploadLink":      res.Links.Upload,
			"appointmentLink": res.Links.Appointment,
			"smtpSkipped":     res.SMTPSkipped,
		}
	}
	c.JSON(http.StatusOK, out)
}

// ListNotifications: ?status= ?entityType= ?entityId= ?expiringWithinDays= plus pagination.
func (h *Handler) ListNotifications(c *gin.Context) {
	if _, ok := auth.GetCurrentUser(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	p := pagination.ParsePagination(c)
	if c.IsAborted() {
		return
	}

	var f Filter
	if s := strings.ToLower(strings.TrimSpace(c.Query("status"))); s != "" {
		f.Status = Status(s)
		if !f.Status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "bad_request",
				"message": "status harus salah satu dari: pending, sent, failed",
			})
			return
		}
	}
	if s := c.Query("entityType"); s != "" {
		kind, ok := fleet.ParseKind(s)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "invalid entityType parameter"})
			return
		}
		f.Ref.Kind = kind
	}
	if s := c.Query("entityId"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "invalid entityId parameter"})
			return
		}
		f.Ref.ID = id
	}
	if s := c.Query("expiringWithinDays"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "invalid expiringWithinDays parameter"})
			return
		}
		f.ExpiringWithinDays = &n
	}

	items, total, err := h.Dispatcher.Store.List(c.Request.Context(), f, p.Limit, p.Offset)
	if err != nil {
		apperr.Respond(c, err, h.Production)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items, "pagination": p.Meta(total)})
}

func (h *Handler) GetNotification(c *gin.Context) {
	if _, ok := auth.GetCurrentUser(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "id harus berupa angka"})
		return
	}

	n, err := h.Dispatcher.Store.Get(c.Request.Context(), id)
	if err != nil {
		apperr.Respond(c, err, h.Production)
		return
	}
	c.JSON(http.StatusOK, n)
}

// GetByToken returns the minimum a recipient page needs. No recipient email, no ids.
func (h *Handler) GetByToken(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		apperr.Respond(c, apperr.NotFound("Notification"), h.Production)
		return
	}

	ctx := c.Request.Context()
	n, err := h.Dispatcher.Store.ByToken(ctx, token)
	if err != nil {
		apperr.Respond(c, err, h.Production)
		return
	}
	name, err := h.Dispatcher.EntityName(ctx, n.Ref())
	if err != nil {
		apperr.Respond(c, err, true)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entityType":        n.EntityType,
		"entityName":        name,
		"certificateType":   n.CertificateType,
		"certificateName":   n.CertificateName,
		"expiryDate":        formatDate(n.ExpiryDate),
		"daysUntilExpiry":   n.DaysUntilExpiry,
		"documentsRequired": fleet.RequiredDocuments(n.EntityType, n.CertificateType),
	})
}
