package hold

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/apperr"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/auth"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/fleet"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/user"
)

// Notifications resolves the entity a notification was raised for.
type Notifications interface {
	RefOf(ctx context.Context, id int64) (fleet.Ref, error)
}

type Handler struct {
	Holds         *Propagator
	Notifications Notifications
	Users         user.ActingUserResolver
	Redact        bool
}

func NewHandler(p *Propagator, notifications Notifications, users user.ActingUserResolver, redact bool) *Handler {
	return &Handler{Holds: p, Notifications: notifications, Users: users, Redact: redact}
}

func (h *Handler) RegisterRoutes(router gin.IRoutes) {
	router.POST("/holds", h.ApplyHold)
	router.POST("/holds/clear", h.ClearHold)
}

type applyRequest struct {
	EntityType     string `json:"entityType"`
	EntityID       int64  `json:"entityId"`
	NotificationID int64  `json:"notificationId"`
	Reason         string `json:"reason"`
}

type clearRequest struct {
	EntityType string `json:"entityType"`
	EntityID   int64  `json:"entityId"`
}

func parseRef(entityType string, id int64) (fleet.Ref, error) {
	kind, ok := fleet.ParseKind(entityType)
	if !ok {
		return fleet.Ref{}, apperr.Invalid("entityType must be vehicle, driver or assistant")
	}
	if id <= 0 {
		return fleet.Ref{}, apperr.Invalid("entityId is required")
	}
	return fleet.Ref{Kind: kind, ID: id}, nil
}

// ApplyHold is the manual hold action (outside of an email dispatch).
func (h *Handler) ApplyHold(c *gin.Context) {
	cu, ok := auth.GetCurrentUser(c)
	if !ok {
		apperr.Respond(c, apperr.ErrAuth, h.Redact)
		return
	}
	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Invalid("invalid JSON body"), h.Redact)
		return
	}
	ref, err := parseRef(req.EntityType, req.EntityID)
	if err != nil {
		apperr.Respond(c, err, h.Redact)
		return
	}
	if req.NotificationID <= 0 {
		apperr.Respond(c, apperr.Invalid("notificationId is required"), h.Redact)
		return
	}
	owner, err := h.Notifications.RefOf(c.Request.Context(), req.NotificationID)
	if err != nil {
		apperr.Respond(c, err, h.Redact)
		return
	}
	if owner != ref {
		apperr.Respond(c, apperr.Invalid("notification %d belongs to %s, not %s", req.NotificationID, owner, ref), h.Redact)
		return
	}
	actor, err := h.Users.ResolveActingUserID(c.Request.Context(), cu.Identity())
	if err != nil {
		apperr.Respond(c, apperr.Persistence(err), h.Redact)
		return
	}

	report, err := h.Holds.Apply(c.Request.Context(), Request{
		Ref:            ref,
		NotificationID: req.NotificationID,
		Reason:         req.Reason,
		ActingUserID:   actor,
	})
	if err != nil {
		apperr.Respond(c, err, h.Redact)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "report": report})
}

func (h *Handler) ClearHold(c *gin.Context) {
	cu, ok := auth.GetCurrentUser(c)
	if !ok {
		apperr.Respond(c, apperr.ErrAuth, h.Redact)
		return
	}
	var req clearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Invalid("invalid JSON body"), h.Redact)
		return
	}
	ref, err := parseRef(req.EntityType, req.EntityID)
	if err != nil {
		apperr.Respond(c, err, h.Redact)
		return
	}
	actor, err := h.Users.ResolveActingUserID(c.Request.Context(), cu.Identity())
	if err != nil {
		apperr.Respond(c, apperr.Persistence(err), h.Redact)
		return
	}

	report, err := h.Holds.Clear(c.Request.Context(), ref, actor)
	if err != nil {
		apperr.Respond(c, err, h.Redact)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "report": report})
}
