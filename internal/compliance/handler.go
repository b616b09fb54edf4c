package compliance

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/apperr"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/auth"
)

type Handler struct {
	Tracker *Tracker
	Redact  bool
}

func NewHandler(t *Tracker, redact bool) *Handler {
	return &Handler{Tracker: t, Redact: redact}
}

func (h *Handler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/notifications/:id/case", h.GetCaseForNotification)
	router.PUT("/compliance-cases/:id", h.UpdateTracking)
	router.GET("/compliance-cases/:id/updates", h.ListUpdates)
	router.POST("/compliance-cases/:id/updates", h.AddUpdate)
}

func (h *Handler) pathID(c *gin.Context) (int64, bool) {
	if _, ok := auth.GetCurrentUser(c); !ok {
		apperr.Respond(c, apperr.ErrAuth, h.Redact)
		return 0, false
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		apperr.Respond(c, apperr.Invalid("id must be a number"), h.Redact)
		return 0, false
	}
	return id, true
}

func (h *Handler) GetCaseForNotification(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	cs, err := h.Tracker.ForNotification(c.Request.Context(), id)
	if err != nil {
		apperr.Respond(c, err, h.Redact)
		return
	}
	c.JSON(http.StatusOK, cs)
}

func (h *Handler) UpdateTracking(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var in TrackingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		apperr.Respond(c, apperr.Invalid("invalid JSON body"), h.Redact)
		return
	}
	cs, err := h.Tracker.UpdateTracking(c.Request.Context(), id, in)
	if err != nil {
		apperr.Respond(c, err, h.Redact)
		return
	}
	c.JSON(http.StatusOK, cs)
}

func (h *Handler) ListUpdates(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	updates, err := h.Tracker.ListUpdates(c.Request.Context(), id)
	if err != nil {
		apperr.Respond(c, err, h.Redact)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": updates})
}

func (h *Handler) AddUpdate(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var body struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apperr.Respond(c, apperr.Invalid("invalid JSON body"), h.Redact)
		return
	}
	u, err := h.Tracker.AddUpdate(c.Request.Context(), id, body.Notes)
	if err != nil {
		apperr.Respond(c, err, h.Redact)
		return
	}
	c.JSON(http.StatusCreated, u)
}
