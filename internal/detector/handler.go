package detector

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/apperr"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/auth"
)

type Handler struct {
	Detector *Detector
	Redact   bool
}

func NewHandler(d *Detector, redact bool) *Handler {
	return &Handler{Detector: d, Redact: redact}
}

func (h *Handler) RegisterRoutes(router gin.IRoutes) {
	router.POST("/notifications/detect", h.Detect)
}

// Detect runs the detector on demand. ADMIN only.
func (h *Handler) Detect(c *gin.Context) {
	cu, ok := auth.GetCurrentUser(c)
	if !ok {
		apperr.Respond(c, apperr.ErrAuth, h.Redact)
		return
	}
	if !cu.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "hanya ADMIN"})
		return
	}

	res, err := h.Detector.Run(c.Request.Context())
	if err != nil {
		apperr.Respond(c, err, h.Redact)
		return
	}
	c.JSON(http.StatusOK, res)
}
