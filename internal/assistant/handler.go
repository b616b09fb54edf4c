package assistant

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/auth"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/pagination"
)

type Handler struct {
	DB *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db}
}

func (h *Handler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/assistants", h.List)
	router.POST("/assistants", h.Create)
	router.GET("/assistants/:id", h.Get)
	router.PUT("/assistants/:id", h.Update)
	router.DELETE("/assistants/:id", h.Delete)
}

func (h *Handler) load(c *gin.Context) (PassengerAssistant, bool) {
	var a PassengerAssistant
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "id harus berupa angka"})
		return a, false
	}
	if err := h.DB.First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "passenger assistant tidak ditemukan"})
			return a, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return a, false
	}
	return a, true
}

func (h *Handler) List(c *gin.Context) {
	if _, ok := auth.GetCurrentUser(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	p := pagination.ParsePagination(c)
	if c.IsAborted() {
		return
	}

	query := h.DB.Model(&PassengerAssistant{})
	if s := c.Query("active"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "invalid active parameter"})
			return
		}
		query = query.Where("active = ?", b)
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		query = query.Where("LOWER(full_name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}
	var out []PassengerAssistant
	if err := query.Order("id").Limit(p.Limit).Offset(p.Offset).Find(&out).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": out, "pagination": p.Meta(total)})
}

func (h *Handler) Create(c *gin.Context) {
	if _, ok := auth.GetCurrentUser(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "body bukan JSON valid"})
		return
	}
	if req.FullName == nil || strings.TrimSpace(*req.FullName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "fullName wajib diisi"})
		return
	}

	a := PassengerAssistant{Active: true}
	if err := req.apply(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}
	if err := h.DB.Create(&a).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c *gin.Context) {
	if _, ok := auth.GetCurrentUser(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	a, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"assistant": a, "certificates": a.Certificates()})
}

func (h *Handler) Update(c *gin.Context) {
	if _, ok := auth.GetCurrentUser(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "body bukan JSON valid"})
		return
	}
	a, ok := h.load(c)
	if !ok {
		return
	}
	if err := req.apply(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}
	if err := h.DB.Save(&a).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) Delete(c *gin.Context) {
	cu, ok := auth.GetCurrentUser(c)
	if !ok || !cu.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	a, ok := h.load(c)
	if !ok {
		return
	}
	if err := h.DB.Model(&a).Update("active", false).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
