package school

import (
	"errors"
	"net/http"
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

type SchoolRequest struct {
	Name         *string `json:"name,omitempty"`
	Code         *string `json:"code,omitempty"`
	Address      *string `json:"address,omitempty"`
	ContactEmail *string `json:"contactEmail,omitempty"`
	// Active can be toggled by ADMIN
	Active *bool `json:"active,omitempty"`
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/schools", h.ListSchools)
	r.GET("/schools/:id", h.GetSchoolByID)
	r.POST("/schools", h.CreateSchool)
	r.PUT("/schools/:id", h.UpdateSchool)
	r.DELETE("/schools/:id", h.DeleteSchool)
}

// ListSchools lists schools ordered by name.
func (h *Handler) ListSchools(c *gin.Context) {
	if _, ok := auth.GetCurrentUser(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	p := pagination.ParsePagination(c)
	if c.IsAborted() {
		return
	}

	var schools []School
	var total int64

	query := h.DB.Model(&School{})
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}

	if err := query.Order("name, id").Limit(p.Limit).Offset(p.Offset).Find(&schools).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": schools, "pagination": p.Meta(total)})
}

func (h *Handler) GetSchoolByID(c *gin.Context) {
	if _, ok := auth.GetCurrentUser(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var s School
	if err := h.DB.First(&s, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, s)
}

// CreateSchool. Only ADMIN allowed.
func (h *Handler) CreateSchool(c *gin.Context) {
	cu, ok := auth.GetCurrentUser(c)
	if !ok || !cu.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "hanya ADMIN"})
		return
	}

	var req SchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "body bukan JSON valid"})
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "name wajib diisi"})
		return
	}

	s := School{
		Name:         strings.TrimSpace(*req.Name),
		Code:         req.Code,
		Address:      req.Address,
		ContactEmail: req.ContactEmail,
		Active:       true,
	}
	if err := h.DB.Create(&s).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, s)
}

// UpdateSchool updates fields of a school. Only ADMIN allowed.
func (h *Handler) UpdateSchool(c *gin.Context) {
	cu, ok := auth.GetCurrentUser(c)
	if !ok || !cu.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "hanya ADMIN"})
		return
	}

	var req SchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "body bukan JSON valid"})
		return
	}

	var s School
	if err := h.DB.First(&s, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Code != nil {
		updates["code"] = *req.Code
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.ContactEmail != nil {
		updates["contact_email"] = *req.ContactEmail
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "tidak ada field yang diupdate"})
		return
	}

	if err := h.DB.Model(&s).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}
	if err := h.DB.First(&s, s.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, s)
}

// DeleteSchool: soft delete by setting active=false. Routes keep their school_id.
func (h *Handler) DeleteSchool(c *gin.Context) {
	cu, ok := auth.GetCurrentUser(c)
	if !ok || !cu.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "hanya ADMIN"})
		return
	}

	res := h.DB.Model(&School{}).Where("id = ?", c.Param("id")).Update("active", false)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}

	c.Status(http.StatusNoContent)
}
