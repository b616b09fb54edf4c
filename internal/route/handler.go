package route

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

// daftarkan route untuk rute sekolah
func (h *Handler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/routes", h.listRoutes)
	router.POST("/routes", h.CreateRoute)
	router.GET("/routes/:id", h.GetRouteDetail)
	router.PUT("/routes/:id", h.UpdateRoute)
	router.DELETE("/routes/:id", h.DeleteRoute)
	// path : /vehicles/:id/routes
	router.GET("/vehicles/:id/routes", h.listVehicleRoutes)
}

// helper ambil id dari param
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "id harus berupa angka",
		})
		return 0, false
	}
	return id, true
}

// RouteRow adalah baris list yang sudah di-join dengan nama school.
type RouteRow struct {
	Route
	SchoolName *string `json:"schoolName" gorm:"column:school_name"`
}

// listRoutes: filter ?vehicleId= ?driverId= ?assistantId= ?schoolId= ?onHold= ?q=
func (h *Handler) listRoutes(c *gin.Context) {
	if _, ok := auth.GetCurrentUser(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	p := pagination.ParsePagination(c)
	if c.IsAborted() {
		return
	}

	// Note: do not use Select("r.*") when counting because GORM may translate Count incorrectly.
	base := h.DB.Table("routes r").Joins("LEFT JOIN schools s ON s.id = r.school_id")
	for param, column := range map[string]string{
		"vehicleId":   "r.vehicle_id",
		"driverId":    "r.driver_id",
		"assistantId": "r.passenger_assistant_id",
		"schoolId":    "r.school_id",
	} {
		s := c.Query(param)
		if s == "" {
			continue
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "invalid " + param + " parameter"})
			return
		}
		base = base.Where(column+" = ?", id)
	}
	if s := c.Query("onHold"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "invalid onHold parameter"})
			return
		}
		base = base.Where("r.on_hold = ?", b)
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		base = base.Where("LOWER(r.route_number) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}

	var rows []RouteRow
	if err := base.Select("r.*, s.name AS school_name").
		Order("r.route_number, r.id").
		Limit(p.Limit).
		Offset(p.Offset).
		Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows, "pagination": p.Meta(total)})
}

func (h *Handler) listVehicleRoutes(c *gin.Context) {
	if _, ok := auth.GetCurrentUser(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	vehicleID, ok := parseID(c)
	if !ok {
		return
	}

	var routes []Route
	if err := h.DB.Where("vehicle_id = ?", vehicleID).Order("id").Find(&routes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": routes})
}

func (h *Handler) CreateRoute(c *gin.Context) {
	if _, ok := auth.GetCurrentUser(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "body bukan JSON valid"})
		return
	}
	if req.RouteNumber == nil || strings.TrimSpace(*req.RouteNumber) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "routeNumber wajib diisi"})
		return
	}

	rt := Route{Active: true}
	req.apply(&rt)
	if err := h.DB.Create(&rt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, rt)
}

func (h *Handler) GetRouteDetail(c *gin.Context) {
	if _, ok := auth.GetCurrentUser(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var rt Route
	if err := h.DB.First(&rt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "route tidak ditemukan"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rt)
}

// UpdateRoute mengganti assignment. Status hold tidak ikut diubah di sini.
func (h *Handler) UpdateRoute(c *gin.Context) {
	if _, ok := auth.GetCurrentUser(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "body bukan JSON valid"})
		return
	}

	var rt Route
	if err := h.DB.First(&rt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "route tidak ditemukan"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}
	req.apply(&rt)
	if err := h.DB.Save(&rt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rt)
}

func (h *Handler) DeleteRoute(c *gin.Context) {
	cu, ok := auth.GetCurrentUser(c)
	if !ok || !cu.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "hanya ADMIN yang boleh menghapus route"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	res := h.DB.Model(&Route{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "route tidak ditemukan"})
		return
	}
	c.Status(http.StatusNoContent)
}
