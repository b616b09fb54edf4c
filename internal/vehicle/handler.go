package vehicle

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/auth"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/fleet"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/pagination"
)

// Handler menampung dependency untuk handler kendaraan
type Handler struct {
	DB *gorm.DB
}

// NewHandler membuat handler baru
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db}
}

// RegisterRoutes mendaftarkan semua route kendaraan
func (h *Handler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/vehicles", h.ListVehicles)
	router.POST("/vehicles", h.CreateVehicle)
	router.GET("/vehicles/:id", h.GetVehicleByID)
	router.PUT("/vehicles/:id", h.UpdateVehicle)
	router.DELETE("/vehicles/:id", h.DeleteVehicle)
}

func parseIDParam(c *gin.Context) (int64, bool) {
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

func parseBoolQuery(c *gin.Context, key string) (*bool, bool) {
	s := c.Query(key)
	if s == "" {
		return nil, true
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "invalid " + key + " parameter"})
		return nil, false
	}
	return &b, true
}

func (h *Handler) ListVehicles(c *gin.Context) {
	if _, ok := auth.GetCurrentUser(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	p := pagination.ParsePagination(c)
	if c.IsAborted() {
		return
	}

	query := h.DB.Model(&Vehicle{})

	// ?active=, ?onHold=, ?offTheRoad=, ?q=
	active, ok := parseBoolQuery(c, "active")
	if !ok {
		return
	}
	if active != nil {
		query = query.Where("active = ?", *active)
	}
	onHold, ok := parseBoolQuery(c, "onHold")
	if !ok {
		return
	}
	if onHold != nil {
		query = query.Where("on_hold = ?", *onHold)
	}
	offRoad, ok := parseBoolQuery(c, "offTheRoad")
	if !ok {
		return
	}
	if offRoad != nil {
		query = query.Where("off_the_road = ?", *offRoad)
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		query = query.Where("LOWER(registration_number) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}

	var vehicles []Vehicle
	if err := query.Order("id").Limit(p.Limit).Offset(p.Offset).Find(&vehicles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": vehicles, "pagination": p.Meta(total)})
}

func (h *Handler) CreateVehicle(c *gin.Context) {
	// 1. Ambil current user
	if _, ok := auth.GetCurrentUser(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "user not in context",
		})
		return
	}

	// 2. Ambil body request
	var req VehicleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "body bukan JSON valid",
		})
		return
	}

	if strings.TrimSpace(req.RegistrationNumber) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "registrationNumber wajib diisi",
		})
		return
	}

	v := Vehicle{
		RegistrationNumber: strings.ToUpper(strings.TrimSpace(req.RegistrationNumber)),
		Make:               req.Make,
		Model:              req.Model,
		Seats:              req.Seats,
		OwnerEmail:         req.OwnerEmail,
		Active:             true,
	}

	// 3. Tanggal sertifikat (YYYY-MM-DD)
	if err := applyDates(&v, req.RegistrationExpiryDate, req.PlateExpiryDate, req.InsuranceExpiryDate,
		req.MOTDate, req.TaxDate, req.LolerExpiryDate, req.FirstAidExpiry, req.FireExtinguisherExpiry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}
	v.OffTheRoad = !fleet.Compliant(v.Certificates(), timeNow())

	if err := h.DB.Create(&v).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "db_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, v)
}

func applyDates(v *Vehicle, registration, plate, insurance, mot, tax, loler, firstAid, fire *string) error {
	for _, f := range []struct {
		dst **time.Time
		src *string
	}{
		{&v.RegistrationExpiryDate, registration},
		{&v.PlateExpiryDate, plate},
		{&v.InsuranceExpiryDate, insurance},
		{&v.MOTDate, mot},
		{&v.TaxDate, tax},
		{&v.LolerExpiryDate, loler},
		{&v.FirstAidExpiry, firstAid},
		{&v.FireExtinguisherExpiry, fire},
	} {
		if err := fleet.ApplyDate(f.dst, f.src); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) GetVehicleByID(c *gin.Context) {
	// 1. Ambil current user dari context (di-set oleh AuthMiddleware)
	if _, ok := auth.GetCurrentUser(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "user not in context",
		})
		return
	}

	// 2. Ambil ID kendaraan dari URL /api/vehicles/:id
	id, ok := parseIDParam(c)
	if !ok {
		return // response sudah dikirim di parseIDParam
	}

	var v Vehicle
	if err := h.DB.First(&v, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "kendaraan tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "db_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vehicle":      v,
		"certificates": v.Certificates(),
	})
}

func (h *Handler) UpdateVehicle(c *gin.Context) {
	if _, ok := auth.GetCurrentUser(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "user not in context",
		})
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req VehicleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "body bukan JSON valid",
		})
		return
	}

	var v Vehicle
	if err := h.DB.First(&v, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "kendaraan tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "db_error",
			"message": err.Error(),
		})
		return
	}

	// Terapkan hanya field yang diperbolehkan
	if req.Make != nil {
		v.Make = *req.Make
	}
	if req.Model != nil {
		v.Model = *req.Model
	}
	if req.Seats != nil {
		v.Seats = *req.Seats
	}
	if req.OwnerEmail != nil {
		v.OwnerEmail = req.OwnerEmail
	}
	if req.Active != nil {
		v.Active = *req.Active
	}
	if err := applyDates(&v, req.RegistrationExpiryDate, req.PlateExpiryDate, req.InsuranceExpiryDate,
		req.MOTDate, req.TaxDate, req.LolerExpiryDate, req.FirstAidExpiry, req.FireExtinguisherExpiry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}
	v.OffTheRoad = !fleet.Compliant(v.Certificates(), timeNow())

	if err := h.DB.Save(&v).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "db_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, v)
}

// DeleteVehicle menonaktifkan kendaraan (soft delete), hanya ADMIN.
func (h *Handler) DeleteVehicle(c *gin.Context) {
	cu, ok := auth.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "user not in context",
		})
		return
	}
	if !cu.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "hanya ADMIN yang boleh menghapus kendaraan",
		})
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	res := h.DB.Model(&Vehicle{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "db_error",
			"message": res.Error.Error(),
		})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "kendaraan tidak ditemukan",
		})
		return
	}

	c.Status(http.StatusNoContent)
}
