package driver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/auth"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/fleet"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/pagination"
)

type Handler struct {
	DB *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db}
}

func (h *Handler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/drivers", h.ListDrivers)
	router.POST("/drivers", h.CreateDriver)
	router.GET("/drivers/:id", h.GetDriver)
	router.PUT("/drivers/:id", h.UpdateDriver)
	router.DELETE("/drivers/:id", h.DeleteDriver)
}

func parseEmployeeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "employee id harus berupa angka"})
		return 0, false
	}
	return id, true
}

func (h *Handler) find(c *gin.Context, id int64) (Driver, bool) {
	var d Driver
	if err := h.DB.First(&d, "employee_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "driver tidak ditemukan"})
			return d, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return d, false
	}
	return d, true
}

// ListDrivers supports ?active=, ?canWork=, ?onHold= and ?q= (name search).
func (h *Handler) ListDrivers(c *gin.Context) {
	if _, ok := auth.GetCurrentUser(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	p := pagination.ParsePagination(c)
	if c.IsAborted() {
		return
	}

	query := h.DB.Model(&Driver{})
	for param, column := range map[string]string{"active": "active", "canWork": "can_work", "onHold": "on_hold"} {
		s := c.Query(param)
		if s == "" {
			continue
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "invalid " + param + " parameter"})
			return
		}
		query = query.Where(column+" = ?", b)
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		query = query.Where("LOWER(full_name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}

	var drivers []Driver
	if err := query.Order("employee_id").Limit(p.Limit).Offset(p.Offset).Find(&drivers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": drivers, "pagination": p.Meta(total)})
}

func (h *Handler) CreateDriver(c *gin.Context) {
	if _, ok := auth.GetCurrentUser(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "body bukan JSON valid"})
		return
	}
	if req.EmployeeID <= 0 || strings.TrimSpace(req.FullName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "employeeId dan fullName wajib diisi"})
		return
	}

	d := Driver{
		EmployeeID: req.EmployeeID,
		FullName:   strings.TrimSpace(req.FullName),
		Email:      req.Email,
		Phone:      req.Phone,
		Active:     true,
	}
	if err := d.applyDates(req.TASBadgeExpiryDate, req.TaxiBadgeExpiryDate, req.DBSExpiryDate,
		req.FirstAidCertificateExpiryDate, req.DrivingLicenseExpiryDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}
	// gate awal dihitung langsung, detector akan menghitung ulang setiap run
	d.CanWork = fleet.Compliant(d.Certificates(), timeNow())

	if err := h.DB.Create(&d).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, d)
}

func (h *Handler) GetDriver(c *gin.Context) {
	if _, ok := auth.GetCurrentUser(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, ok := parseEmployeeID(c)
	if !ok {
		return
	}
	d, ok := h.find(c, id)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver": d, "certificates": d.Certificates()})
}

func (h *Handler) UpdateDriver(c *gin.Context) {
	if _, ok := auth.GetCurrentUser(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, ok := parseEmployeeID(c)
	if !ok {
		return
	}

	var req UpdateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "body bukan JSON valid"})
		return
	}

	d, ok := h.find(c, id)
	if !ok {
		return
	}

	if req.FullName != nil {
		d.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		d.Email = req.Email
	}
	if req.Phone != nil {
		d.Phone = req.Phone
	}
	if req.Active != nil {
		d.Active = *req.Active
	}
	if err := d.applyDates(req.TASBadgeExpiryDate, req.TaxiBadgeExpiryDate, req.DBSExpiryDate,
		req.FirstAidCertificateExpiryDate, req.DrivingLicenseExpiryDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}
	d.CanWork = fleet.Compliant(d.Certificates(), timeNow())

	if err := h.DB.Save(&d).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, d)
}

// DeleteDriver = soft delete (active = false), ADMIN only.
func (h *Handler) DeleteDriver(c *gin.Context) {
	cu, ok := auth.GetCurrentUser(c)
	if !ok || !cu.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "hanya ADMIN yang boleh menghapus driver"})
		return
	}
	id, ok := parseEmployeeID(c)
	if !ok {
		return
	}

	res := h.DB.Model(&Driver{}).Where("employee_id = ?", id).Update("active", false)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "driver tidak ditemukan"})
		return
	}

	c.Status(http.StatusNoContent)
}
