package route

import (
	"time"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/fleet"
)

// Route = satu rute antar-jemput sekolah. Vehicle dan crew boleh kosong.
type Route struct {
	ID                   int64  `json:"id"                   gorm:"column:id;primaryKey"`
	RouteNumber          string `json:"routeNumber"          gorm:"column:route_number"`
	SchoolID             *int64 `json:"schoolId"             gorm:"column:school_id;index"`
	VehicleID            *int64 `json:"vehicleId"            gorm:"column:vehicle_id;index"`
	DriverID             *int64 `json:"driverId"             gorm:"column:driver_id;index"`
	PassengerAssistantID *int64 `json:"passengerAssistantId" gorm:"column:passenger_assistant_id;index"`
	Active               bool   `json:"active"               gorm:"column:active"`

	fleet.Hold `gorm:"embedded"`

	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"column:updated_at"`
}

// nama tabel di DB
func (Route) TableName() string {
	return fleet.RoutesTable
}

// RouteRequest dipakai untuk create dan update. Pointer nil = tidak diubah.
// Assignment dikosongkan dengan mengirim 0.
type RouteRequest struct {
	RouteNumber          *string `json:"routeNumber,omitempty"`
	SchoolID             *int64  `json:"schoolId,omitempty"`
	VehicleID            *int64  `json:"vehicleId,omitempty"`
	DriverID             *int64  `json:"driverId,omitempty"`
	PassengerAssistantID *int64  `json:"passengerAssistantId,omitempty"`
	Active               *bool   `json:"active,omitempty"`
}

func assign(dst **int64, v *int64) {
	if v == nil {
		return
	}
	if *v <= 0 {
		*dst = nil
		return
	}
	id := *v
	*dst = &id
}

func (r RouteRequest) apply(rt *Route) {
	if r.RouteNumber != nil {
		rt.RouteNumber = *r.RouteNumber
	}
	assign(&rt.SchoolID, r.SchoolID)
	assign(&rt.VehicleID, r.VehicleID)
	assign(&rt.DriverID, r.DriverID)
	assign(&rt.PassengerAssistantID, r.PassengerAssistantID)
	if r.Active != nil {
		rt.Active = *r.Active
	}
}
