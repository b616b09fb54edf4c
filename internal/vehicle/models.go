package vehicle

import (
	"time"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/fleet"
)

var timeNow = time.Now

// Model untuk tabel vehicles
type Vehicle struct {
	ID                 int64   `json:"id"                 gorm:"column:id;primaryKey"`
	RegistrationNumber string  `json:"registrationNumber" gorm:"column:registration_number"`
	Make               string  `json:"make"               gorm:"column:make"`
	Model              string  `json:"model"              gorm:"column:model"`
	Seats              int     `json:"seats"              gorm:"column:seats"`
	OwnerEmail         *string `json:"ownerEmail"         gorm:"column:owner_email"`
	Active             bool    `json:"active"             gorm:"column:active"`
	// OffTheRoad is the certificate gate; recomputed by the detector.
	OffTheRoad bool `json:"offTheRoad" gorm:"column:off_the_road"`

	RegistrationExpiryDate *time.Time `json:"registrationExpiryDate" gorm:"column:registration_expiry_date"`
	PlateExpiryDate        *time.Time `json:"plateExpiryDate"        gorm:"column:plate_expiry_date"`
	InsuranceExpiryDate    *time.Time `json:"insuranceExpiryDate"    gorm:"column:insurance_expiry_date"`
	MOTDate                *time.Time `json:"motDate"                gorm:"column:mot_date"`
	TaxDate                *time.Time `json:"taxDate"                gorm:"column:tax_date"`
	LolerExpiryDate        *time.Time `json:"lolerExpiryDate"        gorm:"column:loler_expiry_date"`
	FirstAidExpiry         *time.Time `json:"firstAidExpiry"         gorm:"column:first_aid_expiry"`
	FireExtinguisherExpiry *time.Time `json:"fireExtinguisherExpiry" gorm:"column:fire_extinguisher_expiry"`

	fleet.Hold `gorm:"embedded"`

	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"column:updated_at"`
}

func (Vehicle) TableName() string {
	return fleet.VehiclesTable
}

func (v Vehicle) Ref() fleet.Ref {
	return fleet.Ref{Kind: fleet.KindVehicle, ID: v.ID}
}

func (v Vehicle) Certificates() []fleet.Certificate {
	return []fleet.Certificate{
		{Type: "registration_expiry_date", Name: "Vehicle Registration", Expiry: v.RegistrationExpiryDate, Required: true},
		{Type: "plate_expiry_date", Name: "Plate Licence", Expiry: v.PlateExpiryDate, Required: true},
		{Type: "insurance_expiry_date", Name: "Insurance", Expiry: v.InsuranceExpiryDate, Required: true},
		{Type: "mot_date", Name: "MOT", Expiry: v.MOTDate, Required: true},
		{Type: "tax_date", Name: "Road Tax", Expiry: v.TaxDate, Required: true},
		{Type: "loler_expiry_date", Name: "LOLER Inspection", Expiry: v.LolerExpiryDate},
		{Type: "first_aid_expiry", Name: "First Aid Kit", Expiry: v.FirstAidExpiry},
		{Type: "fire_extinguisher_expiry", Name: "Fire Extinguisher", Expiry: v.FireExtinguisherExpiry},
	}
}

// dipakai saat create vehicle
type VehicleCreateRequest struct {
	RegistrationNumber string  `json:"registrationNumber"`
	Make               string  `json:"make"`
	Model              string  `json:"model"`
	Seats              int     `json:"seats"`
	OwnerEmail         *string `json:"ownerEmail,omitempty"`

	RegistrationExpiryDate *string `json:"registrationExpiryDate,omitempty"`
	PlateExpiryDate        *string `json:"plateExpiryDate,omitempty"`
	InsuranceExpiryDate    *string `json:"insuranceExpiryDate,omitempty"`
	MOTDate                *string `json:"motDate,omitempty"`
	TaxDate                *string `json:"taxDate,omitempty"`
	LolerExpiryDate        *string `json:"lolerExpiryDate,omitempty"`
	FirstAidExpiry         *string `json:"firstAidExpiry,omitempty"`
	FireExtinguisherExpiry *string `json:"fireExtinguisherExpiry,omitempty"`
}

// dipakai saat update; field nil = tidak diubah
type VehicleUpdateRequest struct {
	Make       *string `json:"make,omitempty"`
	Model      *string `json:"model,omitempty"`
	Seats      *int    `json:"seats,omitempty"`
	OwnerEmail *string `json:"ownerEmail,omitempty"`
	Active     *bool   `json:"active,omitempty"`

	RegistrationExpiryDate *string `json:"registrationExpiryDate,omitempty"`
	PlateExpiryDate        *string `json:"plateExpiryDate,omitempty"`
	InsuranceExpiryDate    *string `json:"insuranceExpiryDate,omitempty"`
	MOTDate                *string `json:"motDate,omitempty"`
	TaxDate                *string `json:"taxDate,omitempty"`
	LolerExpiryDate        *string `json:"lolerExpiryDate,omitempty"`
	FirstAidExpiry         *string `json:"firstAidExpiry,omitempty"`
	FireExtinguisherExpiry *string `json:"fireExtinguisherExpiry,omitempty"`
	// ❌ tidak ada RegistrationNumber -> tidak bisa diubah
}
