package driver

import (
	"time"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/fleet"
)

var timeNow = time.Now

// Driver keyed by the employee number.
type Driver struct {
	EmployeeID int64   `json:"employeeId" gorm:"column:employee_id;primaryKey;autoIncrement:false"`
	FullName   string  `json:"fullName"   gorm:"column:full_name"`
	Email      *string `json:"email"      gorm:"column:email"`
	Phone      *string `json:"phone"      gorm:"column:phone"`
	Active     bool    `json:"active"     gorm:"column:active"`
	CanWork    bool    `json:"canWork"    gorm:"column:can_work"`

	TASBadgeExpiryDate            *time.Time `json:"tasBadgeExpiryDate"            gorm:"column:tas_badge_expiry_date"`
	TaxiBadgeExpiryDate           *time.Time `json:"taxiBadgeExpiryDate"           gorm:"column:taxi_badge_expiry_date"`
	DBSExpiryDate                 *time.Time `json:"dbsExpiryDate"                 gorm:"column:dbs_expiry_date"`
	FirstAidCertificateExpiryDate *time.Time `json:"firstAidCertificateExpiryDate" gorm:"column:first_aid_certificate_expiry_date"`
	DrivingLicenseExpiryDate      *time.Time `json:"drivingLicenseExpiryDate"      gorm:"column:driving_license_expiry_date"`

	fleet.Hold `gorm:"embedded"`

	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"column:updated_at"`
}

func (Driver) TableName() string {
	return fleet.DriversTable
}

func (d Driver) Ref() fleet.Ref {
	return fleet.Ref{Kind: fleet.KindDriver, ID: d.EmployeeID}
}

func (d Driver) Certificates() []fleet.Certificate {
	return []fleet.Certificate{
		{Type: "tas_badge_expiry_date", Name: "TAS Badge", Expiry: d.TASBadgeExpiryDate, Required: true},
		{Type: "taxi_badge_expiry_date", Name: "Taxi Badge", Expiry: d.TaxiBadgeExpiryDate},
		{Type: "dbs_expiry_date", Name: "DBS Certificate", Expiry: d.DBSExpiryDate, Required: true},
		{Type: "first_aid_certificate_expiry_date", Name: "First Aid Certificate", Expiry: d.FirstAidCertificateExpiryDate},
		{Type: "driving_license_expiry_date", Name: "Driving Licence", Expiry: d.DrivingLicenseExpiryDate, Required: true},
	}
}

type CreateDriverRequest struct {
	EmployeeID int64   `json:"employeeId"`
	FullName   string  `json:"fullName"`
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`

	TASBadgeExpiryDate            *string `json:"tasBadgeExpiryDate,omitempty"`
	TaxiBadgeExpiryDate           *string `json:"taxiBadgeExpiryDate,omitempty"`
	DBSExpiryDate                 *string `json:"dbsExpiryDate,omitempty"`
	FirstAidCertificateExpiryDate *string `json:"firstAidCertificateExpiryDate,omitempty"`
	DrivingLicenseExpiryDate      *string `json:"drivingLicenseExpiryDate,omitempty"`
}

type UpdateDriverRequest struct {
	FullName *string `json:"fullName,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Active   *bool   `json:"active,omitempty"`

	TASBadgeExpiryDate            *string `json:"tasBadgeExpiryDate,omitempty"`
	TaxiBadgeExpiryDate           *string `json:"taxiBadgeExpiryDate,omitempty"`
	DBSExpiryDate                 *string `json:"dbsExpiryDate,omitempty"`
	FirstAidCertificateExpiryDate *string `json:"firstAidCertificateExpiryDate,omitempty"`
	DrivingLicenseExpiryDate      *string `json:"drivingLicenseExpiryDate,omitempty"`
}

func (d *Driver) applyDates(tas, taxi, dbs, firstAid, license *string) error {
	for _, f := range []struct {
		dst **time.Time
		src *string
	}{
		{&d.TASBadgeExpiryDate, tas},
		{&d.TaxiBadgeExpiryDate, taxi},
		{&d.DBSExpiryDate, dbs},
		{&d.FirstAidCertificateExpiryDate, firstAid},
		{&d.DrivingLicenseExpiryDate, license},
	} {
		if err := fleet.ApplyDate(f.dst, f.src); err != nil {
			return err
		}
	}
	return nil
}
