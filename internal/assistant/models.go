package assistant

import (
	"time"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/fleet"
)

// PassengerAssistant rides along on school routes.
type PassengerAssistant struct {
	ID       int64   `json:"id"       gorm:"column:id;primaryKey"`
	FullName string  `json:"fullName" gorm:"column:full_name"`
	Email    *string `json:"email"    gorm:"column:email"`
	Phone    *string `json:"phone"    gorm:"column:phone"`
	Active   bool    `json:"active"   gorm:"column:active"`
	CanWork  bool    `json:"canWork"  gorm:"column:can_work"`

	TASBadgeExpiryDate *time.Time `json:"tasBadgeExpiryDate" gorm:"column:tas_badge_expiry_date"`
	DBSExpiryDate      *time.Time `json:"dbsExpiryDate"      gorm:"column:dbs_expiry_date"`

	fleet.Hold `gorm:"embedded"`

	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"column:updated_at"`
}

func (PassengerAssistant) TableName() string {
	return fleet.AssistantsTable
}

func (a PassengerAssistant) Ref() fleet.Ref {
	return fleet.Ref{Kind: fleet.KindAssistant, ID: a.ID}
}

func (a PassengerAssistant) Certificates() []fleet.Certificate {
	return []fleet.Certificate{
		{Type: "tas_badge_expiry_date", Name: "TAS Badge", Expiry: a.TASBadgeExpiryDate, Required: true},
		{Type: "dbs_expiry_date", Name: "DBS Certificate", Expiry: a.DBSExpiryDate, Required: true},
	}
}

type Request struct {
	FullName           *string `json:"fullName,omitempty"`
	Email              *string `json:"email,omitempty"`
	Phone              *string `json:"phone,omitempty"`
	Active             *bool   `json:"active,omitempty"`
	TASBadgeExpiryDate *string `json:"tasBadgeExpiryDate,omitempty"`
	DBSExpiryDate      *string `json:"dbsExpiryDate,omitempty"`
}

func (r Request) apply(a *PassengerAssistant) error {
	if r.FullName != nil {
		a.FullName = *r.FullName
	}
	if r.Email != nil {
		a.Email = r.Email
	}
	if r.Phone != nil {
		a.Phone = r.Phone
	}
	if r.Active != nil {
		a.Active = *r.Active
	}
	if err := fleet.ApplyDate(&a.TASBadgeExpiryDate, r.TASBadgeExpiryDate); err != nil {
		return err
	}
	if err := fleet.ApplyDate(&a.DBSExpiryDate, r.DBSExpiryDate); err != nil {
		return err
	}
	a.CanWork = fleet.Compliant(a.Certificates(), time.Now())
	return nil
}
