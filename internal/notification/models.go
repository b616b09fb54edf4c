package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/fleet"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusSent, StatusFailed:
		return true
	}
	return false
}

// Model untuk tabel notifications. Satu baris per (entity, certificate, expiry date).
type Notification struct {
	ID              int64             `json:"id"              gorm:"column:id;primaryKey"`
	EntityType      fleet.Kind        `json:"entityType"      gorm:"column:entity_type;uniqueIndex:ux_notifications_cycle,priority:1"`
	EntityID        int64             `json:"entityId"        gorm:"column:entity_id;uniqueIndex:ux_notifications_cycle,priority:2"`
	CertificateType string            `json:"certificateType" gorm:"column:certificate_type;uniqueIndex:ux_notifications_cycle,priority:3"`
	CertificateName string            `json:"certificateName" gorm:"column:certificate_name"`
	ExpiryDate      time.Time         `json:"expiryDate"      gorm:"column:expiry_date;uniqueIndex:ux_notifications_cycle,priority:4"`
	DaysUntilExpiry int               `json:"daysUntilExpiry" gorm:"column:days_until_expiry"`
	RecipientEmail  *string           `json:"recipientEmail"  gorm:"column:recipient_email"`
	Status          Status            `json:"status"          gorm:"column:status;index"`
	EmailSentAt     *time.Time        `json:"emailSentAt"     gorm:"column:email_sent_at"`
	EmailToken      string            `json:"-"               gorm:"column:email_token;uniqueIndex"`
	LastEmail       datatypes.JSONMap `json:"lastEmail"       gorm:"column:last_email"`
	CreatedAt       time.Time         `json:"createdAt"       gorm:"column:created_at"`
	UpdatedAt       time.Time         `json:"updatedAt"       gorm:"column:updated_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate issues the email token. It is never regenerated afterwards.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.EmailToken == "" {
		n.EmailToken = uuid.NewString()
	}
	if n.Status == "" {
		n.Status = StatusPending
	}
	return nil
}

func (n Notification) Ref() fleet.Ref {
	return fleet.Ref{Kind: n.EntityType, ID: n.EntityID}
}
