package compliance

import "time"

type ApplicationStatus string

const (
	NotApplied ApplicationStatus = "not_applied"
	Applied    ApplicationStatus = "applied"
)

// Case tracks remediation of one notification.
type Case struct {
	ID                int64             `json:"id"                gorm:"column:id;primaryKey"`
	NotificationID    int64             `json:"notificationId"    gorm:"column:notification_id;uniqueIndex"`
	ApplicationStatus ApplicationStatus `json:"applicationStatus" gorm:"column:application_status"`
	DateApplied       *time.Time        `json:"dateApplied"       gorm:"column:date_applied"`
	AppointmentDate   *time.Time        `json:"appointmentDate"   gorm:"column:appointment_date"`
	CreatedAt         time.Time         `json:"createdAt"         gorm:"column:created_at"`
	UpdatedAt         time.Time         `json:"updatedAt"         gorm:"column:updated_at"`
}

func (Case) TableName() string {
	return "compliance_cases"
}

// Update is an append-only activity log entry.
type Update struct {
	ID         int64     `json:"id"         gorm:"column:id;primaryKey"`
	CaseID     int64     `json:"caseId"     gorm:"column:case_id;index"`
	UpdateType string    `json:"updateType" gorm:"column:update_type"`
	Notes      string    `json:"notes"      gorm:"column:notes"`
	CreatedAt  time.Time `json:"createdAt"  gorm:"column:created_at"`
}

func (Update) TableName() string {
	return "compliance_case_updates"
}

const UpdateTypeNote = "note"

// TrackingInput overwrites all three tracked fields. Dates are YYYY-MM-DD or null.
type TrackingInput struct {
	ApplicationStatus string  `json:"applicationStatus"`
	DateApplied       *string `json:"dateApplied"`
	AppointmentDate   *string `json:"appointmentDate"`
}
