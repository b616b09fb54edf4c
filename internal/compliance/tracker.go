package compliance

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/apperr"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/fleet"
)

type Tracker struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewTracker(db *gorm.DB) *Tracker {
	return &Tracker{DB: db, Now: time.Now}
}

func (t *Tracker) now() time.Time {
	if t.Now == nil {
		return time.Now()
	}
	return t.Now()
}

func (t *Tracker) Get(ctx context.Context, caseID int64) (Case, error) {
	var c Case
	err := t.DB.WithContext(ctx).First(&c, caseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c, apperr.NotFound("Compliance case")
	}
	return c, apperr.Persistence(err)
}

// ForNotification returns the case of a notification, creating it on first use.
func (t *Tracker) ForNotification(ctx context.Context, notificationID int64) (Case, error) {
	db := t.DB.WithContext(ctx)

	var exists int64
	if err := db.Table("notifications").Where("id = ?", notificationID).Count(&exists).Error; err != nil {
		return Case{}, apperr.Persistence(err)
	}
	if exists == 0 {
		return Case{}, apperr.NotFound("Notification")
	}

	c := Case{NotificationID: notificationID, ApplicationStatus: NotApplied}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "notification_id"}},
		DoNothing: true,
	}).Create(&c).Error; err != nil {
		return Case{}, apperr.Persistence(errors.Wrap(err, "create compliance case"))
	}

	var out Case
	if err := db.Where("notification_id = ?", notificationID).First(&out).Error; err != nil {
		return Case{}, apperr.Persistence(err)
	}
	return out, nil
}

// UpdateTracking overwrites status, date applied and appointment date.
func (t *Tracker) UpdateTracking(ctx context.Context, caseID int64, in TrackingInput) (Case, error) {
	status := ApplicationStatus(strings.TrimSpace(in.ApplicationStatus))
	if status != NotApplied && status != Applied {
		return Case{}, apperr.Invalid("applicationStatus must be one of: not_applied, applied")
	}
	applied, err := fleet.ParseDate(in.DateApplied)
	if err != nil {
		return Case{}, apperr.Invalid("dateApplied: %v", err)
	}
	appointment, err := fleet.ParseDate(in.AppointmentDate)
	if err != nil {
		return Case{}, apperr.Invalid("appointmentDate: %v", err)
	}

	res := t.DB.WithContext(ctx).Model(&Case{}).Where("id = ?", caseID).Updates(map[string]interface{}{
		"application_status": status,
		"date_applied":       applied,
		"appointment_date":   appointment,
		"updated_at":         t.now(),
	})
	if res.Error != nil {
		return Case{}, apperr.Persistence(errors.Wrapf(res.Error, "update case %d", caseID))
	}
	if res.RowsAffected == 0 {
		return Case{}, apperr.NotFound("Compliance case")
	}
	return t.Get(ctx, caseID)
}

// AddUpdate appends a manual note. Blank notes are rejected.
func (t *Tracker) AddUpdate(ctx context.Context, caseID int64, notes string) (Update, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return Update{}, apperr.Invalid("Notes are required")
	}
	if _, err := t.Get(ctx, caseID); err != nil {
		return Update{}, err
	}

	u := Update{CaseID: caseID, UpdateType: UpdateTypeNote, Notes: notes, CreatedAt: t.now()}
	if err := t.DB.WithContext(ctx).Create(&u).Error; err != nil {
		return Update{}, apperr.Persistence(errors.Wrap(err, "insert case update"))
	}
	return u, nil
}

// ListUpdates returns the log newest first.
func (t *Tracker) ListUpdates(ctx context.Context, caseID int64) ([]Update, error) {
	if _, err := t.Get(ctx, caseID); err != nil {
		return nil, err
	}
	var out []Update
	err := t.DB.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, apperr.Persistence(err)
}
