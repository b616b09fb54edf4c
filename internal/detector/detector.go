package detector

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/apperr"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/assistant"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/compliance"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/driver"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/fleet"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/notification"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/vehicle"
)

const DefaultWindowDays = 30

// Publisher receives the id of every notification the detector creates.
type Publisher interface {
	Publish(ctx context.Context, notificationID int64) error
}

type Detector struct {
	DB            *gorm.DB
	Publisher     Publisher
	WindowDays    int
	FallbackEmail string
	Logger        *slog.Logger
	Now           func() time.Time
}

func New(db *gorm.DB, pub Publisher, windowDays int, fallbackEmail string, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &Detector{
		DB:            db,
		Publisher:     pub,
		WindowDays:    windowDays,
		FallbackEmail: fallbackEmail,
		Logger:        logger,
		Now:           time.Now,
	}
}

// Result summarises one run.
type Result struct {
	Scanned   int     `json:"scanned"`
	Blocked   int     `json:"blocked"`
	Created   []int64 `json:"created"`
	Refreshed int     `json:"refreshed"`
}

// subject is one entity flattened for scanning.
type subject struct {
	entity    fleet.Certified
	recipient *string
	model     interface{}
	gate      string
	allowed   bool // value of gate when the entity may work
	current   bool
}

// DaysUntil is floor((expiry - today) in days) on calendar dates.
func DaysUntil(expiry, today time.Time) int {
	return fleet.DaysUntil(expiry, today)
}

func (d *Detector) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func (d *Detector) load(ctx context.Context) ([]subject, error) {
	db := d.DB.WithContext(ctx)
	var out []subject

	var vehicles []vehicle.Vehicle
	if err := db.Where("active = ?", true).Order("id").Find(&vehicles).Error; err != nil {
		return nil, errors.Wrap(err, "load vehicles")
	}
	for _, v := range vehicles {
		// off_the_road: true = diblok
		out = append(out, subject{entity: v, recipient: v.OwnerEmail, model: &vehicle.Vehicle{}, gate: "off_the_road", allowed: false, current: v.OffTheRoad})
	}

	var drivers []driver.Driver
	if err := db.Where("active = ?", true).Order("employee_id").Find(&drivers).Error; err != nil {
		return nil, errors.Wrap(err, "load drivers")
	}
	for _, dr := range drivers {
		out = append(out, subject{entity: dr, recipient: dr.Email, model: &driver.Driver{}, gate: "can_work", allowed: true, current: dr.CanWork})
	}

	var assistants []assistant.PassengerAssistant
	if err := db.Where("active = ?", true).Order("id").Find(&assistants).Error; err != nil {
		return nil, errors.Wrap(err, "load passenger assistants")
	}
	for _, a := range assistants {
		out = append(out, subject{entity: a, recipient: a.Email, model: &assistant.PassengerAssistant{}, gate: "can_work", allowed: true, current: a.CanWork})
	}
	return out, nil
}

// Run recomputes every work-authorization gate and records a notification for each
// certificate inside the expiry window. Existing notifications only get their
// days_until_expiry refreshed; the email token is never touched.
func (d *Detector) Run(ctx context.Context) (Result, error) {
	var res Result
	today := fleet.Date(d.now())

	subjects, err := d.load(ctx)
	if err != nil {
		return res, apperr.Persistence(err)
	}

	for _, s := range subjects {
		res.Scanned++
		ref := s.entity.Ref()
		certs := s.entity.Certificates()

		if err := d.updateGate(ctx, s, certs, today); err != nil {
			return res, err
		}
		if !fleet.Compliant(certs, today) {
			res.Blocked++
		}

		for _, cert := range certs {
			if cert.Expiry == nil {
				continue
			}
			days := fleet.DaysUntil(*cert.Expiry, today)
			if days > d.WindowDays {
				continue
			}
			id, created, err := d.record(ctx, ref, cert, days, d.recipient(s.recipient))
			if err != nil {
				return res, err
			}
			if !created {
				res.Refreshed++
				continue
			}
			res.Created = append(res.Created, id)
			d.publish(ctx, id)
		}
	}

	d.Logger.Info("detector run finished",
		"scanned", res.Scanned,
		"blocked", res.Blocked,
		"created", len(res.Created),
		"refreshed", res.Refreshed,
	)
	return res, nil
}

func (d *Detector) updateGate(ctx context.Context, s subject, certs []fleet.Certificate, today time.Time) error {
	compliant := fleet.Compliant(certs, today)
	value := compliant == s.allowed
	if value == s.current {
		return nil
	}
	target, _ := fleet.TargetFor(s.entity.Ref().Kind)
	err := d.DB.WithContext(ctx).Model(s.model).
		Where(target.KeyColumn+" = ?", s.entity.Ref().ID).
		Update(s.gate, value).Error
	if err != nil {
		return apperr.Persistence(errors.Wrapf(err, "update %s of %s", s.gate, s.entity.Ref()))
	}
	if !compliant {
		d.Logger.Warn("entity blocked by certificates", "entity", s.entity.Ref().String(), "missing", len(fleet.Missing(certs)))
	}
	return nil
}

func (d *Detector) recipient(email *string) *string {
	if email != nil && *email != "" {
		return email
	}
	if d.FallbackEmail != "" {
		fallback := d.FallbackEmail
		return &fallback
	}
	return nil
}

// record finds or creates the notification for one certificate cycle.
func (d *Detector) record(ctx context.Context, ref fleet.Ref, cert fleet.Certificate, days int, recipient *string) (int64, bool, error) {
	expiry := fleet.Date(*cert.Expiry)
	db := d.DB.WithContext(ctx)

	var existing notification.Notification
	err := db.Where("entity_type = ? AND entity_id = ? AND certificate_type = ? AND expiry_date = ?",
		ref.Kind, ref.ID, cert.Type, expiry).First(&existing).Error
	if err == nil {
		if existing.DaysUntilExpiry != days {
			if err := db.Model(&existing).Update("days_until_expiry", days).Error; err != nil {
				return 0, false, apperr.Persistence(errors.Wrapf(err, "refresh notification %d", existing.ID))
			}
		}
		return existing.ID, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, apperr.Persistence(errors.Wrap(err, "find notification"))
	}

	n := notification.Notification{
		EntityType:      ref.Kind,
		EntityID:        ref.ID,
		CertificateType: cert.Type,
		CertificateName: cert.Name,
		ExpiryDate:      expiry,
		DaysUntilExpiry: days,
		RecipientEmail:  recipient,
		Status:          notification.StatusPending,
	}
	created := false
	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&n)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// another run inserted the same cycle first
			return nil
		}
		created = true
		cs := compliance.Case{NotificationID: n.ID, ApplicationStatus: compliance.NotApplied}
		return tx.Create(&cs).Error
	})
	if err != nil {
		return 0, false, apperr.Persistence(errors.Wrapf(err, "create notification for %s %s", ref, cert.Type))
	}
	return n.ID, created, nil
}

func (d *Detector) publish(ctx context.Context, id int64) {
	if d.Publisher == nil {
		return
	}
	if err := d.Publisher.Publish(ctx, id); err != nil {
		d.Logger.Error("failed to publish notification", "notification_id", id, "error", err)
	}
}
