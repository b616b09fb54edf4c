package hold

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/apperr"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/fleet"
)

// Request describes one hold to apply.
type Request struct {
	Ref            fleet.Ref
	NotificationID int64
	Reason         string
	ActingUserID   *int64
}

// Report lists what a hold operation touched.
type Report struct {
	Ref        fleet.Ref `json:"entity"`
	RoutesHeld int64     `json:"routes"`
	VehicleIDs []int64   `json:"vehicles"`
}

// Propagator applies and clears holds over an entity and its route footprint.
// Each operation runs as a single transaction.
type Propagator struct {
	DB     *gorm.DB
	Logger *slog.Logger
	Now    func() time.Time
}

func NewPropagator(db *gorm.DB, logger *slog.Logger) *Propagator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Propagator{DB: db, Logger: logger, Now: time.Now}
}

func (p *Propagator) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// Apply sets the same hold payload on the entity, every route referencing it and,
// for drivers and assistants, every vehicle assigned to those routes.
// Re-applying overwrites the previous payload.
func (p *Propagator) Apply(ctx context.Context, req Request) (Report, error) {
	report := Report{Ref: req.Ref}
	target, ok := fleet.TargetFor(req.Ref.Kind)
	if !ok {
		return report, apperr.Invalid("unknown entity type %q", req.Ref.Kind)
	}

	now := p.now()
	payload := map[string]interface{}{
		"on_hold":                 true,
		"on_hold_reason":          req.Reason,
		"on_hold_notification_id": req.NotificationID,
		"on_hold_set_by":          req.ActingUserID,
		"on_hold_set_at":          now,
		"on_hold_cleared_at":      nil,
		"updated_at":              now,
	}

	err := p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Table(target.Table).Where(target.KeyColumn+" = ?", req.Ref.ID).Updates(payload)
		if res.Error != nil {
			return apperr.Persistence(errors.Wrapf(res.Error, "hold %s", req.Ref))
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound(string(req.Ref.Kind))
		}

		var vehicleIDs []int64
		if req.Ref.Kind != fleet.KindVehicle {
			// vehicle dari route diambil sebelum route di-update
			if err := tx.Table(fleet.RoutesTable).
				Where(target.RouteColumn+" = ? AND vehicle_id IS NOT NULL", req.Ref.ID).
				Distinct().
				Order("vehicle_id").
				Pluck("vehicle_id", &vehicleIDs).Error; err != nil {
				return apperr.Persistence(errors.Wrap(err, "collect route vehicles"))
			}
		}

		res = tx.Table(fleet.RoutesTable).Where(target.RouteColumn+" = ?", req.Ref.ID).Updates(payload)
		if res.Error != nil {
			return apperr.Persistence(errors.Wrapf(res.Error, "hold routes of %s", req.Ref))
		}
		report.RoutesHeld = res.RowsAffected

		if len(vehicleIDs) > 0 {
			if err := tx.Table(fleet.VehiclesTable).Where("id IN ?", vehicleIDs).Updates(payload).Error; err != nil {
				return apperr.Persistence(errors.Wrap(err, "hold route vehicles"))
			}
		}
		report.VehicleIDs = vehicleIDs
		return nil
	})
	if err != nil {
		return Report{Ref: req.Ref}, err
	}

	p.Logger.Info("hold applied",
		slog.String("entity", req.Ref.String()),
		slog.Int64("notification_id", req.NotificationID),
		slog.Int64("routes", report.RoutesHeld),
		slog.Int("vehicles", len(report.VehicleIDs)),
	)
	return report, nil
}

type holdState struct {
	OnHold               bool   `gorm:"column:on_hold"`
	OnHoldNotificationID *int64 `gorm:"column:on_hold_notification_id"`
}

type routeLinks struct {
	ID                   int64  `gorm:"column:id"`
	VehicleID            *int64 `gorm:"column:vehicle_id"`
	DriverID             *int64 `gorm:"column:driver_id"`
	PassengerAssistantID *int64 `gorm:"column:passenger_assistant_id"`
}

// Clear lifts the hold on an entity. Besides the entity and its own routes it also
// releases any route or vehicle held by the same notification. A cascaded row that is
// still covered by another entity's live hold stays held and takes that hold's payload.
// Reason and set_by are kept as history.
func (p *Propagator) Clear(ctx context.Context, ref fleet.Ref, actingUserID *int64) (Report, error) {
	report := Report{Ref: ref}
	target, ok := fleet.TargetFor(ref.Kind)
	if !ok {
		return report, apperr.Invalid("unknown entity type %q", ref.Kind)
	}

	now := p.now()
	cleared := map[string]interface{}{
		"on_hold":            false,
		"on_hold_cleared_at": now,
		"updated_at":         now,
	}

	err := p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var st holdState
		err := tx.Table(target.Table).
			Select("on_hold, on_hold_notification_id").
			Where(target.KeyColumn+" = ?", ref.ID).
			Take(&st).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(string(ref.Kind))
		}
		if err != nil {
			return apperr.Persistence(errors.Wrapf(err, "load hold of %s", ref))
		}
		if !st.OnHold {
			return apperr.Invalid("%s is not on hold", ref)
		}

		if err := tx.Table(target.Table).Where(target.KeyColumn+" = ?", ref.ID).Updates(cleared).Error; err != nil {
			return apperr.Persistence(errors.Wrapf(err, "clear %s", ref))
		}

		var routes []routeLinks
		q := tx.Table(fleet.RoutesTable).
			Select("id, vehicle_id, driver_id, passenger_assistant_id").
			Where("on_hold = ?", true)
		if st.OnHoldNotificationID != nil {
			q = q.Where("("+target.RouteColumn+" = ? OR on_hold_notification_id = ?)", ref.ID, *st.OnHoldNotificationID)
		} else {
			q = q.Where(target.RouteColumn+" = ?", ref.ID)
		}
		if err := q.Order("id").Find(&routes).Error; err != nil {
			return apperr.Persistence(errors.Wrapf(err, "collect routes of %s", ref))
		}
		for _, rt := range routes {
			cover, err := routeCover(tx, rt, true)
			if err != nil {
				return err
			}
			if err := release(tx, fleet.RoutesTable, rt.ID, cover, cleared, now); err != nil {
				return err
			}
			if cover == nil {
				report.RoutesHeld++
			}
		}

		if st.OnHoldNotificationID == nil {
			return nil
		}
		var ids []int64
		if err := tx.Table(fleet.VehiclesTable).
			Where("on_hold = ? AND on_hold_notification_id = ?", true, *st.OnHoldNotificationID).
			Order("id").
			Pluck("id", &ids).Error; err != nil {
			return apperr.Persistence(errors.Wrap(err, "collect held vehicles"))
		}
		for _, id := range ids {
			cover, err := vehicleCover(tx, id)
			if err != nil {
				return err
			}
			if err := release(tx, fleet.VehiclesTable, id, cover, cleared, now); err != nil {
				return err
			}
			if cover == nil {
				report.VehicleIDs = append(report.VehicleIDs, id)
			}
		}
		return nil
	})
	if err != nil {
		return Report{Ref: ref}, err
	}

	attrs := []any{
		slog.String("entity", ref.String()),
		slog.Int64("routes", report.RoutesHeld),
		slog.Int("vehicles", len(report.VehicleIDs)),
	}
	if actingUserID != nil {
		attrs = append(attrs, slog.Int64("cleared_by", *actingUserID))
	}
	p.Logger.Info("hold cleared", attrs...)
	return report, nil
}

// release clears one cascaded row, or re-stamps it with the hold that still covers it.
func release(tx *gorm.DB, table string, id int64, cover *fleet.Hold, cleared map[string]interface{}, now time.Time) error {
	values := cleared
	if cover != nil {
		values = map[string]interface{}{
			"on_hold":                 true,
			"on_hold_reason":          cover.OnHoldReason,
			"on_hold_notification_id": cover.OnHoldNotificationID,
			"on_hold_set_by":          cover.OnHoldSetBy,
			"on_hold_set_at":          cover.OnHoldSetAt,
			"on_hold_cleared_at":      nil,
			"updated_at":              now,
		}
	}
	if err := tx.Table(table).Where("id = ?", id).Updates(values).Error; err != nil {
		return apperr.Persistence(errors.Wrapf(err, "release %s %d", table, id))
	}
	return nil
}

func loadHold(tx *gorm.DB, kind fleet.Kind, id int64) (*fleet.Hold, error) {
	target, _ := fleet.TargetFor(kind)
	var h fleet.Hold
	err := tx.Table(target.Table).
		Select("on_hold, on_hold_reason, on_hold_notification_id, on_hold_set_by, on_hold_set_at, on_hold_cleared_at").
		Where(target.KeyColumn+" = ?", id).
		Take(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Persistence(errors.Wrapf(err, "load hold of %s#%d", kind, id))
	}
	if !h.OnHold {
		return nil, nil
	}
	return &h, nil
}

// routeCover returns the live hold of a driver or assistant on the route, or of its
// vehicle when that vehicle is held for its own notification.
func routeCover(tx *gorm.DB, rt routeLinks, withVehicle bool) (*fleet.Hold, error) {
	for _, crew := range []struct {
		kind fleet.Kind
		id   *int64
	}{
		{fleet.KindDriver, rt.DriverID},
		{fleet.KindAssistant, rt.PassengerAssistantID},
	} {
		if crew.id == nil {
			continue
		}
		h, err := loadHold(tx, crew.kind, *crew.id)
		if err != nil || h != nil {
			return h, err
		}
	}
	if !withVehicle || rt.VehicleID == nil {
		return nil, nil
	}
	h, err := loadHold(tx, fleet.KindVehicle, *rt.VehicleID)
	if err != nil || h == nil || h.OnHoldNotificationID == nil {
		return nil, err
	}
	// hold kendaraan hasil cascade tidak menahan route lain
	var own int64
	if err := tx.Table("notifications").
		Where("id = ? AND entity_type = ? AND entity_id = ?", *h.OnHoldNotificationID, fleet.KindVehicle, *rt.VehicleID).
		Count(&own).Error; err != nil {
		return nil, apperr.Persistence(errors.Wrap(err, "check vehicle hold origin"))
	}
	if own == 0 {
		return nil, nil
	}
	return h, nil
}

// vehicleCover returns the live hold of a driver or assistant on any route of the vehicle.
func vehicleCover(tx *gorm.DB, vehicleID int64) (*fleet.Hold, error) {
	var routes []routeLinks
	if err := tx.Table(fleet.RoutesTable).
		Select("id, vehicle_id, driver_id, passenger_assistant_id").
		Where("vehicle_id = ?", vehicleID).
		Order("id").
		Find(&routes).Error; err != nil {
		return nil, apperr.Persistence(errors.Wrap(err, "collect vehicle routes"))
	}
	for _, rt := range routes {
		h, err := routeCover(tx, rt, false)
		if err != nil || h != nil {
			return h, err
		}
	}
	return nil, nil
}
