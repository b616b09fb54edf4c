package notification

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/apperr"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/fleet"
)

// Store is the notification record store.
type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) Get(ctx context.Context, id int64) (Notification, error) {
	var n Notification
	err := s.DB.WithContext(ctx).First(&n, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return n, apperr.NotFound("Notification")
	}
	return n, apperr.Persistence(err)
}

// RefOf returns the entity the notification was raised for.
func (s *Store) RefOf(ctx context.Context, id int64) (fleet.Ref, error) {
	n, err := s.Get(ctx, id)
	if err != nil {
		return fleet.Ref{}, err
	}
	return n.Ref(), nil
}

func (s *Store) ByToken(ctx context.Context, token string) (Notification, error) {
	var n Notification
	err := s.DB.WithContext(ctx).Where("email_token = ?", token).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return n, apperr.NotFound("Notification")
	}
	return n, apperr.Persistence(err)
}

// Filter for List. Zero values are ignored.
type Filter struct {
	Status             Status
	Ref                fleet.Ref
	ExpiringWithinDays *int
}

func (s *Store) List(ctx context.Context, f Filter, limit, offset int) ([]Notification, int64, error) {
	q := s.DB.WithContext(ctx).Model(&Notification{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Ref.Kind != "" {
		q = q.Where("entity_type = ?", f.Ref.Kind)
	}
	if f.Ref.ID > 0 {
		q = q.Where("entity_id = ?", f.Ref.ID)
	}
	if f.ExpiringWithinDays != nil {
		q = q.Where("days_until_expiry <= ?", *f.ExpiringWithinDays)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Persistence(err)
	}
	var out []Notification
	if err := q.Order("days_until_expiry, id").Limit(limit).Offset(offset).Find(&out).Error; err != nil {
		return nil, 0, apperr.Persistence(err)
	}
	return out, total, nil
}

// MarkSent stamps status=sent and records the dispatch audit.
func (s *Store) MarkSent(ctx context.Context, id int64, at time.Time, audit datatypes.JSONMap) error {
	return s.mark(ctx, id, map[string]interface{}{
		"status":        StatusSent,
		"email_sent_at": at,
		"last_email":    audit,
	})
}

func (s *Store) MarkFailed(ctx context.Context, id int64, audit datatypes.JSONMap) error {
	return s.mark(ctx, id, map[string]interface{}{
		"status":     StatusFailed,
		"last_email": audit,
	})
}

func (s *Store) mark(ctx context.Context, id int64, fields map[string]interface{}) error {
	res := s.DB.WithContext(ctx).Model(&Notification{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return apperr.Persistence(errors.Wrapf(res.Error, "update notification %d", id))
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Notification")
	}
	return nil
}
