package user

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/auth"
)

// ActingUserResolver maps an authenticated identity to an internal user id.
type ActingUserResolver interface {
	ResolveActingUserID(ctx context.Context, id auth.Identity) (*int64, error)
}

// Directory looks users up in the users table.
type Directory struct {
	DB *gorm.DB
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{DB: db}
}

// ResolveActingUserID matches by auth id first, then case-insensitively by email.
// Returns nil, nil when nobody matches.
func (d *Directory) ResolveActingUserID(ctx context.Context, id auth.Identity) (*int64, error) {
	var u User
	db := d.DB.WithContext(ctx)

	if id.Subject != "" {
		err := db.Where("auth_id = ?", id.Subject).First(&u).Error
		if err == nil {
			return &u.ID, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	email := strings.ToLower(strings.TrimSpace(id.Email))
	if email == "" {
		return nil, nil
	}
	err := db.Where("LOWER(email) = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u.ID, nil
}
