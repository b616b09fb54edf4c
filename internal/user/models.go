package user

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/auth"
)

type User struct {
	ID           int64     `json:"id"        gorm:"column:id;primaryKey"`
	Email        string    `json:"email"     gorm:"column:email;uniqueIndex"`
	PasswordHash string    `json:"-"         gorm:"column:password_hash"`
	FullName     string    `json:"fullName"  gorm:"column:full_name"`
	AuthID       *string   `json:"authId"    gorm:"column:auth_id;index"`
	Role         auth.Role `json:"role"      gorm:"column:role"`
	Active       bool      `json:"active"    gorm:"column:active"`
	CreatedAt    time.Time `json:"createdAt" gorm:"column:created_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == auth.RoleAdmin
}

// simpan email dalam bentuk lowercase supaya lookup by email konsisten
func (u *User) BeforeSave(tx *gorm.DB) (err error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = auth.RoleStaff
	}
	return nil
}
