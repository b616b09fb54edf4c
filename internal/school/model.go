package school

import "time"

type School struct {
	ID           int64     `json:"id"           gorm:"column:id;primaryKey"`
	Name         string    `json:"name"         gorm:"column:name"`
	Code         *string   `json:"code"         gorm:"column:code;uniqueIndex"`
	Address      *string   `json:"address"      gorm:"column:address"`
	ContactEmail *string   `json:"contactEmail" gorm:"column:contact_email"`
	Active       bool      `json:"active"       gorm:"column:active"`
	CreatedAt    time.Time `json:"createdAt"    gorm:"column:created_at"`
}

func (School) TableName() string {
	return "schools"
}
