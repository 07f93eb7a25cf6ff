package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invoice is the billing record created for each order notification.
type Invoice struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderName   string    `gorm:"not null" json:"orderName"`
	Amount      float64   `gorm:"not null" json:"amount"`
	PhoneNumber string    `json:"phoneNumber"`
	Status      string    `gorm:"type:varchar(20);default:'billed'" json:"status"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// Migrate function for auto migration
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Invoice{})
}
