package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Package struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code                  string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	AccountID             uuid.UUID `gorm:"type:uuid;not null;index"`
	PickupAddress         string    `gorm:"type:text;not null"`
	PickupContactNumber   string    `gorm:"type:varchar(32);not null"`
	PickupCountry         string    `gorm:"type:varchar(100);not null"`
	PickupState           string    `gorm:"type:varchar(100);not null"`
	PickupCity            string    `gorm:"type:varchar(100);not null"`
	DeliveryAddress       string    `gorm:"type:text;not null"`
	DeliveryContactNumber string    `gorm:"type:varchar(32);not null"`
	DeliveryCountry       string    `gorm:"type:varchar(100);not null"`
	DeliveryState         string    `gorm:"type:varchar(100);not null"`
	DeliveryCity          string    `gorm:"type:varchar(100);not null"`
	Description           string    `gorm:"type:text;not null"`
	WeightKg              float64   `gorm:"not null"`
	HasPackageDiscount    bool      `gorm:"not null;default:false"`
	Price                 int64     `gorm:"not null"`
	Status                string    `gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentStatus         string    `gorm:"type:varchar(20);not null;default:'unpaid';index"`
	PaymentReference      *string   `gorm:"type:varchar(100);uniqueIndex"`
	PaidAt                *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
	DeletedAt             gorm.DeletedAt `gorm:"index"`
}

func (Package) TableName() string {
	return "packages"
}
