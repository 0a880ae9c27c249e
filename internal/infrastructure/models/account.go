package models

import (
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID                    uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Username              string     `gorm:"type:varchar(30);uniqueIndex;not null"`
	Email                 string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	FullName              string     `gorm:"type:varchar(100);not null"`
	Mobile                string     `gorm:"type:varchar(32);not null"`
	BusinessName          string     `gorm:"type:varchar(100);not null"`
	BusinessLocation      string     `gorm:"type:varchar(200);not null"`
	PasswordHash          string     `gorm:"type:varchar(255);not null"`
	Role                  string     `gorm:"type:varchar(20);not null;default:'user'"`
	IsVerified            bool       `gorm:"not null;default:false"`
	VerificationTokenHash *string    `gorm:"type:char(64);uniqueIndex"`
	VerificationExpiresAt *time.Time
	ResetTokenHash        *string `gorm:"type:char(64);uniqueIndex"`
	ResetExpiresAt        *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (Account) TableName() string {
	return "accounts"
}
