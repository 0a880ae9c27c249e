package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// PackageStatus tracks a shipment through delivery
type PackageStatus string

const (
	PackageStatusPending   PackageStatus = "pending"
	PackageStatusShipped   PackageStatus = "shipped"
	PackageStatusDelivered PackageStatus = "delivered"
	PackageStatusCancelled PackageStatus = "cancelled"
)

func (s PackageStatus) Valid() bool {
	switch s {
	case PackageStatusPending, PackageStatusShipped, PackageStatusDelivered, PackageStatusCancelled:
		return true
	}
	return false
}

// PaymentStatus tracks settlement of a package's price
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// Address is a pickup or delivery location
type Address struct {
	Address       string `json:"address" binding:"required,max=500"`
	ContactNumber string `json:"contactNumber" binding:"required,mobile"`
	Country       string `json:"country" binding:"required,max=100"`
	State         string `json:"state" binding:"required,max=100"`
	City          string `json:"city" binding:"required,max=100"`
}

// Package is a shipment record owned by an account
type Package struct {
	ID                 uuid.UUID     `json:"id"`
	Code               string        `json:"packageCode"`
	AccountID          uuid.UUID     `json:"userId"`
	Pickup             Address       `json:"pickup"`
	Delivery           Address       `json:"delivery"`
	Description        string        `json:"packageDescription"`
	WeightKg           float64       `json:"weightKg"`
	HasPackageDiscount bool          `json:"hasPackageDiscount"`
	Price              int64         `json:"price"`
	Status             PackageStatus `json:"status"`
	PaymentStatus      PaymentStatus `json:"paymentStatus"`
	PaymentReference   null.String   `json:"paymentReference"`
	PaidAt             null.Time     `json:"paidAt"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// IsPaid reports whether the package has been settled
func (p *Package) IsPaid() bool {
	return p.PaymentStatus == PaymentStatusPaid
}

// CreatePackageInput represents input for creating a package
type CreatePackageInput struct {
	Pickup      Address `json:"pickup" binding:"required"`
	Delivery    Address `json:"delivery" binding:"required"`
	Description string  `json:"packageDescription" binding:"required,max=1000"`
	WeightKg    float64 `json:"weightKg" binding:"required,gt=0"`
}

// UpdatePackageInput represents a partial package update
type UpdatePackageInput struct {
	Pickup      *Address      `json:"pickup"`
	Delivery    *Address      `json:"delivery"`
	Description *string       `json:"packageDescription" binding:"omitempty,max=1000"`
	WeightKg    *float64      `json:"weightKg" binding:"omitempty,gt=0"`
	Status      PackageStatus `json:"status" binding:"omitempty,oneof=pending shipped delivered cancelled"`
}

// PaymentInitResponse is returned when a package payment is started
type PaymentInitResponse struct {
	PackageID        uuid.UUID `json:"packageId"`
	Reference        string    `json:"reference"`
	AuthorizationURL string    `json:"authorizationUrl"`
	AccessCode       string    `json:"accessCode"`
	Amount           int64     `json:"amount"`
}
