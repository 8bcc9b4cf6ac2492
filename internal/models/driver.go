package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Driver represents a fleet driver in the system
type Driver struct {
	gorm.Model

	DriverID  string `json:"driver_id" gorm:"uniqueIndex"`
	Name      string `json:"name"`
	Phone     string `json:"phone" gorm:"uniqueIndex"` // WhatsApp number - unique
	LicenseNo string `json:"license_no"`
	BranchID  *uint  `json:"branch_id" gorm:"index"` // nil for drivers not pinned to a branch

	Status        string `json:"status" gorm:"default:pending"` // pending, active, suspended
	PhoneVerified bool   `json:"phone_verified" gorm:"default:false"`

	// Set while the driver holds an ACTIVE duty, cleared on completion
	CurrentVehicleID *uint `json:"current_vehicle_id"`

	TotalEarnings float64    `json:"total_earnings" gorm:"default:0"`
	TotalDuties   int        `json:"total_duties" gorm:"default:0"`
	JoinedAt      *time.Time `json:"joined_at"`
	LastActiveAt  *time.Time `json:"last_active_at"`
}

// Driver status constants
const (
	DriverStatusPending   = "pending"
	DriverStatusActive    = "active"
	DriverStatusSuspended = "suspended"
)

// BeforeCreate hook to auto-generate DriverID and normalize data
func (d *Driver) BeforeCreate(tx *gorm.DB) error {
	if d.DriverID == "" {
		d.DriverID = fmt.Sprintf("DR%d%03d", time.Now().Unix(), time.Now().Nanosecond()%1000)
	}

	// Normalize phone number (ensure it starts with +91 if not already)
	if !strings.HasPrefix(d.Phone, "+") {
		d.Phone = "+91" + strings.TrimPrefix(d.Phone, "91")
	}

	d.LicenseNo = strings.ToUpper(strings.ReplaceAll(d.LicenseNo, " ", ""))
	return nil
}

// CanStartDuty checks whether the driver may open a new duty
func (d *Driver) CanStartDuty() bool {
	return d.Status == DriverStatusActive && d.CurrentVehicleID == nil
}

// DriverRegistration is used for new driver registration
type DriverRegistration struct {
	Name      string `json:"name" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	LicenseNo string `json:"license_no" validate:"required"`
	BranchID  *uint  `json:"branch_id"`
}
