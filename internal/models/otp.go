package models

import (
	"time"

	"gorm.io/gorm"
)

type OTP struct {
	gorm.Model
	Phone       string    `gorm:"not null;index"`
	Code        string    `gorm:"not null"`
	Purpose     string    `gorm:"not null"` // "onboarding", "login"
	ReferenceID string    `gorm:"index"`    // DriverID for driver OTPs
	ExpiresAt   time.Time `gorm:"not null"`
	VerifiedAt  *time.Time
	Attempts    int  `gorm:"default:0"`
	IsUsed      bool `gorm:"default:false"`
}

// OTP purpose constants
const (
	OTPPurposeOnboarding = "onboarding"
	OTPPurposeLogin      = "login"
)
