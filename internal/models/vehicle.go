package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Vehicle represents a physical fleet asset assigned to duties
type Vehicle struct {
	gorm.Model

	VehicleID      string `json:"vehicle_id" gorm:"uniqueIndex"`
	RegistrationNo string `json:"registration_no" gorm:"uniqueIndex"`
	VehicleModel   string `json:"vehicle_model"`
	BranchID       *uint  `json:"branch_id" gorm:"index"`

	Status      string `json:"status" gorm:"default:active"` // active, maintenance, retired
	IsAvailable bool   `json:"is_available" gorm:"default:true"`

	// Monotonically non-decreasing across duties
	CurrentOdometer float64 `json:"current_odometer" gorm:"default:0"`

	// Last recorded CNG gauge level (0-10), nil until a duty has ended on this vehicle
	LastFuelLevel *float64 `json:"last_fuel_level"`
}

// Vehicle status constants
const (
	VehicleStatusActive      = "active"
	VehicleStatusMaintenance = "maintenance"
	VehicleStatusRetired     = "retired"
)

// CNG gauge domain: readings are in tenths of a tank
const (
	FuelGaugeMin = 0.0
	FuelGaugeMax = 10.0
)

// BeforeCreate hook to auto-generate VehicleID and normalize the plate
func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	if v.VehicleID == "" {
		v.VehicleID = fmt.Sprintf("VH%d%03d", time.Now().Unix(), time.Now().Nanosecond()%1000)
	}
	v.RegistrationNo = strings.ToUpper(strings.ReplaceAll(v.RegistrationNo, " ", ""))
	return nil
}

// IsUsable checks whether the vehicle can be handed to a driver
func (v *Vehicle) IsUsable() bool {
	return v.Status == VehicleStatusActive && v.IsAvailable
}
