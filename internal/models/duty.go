package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Duty represents one shift performed by one driver on one vehicle.
// Financial outputs are written only by duty completion, never by callers.
type Duty struct {
	gorm.Model

	DutyID    string `json:"duty_id" gorm:"uniqueIndex"`
	DriverID  uint   `json:"driver_id" gorm:"index"`
	VehicleID uint   `json:"vehicle_id" gorm:"index"`
	SchemeID  uint   `json:"scheme_id"`

	Status string `json:"status" gorm:"index;default:active"` // active, pending_approval, completed, rejected

	// Odometer
	StartOdometer float64 `json:"start_odometer"`
	EndOdometer   float64 `json:"end_odometer"`
	TotalDistance float64 `json:"total_distance"`

	// CNG gauge readings (0-10)
	StartFuelLevel float64 `json:"start_fuel_level"`
	EndFuelLevel   float64 `json:"end_fuel_level"`
	CNGPoint       string  `json:"cng_point"`

	// Financial inputs, collected at completion
	CashCollected      float64 `json:"cash_collected" gorm:"default:0"`
	QRPayment          float64 `json:"qr_payment" gorm:"default:0"`
	DigitalPayment     float64 `json:"digital_payment" gorm:"default:0"`
	OperatorPayout     float64 `json:"operator_payout" gorm:"default:0"`
	Toll               float64 `json:"toll" gorm:"default:0"`
	FuelExpense        float64 `json:"fuel_expense" gorm:"default:0"`
	OtherExpense       float64 `json:"other_expense" gorm:"default:0"`
	MaintenanceExpense float64 `json:"maintenance_expense" gorm:"default:0"`
	CompanyPay         float64 `json:"company_pay" gorm:"default:0"`
	AdvanceDeduction   float64 `json:"advance_deduction" gorm:"default:0"`
	FuelDeduction      float64 `json:"fuel_deduction" gorm:"default:0"`
	PenaltyDeduction   float64 `json:"penalty_deduction" gorm:"default:0"`
	TripCount          int     `json:"trip_count" gorm:"default:0"`

	// Computed outputs, written by completion
	GrossRevenue   float64 `json:"gross_revenue"`
	DriverEarnings float64 `json:"driver_earnings"`
	CompanyProfit  float64 `json:"company_profit"`
	IncentivePay   float64 `json:"incentive_pay"`
	SchemeEarnings float64 `json:"scheme_earnings"`
	BMGTopUp       float64 `json:"bmg_top_up"`
	FuelAdjustment float64 `json:"fuel_adjustment"`

	// Non-fatal continuity annotation, e.g. odometer drift beyond tolerance
	OdometerWarning string `json:"odometer_warning,omitempty"`

	// Opaque photo attachments, filename references only
	StartPhoto string `json:"start_photo,omitempty"`
	EndPhoto   string `json:"end_photo,omitempty"`

	ActualStart  *time.Time `json:"actual_start"`
	ActualEnd    *time.Time `json:"actual_end"`
	SubmittedAt  *time.Time `json:"submitted_at"`
	ApprovedAt   *time.Time `json:"approved_at"`
	ApprovedBy   string     `json:"approved_by,omitempty"`
	RejectReason string     `json:"reject_reason,omitempty"`
}

// Duty status constants
const (
	DutyStatusActive          = "active"
	DutyStatusPendingApproval = "pending_approval"
	DutyStatusCompleted       = "completed"
	DutyStatusRejected        = "rejected"
)

// BeforeCreate hook to auto-generate DutyID
func (d *Duty) BeforeCreate(tx *gorm.DB) error {
	if d.DutyID == "" {
		d.DutyID = fmt.Sprintf("DT%d%03d", time.Now().Unix(), time.Now().Nanosecond()%1000)
	}
	return nil
}

// IsTerminal reports whether the duty has reached a final state
func (d *Duty) IsTerminal() bool {
	return d.Status == DutyStatusCompleted || d.Status == DutyStatusRejected
}

// DutyStartRequest carries the inputs for opening a duty.
// StartOdometer and StartFuelLevel are optional; when omitted they are
// resolved from vehicle and duty history.
type DutyStartRequest struct {
	DriverID       uint     `json:"driver_id"`
	VehicleID      uint     `json:"vehicle_id"`
	StartOdometer  *float64 `json:"start_odometer"`
	StartFuelLevel *float64 `json:"start_fuel_level"`
	StartPhoto     string   `json:"start_photo"`
}

// DutyCompleteRequest carries the end-of-shift readings and the tripsheet
// financial inputs.
type DutyCompleteRequest struct {
	EndOdometer  float64  `json:"end_odometer"`
	EndFuelLevel *float64 `json:"end_fuel_level"`
	CNGPoint     string   `json:"cng_point"`
	TripCount    int      `json:"trip_count"`
	EndPhoto     string   `json:"end_photo"`

	CashCollected      float64 `json:"cash_collected"`
	QRPayment          float64 `json:"qr_payment"`
	DigitalPayment     float64 `json:"digital_payment"`
	OperatorPayout     float64 `json:"operator_payout"`
	Toll               float64 `json:"toll"`
	FuelExpense        float64 `json:"fuel_expense"`
	OtherExpense       float64 `json:"other_expense"`
	MaintenanceExpense float64 `json:"maintenance_expense"`
	CompanyPay         float64 `json:"company_pay"`
	AdvanceDeduction   float64 `json:"advance_deduction"`
	FuelDeduction      float64 `json:"fuel_deduction"`
	PenaltyDeduction   float64 `json:"penalty_deduction"`
}
