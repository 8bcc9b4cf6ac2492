package models

import "time"

// DriverStats is a read-only projection over a driver's completed duties
type DriverStats struct {
	DriverID        string     `json:"driver_id"`
	CompletedDuties int        `json:"completed_duties"`
	PendingDuties   int        `json:"pending_duties"`
	TotalDistance   float64    `json:"total_distance"`
	TotalEarnings   float64    `json:"total_earnings"`
	LedgerBalance   float64    `json:"ledger_balance"`
	LastDutyAt      *time.Time `json:"last_duty_at"`
}

// FleetStats is a read-only projection over the whole fleet
type FleetStats struct {
	TotalDrivers      int64  `json:"total_drivers"`
	ActiveDrivers     int64  `json:"active_drivers"`
	TotalVehicles     int64  `json:"total_vehicles"`
	AvailableVehicles int64  `json:"available_vehicles"`
	ActiveDuties      int64  `json:"active_duties"`
	PendingApprovals  int64  `json:"pending_approvals"`
	TopCNGPoint       string `json:"top_cng_point"` // most frequently logged CNG point
}
