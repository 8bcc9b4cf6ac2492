package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jyothilaxmika/pls-travels-backend/internal/models"
	"github.com/jyothilaxmika/pls-travels-backend/internal/storage"
)

const (
	defaultOdometerTolerance = 50.0 // km of drift before a continuity warning
	defaultFuelCostPerPoint  = 90.0 // currency per CNG gauge step
)

// DutyService owns the duty lifecycle: start, complete, approve, reject.
// Every lifecycle operation runs inside one store transaction so duty,
// vehicle, driver and ledger rows commit or roll back together.
type DutyService struct {
	store    storage.Store
	notifier *Notifier
	audit    *AuditService

	// OdometerTolerance is the allowed drift (in km) between a supplied
	// start odometer and the vehicle's last recorded value before a
	// continuity warning is attached to the duty.
	OdometerTolerance float64

	// FuelCostPerPoint converts one CNG gauge step into currency for the
	// fuel adjustment at completion.
	FuelCostPerPoint float64
}

// NewDutyService creates a new duty service. Tolerances come from
// ODOMETER_TOLERANCE_KM and FUEL_COST_PER_POINT when set.
func NewDutyService(store storage.Store, notifier *Notifier, audit *AuditService) *DutyService {
	return &DutyService{
		store:             store,
		notifier:          notifier,
		audit:             audit,
		OdometerTolerance: envFloat("ODOMETER_TOLERANCE_KM", defaultOdometerTolerance),
		FuelCostPerPoint:  envFloat("FUEL_COST_PER_POINT", defaultFuelCostPerPoint),
	}
}

func envFloat(key string, fallback float64) float64 {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return fallback
}

// StartDuty opens a new duty for a driver on a vehicle. Odometer and fuel
// readings are optional and resolved from vehicle and duty history when
// omitted. On success the vehicle is held, the driver's current vehicle is
// set and the applicable duty scheme is pinned to the duty.
func (s *DutyService) StartDuty(req *models.DutyStartRequest) (*models.Duty, error) {
	var duty *models.Duty
	var driver *models.Driver
	var vehicle *models.Vehicle

	err := s.store.Transaction(func(tx storage.Store) error {
		var err error
		driver, err = tx.GetDriver(req.DriverID)
		if err != nil {
			return err
		}
		if driver.Status != models.DriverStatusActive {
			return models.ErrDriverNotActive
		}

		// At most one ACTIVE duty per driver
		if _, err := tx.GetActiveDutyByDriver(driver.ID); err == nil {
			return models.ErrDuplicateActiveDuty
		} else if !errors.Is(err, models.ErrDutyNotFound) {
			return err
		}

		vehicle, err = tx.GetVehicle(req.VehicleID)
		if err != nil {
			return err
		}
		if !vehicle.IsUsable() {
			return models.ErrVehicleUnavailable
		}

		startOdometer, warning, err := s.resolveStartOdometer(tx, vehicle, req.StartOdometer)
		if err != nil {
			return err
		}

		startFuel, err := s.resolveStartFuel(tx, vehicle, req.StartFuelLevel)
		if err != nil {
			return err
		}

		scheme, err := selectScheme(tx, driver.BranchID)
		if err != nil {
			return err
		}

		now := time.Now()
		duty = &models.Duty{
			DriverID:        driver.ID,
			VehicleID:       vehicle.ID,
			SchemeID:        scheme.ID,
			Status:          models.DutyStatusActive,
			StartOdometer:   startOdometer,
			StartFuelLevel:  startFuel,
			StartPhoto:      req.StartPhoto,
			OdometerWarning: warning,
			ActualStart:     &now,
		}
		if duty, err = tx.CreateDuty(duty); err != nil {
			return err
		}

		vehicle.IsAvailable = false
		vehicle.CurrentOdometer = startOdometer
		if err := tx.UpdateVehicle(vehicle); err != nil {
			return err
		}

		driver.CurrentVehicleID = &vehicle.ID
		driver.LastActiveAt = &now
		return tx.UpdateDriver(driver)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(driver.DriverID, models.AuditDutyStarted, "duty", duty.DutyID, map[string]interface{}{
		"vehicle":        vehicle.RegistrationNo,
		"start_odometer": duty.StartOdometer,
		"fuel_level":     duty.StartFuelLevel,
		"warning":        duty.OdometerWarning,
	})
	s.notifier.DutyStarted(driver, duty, vehicle)
	return duty, nil
}

// resolveStartOdometer picks the duty's opening odometer reading. The
// vehicle's own reading is authoritative for continuity checks; a supplied
// value below it is physically impossible and rejected, a value drifting
// beyond the tolerance is accepted with a warning annotation.
func (s *DutyService) resolveStartOdometer(tx storage.Store, vehicle *models.Vehicle, supplied *float64) (float64, string, error) {
	expected := 0.0
	hasExpected := false
	if vehicle.CurrentOdometer > 0 {
		expected = vehicle.CurrentOdometer
		hasExpected = true
	}

	if supplied == nil {
		if hasExpected {
			return expected, "", nil
		}
		if last, err := tx.GetLastFinishedDutyForVehicle(vehicle.ID); err == nil {
			return last.EndOdometer, "", nil
		} else if !errors.Is(err, models.ErrDutyNotFound) {
			return 0, "", err
		}
		return 0, "", models.ErrMissingOdometer
	}

	value := *supplied
	if hasExpected {
		if value < expected {
			return 0, "", models.ErrOdometerRegression
		}
		if value-expected > s.OdometerTolerance {
			warning := fmt.Sprintf("start odometer %.0f differs from last recorded %.0f by more than %.0f km",
				value, expected, s.OdometerTolerance)
			return value, warning, nil
		}
	}
	return value, "", nil
}

// resolveStartFuel picks the duty's opening CNG gauge reading: the
// supplied value when present, otherwise the vehicle's last known level,
// otherwise a full tank.
func (s *DutyService) resolveStartFuel(tx storage.Store, vehicle *models.Vehicle, supplied *float64) (float64, error) {
	if supplied != nil {
		if *supplied < models.FuelGaugeMin || *supplied > models.FuelGaugeMax {
			return 0, models.ErrInvalidFuelLevel
		}
		return *supplied, nil
	}
	if vehicle.LastFuelLevel != nil {
		return *vehicle.LastFuelLevel, nil
	}
	if last, err := tx.GetLastFinishedDutyForVehicle(vehicle.ID); err == nil {
		return last.EndFuelLevel, nil
	} else if !errors.Is(err, models.ErrDutyNotFound) {
		return 0, err
	}
	return models.FuelGaugeMax, nil
}

// selectScheme picks the duty scheme for a driver's branch. First match
// wins: branch default, global default, any active branch scheme, any
// active global scheme.
func selectScheme(tx storage.Store, branchID *uint) (*models.DutyScheme, error) {
	schemes, err := tx.GetActiveSchemes()
	if err != nil {
		return nil, err
	}

	sameBranch := func(s *models.DutyScheme) bool {
		return branchID != nil && s.BranchID != nil && *s.BranchID == *branchID
	}

	for _, s := range schemes {
		if s.IsDefault && sameBranch(s) {
			return s, nil
		}
	}
	for _, s := range schemes {
		if s.IsDefault && s.BranchID == nil {
			return s, nil
		}
	}
	for _, s := range schemes {
		if sameBranch(s) {
			return s, nil
		}
	}
	for _, s := range schemes {
		if s.BranchID == nil {
			return s, nil
		}
	}
	return nil, models.ErrNoSchemeAvailable
}

// CompleteDuty closes an active duty with end-of-shift readings and the
// tripsheet financials, computes earnings and submits the duty for
// approval. The tripsheet figures are canonical for DriverEarnings,
// GrossRevenue and CompanyProfit; the scheme-based breakdown is stored
// alongside for reporting (SchemeEarnings, BMGTopUp).
func (s *DutyService) CompleteDuty(dutyID uint, req *models.DutyCompleteRequest) (*models.Duty, error) {
	var duty *models.Duty
	var driver *models.Driver

	err := s.store.Transaction(func(tx storage.Store) error {
		var err error
		duty, err = tx.GetDuty(dutyID)
		if err != nil {
			return err
		}
		if duty.Status != models.DutyStatusActive {
			return models.ErrDutyNotActive
		}
		if req.EndOdometer < duty.StartOdometer {
			return models.ErrOdometerRegression
		}

		endFuel := duty.StartFuelLevel
		if req.EndFuelLevel != nil {
			if *req.EndFuelLevel < models.FuelGaugeMin || *req.EndFuelLevel > models.FuelGaugeMax {
				return models.ErrInvalidFuelLevel
			}
			endFuel = *req.EndFuelLevel
		}

		// Gauge delta in currency: consumption raises the fuel deduction,
		// a refill is credited back as incentive
		fuelAdjustment := FuelAdjustment(duty.StartFuelLevel, endFuel, s.FuelCostPerPoint)
		fuelDeduction := req.FuelDeduction
		fuelCredit := 0.0
		if fuelAdjustment < 0 {
			fuelDeduction += -fuelAdjustment
		} else {
			fuelCredit = fuelAdjustment
		}

		sheet := CalculateTripsheet(TripsheetInputs{
			CashCollected:      req.CashCollected,
			QRPayment:          req.QRPayment,
			DigitalPayment:     req.DigitalPayment,
			OperatorPayout:     req.OperatorPayout,
			Toll:               req.Toll,
			FuelExpense:        req.FuelExpense,
			OtherExpense:       req.OtherExpense,
			MaintenanceExpense: req.MaintenanceExpense,
			CompanyPay:         req.CompanyPay,
			AdvanceDeduction:   req.AdvanceDeduction,
			FuelDeduction:      fuelDeduction,
			PenaltyDeduction:   req.PenaltyDeduction,
		})

		scheme, err := tx.GetScheme(duty.SchemeID)
		if err != nil {
			return err
		}
		breakdown := CalculateSchemeEarnings(scheme, sheet.GrossRevenue, req.TripCount)

		now := time.Now()
		duty.EndOdometer = req.EndOdometer
		duty.TotalDistance = req.EndOdometer - duty.StartOdometer
		duty.EndFuelLevel = endFuel
		duty.CNGPoint = req.CNGPoint
		duty.TripCount = req.TripCount
		duty.EndPhoto = req.EndPhoto

		duty.CashCollected = req.CashCollected
		duty.QRPayment = req.QRPayment
		duty.DigitalPayment = req.DigitalPayment
		duty.OperatorPayout = req.OperatorPayout
		duty.Toll = req.Toll
		duty.FuelExpense = req.FuelExpense
		duty.OtherExpense = req.OtherExpense
		duty.MaintenanceExpense = req.MaintenanceExpense
		duty.CompanyPay = req.CompanyPay
		duty.AdvanceDeduction = req.AdvanceDeduction
		duty.FuelDeduction = fuelDeduction
		duty.PenaltyDeduction = req.PenaltyDeduction

		duty.GrossRevenue = sheet.GrossRevenue
		duty.DriverEarnings = roundMoney(sheet.DriverSalary + fuelCredit)
		duty.CompanyProfit = roundMoney(sheet.CompanyProfit - fuelCredit)
		duty.IncentivePay = roundMoney(sheet.Incentive + fuelCredit)
		duty.SchemeEarnings = breakdown.FinalEarnings
		duty.BMGTopUp = breakdown.BMGGuarantee
		duty.FuelAdjustment = fuelAdjustment

		duty.Status = models.DutyStatusPendingApproval
		duty.ActualEnd = &now
		duty.SubmittedAt = &now
		if err := tx.UpdateDuty(duty); err != nil {
			return err
		}

		vehicle, err := tx.GetVehicle(duty.VehicleID)
		if err != nil {
			return err
		}
		vehicle.IsAvailable = true
		vehicle.CurrentOdometer = req.EndOdometer
		vehicle.LastFuelLevel = &endFuel
		if err := tx.UpdateVehicle(vehicle); err != nil {
			return err
		}

		driver, err = tx.GetDriver(duty.DriverID)
		if err != nil {
			return err
		}
		driver.CurrentVehicleID = nil
		driver.TotalEarnings = roundMoney(driver.TotalEarnings + duty.DriverEarnings)
		driver.TotalDuties++
		driver.LastActiveAt = &now
		if err := tx.UpdateDriver(driver); err != nil {
			return err
		}

		return recordLedgerEntry(tx, &models.LedgerEntry{
			DriverID:   driver.ID,
			DutyID:     &duty.ID,
			Type:       models.LedgerTypeDutyEarning,
			Amount:     duty.DriverEarnings,
			Note:       fmt.Sprintf("Earnings for duty %s", duty.DutyID),
			RecordedBy: driver.DriverID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(driver.DriverID, models.AuditDutyCompleted, "duty", duty.DutyID, map[string]interface{}{
		"distance":        duty.TotalDistance,
		"gross_revenue":   duty.GrossRevenue,
		"driver_earnings": duty.DriverEarnings,
		"company_profit":  duty.CompanyProfit,
	})
	s.notifier.DutySubmitted(driver, duty)
	return duty, nil
}

// ApproveDuty moves a submitted duty to COMPLETED
func (s *DutyService) ApproveDuty(dutyID uint, adminID string) (*models.Duty, error) {
	var duty *models.Duty
	var driver *models.Driver

	err := s.store.Transaction(func(tx storage.Store) error {
		var err error
		duty, err = tx.GetDuty(dutyID)
		if err != nil {
			return err
		}
		if duty.Status != models.DutyStatusPendingApproval {
			return models.ErrDutyNotPending
		}

		now := time.Now()
		duty.Status = models.DutyStatusCompleted
		duty.ApprovedAt = &now
		duty.ApprovedBy = adminID
		if err := tx.UpdateDuty(duty); err != nil {
			return err
		}

		driver, err = tx.GetDriver(duty.DriverID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(adminID, models.AuditDutyApproved, "duty", duty.DutyID, nil)
	s.notifier.DutyApproved(driver, duty)
	return duty, nil
}

// RejectDuty moves a submitted duty to REJECTED and reverses the earnings
// credited at completion with a compensating ledger entry
func (s *DutyService) RejectDuty(dutyID uint, adminID, reason string) (*models.Duty, error) {
	var duty *models.Duty
	var driver *models.Driver

	err := s.store.Transaction(func(tx storage.Store) error {
		var err error
		duty, err = tx.GetDuty(dutyID)
		if err != nil {
			return err
		}
		if duty.Status != models.DutyStatusPendingApproval {
			return models.ErrDutyNotPending
		}

		now := time.Now()
		duty.Status = models.DutyStatusRejected
		duty.ApprovedAt = &now
		duty.ApprovedBy = adminID
		duty.RejectReason = reason
		if err := tx.UpdateDuty(duty); err != nil {
			return err
		}

		driver, err = tx.GetDriver(duty.DriverID)
		if err != nil {
			return err
		}
		driver.TotalEarnings = roundMoney(driver.TotalEarnings - duty.DriverEarnings)
		driver.TotalDuties--
		if err := tx.UpdateDriver(driver); err != nil {
			return err
		}

		return recordLedgerEntry(tx, &models.LedgerEntry{
			DriverID:   driver.ID,
			DutyID:     &duty.ID,
			Type:       models.LedgerTypeAdjustment,
			Amount:     -duty.DriverEarnings,
			Note:       fmt.Sprintf("Reversal for rejected duty %s", duty.DutyID),
			RecordedBy: adminID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(adminID, models.AuditDutyRejected, "duty", duty.DutyID, map[string]interface{}{
		"reason": reason,
	})
	s.notifier.DutyRejected(driver, duty)
	return duty, nil
}
