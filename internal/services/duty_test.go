package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/jyothilaxmika/pls-travels-backend/internal/models"
	"github.com/jyothilaxmika/pls-travels-backend/internal/storage"
)

type testEnv struct {
	store   *storage.MemoryStore
	duties  *DutyService
	driver  *models.Driver
	vehicle *models.Vehicle
	scheme  *models.DutyScheme
}

// newTestEnv seeds a memory store with one active driver, one available
// vehicle (odometer 9500) and one global default fixed scheme
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := storage.NewMemoryStore()

	driver, err := store.CreateDriver(&models.DriverRegistration{
		Name:      "Ravi Kumar",
		Phone:     "+919876543210",
		LicenseNo: "KA0320200001234",
	})
	if err != nil {
		t.Fatalf("seed driver: %v", err)
	}
	driver.Status = models.DriverStatusActive
	driver.PhoneVerified = true
	if err := store.UpdateDriver(driver); err != nil {
		t.Fatalf("activate driver: %v", err)
	}

	vehicle, err := store.CreateVehicle(&models.Vehicle{
		RegistrationNo:  "KA01AB1234",
		VehicleModel:    "WagonR CNG",
		Status:          models.VehicleStatusActive,
		IsAvailable:     true,
		CurrentOdometer: 9500,
	})
	if err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}

	scheme, err := store.CreateScheme(&models.DutyScheme{
		Name:        "Standard Fixed",
		Type:        models.SchemeTypeFixed,
		FixedAmount: 500,
		IsActive:    true,
		IsDefault:   true,
	})
	if err != nil {
		t.Fatalf("seed scheme: %v", err)
	}

	return &testEnv{
		store:   store,
		duties:  NewDutyService(store, NewNotifier(nil), NewAuditService(store)),
		driver:  driver,
		vehicle: vehicle,
		scheme:  scheme,
	}
}

func (e *testEnv) startDuty(t *testing.T, req *models.DutyStartRequest) *models.Duty {
	t.Helper()
	if req == nil {
		req = &models.DutyStartRequest{DriverID: e.driver.ID, VehicleID: e.vehicle.ID}
	}
	duty, err := e.duties.StartDuty(req)
	if err != nil {
		t.Fatalf("StartDuty: %v", err)
	}
	return duty
}

func TestStartDuty(t *testing.T) {
	t.Run("autofills odometer from vehicle and holds it", func(t *testing.T) {
		e := newTestEnv(t)
		duty := e.startDuty(t, nil)

		if duty.Status != models.DutyStatusActive {
			t.Errorf("status = %q, want %q", duty.Status, models.DutyStatusActive)
		}
		if duty.StartOdometer != 9500 {
			t.Errorf("StartOdometer = %v, want 9500 (vehicle reading)", duty.StartOdometer)
		}
		if duty.SchemeID != e.scheme.ID {
			t.Errorf("SchemeID = %d, want %d", duty.SchemeID, e.scheme.ID)
		}

		vehicle, _ := e.store.GetVehicle(e.vehicle.ID)
		if vehicle.IsAvailable {
			t.Error("vehicle still available after duty start")
		}
		driver, _ := e.store.GetDriver(e.driver.ID)
		if driver.CurrentVehicleID == nil || *driver.CurrentVehicleID != vehicle.ID {
			t.Error("driver's current vehicle not set")
		}
	})

	t.Run("rejects a second active duty for the same driver", func(t *testing.T) {
		e := newTestEnv(t)
		e.startDuty(t, nil)

		second, _ := e.store.CreateVehicle(&models.Vehicle{
			RegistrationNo: "KA01CD5678", Status: models.VehicleStatusActive,
			IsAvailable: true, CurrentOdometer: 12000,
		})
		_, err := e.duties.StartDuty(&models.DutyStartRequest{DriverID: e.driver.ID, VehicleID: second.ID})
		if !errors.Is(err, models.ErrDuplicateActiveDuty) {
			t.Errorf("err = %v, want ErrDuplicateActiveDuty", err)
		}
	})

	t.Run("rejects an unavailable vehicle", func(t *testing.T) {
		e := newTestEnv(t)
		e.vehicle.IsAvailable = false
		_ = e.store.UpdateVehicle(e.vehicle)

		_, err := e.duties.StartDuty(&models.DutyStartRequest{DriverID: e.driver.ID, VehicleID: e.vehicle.ID})
		if !errors.Is(err, models.ErrVehicleUnavailable) {
			t.Errorf("err = %v, want ErrVehicleUnavailable", err)
		}
	})

	t.Run("rejects a vehicle in maintenance", func(t *testing.T) {
		e := newTestEnv(t)
		e.vehicle.Status = models.VehicleStatusMaintenance
		_ = e.store.UpdateVehicle(e.vehicle)

		_, err := e.duties.StartDuty(&models.DutyStartRequest{DriverID: e.driver.ID, VehicleID: e.vehicle.ID})
		if !errors.Is(err, models.ErrVehicleUnavailable) {
			t.Errorf("err = %v, want ErrVehicleUnavailable", err)
		}
	})

	t.Run("rejects a pending driver", func(t *testing.T) {
		e := newTestEnv(t)
		e.driver.Status = models.DriverStatusPending
		_ = e.store.UpdateDriver(e.driver)

		_, err := e.duties.StartDuty(&models.DutyStartRequest{DriverID: e.driver.ID, VehicleID: e.vehicle.ID})
		if !errors.Is(err, models.ErrDriverNotActive) {
			t.Errorf("err = %v, want ErrDriverNotActive", err)
		}
	})

	t.Run("rejects odometer below the vehicle's last reading", func(t *testing.T) {
		e := newTestEnv(t)
		_, err := e.duties.StartDuty(&models.DutyStartRequest{
			DriverID: e.driver.ID, VehicleID: e.vehicle.ID,
			StartOdometer: floatPtr(9000),
		})
		if !errors.Is(err, models.ErrOdometerRegression) {
			t.Errorf("err = %v, want ErrOdometerRegression", err)
		}
	})

	t.Run("accepts drift beyond tolerance with a warning", func(t *testing.T) {
		e := newTestEnv(t)
		duty := e.startDuty(t, &models.DutyStartRequest{
			DriverID: e.driver.ID, VehicleID: e.vehicle.ID,
			StartOdometer: floatPtr(9600), // 100 over, tolerance 50
		})
		if duty.OdometerWarning == "" {
			t.Error("expected a continuity warning for 100 km drift")
		}
		if duty.StartOdometer != 9600 {
			t.Errorf("StartOdometer = %v, want 9600", duty.StartOdometer)
		}
	})

	t.Run("accepts drift within tolerance silently", func(t *testing.T) {
		e := newTestEnv(t)
		duty := e.startDuty(t, &models.DutyStartRequest{
			DriverID: e.driver.ID, VehicleID: e.vehicle.ID,
			StartOdometer: floatPtr(9540),
		})
		if duty.OdometerWarning != "" {
			t.Errorf("unexpected warning %q for 40 km drift", duty.OdometerWarning)
		}
	})

	t.Run("fails when no odometer can be resolved", func(t *testing.T) {
		e := newTestEnv(t)
		fresh, _ := e.store.CreateVehicle(&models.Vehicle{
			RegistrationNo: "KA01EF9999", Status: models.VehicleStatusActive, IsAvailable: true,
		})
		_, err := e.duties.StartDuty(&models.DutyStartRequest{DriverID: e.driver.ID, VehicleID: fresh.ID})
		if !errors.Is(err, models.ErrMissingOdometer) {
			t.Errorf("err = %v, want ErrMissingOdometer", err)
		}
	})

	t.Run("defaults fuel to the vehicle's last level", func(t *testing.T) {
		e := newTestEnv(t)
		e.vehicle.LastFuelLevel = floatPtr(6.5)
		_ = e.store.UpdateVehicle(e.vehicle)

		duty := e.startDuty(t, nil)
		if duty.StartFuelLevel != 6.5 {
			t.Errorf("StartFuelLevel = %v, want 6.5", duty.StartFuelLevel)
		}
	})

	t.Run("defaults fuel to a full tank with no history", func(t *testing.T) {
		e := newTestEnv(t)
		duty := e.startDuty(t, nil)
		if duty.StartFuelLevel != models.FuelGaugeMax {
			t.Errorf("StartFuelLevel = %v, want %v", duty.StartFuelLevel, models.FuelGaugeMax)
		}
	})

	t.Run("rejects a fuel reading outside the gauge", func(t *testing.T) {
		e := newTestEnv(t)
		for _, level := range []float64{-1, 10.5} {
			_, err := e.duties.StartDuty(&models.DutyStartRequest{
				DriverID: e.driver.ID, VehicleID: e.vehicle.ID,
				StartFuelLevel: floatPtr(level),
			})
			if !errors.Is(err, models.ErrInvalidFuelLevel) {
				t.Errorf("level %v: err = %v, want ErrInvalidFuelLevel", level, err)
			}
		}
	})

	t.Run("fails when no scheme is active", func(t *testing.T) {
		e := newTestEnv(t)
		e.scheme.IsActive = false
		_ = e.store.UpdateScheme(e.scheme)

		_, err := e.duties.StartDuty(&models.DutyStartRequest{DriverID: e.driver.ID, VehicleID: e.vehicle.ID})
		if !errors.Is(err, models.ErrNoSchemeAvailable) {
			t.Errorf("err = %v, want ErrNoSchemeAvailable", err)
		}
	})
}

func TestConcurrentStartDutySingleActive(t *testing.T) {
	e := newTestEnv(t)
	second, _ := e.store.CreateVehicle(&models.Vehicle{
		RegistrationNo: "KA01GH2222", Status: models.VehicleStatusActive,
		IsAvailable: true, CurrentOdometer: 12000,
	})

	// Same driver, two vehicles, racing starts: exactly one duty may open
	vehicles := []uint{e.vehicle.ID, second.ID}
	errs := make([]error, len(vehicles))
	var wg sync.WaitGroup
	for i, vid := range vehicles {
		wg.Add(1)
		go func(i int, vid uint) {
			defer wg.Done()
			_, errs[i] = e.duties.StartDuty(&models.DutyStartRequest{
				DriverID: e.driver.ID, VehicleID: vid,
			})
		}(i, vid)
	}
	wg.Wait()

	started := 0
	for _, err := range errs {
		if err == nil {
			started++
		} else if !errors.Is(err, models.ErrDuplicateActiveDuty) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if started != 1 {
		t.Errorf("started = %d duties, want exactly 1", started)
	}

	active, err := e.store.GetDutiesByStatus(models.DutyStatusActive)
	if err != nil {
		t.Fatalf("GetDutiesByStatus: %v", err)
	}
	if len(active) != 1 {
		t.Errorf("active duties = %d, want 1", len(active))
	}
}

func TestSchemeSelectionOrder(t *testing.T) {
	branch := uint(7)
	otherBranch := uint(9)

	e := newTestEnv(t)
	e.driver.BranchID = &branch
	_ = e.store.UpdateDriver(e.driver)

	// Demote the seeded global default so ordering is observable
	e.scheme.IsDefault = false
	_ = e.store.UpdateScheme(e.scheme)

	branchScheme, _ := e.store.CreateScheme(&models.DutyScheme{
		Name: "Branch Plain", Type: models.SchemeTypeFixed, FixedAmount: 100,
		BranchID: &branch, IsActive: true,
	})
	otherBranchDefault, _ := e.store.CreateScheme(&models.DutyScheme{
		Name: "Other Branch Default", Type: models.SchemeTypeFixed, FixedAmount: 200,
		BranchID: &otherBranch, IsActive: true, IsDefault: true,
	})
	_ = otherBranchDefault

	// No branch default yet: branch-specific active scheme wins over global
	duty := e.startDuty(t, nil)
	if duty.SchemeID != branchScheme.ID {
		t.Fatalf("SchemeID = %d, want branch scheme %d", duty.SchemeID, branchScheme.ID)
	}
	if _, err := e.duties.CompleteDuty(duty.ID, &models.DutyCompleteRequest{EndOdometer: 9550}); err != nil {
		t.Fatalf("CompleteDuty: %v", err)
	}

	// Global default beats plain branch scheme
	globalDefault, _ := e.store.CreateScheme(&models.DutyScheme{
		Name: "Global Default", Type: models.SchemeTypeFixed, FixedAmount: 300,
		IsActive: true, IsDefault: true,
	})
	duty = e.startDuty(t, nil)
	if duty.SchemeID != globalDefault.ID {
		t.Fatalf("SchemeID = %d, want global default %d", duty.SchemeID, globalDefault.ID)
	}
	if _, err := e.duties.CompleteDuty(duty.ID, &models.DutyCompleteRequest{EndOdometer: 9600}); err != nil {
		t.Fatalf("CompleteDuty: %v", err)
	}

	// Branch default beats everything
	branchDefault, _ := e.store.CreateScheme(&models.DutyScheme{
		Name: "Branch Default", Type: models.SchemeTypeFixed, FixedAmount: 400,
		BranchID: &branch, IsActive: true, IsDefault: true,
	})
	duty = e.startDuty(t, nil)
	if duty.SchemeID != branchDefault.ID {
		t.Fatalf("SchemeID = %d, want branch default %d", duty.SchemeID, branchDefault.ID)
	}
}

func TestCompleteDuty(t *testing.T) {
	completeReq := func() *models.DutyCompleteRequest {
		return &models.DutyCompleteRequest{
			EndOdometer:      9650,
			EndFuelLevel:     floatPtr(10), // matches full-tank start, no adjustment
			CNGPoint:         "Shivajinagar CNG",
			TripCount:        8,
			CashCollected:    1200,
			QRPayment:        300,
			OperatorPayout:   800,
			CompanyPay:       500,
			AdvanceDeduction: 100,
			FuelDeduction:    50,
			PenaltyDeduction: 25,
		}
	}

	t.Run("computes tripsheet figures and submits for approval", func(t *testing.T) {
		e := newTestEnv(t)
		duty := e.startDuty(t, nil)

		done, err := e.duties.CompleteDuty(duty.ID, completeReq())
		if err != nil {
			t.Fatalf("CompleteDuty: %v", err)
		}

		if done.Status != models.DutyStatusPendingApproval {
			t.Errorf("status = %q, want %q", done.Status, models.DutyStatusPendingApproval)
		}
		if done.SubmittedAt == nil {
			t.Error("SubmittedAt not stamped")
		}
		if done.TotalDistance != 150 {
			t.Errorf("TotalDistance = %v, want 150", done.TotalDistance)
		}
		if done.GrossRevenue != 1500 {
			t.Errorf("GrossRevenue = %v, want 1500", done.GrossRevenue)
		}
		if done.DriverEarnings != 725 {
			t.Errorf("DriverEarnings = %v, want 725", done.DriverEarnings)
		}
		if done.IncentivePay != 400 {
			t.Errorf("IncentivePay = %v, want 400", done.IncentivePay)
		}
		// Scheme breakdown stored alongside: fixed 500, no BMG
		if done.SchemeEarnings != 500 {
			t.Errorf("SchemeEarnings = %v, want 500", done.SchemeEarnings)
		}

		vehicle, _ := e.store.GetVehicle(e.vehicle.ID)
		if !vehicle.IsAvailable {
			t.Error("vehicle not released")
		}
		if vehicle.CurrentOdometer != 9650 {
			t.Errorf("vehicle odometer = %v, want 9650", vehicle.CurrentOdometer)
		}

		driver, _ := e.store.GetDriver(e.driver.ID)
		if driver.CurrentVehicleID != nil {
			t.Error("driver's current vehicle not cleared")
		}
		if driver.TotalEarnings != 725 {
			t.Errorf("driver TotalEarnings = %v, want 725", driver.TotalEarnings)
		}

		entries, _ := e.store.GetLedgerByDriver(driver.ID)
		if len(entries) != 1 {
			t.Fatalf("ledger entries = %d, want 1", len(entries))
		}
		if entries[0].Type != models.LedgerTypeDutyEarning || entries[0].Amount != 725 {
			t.Errorf("ledger entry = %s/%v, want duty_earning/725", entries[0].Type, entries[0].Amount)
		}
	})

	t.Run("fuel consumption raises the fuel deduction", func(t *testing.T) {
		e := newTestEnv(t)
		duty := e.startDuty(t, &models.DutyStartRequest{
			DriverID: e.driver.ID, VehicleID: e.vehicle.ID,
			StartFuelLevel: floatPtr(8),
		})

		req := completeReq()
		req.EndFuelLevel = floatPtr(6) // 2 points consumed at 90 = 180
		done, err := e.duties.CompleteDuty(duty.ID, req)
		if err != nil {
			t.Fatalf("CompleteDuty: %v", err)
		}

		if done.FuelAdjustment != -180 {
			t.Errorf("FuelAdjustment = %v, want -180", done.FuelAdjustment)
		}
		if done.FuelDeduction != 230 { // 50 supplied + 180 gauge
			t.Errorf("FuelDeduction = %v, want 230", done.FuelDeduction)
		}
		if done.DriverEarnings != 545 { // 725 - 180
			t.Errorf("DriverEarnings = %v, want 545", done.DriverEarnings)
		}
	})

	t.Run("a refill is credited back to the driver", func(t *testing.T) {
		e := newTestEnv(t)
		duty := e.startDuty(t, &models.DutyStartRequest{
			DriverID: e.driver.ID, VehicleID: e.vehicle.ID,
			StartFuelLevel: floatPtr(4),
		})

		req := completeReq()
		req.EndFuelLevel = floatPtr(6) // 2 points refilled at 90 = 180 credit
		done, err := e.duties.CompleteDuty(duty.ID, req)
		if err != nil {
			t.Fatalf("CompleteDuty: %v", err)
		}

		if done.FuelAdjustment != 180 {
			t.Errorf("FuelAdjustment = %v, want 180", done.FuelAdjustment)
		}
		if done.DriverEarnings != 905 { // 725 + 180
			t.Errorf("DriverEarnings = %v, want 905", done.DriverEarnings)
		}
		if done.IncentivePay != 580 { // 400 + 180
			t.Errorf("IncentivePay = %v, want 580", done.IncentivePay)
		}
	})

	t.Run("rejects an end odometer below the start", func(t *testing.T) {
		e := newTestEnv(t)
		duty := e.startDuty(t, nil)

		req := completeReq()
		req.EndOdometer = 9400
		_, err := e.duties.CompleteDuty(duty.ID, req)
		if !errors.Is(err, models.ErrOdometerRegression) {
			t.Errorf("err = %v, want ErrOdometerRegression", err)
		}
	})

	t.Run("second completion fails without double-counting", func(t *testing.T) {
		e := newTestEnv(t)
		duty := e.startDuty(t, nil)

		if _, err := e.duties.CompleteDuty(duty.ID, completeReq()); err != nil {
			t.Fatalf("first CompleteDuty: %v", err)
		}
		_, err := e.duties.CompleteDuty(duty.ID, completeReq())
		if !errors.Is(err, models.ErrDutyNotActive) {
			t.Errorf("err = %v, want ErrDutyNotActive", err)
		}

		driver, _ := e.store.GetDriver(e.driver.ID)
		if driver.TotalEarnings != 725 {
			t.Errorf("TotalEarnings = %v after duplicate completion, want 725", driver.TotalEarnings)
		}
	})

	t.Run("unknown duty fails with not found", func(t *testing.T) {
		e := newTestEnv(t)
		_, err := e.duties.CompleteDuty(4242, completeReq())
		if !errors.Is(err, models.ErrDutyNotFound) {
			t.Errorf("err = %v, want ErrDutyNotFound", err)
		}
	})

	t.Run("vehicle odometer never decreases across the lifecycle", func(t *testing.T) {
		e := newTestEnv(t)
		before := e.vehicle.CurrentOdometer

		duty := e.startDuty(t, nil)
		mid, _ := e.store.GetVehicle(e.vehicle.ID)
		if mid.CurrentOdometer < before {
			t.Errorf("odometer decreased at start: %v -> %v", before, mid.CurrentOdometer)
		}

		if _, err := e.duties.CompleteDuty(duty.ID, completeReq()); err != nil {
			t.Fatalf("CompleteDuty: %v", err)
		}
		after, _ := e.store.GetVehicle(e.vehicle.ID)
		if after.CurrentOdometer < mid.CurrentOdometer {
			t.Errorf("odometer decreased at completion: %v -> %v", mid.CurrentOdometer, after.CurrentOdometer)
		}
	})
}

func TestApproveAndRejectDuty(t *testing.T) {
	complete := func(t *testing.T, e *testEnv) *models.Duty {
		duty := e.startDuty(t, nil)
		done, err := e.duties.CompleteDuty(duty.ID, &models.DutyCompleteRequest{
			EndOdometer:   9650,
			EndFuelLevel:  floatPtr(10),
			CashCollected: 1000,
			CompanyPay:    500,
		})
		if err != nil {
			t.Fatalf("CompleteDuty: %v", err)
		}
		return done
	}

	t.Run("approval finalizes the duty", func(t *testing.T) {
		e := newTestEnv(t)
		duty := complete(t, e)

		approved, err := e.duties.ApproveDuty(duty.ID, "ADMIN1")
		if err != nil {
			t.Fatalf("ApproveDuty: %v", err)
		}
		if approved.Status != models.DutyStatusCompleted {
			t.Errorf("status = %q, want %q", approved.Status, models.DutyStatusCompleted)
		}
		if approved.ApprovedBy != "ADMIN1" {
			t.Errorf("ApprovedBy = %q, want ADMIN1", approved.ApprovedBy)
		}
	})

	t.Run("rejection reverses earnings and ledger", func(t *testing.T) {
		e := newTestEnv(t)
		duty := complete(t, e)
		earned := duty.DriverEarnings

		rejected, err := e.duties.RejectDuty(duty.ID, "ADMIN1", "odometer photo missing")
		if err != nil {
			t.Fatalf("RejectDuty: %v", err)
		}
		if rejected.Status != models.DutyStatusRejected {
			t.Errorf("status = %q, want %q", rejected.Status, models.DutyStatusRejected)
		}
		if rejected.RejectReason == "" {
			t.Error("reject reason not stored")
		}

		driver, _ := e.store.GetDriver(e.driver.ID)
		if driver.TotalEarnings != 0 {
			t.Errorf("TotalEarnings = %v after rejection, want 0", driver.TotalEarnings)
		}

		balance, _ := e.store.GetLedgerBalance(driver.ID)
		if balance != 0 {
			t.Errorf("ledger balance = %v after rejection, want 0", balance)
		}
		entries, _ := e.store.GetLedgerByDriver(driver.ID)
		if len(entries) != 2 {
			t.Fatalf("ledger entries = %d, want earning + reversal", len(entries))
		}
		if entries[1].Amount != -earned {
			t.Errorf("reversal amount = %v, want %v", entries[1].Amount, -earned)
		}
	})

	t.Run("approval requires a pending duty", func(t *testing.T) {
		e := newTestEnv(t)
		duty := e.startDuty(t, nil)

		_, err := e.duties.ApproveDuty(duty.ID, "ADMIN1")
		if !errors.Is(err, models.ErrDutyNotPending) {
			t.Errorf("err = %v, want ErrDutyNotPending", err)
		}
	})
}

func TestLifecycleAuditTrail(t *testing.T) {
	e := newTestEnv(t)
	duty := e.startDuty(t, nil)
	if _, err := e.duties.CompleteDuty(duty.ID, &models.DutyCompleteRequest{
		EndOdometer: 9650, EndFuelLevel: floatPtr(10),
	}); err != nil {
		t.Fatalf("CompleteDuty: %v", err)
	}
	if _, err := e.duties.ApproveDuty(duty.ID, "ADMIN1"); err != nil {
		t.Fatalf("ApproveDuty: %v", err)
	}

	logs := e.store.AuditLogs()
	want := []string{models.AuditDutyStarted, models.AuditDutyCompleted, models.AuditDutyApproved}
	if len(logs) != len(want) {
		t.Fatalf("audit entries = %d, want %d", len(logs), len(want))
	}
	for i, action := range want {
		if logs[i].Action != action {
			t.Errorf("audit[%d] = %q, want %q", i, logs[i].Action, action)
		}
	}
}
