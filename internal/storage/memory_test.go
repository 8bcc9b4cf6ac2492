package storage

import (
	"testing"
	"time"

	"github.com/jyothilaxmika/pls-travels-backend/internal/models"
)

func seedDriver(t *testing.T, m *MemoryStore, phone string) *models.Driver {
	t.Helper()
	driver, err := m.CreateDriver(&models.DriverRegistration{
		Name:      "Test Driver",
		Phone:     phone,
		LicenseNo: "KA0320210009999",
	})
	if err != nil {
		t.Fatalf("CreateDriver: %v", err)
	}
	return driver
}

func TestCreateDriverRejectsDuplicatePhone(t *testing.T) {
	m := NewMemoryStore()
	seedDriver(t, m, "+919800000001")

	_, err := m.CreateDriver(&models.DriverRegistration{
		Name: "Someone Else", Phone: "+919800000001", LicenseNo: "KA0320210008888",
	})
	if err == nil {
		t.Fatal("expected duplicate phone to be rejected")
	}
}

func TestLedgerBalance(t *testing.T) {
	m := NewMemoryStore()
	driver := seedDriver(t, m, "+919800000002")
	other := seedDriver(t, m, "+919800000003")

	for _, e := range []*models.LedgerEntry{
		{DriverID: driver.ID, Type: models.LedgerTypeDutyEarning, Amount: 725},
		{DriverID: driver.ID, Type: models.LedgerTypeAdvance, Amount: -500},
		{DriverID: driver.ID, Type: models.LedgerTypePenalty, Amount: -25},
		{DriverID: other.ID, Type: models.LedgerTypeDutyEarning, Amount: 999},
	} {
		if _, err := m.CreateLedgerEntry(e); err != nil {
			t.Fatalf("CreateLedgerEntry: %v", err)
		}
	}

	balance, err := m.GetLedgerBalance(driver.ID)
	if err != nil {
		t.Fatalf("GetLedgerBalance: %v", err)
	}
	if balance != 200 {
		t.Errorf("balance = %v, want 200", balance)
	}

	entries, _ := m.GetLedgerByDriver(driver.ID)
	if len(entries) != 3 {
		t.Errorf("entries = %d, want 3 (other driver's entry leaked in)", len(entries))
	}
}

func TestGetExpiringDocuments(t *testing.T) {
	m := NewMemoryStore()
	driver := seedDriver(t, m, "+919800000004")

	soon := time.Now().AddDate(0, 0, 10)
	far := time.Now().AddDate(0, 0, 90)
	past := time.Now().AddDate(0, 0, -5)

	docs := []*models.DriverDocument{
		{DriverID: driver.ID, Type: models.DocumentTypeLicense, FileName: "lic.jpg", ExpiryDate: &soon},
		{DriverID: driver.ID, Type: models.DocumentTypeInsurance, FileName: "ins.pdf", ExpiryDate: &far},
		{DriverID: driver.ID, Type: models.DocumentTypeAadhaar, FileName: "aad.jpg", ExpiryDate: &past},
		{DriverID: driver.ID, Type: models.DocumentTypePhoto, FileName: "photo.jpg"}, // no expiry
	}
	for _, d := range docs {
		if _, err := m.CreateDocument(d); err != nil {
			t.Fatalf("CreateDocument: %v", err)
		}
	}

	expiring, err := m.GetExpiringDocuments(30)
	if err != nil {
		t.Fatalf("GetExpiringDocuments: %v", err)
	}
	// License expires within the window; the lapsed aadhaar still counts
	if len(expiring) != 2 {
		t.Fatalf("expiring = %d, want 2", len(expiring))
	}
	for _, d := range expiring {
		if d.Type == models.DocumentTypeInsurance || d.Type == models.DocumentTypePhoto {
			t.Errorf("document %s should not be flagged", d.Type)
		}
	}
}

func TestGetLastFinishedDutyForVehicle(t *testing.T) {
	m := NewMemoryStore()
	driver := seedDriver(t, m, "+919800000005")
	vehicle, _ := m.CreateVehicle(&models.Vehicle{RegistrationNo: "KA05XY0001", IsAvailable: true})

	first, _ := m.CreateDuty(&models.Duty{
		DriverID: driver.ID, VehicleID: vehicle.ID,
		Status: models.DutyStatusCompleted, EndOdometer: 1000, EndFuelLevel: 7,
	})
	_ = first
	second, _ := m.CreateDuty(&models.Duty{
		DriverID: driver.ID, VehicleID: vehicle.ID,
		Status: models.DutyStatusPendingApproval, EndOdometer: 1150, EndFuelLevel: 5,
	})
	// Active duties are in progress and have no end reading yet
	_, _ = m.CreateDuty(&models.Duty{
		DriverID: driver.ID, VehicleID: vehicle.ID, Status: models.DutyStatusActive,
	})

	last, err := m.GetLastFinishedDutyForVehicle(vehicle.ID)
	if err != nil {
		t.Fatalf("GetLastFinishedDutyForVehicle: %v", err)
	}
	if last.ID != second.ID {
		t.Errorf("last finished duty = %d, want %d", last.ID, second.ID)
	}
}

func TestDriverStats(t *testing.T) {
	m := NewMemoryStore()
	driver := seedDriver(t, m, "+919800000006")
	vehicle, _ := m.CreateVehicle(&models.Vehicle{RegistrationNo: "KA05XY0002", IsAvailable: true})

	submitted := time.Now().Add(-2 * time.Hour)
	_, _ = m.CreateDuty(&models.Duty{
		DriverID: driver.ID, VehicleID: vehicle.ID,
		Status: models.DutyStatusCompleted, TotalDistance: 150, DriverEarnings: 725,
		SubmittedAt: &submitted,
	})
	_, _ = m.CreateDuty(&models.Duty{
		DriverID: driver.ID, VehicleID: vehicle.ID,
		Status: models.DutyStatusPendingApproval, TotalDistance: 90, DriverEarnings: 400,
	})
	_, _ = m.CreateLedgerEntry(&models.LedgerEntry{
		DriverID: driver.ID, Type: models.LedgerTypeDutyEarning, Amount: 725,
	})

	stats, err := m.GetDriverStats(driver.ID)
	if err != nil {
		t.Fatalf("GetDriverStats: %v", err)
	}
	if stats.CompletedDuties != 1 || stats.PendingDuties != 1 {
		t.Errorf("duties = %d completed / %d pending, want 1/1", stats.CompletedDuties, stats.PendingDuties)
	}
	if stats.TotalDistance != 150 {
		t.Errorf("TotalDistance = %v, want 150 (pending duties excluded)", stats.TotalDistance)
	}
	if stats.TotalEarnings != 725 {
		t.Errorf("TotalEarnings = %v, want 725", stats.TotalEarnings)
	}
	if stats.LedgerBalance != 725 {
		t.Errorf("LedgerBalance = %v, want 725", stats.LedgerBalance)
	}
	if stats.LastDutyAt == nil {
		t.Error("LastDutyAt not set")
	}
}

func TestTopCNGPoint(t *testing.T) {
	m := NewMemoryStore()
	driver := seedDriver(t, m, "+919800000007")
	vehicle, _ := m.CreateVehicle(&models.Vehicle{RegistrationNo: "KA05XY0003", IsAvailable: true})

	for _, point := range []string{"Shivajinagar", "Yeshwantpur", "Shivajinagar", ""} {
		_, _ = m.CreateDuty(&models.Duty{
			DriverID: driver.ID, VehicleID: vehicle.ID,
			Status: models.DutyStatusCompleted, CNGPoint: point,
		})
	}

	top, err := m.GetTopCNGPoint()
	if err != nil {
		t.Fatalf("GetTopCNGPoint: %v", err)
	}
	if top != "Shivajinagar" {
		t.Errorf("top CNG point = %q, want Shivajinagar", top)
	}
}
