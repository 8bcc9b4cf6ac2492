package storage

import (
	"github.com/jyothilaxmika/pls-travels-backend/internal/models"
)

var storeInstance Store

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Store defines the interface for storage operations
type Store interface {
	// Transaction runs fn against a store whose writes commit or roll back
	// as one unit. Duty lifecycle operations mutate duty, vehicle, driver
	// and ledger rows together and must go through this.
	Transaction(fn func(Store) error) error

	// Driver operations
	CreateDriver(reg *models.DriverRegistration) (*models.Driver, error)
	GetDriver(id uint) (*models.Driver, error)
	GetDriverByDriverID(driverID string) (*models.Driver, error)
	GetDriverByPhone(phone string) (*models.Driver, error)
	GetAllDrivers() ([]*models.Driver, error)
	UpdateDriver(driver *models.Driver) error

	// Vehicle operations
	CreateVehicle(vehicle *models.Vehicle) (*models.Vehicle, error)
	GetVehicle(id uint) (*models.Vehicle, error)
	GetVehicleByRegistration(regNo string) (*models.Vehicle, error)
	GetAllVehicles() ([]*models.Vehicle, error)
	GetAvailableVehicles() ([]*models.Vehicle, error)
	UpdateVehicle(vehicle *models.Vehicle) error

	// Duty scheme operations
	CreateScheme(scheme *models.DutyScheme) (*models.DutyScheme, error)
	GetScheme(id uint) (*models.DutyScheme, error)
	GetActiveSchemes() ([]*models.DutyScheme, error)
	GetAllSchemes() ([]*models.DutyScheme, error)
	UpdateScheme(scheme *models.DutyScheme) error

	// Duty operations
	CreateDuty(duty *models.Duty) (*models.Duty, error)
	GetDuty(id uint) (*models.Duty, error)
	GetDutyByDutyID(dutyID string) (*models.Duty, error)
	GetActiveDutyByDriver(driverID uint) (*models.Duty, error)
	GetLastFinishedDutyForVehicle(vehicleID uint) (*models.Duty, error)
	GetDutiesByDriver(driverID uint) ([]*models.Duty, error)
	GetDutiesByStatus(status string) ([]*models.Duty, error)
	UpdateDuty(duty *models.Duty) error

	// Ledger operations
	CreateLedgerEntry(entry *models.LedgerEntry) (*models.LedgerEntry, error)
	GetLedgerByDriver(driverID uint) ([]*models.LedgerEntry, error)
	GetLedgerBalance(driverID uint) (float64, error)

	// Document operations
	CreateDocument(doc *models.DriverDocument) (*models.DriverDocument, error)
	GetDocumentsByDriver(driverID uint) ([]*models.DriverDocument, error)
	GetExpiringDocuments(daysAhead int) ([]*models.DriverDocument, error)
	UpdateDocument(doc *models.DriverDocument) error

	// OTP operations
	CreateOTP(otp *models.OTP) (*models.OTP, error)
	GetActiveOTP(phone, purpose string) (*models.OTP, error)
	UpdateOTP(otp *models.OTP) error
	DeleteExpiredOTPs() error

	// Audit operations
	CreateAuditLog(entry *models.AuditLog) error

	// Reporting projections
	GetDriverStats(driverID uint) (*models.DriverStats, error)
	GetFleetStats() (*models.FleetStats, error)
	GetTopCNGPoint() (string, error)
}
