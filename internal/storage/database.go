package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jyothilaxmika/pls-travels-backend/internal/models"
)

// DatabaseStore implements Store backed by PostgreSQL via GORM
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a new database-backed store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Transaction runs fn inside a database transaction. All writes made
// through the store fn receives commit together or roll back together.
func (s *DatabaseStore) Transaction(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&DatabaseStore{db: tx})
	})
}

// Driver operations

func (s *DatabaseStore) CreateDriver(reg *models.DriverRegistration) (*models.Driver, error) {
	now := time.Now()
	driver := &models.Driver{
		Name:      reg.Name,
		Phone:     reg.Phone,
		LicenseNo: reg.LicenseNo,
		BranchID:  reg.BranchID,
		Status:    models.DriverStatusPending,
		JoinedAt:  &now,
	}
	if err := s.db.Create(driver).Error; err != nil {
		return nil, err
	}
	return driver, nil
}

func (s *DatabaseStore) GetDriver(id uint) (*models.Driver, error) {
	var driver models.Driver
	// Row lock so concurrent duty starts for the same driver serialize on
	// the driver row; the active-duty check alone cannot see a duty another
	// transaction has not committed yet
	if err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&driver, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrDriverNotFound
		}
		return nil, err
	}
	return &driver, nil
}

func (s *DatabaseStore) GetDriverByDriverID(driverID string) (*models.Driver, error) {
	var driver models.Driver
	if err := s.db.Where("driver_id = ?", driverID).First(&driver).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrDriverNotFound
		}
		return nil, err
	}
	return &driver, nil
}

func (s *DatabaseStore) GetDriverByPhone(phone string) (*models.Driver, error) {
	var driver models.Driver
	if err := s.db.Where("phone = ?", phone).First(&driver).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrDriverNotFound
		}
		return nil, err
	}
	return &driver, nil
}

func (s *DatabaseStore) GetAllDrivers() ([]*models.Driver, error) {
	var drivers []*models.Driver
	if err := s.db.Order("id").Find(&drivers).Error; err != nil {
		return nil, err
	}
	return drivers, nil
}

func (s *DatabaseStore) UpdateDriver(driver *models.Driver) error {
	return s.db.Save(driver).Error
}

// Vehicle operations

func (s *DatabaseStore) CreateVehicle(vehicle *models.Vehicle) (*models.Vehicle, error) {
	if err := s.db.Create(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (s *DatabaseStore) GetVehicle(id uint) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	// Row lock so concurrent duty starts cannot double-book the vehicle
	if err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&vehicle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrVehicleNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

func (s *DatabaseStore) GetVehicleByRegistration(regNo string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := s.db.Where("registration_no = ?", regNo).First(&vehicle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrVehicleNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

func (s *DatabaseStore) GetAllVehicles() ([]*models.Vehicle, error) {
	var vehicles []*models.Vehicle
	if err := s.db.Order("id").Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (s *DatabaseStore) GetAvailableVehicles() ([]*models.Vehicle, error) {
	var vehicles []*models.Vehicle
	err := s.db.Where("status = ? AND is_available = ?", models.VehicleStatusActive, true).
		Order("id").Find(&vehicles).Error
	if err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (s *DatabaseStore) UpdateVehicle(vehicle *models.Vehicle) error {
	return s.db.Save(vehicle).Error
}

// Duty scheme operations

func (s *DatabaseStore) CreateScheme(scheme *models.DutyScheme) (*models.DutyScheme, error) {
	if err := s.db.Create(scheme).Error; err != nil {
		return nil, err
	}
	return scheme, nil
}

func (s *DatabaseStore) GetScheme(id uint) (*models.DutyScheme, error) {
	var scheme models.DutyScheme
	if err := s.db.First(&scheme, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrSchemeNotFound
		}
		return nil, err
	}
	return &scheme, nil
}

func (s *DatabaseStore) GetActiveSchemes() ([]*models.DutyScheme, error) {
	var schemes []*models.DutyScheme
	if err := s.db.Where("is_active = ?", true).Order("id").Find(&schemes).Error; err != nil {
		return nil, err
	}
	return schemes, nil
}

func (s *DatabaseStore) GetAllSchemes() ([]*models.DutyScheme, error) {
	var schemes []*models.DutyScheme
	if err := s.db.Order("id").Find(&schemes).Error; err != nil {
		return nil, err
	}
	return schemes, nil
}

func (s *DatabaseStore) UpdateScheme(scheme *models.DutyScheme) error {
	return s.db.Save(scheme).Error
}

// Duty operations

func (s *DatabaseStore) CreateDuty(duty *models.Duty) (*models.Duty, error) {
	if err := s.db.Create(duty).Error; err != nil {
		return nil, err
	}
	return duty, nil
}

func (s *DatabaseStore) GetDuty(id uint) (*models.Duty, error) {
	var duty models.Duty
	if err := s.db.First(&duty, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrDutyNotFound
		}
		return nil, err
	}
	return &duty, nil
}

func (s *DatabaseStore) GetDutyByDutyID(dutyID string) (*models.Duty, error) {
	var duty models.Duty
	if err := s.db.Where("duty_id = ?", dutyID).First(&duty).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrDutyNotFound
		}
		return nil, err
	}
	return &duty, nil
}

func (s *DatabaseStore) GetActiveDutyByDriver(driverID uint) (*models.Duty, error) {
	var duty models.Duty
	err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("driver_id = ? AND status = ?", driverID, models.DutyStatusActive).
		First(&duty).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrDutyNotFound
		}
		return nil, err
	}
	return &duty, nil
}

func (s *DatabaseStore) GetLastFinishedDutyForVehicle(vehicleID uint) (*models.Duty, error) {
	var duty models.Duty
	err := s.db.Where("vehicle_id = ? AND status <> ?", vehicleID, models.DutyStatusActive).
		Order("id DESC").First(&duty).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrDutyNotFound
		}
		return nil, err
	}
	return &duty, nil
}

func (s *DatabaseStore) GetDutiesByDriver(driverID uint) ([]*models.Duty, error) {
	var duties []*models.Duty
	if err := s.db.Where("driver_id = ?", driverID).Order("id").Find(&duties).Error; err != nil {
		return nil, err
	}
	return duties, nil
}

func (s *DatabaseStore) GetDutiesByStatus(status string) ([]*models.Duty, error) {
	var duties []*models.Duty
	if err := s.db.Where("status = ?", status).Order("id").Find(&duties).Error; err != nil {
		return nil, err
	}
	return duties, nil
}

func (s *DatabaseStore) UpdateDuty(duty *models.Duty) error {
	return s.db.Save(duty).Error
}

// Ledger operations

func (s *DatabaseStore) CreateLedgerEntry(entry *models.LedgerEntry) (*models.LedgerEntry, error) {
	if err := s.db.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *DatabaseStore) GetLedgerByDriver(driverID uint) ([]*models.LedgerEntry, error) {
	var entries []*models.LedgerEntry
	if err := s.db.Where("driver_id = ?", driverID).Order("id").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *DatabaseStore) GetLedgerBalance(driverID uint) (float64, error) {
	var balance float64
	err := s.db.Model(&models.LedgerEntry{}).
		Where("driver_id = ?", driverID).
		Select("COALESCE(SUM(amount), 0)").Scan(&balance).Error
	return balance, err
}

// Document operations

func (s *DatabaseStore) CreateDocument(doc *models.DriverDocument) (*models.DriverDocument, error) {
	if err := s.db.Create(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DatabaseStore) GetDocumentsByDriver(driverID uint) ([]*models.DriverDocument, error) {
	var docs []*models.DriverDocument
	if err := s.db.Where("driver_id = ?", driverID).Order("id").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *DatabaseStore) GetExpiringDocuments(daysAhead int) ([]*models.DriverDocument, error) {
	var docs []*models.DriverDocument
	cutoff := time.Now().AddDate(0, 0, daysAhead)
	err := s.db.Where("expiry_date IS NOT NULL AND expiry_date < ?", cutoff).
		Order("expiry_date").Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *DatabaseStore) UpdateDocument(doc *models.DriverDocument) error {
	return s.db.Save(doc).Error
}

// OTP operations

func (s *DatabaseStore) CreateOTP(otp *models.OTP) (*models.OTP, error) {
	if err := s.db.Create(otp).Error; err != nil {
		return nil, err
	}
	return otp, nil
}

func (s *DatabaseStore) GetActiveOTP(phone, purpose string) (*models.OTP, error) {
	var otp models.OTP
	err := s.db.Where("phone = ? AND purpose = ? AND is_used = ?", phone, purpose, false).
		Order("id DESC").First(&otp).Error
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

func (s *DatabaseStore) UpdateOTP(otp *models.OTP) error {
	return s.db.Save(otp).Error
}

func (s *DatabaseStore) DeleteExpiredOTPs() error {
	return s.db.Where("expires_at < ?", time.Now()).Delete(&models.OTP{}).Error
}

// Audit operations

func (s *DatabaseStore) CreateAuditLog(entry *models.AuditLog) error {
	return s.db.Create(entry).Error
}

// Reporting projections

func (s *DatabaseStore) GetDriverStats(driverID uint) (*models.DriverStats, error) {
	driver, err := s.GetDriver(driverID)
	if err != nil {
		return nil, err
	}

	stats := &models.DriverStats{DriverID: driver.DriverID}

	type agg struct {
		Count    int
		Distance float64
		Earnings float64
	}
	var completed agg
	err = s.db.Model(&models.Duty{}).
		Where("driver_id = ? AND status = ?", driverID, models.DutyStatusCompleted).
		Select("COUNT(*) AS count, COALESCE(SUM(total_distance), 0) AS distance, COALESCE(SUM(driver_earnings), 0) AS earnings").
		Scan(&completed).Error
	if err != nil {
		return nil, err
	}
	stats.CompletedDuties = completed.Count
	stats.TotalDistance = completed.Distance
	stats.TotalEarnings = completed.Earnings

	var pending int64
	err = s.db.Model(&models.Duty{}).
		Where("driver_id = ? AND status = ?", driverID, models.DutyStatusPendingApproval).
		Count(&pending).Error
	if err != nil {
		return nil, err
	}
	stats.PendingDuties = int(pending)

	var lastDuty models.Duty
	err = s.db.Where("driver_id = ? AND submitted_at IS NOT NULL", driverID).
		Order("submitted_at DESC").First(&lastDuty).Error
	if err == nil {
		stats.LastDutyAt = lastDuty.SubmittedAt
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	stats.LedgerBalance, err = s.GetLedgerBalance(driverID)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *DatabaseStore) GetFleetStats() (*models.FleetStats, error) {
	stats := &models.FleetStats{}

	if err := s.db.Model(&models.Driver{}).Count(&stats.TotalDrivers).Error; err != nil {
		return nil, err
	}
	s.db.Model(&models.Driver{}).Where("status = ?", models.DriverStatusActive).Count(&stats.ActiveDrivers)
	s.db.Model(&models.Vehicle{}).Count(&stats.TotalVehicles)
	s.db.Model(&models.Vehicle{}).
		Where("status = ? AND is_available = ?", models.VehicleStatusActive, true).
		Count(&stats.AvailableVehicles)
	s.db.Model(&models.Duty{}).Where("status = ?", models.DutyStatusActive).Count(&stats.ActiveDuties)
	s.db.Model(&models.Duty{}).Where("status = ?", models.DutyStatusPendingApproval).Count(&stats.PendingApprovals)

	top, err := s.GetTopCNGPoint()
	if err != nil {
		return nil, err
	}
	stats.TopCNGPoint = top
	return stats, nil
}

func (s *DatabaseStore) GetTopCNGPoint() (string, error) {
	var point string
	err := s.db.Model(&models.Duty{}).
		Where("cng_point <> ''").
		Select("cng_point").
		Group("cng_point").
		Order("COUNT(*) DESC").
		Limit(1).
		Scan(&point).Error
	if err != nil {
		return "", err
	}
	return point, nil
}
