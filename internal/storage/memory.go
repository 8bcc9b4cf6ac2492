package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jyothilaxmika/pls-travels-backend/internal/models"
)

// MemoryStore holds all data in memory, used by tests and USE_MEMORY_STORE
// runs. Transactions serialize but do not roll back; production runs use
// the database store.
type MemoryStore struct {
	mu sync.RWMutex

	// serializes Transaction callers so concurrent duty operations cannot
	// interleave between their reads and writes
	txnMu sync.Mutex

	drivers   map[uint]*models.Driver
	vehicles  map[uint]*models.Vehicle
	schemes   map[uint]*models.DutyScheme
	duties    map[uint]*models.Duty
	ledger    map[uint]*models.LedgerEntry
	documents map[uint]*models.DriverDocument
	otps      map[uint]*models.OTP
	audits    []*models.AuditLog

	nextID uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		drivers:   make(map[uint]*models.Driver),
		vehicles:  make(map[uint]*models.Vehicle),
		schemes:   make(map[uint]*models.DutyScheme),
		duties:    make(map[uint]*models.Duty),
		ledger:    make(map[uint]*models.LedgerEntry),
		documents: make(map[uint]*models.DriverDocument),
		otps:      make(map[uint]*models.OTP),
	}
}

func (m *MemoryStore) allocID() uint {
	m.nextID++
	return m.nextID
}

// Transaction serializes fn against other transactions. The memory store
// cannot roll back partial writes; tests rely on fn validating before
// mutating.
func (m *MemoryStore) Transaction(fn func(Store) error) error {
	m.txnMu.Lock()
	defer m.txnMu.Unlock()
	return fn(m)
}

// Driver operations

func (m *MemoryStore) CreateDriver(reg *models.DriverRegistration) (*models.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range m.drivers {
		if d.Phone == reg.Phone {
			return nil, fmt.Errorf("phone already registered")
		}
	}

	id := m.allocID()
	now := time.Now()
	driver := &models.Driver{
		DriverID:  fmt.Sprintf("DR%05d", id),
		Name:      reg.Name,
		Phone:     reg.Phone,
		LicenseNo: reg.LicenseNo,
		BranchID:  reg.BranchID,
		Status:    models.DriverStatusPending,
		JoinedAt:  &now,
	}
	driver.ID = id
	driver.CreatedAt = now
	driver.UpdatedAt = now

	m.drivers[id] = driver
	return driver, nil
}

func (m *MemoryStore) GetDriver(id uint) (*models.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	driver, exists := m.drivers[id]
	if !exists {
		return nil, models.ErrDriverNotFound
	}
	return driver, nil
}

func (m *MemoryStore) GetDriverByDriverID(driverID string) (*models.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, d := range m.drivers {
		if d.DriverID == driverID {
			return d, nil
		}
	}
	return nil, models.ErrDriverNotFound
}

func (m *MemoryStore) GetDriverByPhone(phone string) (*models.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, d := range m.drivers {
		if d.Phone == phone {
			return d, nil
		}
	}
	return nil, models.ErrDriverNotFound
}

func (m *MemoryStore) GetAllDrivers() ([]*models.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	drivers := make([]*models.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		drivers = append(drivers, d)
	}
	sort.Slice(drivers, func(i, j int) bool { return drivers[i].ID < drivers[j].ID })
	return drivers, nil
}

func (m *MemoryStore) UpdateDriver(driver *models.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.drivers[driver.ID]; !exists {
		return models.ErrDriverNotFound
	}
	driver.UpdatedAt = time.Now()
	m.drivers[driver.ID] = driver
	return nil
}

// Vehicle operations

func (m *MemoryStore) CreateVehicle(vehicle *models.Vehicle) (*models.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.allocID()
	vehicle.ID = id
	if vehicle.VehicleID == "" {
		vehicle.VehicleID = fmt.Sprintf("VH%05d", id)
	}
	if vehicle.Status == "" {
		vehicle.Status = models.VehicleStatusActive
	}
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = time.Now()

	m.vehicles[id] = vehicle
	return vehicle, nil
}

func (m *MemoryStore) GetVehicle(id uint) (*models.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	vehicle, exists := m.vehicles[id]
	if !exists {
		return nil, models.ErrVehicleNotFound
	}
	return vehicle, nil
}

func (m *MemoryStore) GetVehicleByRegistration(regNo string) (*models.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, v := range m.vehicles {
		if v.RegistrationNo == regNo {
			return v, nil
		}
	}
	return nil, models.ErrVehicleNotFound
}

func (m *MemoryStore) GetAllVehicles() ([]*models.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	vehicles := make([]*models.Vehicle, 0, len(m.vehicles))
	for _, v := range m.vehicles {
		vehicles = append(vehicles, v)
	}
	sort.Slice(vehicles, func(i, j int) bool { return vehicles[i].ID < vehicles[j].ID })
	return vehicles, nil
}

func (m *MemoryStore) GetAvailableVehicles() ([]*models.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var vehicles []*models.Vehicle
	for _, v := range m.vehicles {
		if v.IsUsable() {
			vehicles = append(vehicles, v)
		}
	}
	sort.Slice(vehicles, func(i, j int) bool { return vehicles[i].ID < vehicles[j].ID })
	return vehicles, nil
}

func (m *MemoryStore) UpdateVehicle(vehicle *models.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.vehicles[vehicle.ID]; !exists {
		return models.ErrVehicleNotFound
	}
	vehicle.UpdatedAt = time.Now()
	m.vehicles[vehicle.ID] = vehicle
	return nil
}

// Duty scheme operations

func (m *MemoryStore) CreateScheme(scheme *models.DutyScheme) (*models.DutyScheme, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.allocID()
	scheme.ID = id
	if scheme.SchemeID == "" {
		scheme.SchemeID = fmt.Sprintf("SC%05d", id)
	}
	scheme.CreatedAt = time.Now()
	scheme.UpdatedAt = time.Now()

	m.schemes[id] = scheme
	return scheme, nil
}

func (m *MemoryStore) GetScheme(id uint) (*models.DutyScheme, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	scheme, exists := m.schemes[id]
	if !exists {
		return nil, models.ErrSchemeNotFound
	}
	return scheme, nil
}

func (m *MemoryStore) GetActiveSchemes() ([]*models.DutyScheme, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var schemes []*models.DutyScheme
	for _, s := range m.schemes {
		if s.IsActive {
			schemes = append(schemes, s)
		}
	}
	sort.Slice(schemes, func(i, j int) bool { return schemes[i].ID < schemes[j].ID })
	return schemes, nil
}

func (m *MemoryStore) GetAllSchemes() ([]*models.DutyScheme, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	schemes := make([]*models.DutyScheme, 0, len(m.schemes))
	for _, s := range m.schemes {
		schemes = append(schemes, s)
	}
	sort.Slice(schemes, func(i, j int) bool { return schemes[i].ID < schemes[j].ID })
	return schemes, nil
}

func (m *MemoryStore) UpdateScheme(scheme *models.DutyScheme) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.schemes[scheme.ID]; !exists {
		return models.ErrSchemeNotFound
	}
	scheme.UpdatedAt = time.Now()
	m.schemes[scheme.ID] = scheme
	return nil
}

// Duty operations

func (m *MemoryStore) CreateDuty(duty *models.Duty) (*models.Duty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.allocID()
	duty.ID = id
	if duty.DutyID == "" {
		duty.DutyID = fmt.Sprintf("DT%05d", id)
	}
	duty.CreatedAt = time.Now()
	duty.UpdatedAt = time.Now()

	m.duties[id] = duty
	return duty, nil
}

func (m *MemoryStore) GetDuty(id uint) (*models.Duty, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	duty, exists := m.duties[id]
	if !exists {
		return nil, models.ErrDutyNotFound
	}
	return duty, nil
}

func (m *MemoryStore) GetDutyByDutyID(dutyID string) (*models.Duty, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, d := range m.duties {
		if d.DutyID == dutyID {
			return d, nil
		}
	}
	return nil, models.ErrDutyNotFound
}

func (m *MemoryStore) GetActiveDutyByDriver(driverID uint) (*models.Duty, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, d := range m.duties {
		if d.DriverID == driverID && d.Status == models.DutyStatusActive {
			return d, nil
		}
	}
	return nil, models.ErrDutyNotFound
}

func (m *MemoryStore) GetLastFinishedDutyForVehicle(vehicleID uint) (*models.Duty, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var last *models.Duty
	for _, d := range m.duties {
		if d.VehicleID != vehicleID || d.Status == models.DutyStatusActive {
			continue
		}
		if last == nil || d.ID > last.ID {
			last = d
		}
	}
	if last == nil {
		return nil, models.ErrDutyNotFound
	}
	return last, nil
}

func (m *MemoryStore) GetDutiesByDriver(driverID uint) ([]*models.Duty, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var duties []*models.Duty
	for _, d := range m.duties {
		if d.DriverID == driverID {
			duties = append(duties, d)
		}
	}
	sort.Slice(duties, func(i, j int) bool { return duties[i].ID < duties[j].ID })
	return duties, nil
}

func (m *MemoryStore) GetDutiesByStatus(status string) ([]*models.Duty, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var duties []*models.Duty
	for _, d := range m.duties {
		if d.Status == status {
			duties = append(duties, d)
		}
	}
	sort.Slice(duties, func(i, j int) bool { return duties[i].ID < duties[j].ID })
	return duties, nil
}

func (m *MemoryStore) UpdateDuty(duty *models.Duty) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.duties[duty.ID]; !exists {
		return models.ErrDutyNotFound
	}
	duty.UpdatedAt = time.Now()
	m.duties[duty.ID] = duty
	return nil
}

// Ledger operations

func (m *MemoryStore) CreateLedgerEntry(entry *models.LedgerEntry) (*models.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.allocID()
	entry.ID = id
	if entry.EntryID == "" {
		entry.EntryID = fmt.Sprintf("LG%05d", id)
	}
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = time.Now()

	m.ledger[id] = entry
	return entry, nil
}

func (m *MemoryStore) GetLedgerByDriver(driverID uint) ([]*models.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var entries []*models.LedgerEntry
	for _, e := range m.ledger {
		if e.DriverID == driverID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

func (m *MemoryStore) GetLedgerBalance(driverID uint) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	balance := 0.0
	for _, e := range m.ledger {
		if e.DriverID == driverID {
			balance += e.Amount
		}
	}
	return balance, nil
}

// Document operations

func (m *MemoryStore) CreateDocument(doc *models.DriverDocument) (*models.DriverDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.allocID()
	doc.ID = id
	if doc.DocumentID == "" {
		doc.DocumentID = uuid.NewString()
	}
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = time.Now()

	m.documents[id] = doc
	return doc, nil
}

func (m *MemoryStore) GetDocumentsByDriver(driverID uint) ([]*models.DriverDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var docs []*models.DriverDocument
	for _, d := range m.documents {
		if d.DriverID == driverID {
			docs = append(docs, d)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (m *MemoryStore) GetExpiringDocuments(daysAhead int) ([]*models.DriverDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var docs []*models.DriverDocument
	for _, d := range m.documents {
		if d.ExpiresWithin(daysAhead) {
			docs = append(docs, d)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (m *MemoryStore) UpdateDocument(doc *models.DriverDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.documents[doc.ID]; !exists {
		return fmt.Errorf("document not found")
	}
	doc.UpdatedAt = time.Now()
	m.documents[doc.ID] = doc
	return nil
}

// OTP operations

func (m *MemoryStore) CreateOTP(otp *models.OTP) (*models.OTP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.allocID()
	otp.ID = id
	otp.CreatedAt = time.Now()
	otp.UpdatedAt = time.Now()

	m.otps[id] = otp
	return otp, nil
}

func (m *MemoryStore) GetActiveOTP(phone, purpose string) (*models.OTP, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *models.OTP
	for _, o := range m.otps {
		if o.Phone != phone || o.Purpose != purpose || o.IsUsed {
			continue
		}
		if latest == nil || o.ID > latest.ID {
			latest = o
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("otp not found")
	}
	return latest, nil
}

func (m *MemoryStore) UpdateOTP(otp *models.OTP) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.otps[otp.ID]; !exists {
		return fmt.Errorf("otp not found")
	}
	otp.UpdatedAt = time.Now()
	m.otps[otp.ID] = otp
	return nil
}

func (m *MemoryStore) DeleteExpiredOTPs() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, o := range m.otps {
		if time.Now().After(o.ExpiresAt) {
			delete(m.otps, id)
		}
	}
	return nil
}

// Audit operations

func (m *MemoryStore) CreateAuditLog(entry *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry.ID = m.allocID()
	entry.CreatedAt = time.Now()
	m.audits = append(m.audits, entry)
	return nil
}

// AuditLogs returns all recorded audit entries (test helper)
func (m *MemoryStore) AuditLogs() []*models.AuditLog {
	m.mu.RLock()
	defer m.mu.RUnlock()

	logs := make([]*models.AuditLog, len(m.audits))
	copy(logs, m.audits)
	return logs
}

// Reporting projections

func (m *MemoryStore) GetDriverStats(driverID uint) (*models.DriverStats, error) {
	driver, err := m.GetDriver(driverID)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &models.DriverStats{DriverID: driver.DriverID}
	for _, d := range m.duties {
		if d.DriverID != driverID {
			continue
		}
		switch d.Status {
		case models.DutyStatusCompleted:
			stats.CompletedDuties++
			stats.TotalDistance += d.TotalDistance
			stats.TotalEarnings += d.DriverEarnings
			if d.SubmittedAt != nil && (stats.LastDutyAt == nil || d.SubmittedAt.After(*stats.LastDutyAt)) {
				stats.LastDutyAt = d.SubmittedAt
			}
		case models.DutyStatusPendingApproval:
			stats.PendingDuties++
		}
	}
	for _, e := range m.ledger {
		if e.DriverID == driverID {
			stats.LedgerBalance += e.Amount
		}
	}
	return stats, nil
}

func (m *MemoryStore) GetFleetStats() (*models.FleetStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &models.FleetStats{}
	for _, d := range m.drivers {
		stats.TotalDrivers++
		if d.Status == models.DriverStatusActive {
			stats.ActiveDrivers++
		}
	}
	for _, v := range m.vehicles {
		stats.TotalVehicles++
		if v.IsUsable() {
			stats.AvailableVehicles++
		}
	}
	for _, d := range m.duties {
		switch d.Status {
		case models.DutyStatusActive:
			stats.ActiveDuties++
		case models.DutyStatusPendingApproval:
			stats.PendingApprovals++
		}
	}
	stats.TopCNGPoint = m.topCNGPointLocked()
	return stats, nil
}

func (m *MemoryStore) GetTopCNGPoint() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.topCNGPointLocked(), nil
}

func (m *MemoryStore) topCNGPointLocked() string {
	counts := make(map[string]int)
	for _, d := range m.duties {
		if d.CNGPoint != "" {
			counts[d.CNGPoint]++
		}
	}
	top, best := "", 0
	for point, n := range counts {
		if n > best || (n == best && point < top) {
			top, best = point, n
		}
	}
	return top
}
