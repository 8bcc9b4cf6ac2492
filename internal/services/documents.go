package services

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jyothilaxmika/pls-travels-backend/internal/models"
	"github.com/jyothilaxmika/pls-travels-backend/internal/storage"
)

// DocumentService stores uploaded driver documents and duty photos under
// the upload directory. Files are opaque: only the generated filename is
// tracked, contents are never inspected.
type DocumentService struct {
	store     storage.Store
	uploadDir string
}

// NewDocumentService creates a new document service using UPLOAD_DIR
// (default ./uploads)
func NewDocumentService(store storage.Store) *DocumentService {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "./uploads"
	}
	return &DocumentService{store: store, uploadDir: dir}
}

// SaveFile writes an uploaded file under the upload directory with a
// generated name and returns that name
func (d *DocumentService) SaveFile(c *fiber.Ctx, file *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(d.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to prepare upload directory: %w", err)
	}

	name := uuid.NewString() + filepath.Ext(file.Filename)
	if err := c.SaveFile(file, filepath.Join(d.uploadDir, name)); err != nil {
		return "", fmt.Errorf("failed to store file: %w", err)
	}
	return name, nil
}

// Duty photo kinds
const (
	PhotoKindStart = "start"
	PhotoKindEnd   = "end"
)

// AttachDutyPhoto records an uploaded odometer photo against a duty
func (d *DocumentService) AttachDutyPhoto(dutyID uint, kind, fileName string) (*models.Duty, error) {
	duty, err := d.store.GetDuty(dutyID)
	if err != nil {
		return nil, err
	}

	switch kind {
	case PhotoKindStart:
		duty.StartPhoto = fileName
	case PhotoKindEnd:
		duty.EndPhoto = fileName
	default:
		return nil, fmt.Errorf("unknown photo kind %q", kind)
	}

	if err := d.store.UpdateDuty(duty); err != nil {
		return nil, err
	}
	return duty, nil
}

// AttachDocument records an uploaded document against a driver
func (d *DocumentService) AttachDocument(driverID uint, docType, fileName string, expiry *time.Time) (*models.DriverDocument, error) {
	if _, err := d.store.GetDriver(driverID); err != nil {
		return nil, err
	}

	doc := &models.DriverDocument{
		DriverID:   driverID,
		Type:       docType,
		FileName:   fileName,
		ExpiryDate: expiry,
	}
	return d.store.CreateDocument(doc)
}
