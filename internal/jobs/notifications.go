package jobs

import (
	"log"
	"time"

	"github.com/jyothilaxmika/pls-travels-backend/internal/models"
	"github.com/jyothilaxmika/pls-travels-backend/internal/services"
	"github.com/jyothilaxmika/pls-travels-backend/internal/storage"
)

// NotificationJob handles scheduled notifications
type NotificationJob struct {
	store     storage.Store
	notifier  *services.Notifier
	isRunning bool
}

// NewNotificationJob creates a new notification job scheduler
func NewNotificationJob(store storage.Store, notifier *services.Notifier) *NotificationJob {
	return &NotificationJob{
		store:    store,
		notifier: notifier,
	}
}

// Start begins all scheduled notification jobs
func (n *NotificationJob) Start() {
	if n.isRunning {
		log.Println("Notification jobs already running")
		return
	}

	n.isRunning = true
	log.Println("Starting scheduled notification jobs...")

	go n.scheduleWeeklySummary()
	go n.scheduleDocumentExpiryCheck()
	go n.schedulePendingApprovalReminder()
	go n.scheduleOTPCleanup()

	log.Println("All notification jobs started successfully")
}

// Stop halts all scheduled jobs
func (n *NotificationJob) Stop() {
	n.isRunning = false
	log.Println("Stopping scheduled notification jobs...")
}

// WEEKLY SUMMARY - Runs every Sunday at 6 PM
func (n *NotificationJob) scheduleWeeklySummary() {
	for n.isRunning {
		now := time.Now()
		daysUntilSunday := (7 - int(now.Weekday())) % 7
		if daysUntilSunday == 0 && now.Hour() >= 18 {
			daysUntilSunday = 7
		}

		nextRun := time.Date(now.Year(), now.Month(), now.Day()+daysUntilSunday, 18, 0, 0, 0, now.Location())
		duration := nextRun.Sub(now)

		log.Printf("Next weekly summary scheduled in %v", duration)
		time.Sleep(duration)

		if !n.isRunning {
			break
		}
		n.sendWeeklySummaries()
	}
}

// sendWeeklySummaries sends weekly earning summaries to all active drivers
func (n *NotificationJob) sendWeeklySummaries() {
	log.Println("Sending weekly summaries...")

	drivers, err := n.store.GetAllDrivers()
	if err != nil {
		log.Printf("Error getting drivers for weekly summary: %v", err)
		return
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	sentCount := 0
	for _, driver := range drivers {
		if driver.Status != models.DriverStatusActive {
			continue
		}

		duties, err := n.store.GetDutiesByDriver(driver.ID)
		if err != nil {
			log.Printf("Error getting duties for driver %s: %v", driver.DriverID, err)
			continue
		}

		weeklyDuties := 0
		weeklyDistance := 0.0
		weeklyEarnings := 0.0
		for _, duty := range duties {
			if duty.Status != models.DutyStatusCompleted || duty.SubmittedAt == nil {
				continue
			}
			if duty.SubmittedAt.Before(weekAgo) {
				continue
			}
			weeklyDuties++
			weeklyDistance += duty.TotalDistance
			weeklyEarnings += duty.DriverEarnings
		}

		if weeklyDuties == 0 {
			continue
		}

		n.notifier.WeeklySummary(driver, weeklyDuties, weeklyDistance, weeklyEarnings)
		sentCount++
	}

	log.Printf("Sent %d weekly summaries", sentCount)
}

// DOCUMENT EXPIRY - Runs daily at 9 AM
func (n *NotificationJob) scheduleDocumentExpiryCheck() {
	for n.isRunning {
		sleepUntilHour(9)
		if !n.isRunning {
			break
		}
		n.sendDocumentExpiryAlerts()
	}
}

// sendDocumentExpiryAlerts warns drivers whose documents expire within 30 days
func (n *NotificationJob) sendDocumentExpiryAlerts() {
	docs, err := n.store.GetExpiringDocuments(30)
	if err != nil {
		log.Printf("Error getting expiring documents: %v", err)
		return
	}

	for _, doc := range docs {
		driver, err := n.store.GetDriver(doc.DriverID)
		if err != nil {
			log.Printf("Error getting driver %d for document alert: %v", doc.DriverID, err)
			continue
		}
		n.notifier.DocumentExpiry(driver, doc)
	}

	log.Printf("Sent %d document expiry alerts", len(docs))
}

// PENDING APPROVAL REMINDER - Runs daily at 10 AM, logs duties waiting
// more than 24 hours for admin review
func (n *NotificationJob) schedulePendingApprovalReminder() {
	for n.isRunning {
		sleepUntilHour(10)
		if !n.isRunning {
			break
		}
		n.checkPendingApprovals()
	}
}

func (n *NotificationJob) checkPendingApprovals() {
	duties, err := n.store.GetDutiesByStatus(models.DutyStatusPendingApproval)
	if err != nil {
		log.Printf("Error getting pending duties: %v", err)
		return
	}

	stale := 0
	for _, duty := range duties {
		if duty.SubmittedAt != nil && time.Since(*duty.SubmittedAt) > 24*time.Hour {
			stale++
		}
	}
	if stale > 0 {
		log.Printf("⚠️  %d duties have been pending approval for more than 24 hours", stale)
	}
}

// OTP CLEANUP - Runs hourly
func (n *NotificationJob) scheduleOTPCleanup() {
	for n.isRunning {
		time.Sleep(time.Hour)
		if !n.isRunning {
			break
		}
		if err := n.store.DeleteExpiredOTPs(); err != nil {
			log.Printf("Error deleting expired OTPs: %v", err)
		}
	}
}

// sleepUntilHour sleeps until the next occurrence of the given local hour
func sleepUntilHour(hour int) {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !now.Before(next) {
		next = next.Add(24 * time.Hour)
	}
	time.Sleep(next.Sub(now))
}
