package services

import (
	"fmt"
	"log"

	"github.com/jyothilaxmika/pls-travels-backend/internal/models"
)

// Notifier sends WhatsApp notifications to drivers and admins. All sends
// are fire-and-forget: delivery failures are logged, never returned to the
// business operation. A Notifier with a nil Twilio service logs and drops
// every message (memory-store and test runs).
type Notifier struct {
	twilio *TwilioService
}

// NewNotifier creates a new notifier
func NewNotifier(twilio *TwilioService) *Notifier {
	return &Notifier{twilio: twilio}
}

func (n *Notifier) send(phone, message string) {
	if n == nil {
		return
	}
	if n.twilio == nil {
		log.Printf("WhatsApp not configured, dropping message to %s", phone)
		return
	}
	if err := n.twilio.SendWhatsAppMessage(phone, message); err != nil {
		log.Printf("Failed to notify %s: %v", phone, err)
	}
}

// DutyStarted confirms duty start to the driver
func (n *Notifier) DutyStarted(driver *models.Driver, duty *models.Duty, vehicle *models.Vehicle) {
	msg := fmt.Sprintf(
		"🚕 Duty %s started\nVehicle: %s\nOdometer: %.0f km\nDrive safe, %s!",
		duty.DutyID, vehicle.RegistrationNo, duty.StartOdometer, driver.Name)
	n.send(driver.Phone, msg)
}

// DutySubmitted confirms duty completion and submission for approval
func (n *Notifier) DutySubmitted(driver *models.Driver, duty *models.Duty) {
	msg := fmt.Sprintf(
		"✅ Duty %s submitted for approval\nDistance: %.0f km\nCollection: ₹%.2f\nYour earnings: ₹%.2f",
		duty.DutyID, duty.TotalDistance, duty.GrossRevenue, duty.DriverEarnings)
	n.send(driver.Phone, msg)
}

// DutyApproved informs the driver of approval
func (n *Notifier) DutyApproved(driver *models.Driver, duty *models.Duty) {
	msg := fmt.Sprintf(
		"🎉 Duty %s approved\nEarnings credited: ₹%.2f\nTotal earnings: ₹%.2f",
		duty.DutyID, duty.DriverEarnings, driver.TotalEarnings)
	n.send(driver.Phone, msg)
}

// DutyRejected informs the driver of rejection with the reason
func (n *Notifier) DutyRejected(driver *models.Driver, duty *models.Duty) {
	msg := fmt.Sprintf(
		"❌ Duty %s was rejected\nReason: %s\nPlease contact your branch manager.",
		duty.DutyID, duty.RejectReason)
	n.send(driver.Phone, msg)
}

// OTPCode delivers a one-time verification code
func (n *Notifier) OTPCode(phone, code string) {
	msg := fmt.Sprintf("Your PLS Travels verification code is %s. Valid for 10 minutes.", code)
	n.send(phone, msg)
}

// DocumentExpiry warns the driver about an expiring document
func (n *Notifier) DocumentExpiry(driver *models.Driver, doc *models.DriverDocument) {
	msg := fmt.Sprintf(
		"📄 Reminder: your %s document expires on %s. Please submit a renewal.",
		doc.Type, doc.ExpiryDate.Format("02 Jan 2006"))
	n.send(driver.Phone, msg)
}

// WeeklySummary sends the driver's weekly earnings recap
func (n *Notifier) WeeklySummary(driver *models.Driver, duties int, distance, earnings float64) {
	msg := fmt.Sprintf(
		"📊 Your week at PLS Travels\nDuties: %d\nDistance: %.0f km\nEarnings: ₹%.2f",
		duties, distance, earnings)
	n.send(driver.Phone, msg)
}
