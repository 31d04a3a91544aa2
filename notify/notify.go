package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/cuidarbem/cuidarbem-api/models"
)

// Notifier delivers appointment lifecycle messages. Appointments passed in
// carry ServiceOffer, Caregiver.User and Patient.
type Notifier interface {
	AppointmentBooked(ctx context.Context, appointment *models.Appointment) error
	AppointmentCancelled(ctx context.Context, appointment *models.Appointment, cancelledBy uint) error
	AppointmentReminder(ctx context.Context, appointment *models.Appointment) error
}

// LogNotifier only records that a message would have been sent. It is used
// when no SMTP server is configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) AppointmentBooked(_ context.Context, a *models.Appointment) error {
	n.log.Info("booking confirmation not sent: mail disabled",
		zap.Uint("appointmentID", a.ID), zap.Uint("patientID", a.PatientID))
	return nil
}

func (n *LogNotifier) AppointmentCancelled(_ context.Context, a *models.Appointment, cancelledBy uint) error {
	n.log.Info("cancellation notice not sent: mail disabled",
		zap.Uint("appointmentID", a.ID), zap.Uint("cancelledBy", cancelledBy))
	return nil
}

func (n *LogNotifier) AppointmentReminder(_ context.Context, a *models.Appointment) error {
	n.log.Info("reminder not sent: mail disabled",
		zap.Uint("appointmentID", a.ID), zap.Uint("patientID", a.PatientID))
	return nil
}
