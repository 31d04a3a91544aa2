package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/cuidarbem/cuidarbem-api/models"
)

// indexes AutoMigrate cannot express.
var indexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_active_booking
		ON appointments (patient_id, service_offer_id)
		WHERE status <> 'cancelado'`,
	`CREATE INDEX IF NOT EXISTS idx_service_offers_active_available
		ON service_offers (available_at)
		WHERE active`,
}

// Migrate creates or updates every table and the partial indexes.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.PatientProfile{},
		&models.CaregiverProfile{},
		&models.DoctorProfile{},
		&models.ServiceOffer{},
		&models.Appointment{},
		&models.ServiceRequest{},
		&models.MedicalNote{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
