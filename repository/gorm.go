package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cuidarbem/cuidarbem-api/models"
)

const maxTxAttempts = 3

// GormStore implements Store on PostgreSQL.
type GormStore struct {
	db   *gorm.DB
	log  *zap.Logger
	inTx bool
}

func NewGormStore(db *gorm.DB, log *zap.Logger) *GormStore {
	return &GormStore{db: db, log: log}
}

func (s *GormStore) Users() UserRepository               { return &userRepository{db: s.db} }
func (s *GormStore) Offers() OfferRepository             { return &offerRepository{db: s.db} }
func (s *GormStore) Appointments() AppointmentRepository { return &appointmentRepository{db: s.db} }
func (s *GormStore) Requests() ServiceRequestRepository  { return &requestRepository{db: s.db} }
func (s *GormStore) Notes() MedicalNoteRepository        { return &noteRepository{db: s.db} }

// WithinTx retries fn when Postgres aborts the transaction with a
// serialization failure or a deadlock.
func (s *GormStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}

	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}
	for attempt := 1; ; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(&GormStore{db: tx, log: s.log, inTx: true})
		}, opts)
		if err == nil || !isRetryable(err) || attempt >= maxTxAttempts {
			return err
		}
		s.log.Warn("retrying serializable transaction", zap.Int("attempt", attempt), zap.Error(err))
	}
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isRetryable(err error) bool {
	code := pgCode(err)
	return code == "40001" || code == "40P01"
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || pgCode(err) == "23505"
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case isUniqueViolation(err):
		return ErrDuplicate
	}
	return err
}

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error)
}

func (r *userRepository) CreateProfile(ctx context.Context, profile models.Profile) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(profile).Error)
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("PatientProfile").
		Preload("CaregiverProfile").
		Preload("DoctorProfile").
		First(&user, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) FindCaregiverProfile(ctx context.Context, userID uint) (*models.CaregiverProfile, error) {
	var profile models.CaregiverProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

type offerRepository struct {
	db *gorm.DB
}

func (r *offerRepository) Create(ctx context.Context, offer *models.ServiceOffer) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(offer).Error)
}

func (r *offerRepository) FindActiveByID(ctx context.Context, id uint) (*models.ServiceOffer, error) {
	var offer models.ServiceOffer
	err := r.db.WithContext(ctx).
		Preload("Caregiver.User").
		Where("active = ?", true).
		First(&offer, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &offer, nil
}

func (r *offerRepository) ListActive(ctx context.Context, caregiverID uint) ([]models.ServiceOffer, error) {
	query := r.db.WithContext(ctx).
		Preload("Caregiver.User").
		Where("active = ?", true)
	if caregiverID != 0 {
		query = query.Where("caregiver_id = ?", caregiverID)
	}

	offers := []models.ServiceOffer{}
	if err := query.Order("created_at DESC, id DESC").Find(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}

func (r *offerRepository) Deactivate(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.ServiceOffer{}).
		Where("id = ? AND active = ?", id, true).
		Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *offerRepository) DeactivateExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ServiceOffer{}).
		Where("active = ? AND available_at <= ?", true, before).
		Update("active", false)
	return res.RowsAffected, res.Error
}

type appointmentRepository struct {
	db *gorm.DB
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(appointment).Error)
}

func (r *appointmentRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Appointment, error) {
	var appointment models.Appointment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Caregiver").
		First(&appointment, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindByID(ctx context.Context, id uint) (*models.Appointment, error) {
	var appointment models.Appointment
	err := r.db.WithContext(ctx).
		Preload("ServiceOffer").
		Preload("Caregiver.User").
		Preload("Patient").
		First(&appointment, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) HasActiveBooking(ctx context.Context, patientID, offerID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("patient_id = ? AND service_offer_id = ? AND status <> ?", patientID, offerID, models.StatusCancelled).
		Count(&count).Error
	return count > 0, err
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, appointment *models.Appointment) error {
	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", appointment.ID).
		Updates(map[string]interface{}{
			"status":       appointment.Status,
			"cancelled_at": appointment.CancelledAt,
			"updated_at":   appointment.UpdatedAt,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *appointmentRepository) MarkReminded(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", id).
		UpdateColumn("reminder_sent_at", at).Error
}

func (r *appointmentRepository) listQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Joins("ServiceOffer").
		Preload("Caregiver.User").
		Preload("Patient").
		Order(`"ServiceOffer"."available_at" ASC, appointments.id ASC`)
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID uint) ([]models.Appointment, error) {
	appointments := []models.Appointment{}
	err := r.listQuery(ctx).
		Where("appointments.patient_id = ? AND appointments.status <> ?", patientID, models.StatusCancelled).
		Find(&appointments).Error
	return appointments, err
}

func (r *appointmentRepository) ListByCaregiver(ctx context.Context, caregiverID uint) ([]models.Appointment, error) {
	appointments := []models.Appointment{}
	err := r.listQuery(ctx).
		Where("appointments.caregiver_id = ? AND appointments.status <> ?", caregiverID, models.StatusCancelled).
		Find(&appointments).Error
	return appointments, err
}

func (r *appointmentRepository) ListStartingBetween(ctx context.Context, from, to time.Time) ([]models.Appointment, error) {
	appointments := []models.Appointment{}
	err := r.listQuery(ctx).
		Where(`appointments.status = ? AND appointments.reminder_sent_at IS NULL AND "ServiceOffer"."available_at" BETWEEN ? AND ?`, models.StatusScheduled, from, to).
		Find(&appointments).Error
	return appointments, err
}

type requestRepository struct {
	db *gorm.DB
}

func (r *requestRepository) Create(ctx context.Context, request *models.ServiceRequest) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(request).Error)
}

func (r *requestRepository) ListByPatient(ctx context.Context, patientID uint) ([]models.ServiceRequest, error) {
	requests := []models.ServiceRequest{}
	err := r.db.WithContext(ctx).
		Preload("ServiceOffer").
		Where("patient_id = ?", patientID).
		Order("request_date DESC, id DESC").
		Find(&requests).Error
	return requests, err
}

type noteRepository struct {
	db *gorm.DB
}

func (r *noteRepository) Create(ctx context.Context, note *models.MedicalNote) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(note).Error)
}

func (r *noteRepository) ListByPatient(ctx context.Context, patientID uint) ([]models.MedicalNote, error) {
	notes := []models.MedicalNote{}
	err := r.db.WithContext(ctx).
		Preload("Doctor").
		Where("patient_id = ?", patientID).
		Order("created_at DESC, id DESC").
		Find(&notes).Error
	return notes, err
}
