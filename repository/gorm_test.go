package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cuidarbem/cuidarbem-api/models"
)

func newMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return NewGormStore(db, zap.NewNop()), mock
}

func TestUserCreate_UniqueViolationIsDuplicate(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := store.Users().Create(context.Background(), &models.User{Email: "ana@example.com", Role: models.RoleCaregiver})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentCreate_ActiveBookingIndexIsDuplicate(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`INSERT INTO "appointments"`).
		WillReturnError(&pgconn.PgError{
			Code:           "23505",
			ConstraintName: "uniq_active_booking",
			Message:        "duplicate key value violates unique constraint",
		})

	err := store.Appointments().Create(context.Background(), &models.Appointment{
		ServiceOfferID: 9,
		CaregiverID:    3,
		PatientID:      4,
		Date:           "2026-11-02",
		Time:           "10:00",
		PatientName:    "Maria",
		PatientAge:     82,
		Address:        "Rua X, 100",
	})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserFindByEmail_NotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WithArgs("nobody@example.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

	_, err := store.Users().FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferDeactivate_NoRowsIsNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`UPDATE "service_offers" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Offers().Deactivate(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferDeactivateExpired_ReportsRows(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`UPDATE "service_offers" SET .* WHERE active = \$\d+ AND available_at <= \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := store.Offers().DeactivateExpired(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasActiveBooking(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "appointments" WHERE patient_id = \$1 AND service_offer_id = \$2 AND status <> \$3`).
		WithArgs(4, 9, models.StatusCancelled).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := store.Appointments().HasActiveBooking(context.Background(), 4, 9)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_RetriesSerializationFailures(t *testing.T) {
	store, mock := newMockStore(t)
	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}
	mock.ExpectBegin()
	mock.ExpectCommit()

	attempts := 0
	err := store.WithinTx(context.Background(), func(tx Store) error {
		attempts++
		if attempts < 3 {
			return &pgconn.PgError{Code: "40001"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_GivesUpAfterMaxAttempts(t *testing.T) {
	store, mock := newMockStore(t)
	for i := 0; i < maxTxAttempts; i++ {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}

	attempts := 0
	err := store.WithinTx(context.Background(), func(tx Store) error {
		attempts++
		return &pgconn.PgError{Code: "40P01"}
	})
	require.Error(t, err)
	assert.Equal(t, maxTxAttempts, attempts)
}

func TestWithinTx_DoesNotRetryOtherErrors(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	attempts := 0
	err := store.WithinTx(context.Background(), func(tx Store) error {
		attempts++
		// nested calls join the running transaction
		return tx.WithinTx(context.Background(), func(Store) error { return boom })
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey), ErrDuplicate)
	other := errors.New("connection reset")
	assert.Equal(t, other, translate(other))
}
