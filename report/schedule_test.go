package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cuidarbem/cuidarbem-api/models"
)

func TestSchedule(t *testing.T) {
	note := "Diabetic, needs insulin at noon"
	appointments := []models.Appointment{{
		ID:          12,
		Date:        "2026-11-02",
		Time:        "10:00",
		PatientName: "Maria Silva",
		PatientAge:  78,
		Address:     "Rua das Flores, 10",
		Notes:       &note,
		Status:      models.StatusScheduled,
		ServiceOffer: &models.ServiceOffer{
			Title:       "Acompanhamento diurno",
			Location:    "Sao Paulo",
			HourlyRate:  45.5,
			AvailableAt: time.Date(2026, 11, 2, 13, 0, 0, 0, time.UTC),
		},
		Patient: &models.User{Email: "maria@example.com", Phone: "+55 11 99999-0000"},
	}}

	data, err := Schedule(appointments)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ScheduleSheet}, f.GetSheetList())

	rows, err := f.GetRows(ScheduleSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, ScheduleHeader, rows[0])
	assert.Equal(t, "12", rows[1][0])
	assert.Equal(t, "Acompanhamento diurno", rows[1][3])
	assert.Equal(t, "45.5", rows[1][5])
	assert.Equal(t, "maria@example.com / +55 11 99999-0000", rows[1][9])
	assert.Equal(t, note, rows[1][10])
	assert.Equal(t, "agendado", rows[1][11])
}

func TestSchedule_Empty(t *testing.T) {
	data, err := Schedule(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ScheduleSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
