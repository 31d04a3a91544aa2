package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTo_CancelScheduled(t *testing.T) {
	at := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)
	a := &Appointment{Status: StatusScheduled}

	require.NoError(t, a.TransitionTo(StatusCancelled, at))
	assert.Equal(t, StatusCancelled, a.Status)
	require.NotNil(t, a.CancelledAt)
	assert.Equal(t, at, *a.CancelledAt)
}

func TestTransitionTo_CancelTwice(t *testing.T) {
	a := &Appointment{Status: StatusScheduled}
	require.NoError(t, a.TransitionTo(StatusCancelled, time.Now()))

	err := a.TransitionTo(StatusCancelled, time.Now())
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestTransitionTo_CompletedIsTerminal(t *testing.T) {
	a := &Appointment{Status: StatusScheduled}
	require.NoError(t, a.TransitionTo(StatusCompleted, time.Now()))
	assert.Nil(t, a.CancelledAt)

	err := a.TransitionTo(StatusCancelled, time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusCompleted, a.Status)
}

func TestTransitionTo_RejectsBackToScheduled(t *testing.T) {
	a := &Appointment{Status: StatusScheduled}
	assert.ErrorIs(t, a.TransitionTo(StatusScheduled, time.Now()), ErrInvalidTransition)
}

func TestIsParty(t *testing.T) {
	a := &Appointment{PatientID: 7, Caregiver: &CaregiverProfile{ID: 3, UserID: 11}}

	assert.True(t, a.IsParty(7))
	assert.True(t, a.IsParty(11))
	assert.False(t, a.IsParty(3), "caregiver profile id is not a user id")
	assert.False(t, a.IsParty(99))
}

func TestScheduleFor(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	date, clock := ScheduleFor(time.Date(2026, 6, 15, 13, 0, 0, 0, time.UTC), loc)
	assert.Equal(t, "2026-06-15", date)
	assert.Equal(t, "10:00", clock)
}

func TestOfferExpired(t *testing.T) {
	now := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

	assert.True(t, (&ServiceOffer{AvailableAt: now.Add(-time.Minute)}).Expired(now))
	assert.True(t, (&ServiceOffer{AvailableAt: now}).Expired(now))
	assert.False(t, (&ServiceOffer{AvailableAt: now.Add(time.Minute)}).Expired(now))
}

func TestProfileDataBuildsMatchingProfile(t *testing.T) {
	age := 82
	cases := []ProfileData{
		PatientData{FullName: "Maria", Age: &age},
		CaregiverData{Bio: "Enfermeira", Certifications: []string{"COREN"}},
		DoctorData{CRM: "12345-SP"},
	}
	for _, data := range cases {
		p := data.NewProfile(42)
		assert.Equal(t, data.Role(), p.ProfileRole())
		assert.Equal(t, uint(42), p.OwnerID())

		u := &User{Role: data.Role()}
		assert.Nil(t, u.Profile())
		u.AttachProfile(p)
		assert.Equal(t, p, u.Profile())
	}
}

func TestCaregiverDataNeverNilCertifications(t *testing.T) {
	p := CaregiverData{}.NewProfile(1).(*CaregiverProfile)
	assert.NotNil(t, p.Certifications)
	assert.False(t, p.Verified)
}
