package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuidarbem/cuidarbem-api/models"
)

func TestServiceRequests(t *testing.T) {
	f := newFixture(t)
	caregiver := f.register(t, models.RoleCaregiver, "joana@example.com")
	patient := f.register(t, models.RolePatient, "maria@example.com")
	offer := f.createOffer(t, caregiver, f.now.Add(24*time.Hour))

	request, err := f.requests.Create(context.Background(), patient.ID, CreateServiceRequestInput{ServiceID: offer.ID})
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, request.Status)
	assert.Equal(t, f.now, request.RequestDate)

	_, err = f.requests.Create(context.Background(), patient.ID, CreateServiceRequestInput{ServiceID: 999})
	assert.ErrorIs(t, err, ErrOfferNotFound)

	_, err = f.requests.Create(context.Background(), patient.ID, CreateServiceRequestInput{})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	mine, err := f.requests.ListMine(context.Background(), patient.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].ServiceOffer)
	assert.Equal(t, offer.Title, mine[0].ServiceOffer.Title)
}

func TestMedicalNotes(t *testing.T) {
	f := newFixture(t)
	doctor := f.register(t, models.RoleDoctor, "dr@example.com")
	patient := f.register(t, models.RolePatient, "maria@example.com")
	caregiver := f.register(t, models.RoleCaregiver, "joana@example.com")
	ctx := context.Background()

	t.Run("only doctors write notes", func(t *testing.T) {
		_, err := f.notes.Create(ctx, caregiver.ID, caregiver.Role, CreateMedicalNoteInput{SeniorID: patient.ID, Note: "x"})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("note is required", func(t *testing.T) {
		_, err := f.notes.Create(ctx, doctor.ID, doctor.Role, CreateMedicalNoteInput{SeniorID: patient.ID, Note: "  "})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "note")
	})

	t.Run("subject must be a patient", func(t *testing.T) {
		_, err := f.notes.Create(ctx, doctor.ID, doctor.Role, CreateMedicalNoteInput{SeniorID: caregiver.ID, Note: "x"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	note, err := f.notes.Create(ctx, doctor.ID, doctor.Role, CreateMedicalNoteInput{SeniorID: patient.ID, Note: "Pressao estavel"})
	require.NoError(t, err)
	require.NotNil(t, note.Doctor)
	assert.Equal(t, "dr@example.com", note.Doctor.Email)

	t.Run("doctor and patient can read", func(t *testing.T) {
		for _, reader := range []*models.User{doctor, patient} {
			notes, err := f.notes.ListForPatient(ctx, reader.ID, reader.Role, patient.ID)
			require.NoError(t, err)
			require.Len(t, notes, 1)
			assert.Equal(t, "Pressao estavel", notes[0].Note)
		}
	})

	t.Run("others cannot read", func(t *testing.T) {
		_, err := f.notes.ListForPatient(ctx, caregiver.ID, caregiver.Role, patient.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestStringList_UnmarshalJSON(t *testing.T) {
	var in RegisterInput
	require.NoError(t, jsonUnmarshal(`{"certifications":"CPR, Geriatria ,","documents":["a.pdf","b.pdf"]}`, &in))
	assert.Equal(t, StringList{"CPR", "Geriatria"}, in.Certifications)
	assert.Equal(t, StringList{"a.pdf", "b.pdf"}, in.Documents)

	assert.Error(t, jsonUnmarshal(`{"certifications":42}`, &in))
}
