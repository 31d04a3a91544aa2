package services

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cuidarbem/cuidarbem-api/auth"
	"github.com/cuidarbem/cuidarbem-api/models"
	"github.com/cuidarbem/cuidarbem-api/repository/memory"
)

var saoPaulo = time.FixedZone("BRT", -3*60*60)

type sentNotice struct {
	kind          string
	appointmentID uint
	cancelledBy   uint
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotice
	fail error
}

func (n *recordingNotifier) record(kind string, a *models.Appointment, by uint) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return n.fail
	}
	n.sent = append(n.sent, sentNotice{kind: kind, appointmentID: a.ID, cancelledBy: by})
	return nil
}

func (n *recordingNotifier) AppointmentBooked(_ context.Context, a *models.Appointment) error {
	return n.record("booked", a, 0)
}

func (n *recordingNotifier) AppointmentCancelled(_ context.Context, a *models.Appointment, by uint) error {
	return n.record("cancelled", a, by)
}

func (n *recordingNotifier) AppointmentReminder(_ context.Context, a *models.Appointment) error {
	return n.record("reminder", a, 0)
}

func (n *recordingNotifier) kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.sent))
	for _, s := range n.sent {
		out = append(out, s.kind)
	}
	return out
}

type fakeDocumentStore struct {
	saved []string
}

func (s *fakeDocumentStore) Save(_ context.Context, filename string, content io.Reader) (string, error) {
	if _, err := io.ReadAll(content); err != nil {
		return "", err
	}
	s.saved = append(s.saved, filename)
	return "https://files.example.com/" + filename, nil
}

type fixture struct {
	store        *memory.Store
	tokens       *auth.TokenIssuer
	revocations  *auth.MemoryRevocationStore
	documents    *fakeDocumentStore
	notifier     *recordingNotifier
	auth         *AuthService
	offers       *OfferService
	appointments *AppointmentService
	requests     *ServiceRequestService
	notes        *MedicalNoteService
	now          time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zap.NewNop()
	f := &fixture{
		store:       memory.New(),
		tokens:      auth.NewTokenIssuer("test-secret", time.Hour),
		revocations: auth.NewMemoryRevocationStore(),
		documents:   &fakeDocumentStore{},
		notifier:    &recordingNotifier{},
		now:         time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }

	f.auth = NewAuthService(f.store, f.tokens, f.revocations, f.documents, log)
	f.offers = NewOfferService(f.store, saoPaulo, log)
	f.offers.now = clock
	f.appointments = NewAppointmentService(f.store, f.notifier, saoPaulo, log)
	f.appointments.now = clock
	f.requests = NewServiceRequestService(f.store, log)
	f.requests.now = clock
	f.notes = NewMedicalNoteService(f.store, log)
	return f
}

func (f *fixture) register(t *testing.T, role models.Role, email string) *models.User {
	t.Helper()
	user, err := f.auth.Register(context.Background(), RegisterInput{
		Name:     "User " + email,
		Email:    email,
		Password: "secret123",
		Role:     string(role),
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) createOffer(t *testing.T, caregiver *models.User, availableAt time.Time) *OfferView {
	t.Helper()
	rate := 80.0
	offer, err := f.offers.CreateOffer(context.Background(), caregiver.ID, CreateOfferInput{
		Title:       "Acompanhamento diurno",
		Description: "Companhia e auxilio nas refeicoes",
		HourlyRate:  &rate,
		Location:    "Sao Paulo",
		AvailableAt: availableAt.Format(time.RFC3339),
	})
	require.NoError(t, err)
	return offer
}

func bookingInput(offerID uint) CreateAppointmentInput {
	age := 82
	return CreateAppointmentInput{
		ServiceOfferID: offerID,
		PatientName:    "Maria",
		PatientAge:     &age,
		Address:        "Rua X, 100",
	}
}

func jsonUnmarshal(data string, v interface{}) error {
	return json.Unmarshal([]byte(data), v)
}
