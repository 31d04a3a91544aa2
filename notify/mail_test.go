package notify

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/cuidarbem/cuidarbem-api/models"
)

type recordingSender struct {
	sent []*gomail.Message
}

func (r *recordingSender) DialAndSend(m ...*gomail.Message) error {
	r.sent = append(r.sent, m...)
	return nil
}

func fixture() *models.Appointment {
	return &models.Appointment{
		ID:          7,
		PatientID:   1,
		PatientName: "Maria Silva",
		Date:        "2026-11-02",
		Time:        "10:00",
		Address:     "Rua das Flores, 10",
		Status:      models.StatusScheduled,
		Patient:     &models.User{ID: 1, Name: "Maria", Email: "maria@example.com"},
		ServiceOffer: &models.ServiceOffer{
			Title:    "Acompanhamento diurno",
			Location: "Sao Paulo",
		},
		Caregiver: &models.CaregiverProfile{
			ID:     3,
			UserID: 2,
			User:   &models.User{ID: 2, Name: "Joana", Email: "joana@example.com"},
		},
	}
}

func render(t *testing.T, m *gomail.Message) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestMailNotifier_Booked(t *testing.T) {
	sender := &recordingSender{}
	n := NewMailNotifierWithSender("noreply@cuidarbem.app", sender)

	require.NoError(t, n.AppointmentBooked(context.Background(), fixture()))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, []string{"maria@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Appointment confirmed - Acompanhamento diurno"}, msg.GetHeader("Subject"))
	body := render(t, msg)
	assert.Contains(t, body, "Joana")
	assert.Contains(t, body, "2026-11-02 10:00")
}

func TestMailNotifier_CancelledGoesToCounterpart(t *testing.T) {
	sender := &recordingSender{}
	n := NewMailNotifierWithSender("noreply@cuidarbem.app", sender)
	a := fixture()

	require.NoError(t, n.AppointmentCancelled(context.Background(), a, a.PatientID))
	require.NoError(t, n.AppointmentCancelled(context.Background(), a, a.Caregiver.UserID))

	require.Len(t, sender.sent, 2)
	assert.Equal(t, []string{"joana@example.com"}, sender.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"maria@example.com"}, sender.sent[1].GetHeader("To"))
}

func TestMailNotifier_RequiresLoadedPatient(t *testing.T) {
	n := NewMailNotifierWithSender("noreply@cuidarbem.app", &recordingSender{})
	a := fixture()
	a.Patient = nil

	assert.Error(t, n.AppointmentReminder(context.Background(), a))
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(zap.NewNop())
	a := fixture()

	assert.NoError(t, n.AppointmentBooked(context.Background(), a))
	assert.NoError(t, n.AppointmentCancelled(context.Background(), a, 1))
	assert.NoError(t, n.AppointmentReminder(context.Background(), a))
}

func TestDetails_EscapesUserInput(t *testing.T) {
	a := fixture()
	a.Address = `<a href="https://evil.example">Confirme seu pagamento</a>`
	a.Caregiver.User.Name = "<script>x</script>"

	out := details(a)
	assert.NotContains(t, out, "<a href")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;a href=&#34;https://evil.example&#34;&gt;Confirme seu pagamento&lt;/a&gt;")
	assert.Contains(t, out, "&lt;script&gt;x&lt;/script&gt;")
}

func TestMailNotifier_CancelledEscapesRecipientName(t *testing.T) {
	sender := &recordingSender{}
	n := NewMailNotifierWithSender("noreply@cuidarbem.app", sender)
	a := fixture()
	a.Caregiver.User.Name = "<b>Joana</b>"

	require.NoError(t, n.AppointmentCancelled(context.Background(), a, a.PatientID))
	require.Len(t, sender.sent, 1)

	body := render(t, sender.sent[0])
	assert.Contains(t, body, "&lt;b&gt;Joana&lt;/b&gt;")
	assert.NotContains(t, body, "<b>Joana</b>")
}
