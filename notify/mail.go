package notify

import (
	"context"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"

	"github.com/cuidarbem/cuidarbem-api/models"
)

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Sender abstracts the SMTP transport so messages can be inspected in tests.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type MailNotifier struct {
	from   string
	sender Sender
}

func NewMailNotifier(cfg MailConfig) *MailNotifier {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &MailNotifier{
		from:   from,
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// NewMailNotifierWithSender is NewMailNotifier with a custom transport.
func NewMailNotifierWithSender(from string, sender Sender) *MailNotifier {
	return &MailNotifier{from: from, sender: sender}
}

func (n *MailNotifier) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if to == "" {
		return fmt.Errorf("notify: no recipient for %q", subject)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	return n.sender.DialAndSend(m)
}

func (n *MailNotifier) AppointmentBooked(ctx context.Context, a *models.Appointment) error {
	if a.Patient == nil {
		return fmt.Errorf("notify: appointment %d has no patient loaded", a.ID)
	}
	subject := fmt.Sprintf("Appointment confirmed - %s", offerTitle(a))
	body := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>Your appointment has been booked.</p>
		%s
		<p>If you need to cancel, please do it as soon as possible.</p>
		<p>CuidarBem</p>
	`, html.EscapeString(a.PatientName), details(a))
	return n.send(ctx, a.Patient.Email, subject, body)
}

// AppointmentCancelled writes to the party that did not cancel.
func (n *MailNotifier) AppointmentCancelled(ctx context.Context, a *models.Appointment, cancelledBy uint) error {
	var to, name string
	if cancelledBy == a.PatientID {
		if a.Caregiver == nil || a.Caregiver.User == nil {
			return fmt.Errorf("notify: appointment %d has no caregiver loaded", a.ID)
		}
		to, name = a.Caregiver.User.Email, a.Caregiver.User.Name
	} else {
		if a.Patient == nil {
			return fmt.Errorf("notify: appointment %d has no patient loaded", a.ID)
		}
		to, name = a.Patient.Email, a.Patient.Name
	}

	subject := fmt.Sprintf("Appointment cancelled - %s", offerTitle(a))
	body := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>The following appointment was cancelled.</p>
		%s
		<p>CuidarBem</p>
	`, html.EscapeString(name), details(a))
	return n.send(ctx, to, subject, body)
}

func (n *MailNotifier) AppointmentReminder(ctx context.Context, a *models.Appointment) error {
	if a.Patient == nil {
		return fmt.Errorf("notify: appointment %d has no patient loaded", a.ID)
	}
	subject := fmt.Sprintf("Reminder: upcoming appointment - %s", offerTitle(a))
	body := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>This is a reminder for your appointment scheduled in one hour.</p>
		%s
		<p>CuidarBem</p>
	`, html.EscapeString(a.PatientName), details(a))
	return n.send(ctx, a.Patient.Email, subject, body)
}

func offerTitle(a *models.Appointment) string {
	if a.ServiceOffer != nil {
		return a.ServiceOffer.Title
	}
	return fmt.Sprintf("#%d", a.ID)
}

// details renders the appointment as an HTML list. Every value is escaped;
// names and addresses are user input.
func details(a *models.Appointment) string {
	caregiver := ""
	if a.Caregiver != nil && a.Caregiver.User != nil {
		caregiver = a.Caregiver.User.Name
	}
	location := ""
	if a.ServiceOffer != nil {
		location = a.ServiceOffer.Location
	}
	return fmt.Sprintf(`<ul>
			<li><strong>Service:</strong> %s</li>
			<li><strong>Caregiver:</strong> %s</li>
			<li><strong>Date:</strong> %s %s</li>
			<li><strong>Location:</strong> %s</li>
			<li><strong>Address:</strong> %s</li>
			<li><strong>Status:</strong> %s</li>
		</ul>`,
		html.EscapeString(offerTitle(a)),
		html.EscapeString(caregiver),
		html.EscapeString(a.Date), html.EscapeString(a.Time),
		html.EscapeString(location),
		html.EscapeString(a.Address),
		html.EscapeString(string(a.Status)))
}
