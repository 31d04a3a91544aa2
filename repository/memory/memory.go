// Package memory is an in-process repository.Store. It keeps the same unique
// constraints as the Postgres schema and runs transactions one at a time.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cuidarbem/cuidarbem-api/models"
	"github.com/cuidarbem/cuidarbem-api/repository"
)

type tables struct {
	users        map[uint]models.User
	patients     map[uint]models.PatientProfile
	caregivers   map[uint]models.CaregiverProfile
	doctors      map[uint]models.DoctorProfile
	offers       map[uint]models.ServiceOffer
	appointments map[uint]models.Appointment
	requests     map[uint]models.ServiceRequest
	notes        map[uint]models.MedicalNote
	seq          map[string]uint
}

func newTables() *tables {
	return &tables{
		users:        map[uint]models.User{},
		patients:     map[uint]models.PatientProfile{},
		caregivers:   map[uint]models.CaregiverProfile{},
		doctors:      map[uint]models.DoctorProfile{},
		offers:       map[uint]models.ServiceOffer{},
		appointments: map[uint]models.Appointment{},
		requests:     map[uint]models.ServiceRequest{},
		notes:        map[uint]models.MedicalNote{},
		seq:          map[string]uint{},
	}
}

func copyMap[V any](src map[uint]V) map[uint]V {
	dst := make(map[uint]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (t *tables) clone() *tables {
	seq := make(map[string]uint, len(t.seq))
	for k, v := range t.seq {
		seq[k] = v
	}
	return &tables{
		users:        copyMap(t.users),
		patients:     copyMap(t.patients),
		caregivers:   copyMap(t.caregivers),
		doctors:      copyMap(t.doctors),
		offers:       copyMap(t.offers),
		appointments: copyMap(t.appointments),
		requests:     copyMap(t.requests),
		notes:        copyMap(t.notes),
		seq:          seq,
	}
}

func (t *tables) next(table string) uint {
	t.seq[table]++
	return t.seq[table]
}

type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	data *tables
	now  func() time.Time
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{data: newTables(), now: time.Now}
}

// txStore is the view handed to WithinTx callbacks. The transaction lock is
// already held so nested WithinTx calls run inline.
type txStore struct {
	*Store
}

func (s *txStore) WithinTx(_ context.Context, fn func(tx repository.Store) error) error {
	return fn(s)
}

// WithinTx runs fn while holding the store-wide transaction lock and restores
// the previous contents when fn fails.
func (s *Store) WithinTx(_ context.Context, fn func(tx repository.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(&txStore{s}); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Users() repository.UserRepository               { return userRepository{s} }
func (s *Store) Offers() repository.OfferRepository             { return offerRepository{s} }
func (s *Store) Appointments() repository.AppointmentRepository { return appointmentRepository{s} }
func (s *Store) Requests() repository.ServiceRequestRepository  { return requestRepository{s} }
func (s *Store) Notes() repository.MedicalNoteRepository        { return noteRepository{s} }

func (s *Store) locked(fn func(t *tables) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// hydration helpers; callers hold s.mu.

func (t *tables) userByID(id uint) *models.User {
	u, ok := t.users[id]
	if !ok {
		return nil
	}
	return &u
}

func (t *tables) caregiverWithUser(id uint) *models.CaregiverProfile {
	p, ok := t.caregivers[id]
	if !ok {
		return nil
	}
	p.User = t.userByID(p.UserID)
	return &p
}

func (t *tables) offerWithCaregiver(o models.ServiceOffer) models.ServiceOffer {
	o.Caregiver = t.caregiverWithUser(o.CaregiverID)
	return o
}

func (t *tables) appointmentView(a models.Appointment) models.Appointment {
	if o, ok := t.offers[a.ServiceOfferID]; ok {
		a.ServiceOffer = &o
	}
	a.Caregiver = t.caregiverWithUser(a.CaregiverID)
	a.Patient = t.userByID(a.PatientID)
	return a
}

func (t *tables) sortByAvailability(list []models.Appointment) {
	sort.Slice(list, func(i, j int) bool {
		oi, oj := t.offers[list[i].ServiceOfferID], t.offers[list[j].ServiceOfferID]
		if !oi.AvailableAt.Equal(oj.AvailableAt) {
			return oi.AvailableAt.Before(oj.AvailableAt)
		}
		return list[i].ID < list[j].ID
	})
}

type userRepository struct{ s *Store }

func (r userRepository) Create(_ context.Context, user *models.User) error {
	return r.s.locked(func(t *tables) error {
		for _, u := range t.users {
			if strings.EqualFold(u.Email, user.Email) {
				return repository.ErrDuplicate
			}
		}
		now := r.s.now()
		user.ID = t.next("users")
		if user.CreatedAt.IsZero() {
			user.CreatedAt = now
		}
		user.UpdatedAt = now

		row := *user
		row.PatientProfile, row.CaregiverProfile, row.DoctorProfile = nil, nil, nil
		t.users[row.ID] = row
		return nil
	})
}

func (r userRepository) CreateProfile(_ context.Context, profile models.Profile) error {
	return r.s.locked(func(t *tables) error {
		now := r.s.now()
		switch p := profile.(type) {
		case *models.PatientProfile:
			for _, existing := range t.patients {
				if existing.UserID == p.UserID {
					return repository.ErrDuplicate
				}
			}
			p.ID, p.CreatedAt = t.next("patient_profiles"), now
			t.patients[p.ID] = *p
		case *models.CaregiverProfile:
			for _, existing := range t.caregivers {
				if existing.UserID == p.UserID {
					return repository.ErrDuplicate
				}
			}
			p.ID, p.CreatedAt = t.next("caregiver_profiles"), now
			row := *p
			row.User = nil
			t.caregivers[p.ID] = row
		case *models.DoctorProfile:
			for _, existing := range t.doctors {
				if existing.UserID == p.UserID {
					return repository.ErrDuplicate
				}
			}
			p.ID, p.CreatedAt = t.next("doctor_profiles"), now
			t.doctors[p.ID] = *p
		}
		return nil
	})
}

func (r userRepository) FindByID(_ context.Context, id uint) (*models.User, error) {
	var found *models.User
	err := r.s.locked(func(t *tables) error {
		found = t.userByID(id)
		if found == nil {
			return repository.ErrNotFound
		}
		for _, p := range t.patients {
			if p.UserID == id {
				p := p
				found.PatientProfile = &p
			}
		}
		for _, p := range t.caregivers {
			if p.UserID == id {
				p := p
				found.CaregiverProfile = &p
			}
		}
		for _, p := range t.doctors {
			if p.UserID == id {
				p := p
				found.DoctorProfile = &p
			}
		}
		return nil
	})
	return found, err
}

func (r userRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	var found *models.User
	err := r.s.locked(func(t *tables) error {
		for _, u := range t.users {
			if u.Email == email {
				u := u
				found = &u
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return found, err
}

func (r userRepository) FindCaregiverProfile(_ context.Context, userID uint) (*models.CaregiverProfile, error) {
	var found *models.CaregiverProfile
	err := r.s.locked(func(t *tables) error {
		for _, p := range t.caregivers {
			if p.UserID == userID {
				p := p
				found = &p
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return found, err
}

type offerRepository struct{ s *Store }

func (r offerRepository) Create(_ context.Context, offer *models.ServiceOffer) error {
	return r.s.locked(func(t *tables) error {
		offer.ID = t.next("service_offers")
		if offer.CreatedAt.IsZero() {
			offer.CreatedAt = r.s.now()
		}
		row := *offer
		row.Caregiver = nil
		t.offers[row.ID] = row
		return nil
	})
}

func (r offerRepository) FindActiveByID(_ context.Context, id uint) (*models.ServiceOffer, error) {
	var found *models.ServiceOffer
	err := r.s.locked(func(t *tables) error {
		o, ok := t.offers[id]
		if !ok || !o.Active {
			return repository.ErrNotFound
		}
		o = t.offerWithCaregiver(o)
		found = &o
		return nil
	})
	return found, err
}

func (r offerRepository) ListActive(_ context.Context, caregiverID uint) ([]models.ServiceOffer, error) {
	offers := []models.ServiceOffer{}
	err := r.s.locked(func(t *tables) error {
		for _, o := range t.offers {
			if !o.Active || (caregiverID != 0 && o.CaregiverID != caregiverID) {
				continue
			}
			offers = append(offers, t.offerWithCaregiver(o))
		}
		return nil
	})
	sort.Slice(offers, func(i, j int) bool {
		if !offers[i].CreatedAt.Equal(offers[j].CreatedAt) {
			return offers[i].CreatedAt.After(offers[j].CreatedAt)
		}
		return offers[i].ID > offers[j].ID
	})
	return offers, err
}

func (r offerRepository) Deactivate(_ context.Context, id uint) error {
	return r.s.locked(func(t *tables) error {
		o, ok := t.offers[id]
		if !ok || !o.Active {
			return repository.ErrNotFound
		}
		o.Active = false
		t.offers[id] = o
		return nil
	})
}

func (r offerRepository) DeactivateExpired(_ context.Context, before time.Time) (int64, error) {
	var n int64
	err := r.s.locked(func(t *tables) error {
		for id, o := range t.offers {
			if o.Active && !o.AvailableAt.After(before) {
				o.Active = false
				t.offers[id] = o
				n++
			}
		}
		return nil
	})
	return n, err
}

type appointmentRepository struct{ s *Store }

func (r appointmentRepository) Create(_ context.Context, appointment *models.Appointment) error {
	return r.s.locked(func(t *tables) error {
		if appointment.Status == "" {
			appointment.Status = models.StatusScheduled
		}
		if appointment.Status != models.StatusCancelled {
			for _, a := range t.appointments {
				if a.PatientID == appointment.PatientID &&
					a.ServiceOfferID == appointment.ServiceOfferID &&
					a.Status != models.StatusCancelled {
					return repository.ErrDuplicate
				}
			}
		}
		now := r.s.now()
		appointment.ID = t.next("appointments")
		appointment.CreatedAt, appointment.UpdatedAt = now, now

		row := *appointment
		row.ServiceOffer, row.Caregiver, row.Patient = nil, nil, nil
		t.appointments[row.ID] = row
		return nil
	})
}

func (r appointmentRepository) FindByIDForUpdate(_ context.Context, id uint) (*models.Appointment, error) {
	var found *models.Appointment
	err := r.s.locked(func(t *tables) error {
		a, ok := t.appointments[id]
		if !ok {
			return repository.ErrNotFound
		}
		if p, ok := t.caregivers[a.CaregiverID]; ok {
			a.Caregiver = &p
		}
		found = &a
		return nil
	})
	return found, err
}

func (r appointmentRepository) FindByID(_ context.Context, id uint) (*models.Appointment, error) {
	var found *models.Appointment
	err := r.s.locked(func(t *tables) error {
		a, ok := t.appointments[id]
		if !ok {
			return repository.ErrNotFound
		}
		a = t.appointmentView(a)
		found = &a
		return nil
	})
	return found, err
}

func (r appointmentRepository) HasActiveBooking(_ context.Context, patientID, offerID uint) (bool, error) {
	var exists bool
	err := r.s.locked(func(t *tables) error {
		for _, a := range t.appointments {
			if a.PatientID == patientID && a.ServiceOfferID == offerID && a.Status != models.StatusCancelled {
				exists = true
				break
			}
		}
		return nil
	})
	return exists, err
}

func (r appointmentRepository) UpdateStatus(_ context.Context, appointment *models.Appointment) error {
	return r.s.locked(func(t *tables) error {
		row, ok := t.appointments[appointment.ID]
		if !ok {
			return repository.ErrNotFound
		}
		row.Status = appointment.Status
		row.CancelledAt = appointment.CancelledAt
		row.UpdatedAt = appointment.UpdatedAt
		t.appointments[row.ID] = row
		return nil
	})
}

func (r appointmentRepository) MarkReminded(_ context.Context, id uint, at time.Time) error {
	return r.s.locked(func(t *tables) error {
		row, ok := t.appointments[id]
		if !ok {
			return repository.ErrNotFound
		}
		row.ReminderSentAt = &at
		t.appointments[id] = row
		return nil
	})
}

func (r appointmentRepository) list(keep func(a models.Appointment, offer models.ServiceOffer) bool) ([]models.Appointment, error) {
	list := []models.Appointment{}
	err := r.s.locked(func(t *tables) error {
		for _, a := range t.appointments {
			if keep(a, t.offers[a.ServiceOfferID]) {
				list = append(list, t.appointmentView(a))
			}
		}
		t.sortByAvailability(list)
		return nil
	})
	return list, err
}

func (r appointmentRepository) ListByPatient(_ context.Context, patientID uint) ([]models.Appointment, error) {
	return r.list(func(a models.Appointment, _ models.ServiceOffer) bool {
		return a.PatientID == patientID && a.Status != models.StatusCancelled
	})
}

func (r appointmentRepository) ListByCaregiver(_ context.Context, caregiverID uint) ([]models.Appointment, error) {
	return r.list(func(a models.Appointment, _ models.ServiceOffer) bool {
		return a.CaregiverID == caregiverID && a.Status != models.StatusCancelled
	})
}

func (r appointmentRepository) ListStartingBetween(_ context.Context, from, to time.Time) ([]models.Appointment, error) {
	return r.list(func(a models.Appointment, o models.ServiceOffer) bool {
		return a.Status == models.StatusScheduled && a.ReminderSentAt == nil &&
			!o.AvailableAt.Before(from) && !o.AvailableAt.After(to)
	})
}

type requestRepository struct{ s *Store }

func (r requestRepository) Create(_ context.Context, request *models.ServiceRequest) error {
	return r.s.locked(func(t *tables) error {
		request.ID = t.next("service_requests")
		if request.Status == "" {
			request.Status = models.RequestPending
		}
		row := *request
		row.ServiceOffer = nil
		t.requests[row.ID] = row
		return nil
	})
}

func (r requestRepository) ListByPatient(_ context.Context, patientID uint) ([]models.ServiceRequest, error) {
	list := []models.ServiceRequest{}
	err := r.s.locked(func(t *tables) error {
		for _, req := range t.requests {
			if req.PatientID != patientID {
				continue
			}
			if o, ok := t.offers[req.ServiceOfferID]; ok {
				req.ServiceOffer = &o
			}
			list = append(list, req)
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool {
		if !list[i].RequestDate.Equal(list[j].RequestDate) {
			return list[i].RequestDate.After(list[j].RequestDate)
		}
		return list[i].ID > list[j].ID
	})
	return list, err
}

type noteRepository struct{ s *Store }

func (r noteRepository) Create(_ context.Context, note *models.MedicalNote) error {
	return r.s.locked(func(t *tables) error {
		note.ID = t.next("medical_notes")
		if note.CreatedAt.IsZero() {
			note.CreatedAt = r.s.now()
		}
		row := *note
		row.Doctor = nil
		t.notes[row.ID] = row
		return nil
	})
}

func (r noteRepository) ListByPatient(_ context.Context, patientID uint) ([]models.MedicalNote, error) {
	list := []models.MedicalNote{}
	err := r.s.locked(func(t *tables) error {
		for _, n := range t.notes {
			if n.PatientID == patientID {
				n.Doctor = t.userByID(n.DoctorID)
				list = append(list, n)
			}
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return list, err
}
