package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cuidarbem/cuidarbem-api/models"
	"github.com/cuidarbem/cuidarbem-api/repository"
)

type CreateOfferInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	HourlyRate  *float64 `json:"hourly_rate"`
	Location    string   `json:"location"`
	AvailableAt string   `json:"availableAt"`
}

// OfferView is an offer with its caregiver and the caregiver's user.
type OfferView struct {
	ID          uint           `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	HourlyRate  float64        `json:"hourlyRate"`
	Location    string         `json:"location"`
	AvailableAt time.Time      `json:"availableAt"`
	Active      bool           `json:"active"`
	CreatedAt   time.Time      `json:"createdAt"`
	Caregiver   *CaregiverView `json:"caregiver,omitempty"`
}

type CaregiverView struct {
	ID              uint                `json:"id"`
	Bio             string              `json:"bio"`
	ExperienceYears int                 `json:"experienceYears"`
	Certifications  []string            `json:"certifications"`
	Verified        bool                `json:"verified"`
	User            *models.UserSummary `json:"user,omitempty"`
}

func newOfferView(o *models.ServiceOffer) OfferView {
	view := OfferView{
		ID:          o.ID,
		Title:       o.Title,
		Description: o.Description,
		HourlyRate:  o.HourlyRate,
		Location:    o.Location,
		AvailableAt: o.AvailableAt,
		Active:      o.Active,
		CreatedAt:   o.CreatedAt,
	}
	if cg := o.Caregiver; cg != nil {
		view.Caregiver = &CaregiverView{
			ID:              cg.ID,
			Bio:             cg.Bio,
			ExperienceYears: cg.ExperienceYears,
			Certifications:  append([]string{}, cg.Certifications...),
			Verified:        cg.Verified,
		}
		if cg.User != nil {
			summary := cg.User.Summary()
			view.Caregiver.User = &summary
		}
	}
	return view
}

type OfferService struct {
	store repository.Store
	loc   *time.Location
	now   func() time.Time
	log   *zap.Logger
}

func NewOfferService(store repository.Store, loc *time.Location, log *zap.Logger) *OfferService {
	return &OfferService{store: store, loc: loc, now: time.Now, log: log}
}

func findCaregiverProfile(ctx context.Context, store repository.Store, userID uint) (*models.CaregiverProfile, error) {
	profile, err := store.Users().FindCaregiverProfile(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNoCaregiverProfile
		}
		return nil, fmt.Errorf("find caregiver profile: %w", err)
	}
	return profile, nil
}

func (s *OfferService) CreateOffer(ctx context.Context, userID uint, in CreateOfferInput) (*OfferView, error) {
	profile, err := findCaregiverProfile(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}

	v := &ValidationError{}
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	location := strings.TrimSpace(in.Location)
	if title == "" {
		v.Add("title", "title is required")
	}
	if description == "" {
		v.Add("description", "description is required")
	}
	if location == "" {
		v.Add("location", "location is required")
	}
	switch {
	case in.HourlyRate == nil:
		v.Add("hourly_rate", "hourly rate is required")
	case *in.HourlyRate <= 0:
		v.Add("hourly_rate", "hourly rate must be positive")
	}

	var availableAt time.Time
	if strings.TrimSpace(in.AvailableAt) == "" {
		v.Add("availableAt", "availability is required")
	} else if availableAt, err = parseTimestamp(in.AvailableAt, s.loc); err != nil {
		v.Add("availableAt", "availability must be an ISO 8601 timestamp")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	offer := &models.ServiceOffer{
		CaregiverID: profile.ID,
		Title:       title,
		Description: description,
		HourlyRate:  *in.HourlyRate,
		Location:    location,
		AvailableAt: availableAt.UTC(),
		Active:      true,
	}
	if err := s.store.Offers().Create(ctx, offer); err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}
	offer.Caregiver = profile

	s.log.Info("service offer created", zap.Uint("offerID", offer.ID), zap.Uint("caregiverID", profile.ID))
	view := newOfferView(offer)
	return &view, nil
}

func (s *OfferService) ListOffers(ctx context.Context) ([]OfferView, error) {
	offers, err := s.store.Offers().ListActive(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	return offerViews(offers), nil
}

// ListMyOffers returns an empty list for callers without a caregiver profile.
func (s *OfferService) ListMyOffers(ctx context.Context, userID uint) ([]OfferView, error) {
	profile, err := findCaregiverProfile(ctx, s.store, userID)
	if errors.Is(err, ErrNoCaregiverProfile) {
		return []OfferView{}, nil
	}
	if err != nil {
		return nil, err
	}

	offers, err := s.store.Offers().ListActive(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	return offerViews(offers), nil
}

func (s *OfferService) GetOffer(ctx context.Context, id uint) (*OfferView, error) {
	offer, err := s.store.Offers().FindActiveByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrOfferNotFound
		}
		return nil, fmt.Errorf("find offer: %w", err)
	}
	view := newOfferView(offer)
	return &view, nil
}

// DeactivateOffer retires an active offer owned by the caller.
func (s *OfferService) DeactivateOffer(ctx context.Context, userID, id uint) (*OfferView, error) {
	var offer *models.ServiceOffer
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		offer, err = tx.Offers().FindActiveByID(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return ErrOfferNotFound
			}
			return fmt.Errorf("find offer: %w", err)
		}
		if !offer.OwnedBy(userID) {
			return ErrNotOfferOwner
		}
		if err := tx.Offers().Deactivate(ctx, id); err != nil {
			if isNotFound(err) {
				return ErrOfferNotFound
			}
			return fmt.Errorf("deactivate offer: %w", err)
		}
		offer.Active = false
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("service offer deactivated", zap.Uint("offerID", id), zap.Uint("userID", userID))
	view := newOfferView(offer)
	return &view, nil
}

// SweepExpired deactivates active offers whose slot is not after now.
func (s *OfferService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.store.Offers().DeactivateExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("deactivate expired offers: %w", err)
	}
	return n, nil
}

func offerViews(offers []models.ServiceOffer) []OfferView {
	views := make([]OfferView, 0, len(offers))
	for i := range offers {
		views = append(views, newOfferView(&offers[i]))
	}
	return views
}
