package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cuidarbem/cuidarbem-api/models"
	"github.com/cuidarbem/cuidarbem-api/repository"
)

type CreateServiceRequestInput struct {
	ServiceID uint `json:"service_id"`
}

// ServiceRequestService records a patient's interest in an offer. Requests
// are independent of bookings.
type ServiceRequestService struct {
	store repository.Store
	now   func() time.Time
	log   *zap.Logger
}

func NewServiceRequestService(store repository.Store, log *zap.Logger) *ServiceRequestService {
	return &ServiceRequestService{store: store, now: time.Now, log: log}
}

func (s *ServiceRequestService) Create(ctx context.Context, patientID uint, in CreateServiceRequestInput) (*models.ServiceRequest, error) {
	if in.ServiceID == 0 {
		return nil, fieldError("service_id", "service is required")
	}

	offer, err := s.store.Offers().FindActiveByID(ctx, in.ServiceID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrOfferNotFound
		}
		return nil, fmt.Errorf("find offer: %w", err)
	}

	request := &models.ServiceRequest{
		ServiceOfferID: offer.ID,
		PatientID:      patientID,
		RequestDate:    s.now().UTC(),
		Status:         models.RequestPending,
	}
	if err := s.store.Requests().Create(ctx, request); err != nil {
		return nil, fmt.Errorf("create service request: %w", err)
	}

	s.log.Info("service requested", zap.Uint("requestID", request.ID), zap.Uint("offerID", offer.ID))
	return request, nil
}

func (s *ServiceRequestService) ListMine(ctx context.Context, patientID uint) ([]models.ServiceRequest, error) {
	requests, err := s.store.Requests().ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list service requests: %w", err)
	}
	return requests, nil
}
