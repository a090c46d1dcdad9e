package hotel

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/validation"
)

type CreateRequest struct {
	Name        string
	Description string
	Location    string
	StarRating  int
	Amenities   []string
	Address     string
	Phone       string
	Email       string
	CreatedBy   string
}

// UpdateRequest carries a partial update; nil fields are left unchanged.
type UpdateRequest struct {
	Name        *string
	Description *string
	Location    *string
	StarRating  *int
	Amenities   *[]string
	Address     *string
	Phone       *string
	Email       *string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Hotel, error)
	// GetByID returns the hotel whether or not it is active.
	GetByID(ctx context.Context, id string) (*Hotel, error)
	// GetActive hides deactivated hotels behind ErrInactive.
	GetActive(ctx context.Context, id string) (*Hotel, error)
	List(ctx context.Context, filter Filter) ([]*Hotel, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Hotel, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo      Repository
	validator *validation.Validator
	log       *logrus.Entry
}

func NewService(repo Repository, validator *validation.Validator, log *logrus.Entry) Service {
	return &service{
		repo:      repo,
		validator: validator,
		log:       log.WithField("component", "hotel"),
	}
}

func (s *service) ensureUniqueName(ctx context.Context, name, location, excludeID string) error {
	exists, err := s.repo.ExistsByNameAndLocation(ctx, name, location, excludeID)
	if err != nil {
		return apperror.AsStore(err, "failed to check hotel name")
	}
	if exists {
		return ErrDuplicateName
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Hotel, error) {
	h := &Hotel{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Location:    strings.TrimSpace(req.Location),
		StarRating:  req.StarRating,
		Amenities:   req.Amenities,
		Address:     req.Address,
		Phone:       req.Phone,
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		CreatedBy:   req.CreatedBy,
		IsActive:    true,
	}
	if h.Amenities == nil {
		h.Amenities = []string{}
	}

	if err := s.validator.Check(h); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, h.Name, h.Location, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, h); err != nil {
		return nil, apperror.AsStore(err, "failed to create hotel")
	}

	s.log.WithFields(logrus.Fields{"hotel_id": h.ID, "created_by": h.CreatedBy}).Info("hotel created")
	return h, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Hotel, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.AsStore(err, "failed to get hotel")
	}
	return h, nil
}

func (s *service) GetActive(ctx context.Context, id string) (*Hotel, error) {
	h, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !h.IsActive {
		return nil, ErrInactive
	}
	return h, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Hotel, int, error) {
	filter.Params = filter.Params.Normalize()
	hotels, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperror.AsStore(err, "failed to list hotels")
	}
	return hotels, total, nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Hotel, error) {
	h, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	renamed := false
	if req.Name != nil {
		h.Name = strings.TrimSpace(*req.Name)
		renamed = true
	}
	if req.Location != nil {
		h.Location = strings.TrimSpace(*req.Location)
		renamed = true
	}
	if req.Description != nil {
		h.Description = *req.Description
	}
	if req.StarRating != nil {
		h.StarRating = *req.StarRating
	}
	if req.Amenities != nil {
		h.Amenities = *req.Amenities
	}
	if req.Address != nil {
		h.Address = *req.Address
	}
	if req.Phone != nil {
		h.Phone = *req.Phone
	}
	if req.Email != nil {
		h.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}

	if err := s.validator.Check(h); err != nil {
		return nil, err
	}
	if renamed {
		if err := s.ensureUniqueName(ctx, h.Name, h.Location, h.ID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, h); err != nil {
		return nil, apperror.AsStore(err, "failed to update hotel")
	}
	return h, nil
}

// Delete deactivates the hotel; its rooms become unavailable in the same transaction.
func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return apperror.AsStore(err, "failed to delete hotel")
	}
	s.log.WithField("hotel_id", id).Info("hotel deactivated")
	return nil
}
