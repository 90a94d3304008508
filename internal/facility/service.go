package facility

import (
	"context"
	"fmt"
	"strings"

	"ms-station/internal/apperr"
	"ms-station/internal/models"
)

type DBLayer interface {
	ListFacilities(ctx context.Context) ([]models.Facility, error)
	CreateFacility(ctx context.Context, facility *models.Facility) error
}

type FacilityService struct {
	DB DBLayer
}

func NewFacilityService(db DBLayer) *FacilityService {
	return &FacilityService{DB: db}
}

func (s *FacilityService) List(ctx context.Context) ([]models.Facility, error) {
	return s.DB.ListFacilities(ctx)
}

func (s *FacilityService) Create(ctx context.Context, name string) (*models.Facility, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.NewValidation("name", "this field is required")
	}

	facility := &models.Facility{Name: name}
	if err := s.DB.CreateFacility(ctx, facility); err != nil {
		return nil, fmt.Errorf("failed to create facility: %w", err)
	}
	return facility, nil
}
