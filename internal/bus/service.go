package bus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"ms-station/internal/apperr"
	"ms-station/internal/models"
)

type DBLayer interface {
	ListBuses(ctx context.Context, facilityIDs []int64) ([]models.Bus, error)
	GetBusByID(ctx context.Context, id int64) (*models.Bus, error)
	CreateBus(ctx context.Context, bus *models.Bus, facilityIDs []int64) error
	CountFacilities(ctx context.Context, facilityIDs []int64) (int, error)
	UpdateBusImage(ctx context.Context, id int64, imagePath string) error
}

type AssetStore interface {
	Save(busID int64, originalName string, r io.Reader) (string, error)
	Remove(name string) error
}

type BusService struct {
	DB     DBLayer
	Assets AssetStore
}

func NewBusService(db DBLayer, assets AssetStore) *BusService {
	return &BusService{DB: db, Assets: assets}
}

func (s *BusService) List(ctx context.Context, facilityIDs []int64) ([]models.Bus, error) {
	return s.DB.ListBuses(ctx, facilityIDs)
}

func (s *BusService) Get(ctx context.Context, id int64) (*models.Bus, error) {
	bus, err := s.DB.GetBusByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("bus")
		}
		return nil, fmt.Errorf("failed to fetch bus %d: %w", id, err)
	}
	return bus, nil
}

func (s *BusService) Create(ctx context.Context, req models.BusRequest) (*models.Bus, error) {
	if req.NumSeats == nil {
		return nil, apperr.NewValidation("num_seats", "this field is required")
	}
	if *req.NumSeats <= 0 {
		return nil, apperr.NewValidation("num_seats", "must be a positive integer")
	}

	if len(req.Facilities) > 0 {
		found, err := s.DB.CountFacilities(ctx, req.Facilities)
		if err != nil {
			return nil, fmt.Errorf("failed to check facilities: %w", err)
		}
		if found != len(req.Facilities) {
			return nil, apperr.NewValidation("facilities", "unknown facility id")
		}
	}

	bus := &models.Bus{Info: req.Info, NumSeats: *req.NumSeats}
	if err := s.DB.CreateBus(ctx, bus, req.Facilities); err != nil {
		return nil, fmt.Errorf("failed to create bus: %w", err)
	}

	return s.Get(ctx, bus.ID)
}

// UploadImage stores the image for a bus and returns the refreshed bus.
// The previous image, if any, is removed from the asset store.
func (s *BusService) UploadImage(ctx context.Context, id int64, originalName string, image io.Reader) (*models.Bus, error) {
	bus, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	stored, err := s.Assets.Save(id, originalName, image)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	if err := s.DB.UpdateBusImage(ctx, id, stored); err != nil {
		_ = s.Assets.Remove(stored)
		return nil, fmt.Errorf("failed to attach image: %w", err)
	}

	if bus.ImagePath != "" {
		_ = s.Assets.Remove(bus.ImagePath)
	}

	return s.Get(ctx, id)
}
