package trip

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"ms-station/internal/apperr"
	"ms-station/internal/logger"
	"ms-station/internal/models"
)

type DBLayer interface {
	ListWithAvailability(ctx context.Context) ([]models.Trip, error)
	GetTripByID(ctx context.Context, id int64) (*models.Trip, error)
	CreateTrip(ctx context.Context, trip *models.Trip) error
	UpdateTrip(ctx context.Context, trip *models.Trip) error
	DeleteTrip(ctx context.Context, id int64) (bool, error)
	BusExists(ctx context.Context, busID int64) (bool, error)
}

type Cache interface {
	GetTrips(ctx context.Context) ([]models.Trip, error)
	SetTrips(ctx context.Context, trips []models.Trip) error
	Invalidate(ctx context.Context) error
}

type EventPublisher interface {
	PublishTripChanged(topic string, tripID int64, action string) error
}

type TripService struct {
	DB     DBLayer
	Cache  Cache
	Kafka  EventPublisher
	Topic  string
	Logger *logger.Logger
}

func NewTripService(db DBLayer, cache Cache, kafka EventPublisher, topic string, log *logger.Logger) *TripService {
	return &TripService{DB: db, Cache: cache, Kafka: kafka, Topic: topic, Logger: log}
}

func (s *TripService) List(ctx context.Context) ([]models.Trip, error) {
	if s.Cache != nil {
		if cached, err := s.Cache.GetTrips(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	trips, err := s.DB.ListWithAvailability(ctx)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if err := s.Cache.SetTrips(ctx, trips); err != nil {
			s.Logger.Warn("CACHE", fmt.Sprintf("failed to cache trip list: %v", err))
		}
	}
	return trips, nil
}

func (s *TripService) Get(ctx context.Context, id int64) (*models.Trip, error) {
	trip, err := s.DB.GetTripByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("trip")
		}
		return nil, fmt.Errorf("failed to fetch trip %d: %w", id, err)
	}
	return trip, nil
}

func (s *TripService) Create(ctx context.Context, req models.TripRequest) (*models.Trip, error) {
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}

	trip := &models.Trip{
		Source:      req.Source,
		Destination: req.Destination,
		Departure:   *req.Departure,
		BusID:       *req.BusID,
	}
	if err := s.DB.CreateTrip(ctx, trip); err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}

	s.afterWrite(ctx, trip.ID, "created")
	return trip, nil
}

func (s *TripService) Update(ctx context.Context, id int64, req models.TripRequest) (*models.Trip, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}

	trip := &models.Trip{
		ID:          id,
		Source:      req.Source,
		Destination: req.Destination,
		Departure:   *req.Departure,
		BusID:       *req.BusID,
	}
	if err := s.DB.UpdateTrip(ctx, trip); err != nil {
		return nil, fmt.Errorf("failed to update trip %d: %w", id, err)
	}

	s.afterWrite(ctx, id, "updated")
	return trip, nil
}

func (s *TripService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.DB.DeleteTrip(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete trip %d: %w", id, err)
	}
	if !deleted {
		return apperr.NotFound("trip")
	}

	s.afterWrite(ctx, id, "deleted")
	return nil
}

func (s *TripService) validate(ctx context.Context, req models.TripRequest) error {
	fields := map[string]string{}
	if strings.TrimSpace(req.Source) == "" {
		fields["source"] = "this field is required"
	}
	if strings.TrimSpace(req.Destination) == "" {
		fields["destination"] = "this field is required"
	}
	if req.Departure == nil {
		fields["departure"] = "this field is required"
	}
	if req.BusID == nil {
		fields["bus_id"] = "this field is required"
	}
	if len(fields) > 0 {
		return &apperr.ValidationError{Fields: fields}
	}

	exists, err := s.DB.BusExists(ctx, *req.BusID)
	if err != nil {
		return fmt.Errorf("failed to check bus %d: %w", *req.BusID, err)
	}
	if !exists {
		return apperr.NewValidation("bus_id", "unknown bus id")
	}
	return nil
}

// afterWrite keeps the cached listing and downstream consumers in step
// with a trip mutation. Neither failure aborts the request.
func (s *TripService) afterWrite(ctx context.Context, tripID int64, action string) {
	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx); err != nil {
			s.Logger.Warn("CACHE", fmt.Sprintf("failed to invalidate trip cache: %v", err))
		}
	}
	if s.Kafka != nil {
		if err := s.Kafka.PublishTripChanged(s.Topic, tripID, action); err != nil {
			s.Logger.Warn("KAFKA", fmt.Sprintf("failed to publish trip %s event: %v", action, err))
		}
	}
}
