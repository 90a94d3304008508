package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"ms-station/internal/apperr"
	"ms-station/internal/auth"
	"ms-station/internal/logger"
	"ms-station/internal/models"
	"ms-station/internal/order/db"
	"ms-station/internal/order/qr"
)

type DBLayer interface {
	ListOrdersByUser(ctx context.Context, userID string, limit, offset int) ([]models.Order, error)
	CountOrdersByUser(ctx context.Context, userID string) (int, error)
	GetOrderForUser(ctx context.Context, id int64, userID string) (*models.Order, error)
	CreateOrder(ctx context.Context, order *models.Order, tickets []*models.Ticket) error
	SetTicketQR(ctx context.Context, ticketID int64, qrCode []byte) error
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type KafkaPublisher interface {
	PublishOrderCreated(topic string, order models.Order) error
}

type OrderService struct {
	DB     DBLayer
	Cache  CacheInvalidator
	Kafka  KafkaPublisher
	Topic  string
	QR     *qr.QRGenerator
	Logger *logger.Logger
}

func NewOrderService(dbLayer DBLayer, cache CacheInvalidator, kafka KafkaPublisher, topic string, qrGen *qr.QRGenerator, log *logger.Logger) *OrderService {
	return &OrderService{DB: dbLayer, Cache: cache, Kafka: kafka, Topic: topic, QR: qrGen, Logger: log}
}

// ---------------- ORDERS ----------------

// List returns one page of the identity's own orders plus the total
// count for pagination.
func (s *OrderService) List(ctx context.Context, id auth.Identity, page, pageSize int) ([]models.Order, int, error) {
	count, err := s.DB.CountOrdersByUser(ctx, id.UserID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	orders, err := s.DB.ListOrdersByUser(ctx, id.UserID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, count, nil
}

// Get returns the order only when the identity owns it; anything else
// is a not-found, never a permission error.
func (s *OrderService) Get(ctx context.Context, id auth.Identity, orderID int64) (*models.Order, error) {
	order, err := s.DB.GetOrderForUser(ctx, orderID, id.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("order")
		}
		return nil, fmt.Errorf("failed to fetch order %d: %w", orderID, err)
	}
	return order, nil
}

// PlaceOrder creates the order with its tickets for the requesting
// identity. The owner is always the identity; anything the payload
// says about ownership is ignored before this point.
func (s *OrderService) PlaceOrder(ctx context.Context, id auth.Identity, req models.OrderRequest) (*models.Order, error) {
	if len(req.Tickets) == 0 {
		return nil, apperr.NewValidation("tickets", "at least one ticket is required")
	}
	for i, t := range req.Tickets {
		if t.TripID == 0 {
			return nil, apperr.NewValidation("tickets", fmt.Sprintf("ticket %d: trip is required", i))
		}
		if strings.TrimSpace(t.Seat) == "" {
			return nil, apperr.NewValidation("tickets", fmt.Sprintf("ticket %d: seat is required", i))
		}
	}

	order := &models.Order{
		UserID:    id.UserID,
		CreatedAt: time.Now().UTC(),
	}
	tickets := make([]*models.Ticket, 0, len(req.Tickets))
	for _, t := range req.Tickets {
		tickets = append(tickets, &models.Ticket{
			TripID:   t.TripID,
			Seat:     strings.TrimSpace(t.Seat),
			IssuedAt: order.CreatedAt,
		})
	}

	if err := s.DB.CreateOrder(ctx, order, tickets); err != nil {
		return nil, mapCreateError(err)
	}
	order.Tickets = tickets

	s.issueQRCodes(ctx, order)

	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx); err != nil {
			s.Logger.Warn("CACHE", fmt.Sprintf("failed to invalidate trip cache: %v", err))
		}
	}
	if s.Kafka != nil {
		if err := s.Kafka.PublishOrderCreated(s.Topic, *order); err != nil {
			s.Logger.Warn("KAFKA", fmt.Sprintf("failed to publish order created event: %v", err))
		}
	}

	s.Logger.LogOrder("PLACED", fmt.Sprintf("%d", order.ID), fmt.Sprintf("%d tickets for user %s", len(order.Tickets), order.UserID))
	return order, nil
}

// issueQRCodes attaches an encrypted QR to each ticket after the order
// committed. A QR failure never unwinds the order.
func (s *OrderService) issueQRCodes(ctx context.Context, order *models.Order) {
	if s.QR == nil {
		return
	}
	for _, t := range order.Tickets {
		qrBytes, err := s.QR.GenerateEncryptedQR(qr.TicketPayload{
			TicketID: t.ID,
			OrderID:  order.ID,
			TripID:   t.TripID,
			Seat:     t.Seat,
			IssuedAt: t.IssuedAt,
		})
		if err != nil {
			s.Logger.Warn("ORDER", fmt.Sprintf("failed to generate QR for ticket %d: %v", t.ID, err))
			continue
		}
		if err := s.DB.SetTicketQR(ctx, t.ID, qrBytes); err != nil {
			s.Logger.Warn("ORDER", fmt.Sprintf("failed to store QR for ticket %d: %v", t.ID, err))
			continue
		}
		t.QRCode = qrBytes
	}
}

func mapCreateError(err error) error {
	if errors.Is(err, db.ErrTripNotFound) {
		return apperr.NewValidation("tickets", "unknown trip id")
	}

	var capErr *db.CapacityError
	if errors.As(err, &capErr) {
		return apperr.NewValidation("tickets", capErr.Error())
	}

	var seatErr *db.SeatTakenError
	if errors.As(err, &seatErr) {
		return apperr.NewValidation("tickets", seatErr.Error())
	}

	return fmt.Errorf("failed to create order: %w", err)
}
