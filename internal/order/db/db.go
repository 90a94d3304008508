package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"ms-station/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// ErrTripNotFound is returned when an order references a trip that
// does not exist.
var ErrTripNotFound = errors.New("trip not found")

// CapacityError rejects an order that would oversell a trip.
type CapacityError struct {
	TripID    int64
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("trip %d has only %d seats available", e.TripID, e.Available)
}

// SeatTakenError rejects an order naming a seat already ticketed on
// the same trip.
type SeatTakenError struct {
	TripID int64
	Seat   string
}

func (e *SeatTakenError) Error() string {
	return fmt.Sprintf("seat %s is already taken on trip %d", e.Seat, e.TripID)
}

// ---------------- ORDERS ----------------

// ListOrdersByUser → fetch a page of the user's orders, tickets eagerly
// expanded through trip to bus so rendering takes no further queries.
func (d *DB) ListOrdersByUser(ctx context.Context, userID string, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Relation("Tickets", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("ticket.id ASC")
		}).
		Relation("Tickets.Trip").
		Relation("Tickets.Trip.Bus").
		Where("\"order\".user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// CountOrdersByUser → total orders owned by the user
func (d *DB) CountOrdersByUser(ctx context.Context, userID string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Order)(nil)).
		Where("user_id = ?", userID).
		Count(ctx)
}

// GetOrderForUser → fetch one order only if owned by the user. The
// ownership predicate is part of the lookup, so a foreign order id
// behaves exactly like a missing one.
func (d *DB) GetOrderForUser(ctx context.Context, id int64, userID string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Relation("Tickets", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("ticket.id ASC")
		}).
		Relation("Tickets.Trip").
		Relation("Tickets.Trip.Bus").
		Where("\"order\".id = ? AND \"order\".user_id = ?", id, userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrder → insert the order and all its tickets in one
// transaction, enforcing that no trip ends up oversold and no seat is
// issued twice. Either everything commits or nothing does.
func (d *DB) CreateOrder(ctx context.Context, order *models.Order, tickets []*models.Ticket) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		requested := make(map[int64]int)
		for _, t := range tickets {
			requested[t.TripID]++
		}

		for tripID, wanted := range requested {
			var numSeats int
			err := tx.NewSelect().
				Table("trips").
				ColumnExpr("b.num_seats").
				Join("JOIN buses AS b ON b.id = trips.bus_id").
				Where("trips.id = ?", tripID).
				Scan(ctx, &numSeats)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return ErrTripNotFound
				}
				return err
			}

			issued, err := tx.NewSelect().
				Model((*models.Ticket)(nil)).
				Where("trip_id = ?", tripID).
				Count(ctx)
			if err != nil {
				return err
			}
			if issued+wanted > numSeats {
				return &CapacityError{TripID: tripID, Available: numSeats - issued}
			}
		}

		// A payload repeating a seat must fail the same way as a seat
		// someone else holds, not trip the unique index on insert.
		type seatKey struct {
			tripID int64
			seat   string
		}
		seen := make(map[seatKey]bool, len(tickets))
		for _, t := range tickets {
			key := seatKey{tripID: t.TripID, seat: t.Seat}
			if seen[key] {
				return &SeatTakenError{TripID: t.TripID, Seat: t.Seat}
			}
			seen[key] = true

			taken, err := tx.NewSelect().
				Model((*models.Ticket)(nil)).
				Where("trip_id = ? AND seat = ?", t.TripID, t.Seat).
				Exists(ctx)
			if err != nil {
				return err
			}
			if taken {
				return &SeatTakenError{TripID: t.TripID, Seat: t.Seat}
			}
		}

		if _, err := tx.NewInsert().Model(order).Exec(ctx); err != nil {
			return err
		}

		// Tickets are inserted one by one so each gets its id back.
		for _, t := range tickets {
			t.OrderID = order.ID
			if _, err := tx.NewInsert().Model(t).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetTicketQR → attach a generated QR code to an issued ticket
func (d *DB) SetTicketQR(ctx context.Context, ticketID int64, qrCode []byte) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("qr_code = ?", qrCode).
		Where("id = ?", ticketID).
		Exec(ctx)
	return err
}
