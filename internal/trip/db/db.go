package db

import (
	"context"

	"github.com/uptrace/bun"

	"ms-station/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// ListWithAvailability → fetch every trip decorated with
// tickets_available = bus.num_seats - count(tickets), computed in a
// single aggregate query so listing cost does not grow with ticket
// volume.
func (d *DB) ListWithAvailability(ctx context.Context) ([]models.Trip, error) {
	var trips []models.Trip
	err := d.Bun.NewSelect().
		Model(&trips).
		ColumnExpr("trip.*").
		ColumnExpr("b.num_seats - COUNT(t.id) AS tickets_available").
		Join("JOIN buses AS b ON b.id = trip.bus_id").
		Join("LEFT JOIN tickets AS t ON t.trip_id = trip.id").
		GroupExpr("trip.id, b.num_seats").
		OrderExpr("trip.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return trips, nil
}

// GetTripByID → fetch one trip with its bus (facilities included) and
// tickets; tickets_available is derived from the loaded rows.
func (d *DB) GetTripByID(ctx context.Context, id int64) (*models.Trip, error) {
	var trip models.Trip
	err := d.Bun.NewSelect().
		Model(&trip).
		Relation("Bus").
		Relation("Bus.Facilities").
		Relation("Tickets", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("id ASC")
		}).
		Where("trip.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	if trip.Bus != nil {
		trip.TicketsAvailable = trip.Bus.NumSeats - len(trip.Tickets)
	}
	return &trip, nil
}

// CreateTrip → insert a new trip, filling in its id
func (d *DB) CreateTrip(ctx context.Context, trip *models.Trip) error {
	_, err := d.Bun.NewInsert().Model(trip).Exec(ctx)
	return err
}

// UpdateTrip → update the writable trip fields
func (d *DB) UpdateTrip(ctx context.Context, trip *models.Trip) error {
	_, err := d.Bun.NewUpdate().
		Model(trip).
		Column("source", "destination", "departure", "bus_id").
		Where("id = ?", trip.ID).
		Exec(ctx)
	return err
}

// DeleteTrip → remove a trip; reports whether a row was deleted
func (d *DB) DeleteTrip(ctx context.Context, id int64) (bool, error) {
	res, err := d.Bun.NewDelete().
		Model((*models.Trip)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// BusExists → whether the referenced bus is present
func (d *DB) BusExists(ctx context.Context, busID int64) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Bus)(nil)).
		Where("id = ?", busID).
		Exists(ctx)
}
