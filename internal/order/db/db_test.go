package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"ms-station/internal/models"
	"ms-station/internal/order/db"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	bunDB.RegisterModel((*models.BusFacility)(nil))

	ctx := context.Background()
	for _, model := range []interface{}{
		(*models.Facility)(nil), (*models.Bus)(nil), (*models.BusFacility)(nil),
		(*models.Trip)(nil), (*models.Order)(nil), (*models.Ticket)(nil),
	} {
		if _, err := bunDB.NewCreateTable().Model(model).Exec(ctx); err != nil {
			t.Fatalf("Failed to create table for %T: %v", model, err)
		}
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func seedTrip(t *testing.T, bunDB *bun.DB, numSeats int) *models.Trip {
	ctx := context.Background()

	bus := &models.Bus{Info: "test bus", NumSeats: numSeats}
	_, err := bunDB.NewInsert().Model(bus).Exec(ctx)
	require.NoError(t, err)

	trip := &models.Trip{
		Source:      "Kyiv",
		Destination: "Lviv",
		Departure:   time.Date(2026, 9, 1, 8, 30, 0, 0, time.UTC),
		BusID:       bus.ID,
	}
	_, err = bunDB.NewInsert().Model(trip).Exec(ctx)
	require.NoError(t, err)
	return trip
}

func newTickets(tripID int64, seats ...string) []*models.Ticket {
	now := time.Now().UTC()
	tickets := make([]*models.Ticket, 0, len(seats))
	for _, seat := range seats {
		tickets = append(tickets, &models.Ticket{TripID: tripID, Seat: seat, IssuedAt: now})
	}
	return tickets
}

func TestCreateOrderWithTickets(t *testing.T) {
	orderDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	trip := seedTrip(t, bunDB, 40)

	order := &models.Order{UserID: "user-1", CreatedAt: time.Now().UTC()}
	tickets := newTickets(trip.ID, "1A", "1B")

	err := orderDB.CreateOrder(context.Background(), order, tickets)
	assert.NoError(t, err)
	assert.NotZero(t, order.ID)
	for _, ticket := range tickets {
		assert.NotZero(t, ticket.ID)
		assert.Equal(t, order.ID, ticket.OrderID)
	}
}

func TestCreateOrderUnknownTrip(t *testing.T) {
	orderDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	order := &models.Order{UserID: "user-1", CreatedAt: time.Now().UTC()}
	err := orderDB.CreateOrder(context.Background(), order, newTickets(777, "1A"))
	assert.ErrorIs(t, err, db.ErrTripNotFound)
}

func TestCreateOrderCapacity(t *testing.T) {
	orderDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	trip := seedTrip(t, bunDB, 2)

	first := &models.Order{UserID: "user-1", CreatedAt: time.Now().UTC()}
	err := orderDB.CreateOrder(context.Background(), first, newTickets(trip.ID, "1A"))
	require.NoError(t, err)

	// One seat left, two requested
	second := &models.Order{UserID: "user-2", CreatedAt: time.Now().UTC()}
	err = orderDB.CreateOrder(context.Background(), second, newTickets(trip.ID, "1B", "2A"))
	assert.Error(t, err)

	var capErr *db.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, trip.ID, capErr.TripID)
	assert.Equal(t, 1, capErr.Available)

	// The rejected order left nothing behind
	count, err := bunDB.NewSelect().Model((*models.Ticket)(nil)).Count(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCreateOrderSeatTaken(t *testing.T) {
	orderDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	trip := seedTrip(t, bunDB, 40)

	first := &models.Order{UserID: "user-1", CreatedAt: time.Now().UTC()}
	err := orderDB.CreateOrder(context.Background(), first, newTickets(trip.ID, "1A"))
	require.NoError(t, err)

	second := &models.Order{UserID: "user-2", CreatedAt: time.Now().UTC()}
	err = orderDB.CreateOrder(context.Background(), second, newTickets(trip.ID, "1A"))
	assert.Error(t, err)

	var seatErr *db.SeatTakenError
	require.ErrorAs(t, err, &seatErr)
	assert.Equal(t, "1A", seatErr.Seat)
}

func TestCreateOrderDuplicateSeatInPayload(t *testing.T) {
	orderDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	trip := seedTrip(t, bunDB, 40)

	order := &models.Order{UserID: "user-1", CreatedAt: time.Now().UTC()}
	err := orderDB.CreateOrder(context.Background(), order, newTickets(trip.ID, "1A", "1A"))
	assert.Error(t, err)

	var seatErr *db.SeatTakenError
	require.ErrorAs(t, err, &seatErr)
	assert.Equal(t, "1A", seatErr.Seat)

	// Nothing committed
	count, err := bunDB.NewSelect().Model((*models.Ticket)(nil)).Count(context.Background())
	assert.NoError(t, err)
	assert.Zero(t, count)

	// Same seat on different trips is not a duplicate
	other := seedTrip(t, bunDB, 40)
	order = &models.Order{UserID: "user-1", CreatedAt: time.Now().UTC()}
	tickets := newTickets(trip.ID, "1A")
	tickets = append(tickets, newTickets(other.ID, "1A")...)
	err = orderDB.CreateOrder(context.Background(), order, tickets)
	assert.NoError(t, err)
}

func TestGetOrderForUserScoping(t *testing.T) {
	orderDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	trip := seedTrip(t, bunDB, 40)

	order := &models.Order{UserID: "alice", CreatedAt: time.Now().UTC()}
	require.NoError(t, orderDB.CreateOrder(context.Background(), order, newTickets(trip.ID, "1A")))

	stored, err := orderDB.GetOrderForUser(context.Background(), order.ID, "alice")
	assert.NoError(t, err)
	assert.Len(t, stored.Tickets, 1)
	assert.NotNil(t, stored.Tickets[0].Trip)
	assert.NotNil(t, stored.Tickets[0].Trip.Bus)

	// Someone else's order looks exactly like a missing one
	_, err = orderDB.GetOrderForUser(context.Background(), order.ID, "bob")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListOrdersByUser(t *testing.T) {
	orderDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	trip := seedTrip(t, bunDB, 40)

	for i, seat := range []string{"1A", "1B", "1C"} {
		order := &models.Order{
			UserID:    "alice",
			CreatedAt: time.Date(2026, 8, 1, 10, i, 0, 0, time.UTC),
		}
		require.NoError(t, orderDB.CreateOrder(context.Background(), order, newTickets(trip.ID, seat)))
	}
	foreign := &models.Order{UserID: "bob", CreatedAt: time.Now().UTC()}
	require.NoError(t, orderDB.CreateOrder(context.Background(), foreign, newTickets(trip.ID, "9A")))

	count, err := orderDB.CountOrdersByUser(context.Background(), "alice")
	assert.NoError(t, err)
	assert.Equal(t, 3, count)

	orders, err := orderDB.ListOrdersByUser(context.Background(), "alice", 2, 0)
	assert.NoError(t, err)
	assert.Len(t, orders, 2)
	// Newest first
	assert.True(t, orders[0].CreatedAt.After(orders[1].CreatedAt))

	orders, err = orderDB.ListOrdersByUser(context.Background(), "alice", 2, 2)
	assert.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestSetTicketQR(t *testing.T) {
	orderDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	trip := seedTrip(t, bunDB, 40)

	order := &models.Order{UserID: "alice", CreatedAt: time.Now().UTC()}
	tickets := newTickets(trip.ID, "1A")
	require.NoError(t, orderDB.CreateOrder(context.Background(), order, tickets))

	err := orderDB.SetTicketQR(context.Background(), tickets[0].ID, []byte{0x89, 0x50, 0x4e, 0x47})
	assert.NoError(t, err)

	stored, err := orderDB.GetOrderForUser(context.Background(), order.ID, "alice")
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, stored.Tickets[0].QRCode)
}
