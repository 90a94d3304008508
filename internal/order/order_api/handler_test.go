package order_api_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"ms-station/internal/auth"
	"ms-station/internal/logger"
	"ms-station/internal/models"
	"ms-station/internal/order"
	"ms-station/internal/order/db"
	"ms-station/internal/order/order_api"
)

type testEnv struct {
	router *chi.Mux
	bunDB  *bun.DB
	trip   *models.Trip
}

func setupEnv(t *testing.T) *testEnv {
	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	bunDB.RegisterModel((*models.BusFacility)(nil))

	ctx := context.Background()
	for _, model := range []interface{}{
		(*models.Facility)(nil), (*models.Bus)(nil), (*models.BusFacility)(nil),
		(*models.Trip)(nil), (*models.Order)(nil), (*models.Ticket)(nil),
	} {
		_, err := bunDB.NewCreateTable().Model(model).Exec(ctx)
		require.NoError(t, err)
	}

	bus := &models.Bus{Info: "test bus", NumSeats: 40}
	_, err = bunDB.NewInsert().Model(bus).Exec(ctx)
	require.NoError(t, err)

	trip := &models.Trip{
		Source:      "Kyiv",
		Destination: "Lviv",
		Departure:   time.Date(2026, 9, 1, 8, 30, 0, 0, time.UTC),
		BusID:       bus.ID,
	}
	_, err = bunDB.NewInsert().Model(trip).Exec(ctx)
	require.NoError(t, err)

	svc := order.NewOrderService(&db.DB{Bun: bunDB}, nil, nil, "", nil, &logger.Logger{})
	handler := &order_api.Handler{OrderService: svc, Logger: &logger.Logger{}}

	router := chi.NewRouter()
	router.Get("/api/orders", handler.ListOrders)
	router.Post("/api/orders", handler.PlaceOrder)
	router.Get("/api/orders/{orderId}", handler.GetOrder)

	return &testEnv{router: router, bunDB: bunDB, trip: trip}
}

func (e *testEnv) do(t *testing.T, method, target, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if userID != "" {
		req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: userID}))
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestPlaceOrderEndpoint(t *testing.T) {
	env := setupEnv(t)
	defer env.bunDB.Close()

	rec := env.do(t, http.MethodPost, "/api/orders", "alice",
		`{"tickets":[{"trip":1,"seat":"1A"},{"trip":1,"seat":"1B"}]}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var created order_api.OrderWriteView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "alice", created.UserID)
	assert.Len(t, created.Tickets, 2)
	assert.Equal(t, "1A", created.Tickets[0].Seat)
	assert.Equal(t, env.trip.ID, created.Tickets[0].TripID)
}

func TestPlaceOrderUnauthenticated(t *testing.T) {
	env := setupEnv(t)
	defer env.bunDB.Close()

	rec := env.do(t, http.MethodPost, "/api/orders", "",
		`{"tickets":[{"trip":1,"seat":"1A"}]}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPlaceOrderEmptyTickets(t *testing.T) {
	env := setupEnv(t)
	defer env.bunDB.Close()

	rec := env.do(t, http.MethodPost, "/api/orders", "alice", `{"tickets":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "tickets")
}

func TestPlaceOrderSeatConflict(t *testing.T) {
	env := setupEnv(t)
	defer env.bunDB.Close()

	rec := env.do(t, http.MethodPost, "/api/orders", "alice",
		`{"tickets":[{"trip":1,"seat":"1A"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/orders", "bob",
		`{"tickets":[{"trip":1,"seat":"1A"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already taken")
}

func TestGetOrderCrossUser(t *testing.T) {
	env := setupEnv(t)
	defer env.bunDB.Close()

	rec := env.do(t, http.MethodPost, "/api/orders", "alice",
		`{"tickets":[{"trip":1,"seat":"1A"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created order_api.OrderWriteView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.do(t, http.MethodGet, "/api/orders/1", "alice", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Another user sees 404, not 403
	rec = env.do(t, http.MethodGet, "/api/orders/1", "bob", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListOrdersPagination(t *testing.T) {
	env := setupEnv(t)
	defer env.bunDB.Close()

	seats := []string{"1A", "1B", "1C", "1D", "2A", "2B", "2C"}
	for _, seat := range seats {
		rec := env.do(t, http.MethodPost, "/api/orders", "alice",
			`{"tickets":[{"trip":1,"seat":"`+seat+`"}]}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	// Default page size is 5
	rec := env.do(t, http.MethodGet, "/api/orders", "alice", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var page order_api.PaginatedOrders
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 7, page.Count)
	assert.Equal(t, 5, page.PageSize)
	assert.Len(t, page.Results, 5)

	rec = env.do(t, http.MethodGet, "/api/orders?page=2", "alice", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Results, 2)

	// page_size is clamped to the ceiling
	rec = env.do(t, http.MethodGet, "/api/orders?page_size=500", "alice", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 50, page.PageSize)
	assert.Len(t, page.Results, 7)
}

func TestListOrdersOnlyOwn(t *testing.T) {
	env := setupEnv(t)
	defer env.bunDB.Close()

	rec := env.do(t, http.MethodPost, "/api/orders", "alice",
		`{"tickets":[{"trip":1,"seat":"1A"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/orders", "bob",
		`{"tickets":[{"trip":1,"seat":"1B"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/orders", "bob", "")
	var page order_api.PaginatedOrders
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Count)
	assert.Len(t, page.Results, 1)
	assert.Equal(t, "1B", page.Results[0].Tickets[0].Seat)
}
