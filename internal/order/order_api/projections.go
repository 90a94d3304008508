package order_api

import (
	"encoding/base64"
	"time"

	"ms-station/internal/models"
)

// Orders have two read projections (the list rows skip QR payloads,
// the detail view includes them) and a write projection echoing the
// created aggregate.

type PaginatedOrders struct {
	Count    int             `json:"count"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	Results  []OrderListView `json:"results"`
}

type OrderListView struct {
	ID        int64            `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Tickets   []TicketListView `json:"tickets"`
}

type TicketListView struct {
	ID   int64    `json:"id"`
	Seat string   `json:"seat"`
	Trip TripView `json:"trip"`
}

type TripView struct {
	ID          int64     `json:"id"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Departure   time.Time `json:"departure"`
	Bus         BusView   `json:"bus"`
}

type BusView struct {
	ID       int64  `json:"id"`
	Info     string `json:"info,omitempty"`
	NumSeats int    `json:"num_seats"`
}

type OrderDetailView struct {
	ID        int64              `json:"id"`
	UserID    string             `json:"user_id"`
	CreatedAt time.Time          `json:"created_at"`
	Tickets   []TicketDetailView `json:"tickets"`
}

type TicketDetailView struct {
	ID     int64    `json:"id"`
	Seat   string   `json:"seat"`
	Trip   TripView `json:"trip"`
	QRCode string   `json:"qr_code,omitempty"`
}

type OrderWriteView struct {
	ID        int64             `json:"id"`
	UserID    string            `json:"user_id"`
	CreatedAt time.Time         `json:"created_at"`
	Tickets   []TicketWriteView `json:"tickets"`
}

type TicketWriteView struct {
	ID     int64  `json:"id"`
	TripID int64  `json:"trip"`
	Seat   string `json:"seat"`
}

func toTripView(trip *models.Trip) TripView {
	if trip == nil {
		return TripView{}
	}
	view := TripView{
		ID:          trip.ID,
		Source:      trip.Source,
		Destination: trip.Destination,
		Departure:   trip.Departure,
	}
	if trip.Bus != nil {
		view.Bus = BusView{
			ID:       trip.Bus.ID,
			Info:     trip.Bus.Info,
			NumSeats: trip.Bus.NumSeats,
		}
	}
	return view
}

func toListView(order models.Order) OrderListView {
	view := OrderListView{
		ID:        order.ID,
		CreatedAt: order.CreatedAt,
		Tickets:   make([]TicketListView, 0, len(order.Tickets)),
	}
	for _, t := range order.Tickets {
		view.Tickets = append(view.Tickets, TicketListView{
			ID:   t.ID,
			Seat: t.Seat,
			Trip: toTripView(t.Trip),
		})
	}
	return view
}

func toDetailView(order models.Order) OrderDetailView {
	view := OrderDetailView{
		ID:        order.ID,
		UserID:    order.UserID,
		CreatedAt: order.CreatedAt,
		Tickets:   make([]TicketDetailView, 0, len(order.Tickets)),
	}
	for _, t := range order.Tickets {
		ticket := TicketDetailView{
			ID:   t.ID,
			Seat: t.Seat,
			Trip: toTripView(t.Trip),
		}
		if len(t.QRCode) > 0 {
			ticket.QRCode = base64.StdEncoding.EncodeToString(t.QRCode)
		}
		view.Tickets = append(view.Tickets, ticket)
	}
	return view
}

func toWriteView(order models.Order) OrderWriteView {
	view := OrderWriteView{
		ID:        order.ID,
		UserID:    order.UserID,
		CreatedAt: order.CreatedAt,
		Tickets:   make([]TicketWriteView, 0, len(order.Tickets)),
	}
	for _, t := range order.Tickets {
		view.Tickets = append(view.Tickets, TicketWriteView{
			ID:     t.ID,
			TripID: t.TripID,
			Seat:   t.Seat,
		})
	}
	return view
}
