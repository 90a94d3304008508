package trip_api

import (
	"time"

	"ms-station/internal/models"
)

// Fixed projections per operation kind: the list row carries only the
// bus reference, the detail view expands the bus in full and names the
// seats already taken, the write view echoes the persisted fields.

type TripListView struct {
	ID               int64     `json:"id"`
	Source           string    `json:"source"`
	Destination      string    `json:"destination"`
	Departure        time.Time `json:"departure"`
	BusID            int64     `json:"bus_id"`
	TicketsAvailable int       `json:"tickets_available"`
}

type TripDetailView struct {
	ID               int64     `json:"id"`
	Source           string    `json:"source"`
	Destination      string    `json:"destination"`
	Departure        time.Time `json:"departure"`
	Bus              BusView   `json:"bus"`
	TicketsAvailable int       `json:"tickets_available"`
	TakenSeats       []string  `json:"taken_seats"`
}

type BusView struct {
	ID         int64             `json:"id"`
	Info       string            `json:"info,omitempty"`
	NumSeats   int               `json:"num_seats"`
	Image      string            `json:"image,omitempty"`
	Facilities []models.Facility `json:"facilities"`
}

type TripWriteView struct {
	ID          int64     `json:"id"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Departure   time.Time `json:"departure"`
	BusID       int64     `json:"bus_id"`
}

func toListView(trip models.Trip) TripListView {
	return TripListView{
		ID:               trip.ID,
		Source:           trip.Source,
		Destination:      trip.Destination,
		Departure:        trip.Departure,
		BusID:            trip.BusID,
		TicketsAvailable: trip.TicketsAvailable,
	}
}

func toDetailView(trip models.Trip) TripDetailView {
	view := TripDetailView{
		ID:               trip.ID,
		Source:           trip.Source,
		Destination:      trip.Destination,
		Departure:        trip.Departure,
		TicketsAvailable: trip.TicketsAvailable,
		TakenSeats:       make([]string, 0, len(trip.Tickets)),
	}

	for _, t := range trip.Tickets {
		view.TakenSeats = append(view.TakenSeats, t.Seat)
	}

	if trip.Bus != nil {
		facilities := make([]models.Facility, 0, len(trip.Bus.Facilities))
		for _, f := range trip.Bus.Facilities {
			facilities = append(facilities, *f)
		}
		view.Bus = BusView{
			ID:         trip.Bus.ID,
			Info:       trip.Bus.Info,
			NumSeats:   trip.Bus.NumSeats,
			Image:      trip.Bus.ImagePath,
			Facilities: facilities,
		}
	}
	return view
}

func toWriteView(trip models.Trip) TripWriteView {
	return TripWriteView{
		ID:          trip.ID,
		Source:      trip.Source,
		Destination: trip.Destination,
		Departure:   trip.Departure,
		BusID:       trip.BusID,
	}
}
