package bus_api

import (
	"ms-station/internal/models"
)

// The three output shapes for buses, fixed per operation kind:
// list rows stay light (facility names only), the detail view carries
// full facility objects and the image, the write view echoes what was
// persisted.

type BusListView struct {
	ID         int64    `json:"id"`
	Info       string   `json:"info,omitempty"`
	NumSeats   int      `json:"num_seats"`
	Facilities []string `json:"facilities"`
}

type BusDetailView struct {
	ID         int64             `json:"id"`
	Info       string            `json:"info,omitempty"`
	NumSeats   int               `json:"num_seats"`
	Image      string            `json:"image,omitempty"`
	Facilities []models.Facility `json:"facilities"`
}

type BusWriteView struct {
	ID         int64   `json:"id"`
	Info       string  `json:"info,omitempty"`
	NumSeats   int     `json:"num_seats"`
	Facilities []int64 `json:"facilities"`
}

func toListView(bus models.Bus) BusListView {
	names := make([]string, 0, len(bus.Facilities))
	for _, f := range bus.Facilities {
		names = append(names, f.Name)
	}
	return BusListView{
		ID:         bus.ID,
		Info:       bus.Info,
		NumSeats:   bus.NumSeats,
		Facilities: names,
	}
}

func toDetailView(bus models.Bus) BusDetailView {
	facilities := make([]models.Facility, 0, len(bus.Facilities))
	for _, f := range bus.Facilities {
		facilities = append(facilities, *f)
	}
	return BusDetailView{
		ID:         bus.ID,
		Info:       bus.Info,
		NumSeats:   bus.NumSeats,
		Image:      bus.ImagePath,
		Facilities: facilities,
	}
}

func toWriteView(bus models.Bus) BusWriteView {
	ids := make([]int64, 0, len(bus.Facilities))
	for _, f := range bus.Facilities {
		ids = append(ids, f.ID)
	}
	return BusWriteView{
		ID:         bus.ID,
		Info:       bus.Info,
		NumSeats:   bus.NumSeats,
		Facilities: ids,
	}
}
