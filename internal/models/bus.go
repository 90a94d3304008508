package models

import (
	"github.com/uptrace/bun"
)

type Bus struct {
	bun.BaseModel `bun:"table:buses"`

	ID         int64       `bun:"id,pk,autoincrement" json:"id"`
	Info       string      `bun:"info,nullzero" json:"info,omitempty"`
	NumSeats   int         `bun:"num_seats,notnull" json:"num_seats"`
	ImagePath  string      `bun:"image_path,nullzero" json:"image,omitempty"`
	Facilities []*Facility `bun:"m2m:bus_facilities,join:Bus=Facility" json:"facilities,omitempty"`
}

// BusRequest is the write payload for creating or updating a bus.
// NumSeats is a pointer so a missing field can be told apart from zero.
type BusRequest struct {
	Info       string  `json:"info"`
	NumSeats   *int    `json:"num_seats"`
	Facilities []int64 `json:"facilities"`
}
