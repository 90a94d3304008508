package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Trip struct {
	bun.BaseModel `bun:"table:trips"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	Source      string    `bun:"source,notnull" json:"source"`
	Destination string    `bun:"destination,notnull" json:"destination"`
	Departure   time.Time `bun:"departure,notnull" json:"departure"`
	BusID       int64     `bun:"bus_id,notnull" json:"bus_id"`
	Bus         *Bus      `bun:"rel:belongs-to,join:bus_id=id" json:"bus,omitempty"`
	Tickets     []*Ticket `bun:"rel:has-many,join:id=trip_id" json:"-"`

	// Filled by the availability aggregate on list/retrieve, never stored.
	TicketsAvailable int `bun:"tickets_available,scanonly" json:"tickets_available,omitempty"`
}

// TripRequest is the write payload for creating or updating a trip.
type TripRequest struct {
	Source      string     `json:"source"`
	Destination string     `json:"destination"`
	Departure   *time.Time `json:"departure"`
	BusID       *int64     `json:"bus_id"`
}
