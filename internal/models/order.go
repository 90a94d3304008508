package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID    string    `bun:"user_id,notnull" json:"user_id"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	Tickets   []*Ticket `bun:"rel:has-many,join:id=order_id" json:"tickets,omitempty"`
}

// OrderRequest is the create payload. Any client-supplied owner is ignored;
// the order is always stamped with the authenticated user.
type OrderRequest struct {
	Tickets []TicketRequest `json:"tickets"`
}

type TicketRequest struct {
	TripID int64  `json:"trip"`
	Seat   string `json:"seat"`
}
