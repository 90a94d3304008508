package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Ticket lives only inside an order; there is no standalone ticket endpoint.
type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	ID       int64     `bun:"id,pk,autoincrement" json:"id"`
	TripID   int64     `bun:"trip_id,notnull" json:"trip"`
	Trip     *Trip     `bun:"rel:belongs-to,join:trip_id=id" json:"-"`
	Seat     string    `bun:"seat,notnull" json:"seat"`
	OrderID  int64     `bun:"order_id,notnull" json:"-"`
	QRCode   []byte    `bun:"qr_code" json:"-"`
	IssuedAt time.Time `bun:"issued_at,notnull" json:"issued_at"`
}
