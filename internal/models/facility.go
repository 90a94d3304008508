package models

import (
	"github.com/uptrace/bun"
)

type Facility struct {
	bun.BaseModel `bun:"table:facilities"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull,unique" json:"name"`
}

// BusFacility is the join row backing the bus<->facility m2m relation.
// Register it with bun before running relation queries.
type BusFacility struct {
	bun.BaseModel `bun:"table:bus_facilities"`

	BusID      int64     `bun:"bus_id,pk"`
	Bus        *Bus      `bun:"rel:belongs-to,join:bus_id=id"`
	FacilityID int64     `bun:"facility_id,pk"`
	Facility   *Facility `bun:"rel:belongs-to,join:facility_id=id"`
}
