package db

import (
	"context"

	"github.com/uptrace/bun"

	"ms-station/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// ListFacilities → fetch every facility ordered by id
func (d *DB) ListFacilities(ctx context.Context) ([]models.Facility, error) {
	var facilities []models.Facility
	err := d.Bun.NewSelect().
		Model(&facilities).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return facilities, nil
}

// CreateFacility → insert a new facility, filling in its id
func (d *DB) CreateFacility(ctx context.Context, facility *models.Facility) error {
	_, err := d.Bun.NewInsert().Model(facility).Exec(ctx)
	return err
}
