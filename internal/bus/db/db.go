package db

import (
	"context"

	"github.com/uptrace/bun"

	"ms-station/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// ListBuses → fetch buses with their facilities eagerly attached.
// A non-empty facilityIDs restricts results to buses having at least
// one of the given facilities (deduplicated).
func (d *DB) ListBuses(ctx context.Context, facilityIDs []int64) ([]models.Bus, error) {
	var buses []models.Bus
	q := d.Bun.NewSelect().
		Model(&buses).
		Relation("Facilities").
		Order("bus.id ASC")

	if len(facilityIDs) > 0 {
		q = q.Distinct().
			Join("JOIN bus_facilities AS bf ON bf.bus_id = bus.id").
			Where("bf.facility_id IN (?)", bun.In(facilityIDs))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return buses, nil
}

// GetBusByID → fetch one bus with attached facilities
func (d *DB) GetBusByID(ctx context.Context, id int64) (*models.Bus, error) {
	var bus models.Bus
	err := d.Bun.NewSelect().
		Model(&bus).
		Relation("Facilities").
		Where("bus.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &bus, nil
}

// CreateBus → insert a bus and its facility links in one transaction
func (d *DB) CreateBus(ctx context.Context, bus *models.Bus, facilityIDs []int64) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(bus).Exec(ctx); err != nil {
			return err
		}

		for _, fid := range facilityIDs {
			link := models.BusFacility{BusID: bus.ID, FacilityID: fid}
			if _, err := tx.NewInsert().Model(&link).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// CountFacilities → how many of the given facility ids actually exist
func (d *DB) CountFacilities(ctx context.Context, facilityIDs []int64) (int, error) {
	if len(facilityIDs) == 0 {
		return 0, nil
	}
	return d.Bun.NewSelect().
		Model((*models.Facility)(nil)).
		Where("id IN (?)", bun.In(facilityIDs)).
		Count(ctx)
}

// UpdateBusImage → replace the stored image path for a bus
func (d *DB) UpdateBusImage(ctx context.Context, id int64, imagePath string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Bus)(nil)).
		Set("image_path = ?", imagePath).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
