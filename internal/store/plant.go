package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Plant is the lookup row needed to resolve a plant's threshold set.
type Plant struct {
	ID          string `db:"id"`
	PlantTypeID string `db:"plant_type_id"`
}

// ErrPlantNotFound is returned by Plants.Lookup when no active plant
// matches the given id.
var ErrPlantNotFound = errors.New("store: plant not found or inactive")

type Plants struct {
	pool *Pool
}

func NewPlants(pool *Pool) *Plants {
	return &Plants{pool: pool}
}

// Lookup returns the active plant row for id, or ErrPlantNotFound.
func (p *Plants) Lookup(ctx context.Context, id string) (Plant, error) {
	var plant Plant
	err := p.pool.DB.GetContext(ctx, &plant,
		`SELECT id, plant_type_id FROM plant WHERE id = $1 AND is_active`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Plant{}, ErrPlantNotFound
	}
	if err != nil {
		return Plant{}, fmt.Errorf("store: plant lookup: %w", err)
	}
	return plant, nil
}
