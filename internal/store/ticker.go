package store

import (
	"context"
	"encoding/json"
	"fmt"
)

type Ticker struct {
	pool *Pool
}

func NewTicker(pool *Pool) *Ticker {
	return &Ticker{pool: pool}
}

// Insert records a ticker_event row. Not idempotent under crash-then-
// replay (the ledger row for this envelope may not exist yet) —
// accepted weakness, see the ingest processor's step 11 comment.
func (t *Ticker) Insert(ctx context.Context, plantID, deviceUID, severity, message string, ingestID string) error {
	payload, err := json.Marshal(map[string]string{"ingest_id": ingestID})
	if err != nil {
		return fmt.Errorf("store: marshal ticker payload: %w", err)
	}

	_, err = t.pool.DB.ExecContext(ctx, `
		INSERT INTO ticker_event (occurred_at, plant_id, device_uid, severity, message, payload)
		VALUES (NOW(), $1, $2, $3, $4, $5)`,
		plantID, deviceUID, severity, message, payload)
	if err != nil {
		return fmt.Errorf("store: insert ticker event: %w", err)
	}
	return nil
}

// TickerEvent is the row shape the dashboard façade reads back.
type TickerEvent struct {
	ID         int64           `db:"id"`
	OccurredAt string          `db:"occurred_at"`
	PlantID    *string         `db:"plant_id"`
	DeviceUID  *string         `db:"device_uid"`
	Severity   string          `db:"severity"`
	Message    string          `db:"message"`
	Payload    json.RawMessage `db:"payload"`
}

// Recent returns the limit most recent ticker rows, newest first.
func (t *Ticker) Recent(ctx context.Context, limit int) ([]TickerEvent, error) {
	var rows []TickerEvent
	err := t.pool.DB.SelectContext(ctx, &rows,
		`SELECT id, occurred_at, plant_id, device_uid, severity, message, payload
		 FROM ticker_event ORDER BY occurred_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: recent ticker events: %w", err)
	}
	return rows, nil
}
