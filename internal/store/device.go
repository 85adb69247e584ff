package store

import (
	"context"
	"fmt"
)

// Device mirrors the device table columns the dashboard façade reads.
type Device struct {
	DeviceUID       string  `db:"device_uid"`
	LastIngestID    *string `db:"last_ingest_id"`
	IsActive        bool    `db:"is_active"`
	FirmwareVersion *string `db:"firmware_version"`
}

type Devices struct {
	pool *Pool
}

func NewDevices(pool *Pool) *Devices {
	return &Devices{pool: pool}
}

// Touch refreshes last_seen_at only, used on the duplicate-envelope
// path (step 2). Best-effort: callers swallow the returned error.
func (d *Devices) Touch(ctx context.Context, deviceUID string) error {
	_, err := d.pool.DB.ExecContext(ctx,
		`UPDATE device SET last_seen_at = NOW() WHERE device_uid = $1`, deviceUID)
	if err != nil {
		return fmt.Errorf("store: device touch: %w", err)
	}
	return nil
}

// Heartbeat refreshes last_seen_at and last_ingest_id, used on the
// successful-processing path (step 10).
func (d *Devices) Heartbeat(ctx context.Context, deviceUID, ingestID string) error {
	_, err := d.pool.DB.ExecContext(ctx,
		`UPDATE device SET last_seen_at = NOW(), last_ingest_id = $2 WHERE device_uid = $1`,
		deviceUID, ingestID)
	if err != nil {
		return fmt.Errorf("store: device heartbeat: %w", err)
	}
	return nil
}

// Get returns one device row, used by the dashboard façade.
func (d *Devices) Get(ctx context.Context, deviceUID string) (Device, error) {
	var row Device
	err := d.pool.DB.GetContext(ctx, &row,
		`SELECT device_uid, last_ingest_id, is_active, firmware_version FROM device WHERE device_uid = $1`, deviceUID)
	if err != nil {
		return Device{}, fmt.Errorf("store: get device: %w", err)
	}
	return row, nil
}
