package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// LedgerResult mirrors the text values stored in
// telemetry_ingest_ledger.result.
type LedgerResult string

const (
	LedgerOK    LedgerResult = "OK"
	LedgerError LedgerResult = "ERROR"
)

// Ledger provides the dedup probe and the two places a ledger row is
// written (early on unknown plant, or finalized on success).
type Ledger struct {
	pool *Pool
}

func NewLedger(pool *Pool) *Ledger {
	return &Ledger{pool: pool}
}

// Probe reports whether ingestID already has a ledger row. A false
// result with a nil error means no row was found.
func (l *Ledger) Probe(ctx context.Context, ingestID string) (found bool, err error) {
	var result string
	err = l.pool.DB.GetContext(ctx, &result, `SELECT result FROM telemetry_ingest_ledger WHERE ingest_id = $1`, ingestID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: ledger probe: %w", err)
	}
	return true, nil
}

// Insert writes a ledger row unconditionally. Used for the early
// ERROR row on unknown plant; a duplicate insert for the same
// ingest_id is a programming error and will surface as a constraint
// violation.
func (l *Ledger) Insert(ctx context.Context, ingestID, deviceUID, plantID string, timestampNs int64, result LedgerResult) error {
	_, err := l.pool.DB.ExecContext(ctx,
		`INSERT INTO telemetry_ingest_ledger (ingest_id, device_uid, plant_id, timestamp_ns, result)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5)`,
		ingestID, deviceUID, plantID, timestampNs, string(result))
	if err != nil {
		return fmt.Errorf("store: ledger insert: %w", err)
	}
	return nil
}

// Finalize records a successful processing. Idempotent: a crash after
// a prior finalize but before this one returns, if replayed, does not
// produce a second row.
func (l *Ledger) Finalize(ctx context.Context, ingestID, deviceUID, plantID string, timestampNs int64) error {
	_, err := l.pool.DB.ExecContext(ctx,
		`INSERT INTO telemetry_ingest_ledger (ingest_id, device_uid, plant_id, timestamp_ns, result)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		 ON CONFLICT (ingest_id) DO NOTHING`,
		ingestID, deviceUID, plantID, timestampNs, string(LedgerOK))
	if err != nil {
		return fmt.Errorf("store: ledger finalize: %w", err)
	}
	return nil
}
