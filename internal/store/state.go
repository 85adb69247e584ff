package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/plantwatch/telemetry-pipeline/pkg/severity"
)

// CurrentState mirrors plant_current_state.
type CurrentState struct {
	PlantID           string          `db:"plant_id"`
	Severity          string          `db:"severity"`
	SoilMoisture      *float64        `db:"soil_moisture"`
	AmbientLightLux   *float64        `db:"ambient_light_lux"`
	AmbientHumidityRh *float64        `db:"ambient_humidity_rh"`
	AmbientTempC      *float64        `db:"ambient_temp_c"`
	MetricSeverity    json.RawMessage `db:"metric_severity"`
}

type State struct {
	pool *Pool
}

func NewState(pool *Pool) *State {
	return &State{pool: pool}
}

// PreviousSeverity returns the plant's current severity, defaulting
// to Normal if no row exists yet.
func (s *State) PreviousSeverity(ctx context.Context, plantID string) (severity.Severity, error) {
	var sev string
	err := s.pool.DB.GetContext(ctx, &sev, `SELECT severity FROM plant_current_state WHERE plant_id = $1`, plantID)
	if errors.Is(err, sql.ErrNoRows) {
		return severity.Normal, nil
	}
	if err != nil {
		return severity.Normal, fmt.Errorf("store: read previous severity: %w", err)
	}
	return severity.Parse(sev), nil
}

// UpsertInput carries the per-envelope values for the COALESCE
// upsert. Readings left nil are preserved from the existing row.
type UpsertInput struct {
	PlantID           string
	IngestID          string
	Severity          severity.Severity
	MetricSeverity    map[string]string
	SoilMoisture      *float64
	AmbientLightLux   *float64
	AmbientHumidityRh *float64
	AmbientTempC      *float64
}

// Upsert applies step 9 of the ingest algorithm: insert a fresh row,
// or on conflict overwrite updated_at/last_ingest_id/severity/
// metric_severity and COALESCE each reading column so a null reading
// never erases a previously stored value.
func (s *State) Upsert(ctx context.Context, in UpsertInput) error {
	metricSeverityJSON, err := json.Marshal(in.MetricSeverity)
	if err != nil {
		return fmt.Errorf("store: marshal metric_severity: %w", err)
	}

	_, err = s.pool.DB.ExecContext(ctx, `
		INSERT INTO plant_current_state (
			plant_id, updated_at, last_ingest_id, severity,
			soil_moisture, ambient_light_lux, ambient_humidity_rh, ambient_temp_c,
			metric_severity
		) VALUES ($1, NOW(), $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (plant_id) DO UPDATE SET
			updated_at = NOW(),
			last_ingest_id = EXCLUDED.last_ingest_id,
			severity = EXCLUDED.severity,
			metric_severity = EXCLUDED.metric_severity,
			soil_moisture = COALESCE(EXCLUDED.soil_moisture, plant_current_state.soil_moisture),
			ambient_light_lux = COALESCE(EXCLUDED.ambient_light_lux, plant_current_state.ambient_light_lux),
			ambient_humidity_rh = COALESCE(EXCLUDED.ambient_humidity_rh, plant_current_state.ambient_humidity_rh),
			ambient_temp_c = COALESCE(EXCLUDED.ambient_temp_c, plant_current_state.ambient_temp_c)
		`,
		in.PlantID, in.IngestID, in.Severity.String(),
		in.SoilMoisture, in.AmbientLightLux, in.AmbientHumidityRh, in.AmbientTempC,
		metricSeverityJSON)
	if err != nil {
		return fmt.Errorf("store: upsert current state: %w", err)
	}
	return nil
}

// Get returns the full current-state row, used by the dashboard façade.
func (s *State) Get(ctx context.Context, plantID string) (CurrentState, error) {
	var row CurrentState
	err := s.pool.DB.GetContext(ctx, &row, `SELECT plant_id, severity, soil_moisture, ambient_light_lux,
		ambient_humidity_rh, ambient_temp_c, metric_severity FROM plant_current_state WHERE plant_id = $1`, plantID)
	if err != nil {
		return CurrentState{}, fmt.Errorf("store: get current state: %w", err)
	}
	return row, nil
}
