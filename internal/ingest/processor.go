package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/plantwatch/telemetry-pipeline/internal/bus"
	"github.com/plantwatch/telemetry-pipeline/internal/store"
	"github.com/plantwatch/telemetry-pipeline/pkg/log"
	"github.com/plantwatch/telemetry-pipeline/pkg/severity"
	"github.com/plantwatch/telemetry-pipeline/pkg/sink"
)

// Processor applies the end-to-end ingest algorithm to one envelope
// at a time. It is safe for concurrent use: every method call draws
// its own connection from the shared pool.
type Processor struct {
	Ledger     *store.Ledger
	Plants     *store.Plants
	Thresholds *store.Thresholds
	State      *store.State
	Devices    *store.Devices
	Ticker     *store.Ticker
	Sink       sink.WritePoints
	Bus        bus.Publisher
}

// ProcessEnvelope runs steps 1-13 against one envelope, in order, with
// no concurrency between steps. It returns Ok (with the status change,
// if the plant's severity moved), Duplicate for an envelope already in
// the ledger, or Error; the cause of an Error is logged, not returned.
func (p *Processor) ProcessEnvelope(ctx context.Context, env Envelope) (Result, *bus.StatusChange) {
	msg := env.Message

	// Step 1: validate identity.
	if _, err := uuid.Parse(msg.PlantID); err != nil {
		log.Warnf("ingest: %s: %v", env.IngestID, ErrInvalidUUID)
		return Error, nil
	}

	// Step 2: dedup probe.
	found, err := p.Ledger.Probe(ctx, env.IngestID)
	if err != nil {
		log.Errorf("ingest: %s: ledger probe: %v", env.IngestID, err)
		return Error, nil
	}
	if found {
		if err := p.Devices.Touch(ctx, msg.DeviceUID); err != nil {
			log.Warnf("ingest: %s: device touch on duplicate: %v", env.IngestID, err)
		}
		return Duplicate, nil
	}

	// Step 3: plant lookup.
	plant, err := p.Plants.Lookup(ctx, msg.PlantID)
	if errors.Is(err, store.ErrPlantNotFound) {
		if err := p.Ledger.Insert(ctx, env.IngestID, msg.DeviceUID, msg.PlantID, msg.TimestampNs, store.LedgerError); err != nil {
			log.Errorf("ingest: %s: ledger error-insert: %v", env.IngestID, err)
		}
		log.Warnf("ingest: %s: %v", env.IngestID, ErrUnknownPlant)
		return Error, nil
	}
	if err != nil {
		log.Errorf("ingest: %s: %v", env.IngestID, err)
		return Error, nil
	}

	// Step 4: load thresholds.
	thresholds, err := p.Thresholds.LoadForPlantType(ctx, plant.PlantTypeID)
	if err != nil {
		log.Errorf("ingest: %s: %v", env.IngestID, err)
		return Error, nil
	}

	// Step 5: per-metric severity.
	readings := map[string]*float64{
		"soil_moisture":       msg.SoilMoisture,
		"ambient_light_lux":   msg.AmbientLightLux,
		"ambient_humidity_rh": msg.AmbientHumidityRh,
		"ambient_temp_c":      msg.AmbientTempC,
	}
	metricSeverity := make(map[string]string)
	var severities []severity.Severity
	for metric, value := range readings {
		if value == nil {
			continue
		}
		sev := severity.EvaluateMetric(*value, thresholds[metric])
		metricSeverity[metric] = sev.String()
		severities = append(severities, sev)
	}

	// Step 6: aggregate severity.
	overall := severity.Aggregate(severities)

	// Step 7: previous severity.
	previous, err := p.State.PreviousSeverity(ctx, plant.ID)
	if err != nil {
		log.Errorf("ingest: %s: %v", env.IngestID, err)
		return Error, nil
	}

	// Step 8: time-series write, best effort.
	if msg.SoilMoisture != nil || msg.AmbientLightLux != nil || msg.AmbientHumidityRh != nil || msg.AmbientTempC != nil {
		point := sink.Point{
			Measurement: "plant_telemetry",
			Tags: map[string]string{
				"plant_id":      plant.ID,
				"device_uid":    msg.DeviceUID,
				"plant_type_id": plant.PlantTypeID,
			},
			Fields:      buildFields(readings),
			TimestampNs: msg.TimestampNs,
		}
		if err := p.Sink.WritePoints(ctx, []sink.Point{point}); err != nil {
			log.Warnf("ingest: %s: sink write failed: %v", env.IngestID, err)
		}
	}

	// Step 9: upsert current state.
	if err := p.State.Upsert(ctx, store.UpsertInput{
		PlantID:           plant.ID,
		IngestID:          env.IngestID,
		Severity:          overall,
		MetricSeverity:    metricSeverity,
		SoilMoisture:      msg.SoilMoisture,
		AmbientLightLux:   msg.AmbientLightLux,
		AmbientHumidityRh: msg.AmbientHumidityRh,
		AmbientTempC:      msg.AmbientTempC,
	}); err != nil {
		log.Errorf("ingest: %s: %v", env.IngestID, err)
		return Error, nil
	}

	// Step 10: device heartbeat.
	if err := p.Devices.Heartbeat(ctx, msg.DeviceUID, env.IngestID); err != nil {
		log.Errorf("ingest: %s: %v", env.IngestID, err)
		return Error, nil
	}

	// Step 11: ticker event. Not idempotent under crash-then-replay
	// since the ledger row isn't written until step 13 — an accepted
	// weakness, see spec decision OQ-1.
	message := fmt.Sprintf("Plant %s reading: severity=%s", plant.ID, overall.String())
	if err := p.Ticker.Insert(ctx, plant.ID, msg.DeviceUID, overall.String(), message, env.IngestID); err != nil {
		log.Errorf("ingest: %s: %v", env.IngestID, err)
		return Error, nil
	}

	// Step 12: status-change detection and publish, best effort.
	var statusChange *bus.StatusChange
	if overall != previous {
		sc := bus.NewStatusChange(plant.ID, previous, overall, msg.TimestampNs)
		bus.Publish(p.Bus, sc)
		statusChange = &sc
	}

	// Step 13: finalize ledger.
	if err := p.Ledger.Finalize(ctx, env.IngestID, msg.DeviceUID, msg.PlantID, msg.TimestampNs); err != nil {
		log.Errorf("ingest: %s: %v", env.IngestID, err)
		return Error, nil
	}

	return Ok, statusChange
}

func buildFields(readings map[string]*float64) map[string]float64 {
	fields := make(map[string]float64, len(readings))
	for name, value := range readings {
		if value != nil {
			fields[name] = *value
		}
	}
	return fields
}

// ProcessBatch applies ProcessEnvelope to every item in envelopes,
// independently: one item's error never affects its peers.
func (p *Processor) ProcessBatch(ctx context.Context, envelopes []Envelope) BatchOutcome {
	outcome := BatchOutcome{
		Results:       make([]ItemResult, len(envelopes)),
		StatusChanges: nil,
	}
	for i, env := range envelopes {
		result, sc := p.ProcessEnvelope(ctx, env)
		item := ItemResult{IngestID: env.IngestID, Result: result}
		if result == Error {
			item.Error = "processing failed, see server logs"
		}
		outcome.Results[i] = item
		if sc != nil {
			outcome.StatusChanges = append(outcome.StatusChanges, *sc)
		}
	}
	return outcome
}
