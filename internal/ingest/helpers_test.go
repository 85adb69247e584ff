package ingest

import (
	"database/sql"

	"github.com/plantwatch/telemetry-pipeline/pkg/telemetry"
)

func sqlNoRows() error { return sql.ErrNoRows }

func messageWithSoilMoisture(seq uint32, timestampNs int64, soilMoisture *float64) telemetry.Message {
	return telemetry.Message{
		Version:      telemetry.SupportedVersion,
		DeviceUID:    "device-001",
		PlantID:      testPlantID,
		Seq:          seq,
		TimestampNs:  timestampNs,
		SoilMoisture: soilMoisture,
	}
}
