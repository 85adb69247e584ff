package ingest

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantwatch/telemetry-pipeline/internal/bus"
	"github.com/plantwatch/telemetry-pipeline/internal/store"
	"github.com/plantwatch/telemetry-pipeline/pkg/sink"
)

const testPlantID = "11111111-1111-1111-1111-111111111111"
const testPlantTypeID = "22222222-2222-2222-2222-222222222222"

func newTestProcessor(t *testing.T) (*Processor, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "postgres")
	pool := &store.Pool{DB: sqlxDB}

	return &Processor{
		Ledger:     store.NewLedger(pool),
		Plants:     store.NewPlants(pool),
		Thresholds: store.NewThresholds(pool),
		State:      store.NewState(pool),
		Devices:    store.NewDevices(pool),
		Ticker:     store.NewTicker(pool),
		Sink:       sink.NewMemorySink(),
		Bus:        bus.NoopPublisher{},
	}, mock
}

func f(v float64) *float64 { return &v }

func thresholdRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"metric", "warn_min", "warn_max", "crit_min", "crit_max"}).
		AddRow("soil_moisture", 20.0, 80.0, 10.0, 90.0)
}

func expectHappyPathQueries(mock sqlmock.Sqlmock, previousSeverity string) {
	mock.ExpectQuery("SELECT result FROM telemetry_ingest_ledger").
		WillReturnError(sqlNoRows())
	mock.ExpectQuery("SELECT id, plant_type_id FROM plant WHERE id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "plant_type_id"}).AddRow(testPlantID, testPlantTypeID))
	mock.ExpectQuery("SELECT metric, warn_min, warn_max, crit_min, crit_max").
		WillReturnRows(thresholdRows())
	if previousSeverity == "" {
		mock.ExpectQuery("SELECT severity FROM plant_current_state WHERE plant_id").
			WillReturnError(sqlNoRows())
	} else {
		mock.ExpectQuery("SELECT severity FROM plant_current_state WHERE plant_id").
			WillReturnRows(sqlmock.NewRows([]string{"severity"}).AddRow(previousSeverity))
	}
	mock.ExpectExec("INSERT INTO plant_current_state").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE device SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO ticker_event").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO telemetry_ingest_ledger").WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestProcessEnvelope_S1_HappyPathNoTransition(t *testing.T) {
	p, mock := newTestProcessor(t)
	expectHappyPathQueries(mock, "")

	env := Envelope{
		Message: messageWithSoilMoisture(1, 1_700_000_000_000_000_000, f(50)),
	}
	env.IngestID = "s1-ingest-id"

	result, sc := p.ProcessEnvelope(context.Background(), env)

	assert.Equal(t, Ok, result)
	assert.Nil(t, sc)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessEnvelope_S2_WarnEmitsTransition(t *testing.T) {
	p, mock := newTestProcessor(t)
	expectHappyPathQueries(mock, "NORMAL")

	env := Envelope{
		Message: messageWithSoilMoisture(2, 1_700_000_000_100_000_000, f(15)),
	}
	env.IngestID = "s2-ingest-id"

	result, sc := p.ProcessEnvelope(context.Background(), env)

	assert.Equal(t, Ok, result)
	require.NotNil(t, sc)
	assert.Equal(t, "NORMAL", sc.PrevSeverity)
	assert.Equal(t, "WARN", sc.NewSeverity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessEnvelope_S3_Duplicate(t *testing.T) {
	p, mock := newTestProcessor(t)

	mock.ExpectQuery("SELECT result FROM telemetry_ingest_ledger").
		WillReturnRows(sqlmock.NewRows([]string{"result"}).AddRow("OK"))
	mock.ExpectExec("UPDATE device SET").WillReturnResult(sqlmock.NewResult(0, 1))

	env := Envelope{
		Message: messageWithSoilMoisture(2, 1_700_000_000_100_000_000, f(15)),
	}
	env.IngestID = "s2-ingest-id"

	result, sc := p.ProcessEnvelope(context.Background(), env)

	assert.Equal(t, Duplicate, result)
	assert.Nil(t, sc)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessEnvelope_S5_Critical(t *testing.T) {
	p, mock := newTestProcessor(t)
	expectHappyPathQueries(mock, "WARN")

	env := Envelope{
		Message: messageWithSoilMoisture(4, 1_700_000_000_300_000_000, f(5)),
	}
	env.IngestID = "s5-ingest-id"

	result, sc := p.ProcessEnvelope(context.Background(), env)

	assert.Equal(t, Ok, result)
	require.NotNil(t, sc)
	assert.Equal(t, "WARN", sc.PrevSeverity)
	assert.Equal(t, "CRITICAL", sc.NewSeverity)
}

func TestProcessEnvelope_InvalidUUID(t *testing.T) {
	p, _ := newTestProcessor(t)

	env := Envelope{
		Message: messageWithSoilMoisture(1, 1, f(50)),
	}
	env.Message.PlantID = "not-a-uuid"
	env.IngestID = "bad-uuid-ingest-id"

	result, sc := p.ProcessEnvelope(context.Background(), env)

	assert.Equal(t, Error, result)
	assert.Nil(t, sc)
}

func TestProcessEnvelope_UnknownPlant(t *testing.T) {
	p, mock := newTestProcessor(t)

	mock.ExpectQuery("SELECT result FROM telemetry_ingest_ledger").
		WillReturnError(sqlNoRows())
	mock.ExpectQuery("SELECT id, plant_type_id FROM plant WHERE id").
		WillReturnError(sqlNoRows())
	mock.ExpectExec("INSERT INTO telemetry_ingest_ledger").WillReturnResult(sqlmock.NewResult(0, 1))

	env := Envelope{
		Message: messageWithSoilMoisture(1, 1, f(50)),
	}
	env.IngestID = "unknown-plant-ingest-id"

	result, sc := p.ProcessEnvelope(context.Background(), env)

	assert.Equal(t, Error, result)
	assert.Nil(t, sc)
	assert.NoError(t, mock.ExpectationsWereMet())
}
