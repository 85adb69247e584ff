// Command supervisor hosts the Ingest Processor behind the Ingest RPC:
// it owns the PostgreSQL pool, the time-series sink, and the
// status-change bus publisher.
package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/plantwatch/telemetry-pipeline/internal/api"
	"github.com/plantwatch/telemetry-pipeline/internal/bus"
	"github.com/plantwatch/telemetry-pipeline/internal/config"
	"github.com/plantwatch/telemetry-pipeline/internal/ingest"
	"github.com/plantwatch/telemetry-pipeline/internal/runtimeenv"
	"github.com/plantwatch/telemetry-pipeline/internal/store"
	"github.com/plantwatch/telemetry-pipeline/pkg/log"
	"github.com/plantwatch/telemetry-pipeline/pkg/sink"
)

func main() {
	if err := runtimeenv.LoadEnv("./.env"); err != nil {
		log.Warnf("supervisor: .env load: %v", err)
	}

	cfg := config.LoadSupervisorConfig()
	log.SetLogLevel(cfg.LogLevel)

	if cfg.DatabaseURL == "" {
		log.Fatal("supervisor: DATABASE_URL is required")
	}
	if err := store.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("supervisor: %v", err)
	}
	pool := store.GetPool()

	var pointSink sink.WritePoints
	if cfg.InfluxURL != "" {
		influx := sink.NewInfluxSink(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
		defer influx.Close()
		pointSink = influx
	} else {
		log.Warn("supervisor: INFLUXDB_URL not set, using in-memory sink")
		pointSink = sink.NewMemorySink()
	}

	var publisher bus.Publisher = bus.NoopPublisher{}
	if cfg.NatsURL != "" {
		client, err := bus.Connect(cfg.NatsURL)
		if err != nil {
			log.Warnf("supervisor: %v, status changes will not be published", err)
		} else {
			defer client.Close()
			publisher = client
		}
	} else {
		log.Warn("supervisor: NATS_URL not set, status changes will not be published")
	}

	processor := &ingest.Processor{
		Ledger:     store.NewLedger(pool),
		Plants:     store.NewPlants(pool),
		Thresholds: store.NewThresholds(pool),
		State:      store.NewState(pool),
		Devices:    store.NewDevices(pool),
		Ticker:     store.NewTicker(pool),
		Sink:       pointSink,
		Bus:        publisher,
	}

	router := mux.NewRouter()
	(&api.IngestHandler{Processor: processor}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	ctx, stop := runtimeenv.WithShutdownSignal()
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info("supervisor: shutting down")
		srv.Close()
	}()

	log.Infof("supervisor: listening on %s", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("supervisor: %v", err)
	}
}
