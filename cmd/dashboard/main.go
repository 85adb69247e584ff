// Command dashboard hosts the thin read/CRUD HTTP façade over the
// relational store, the out-of-scope collaborator described in
// SPEC_FULL §4.7.
package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/plantwatch/telemetry-pipeline/internal/api"
	"github.com/plantwatch/telemetry-pipeline/internal/config"
	"github.com/plantwatch/telemetry-pipeline/internal/runtimeenv"
	"github.com/plantwatch/telemetry-pipeline/internal/store"
	"github.com/plantwatch/telemetry-pipeline/pkg/log"
	"github.com/plantwatch/telemetry-pipeline/pkg/sink"
)

func main() {
	if err := runtimeenv.LoadEnv("./.env"); err != nil {
		log.Warnf("dashboard: .env load: %v", err)
	}

	cfg := config.LoadDashboardConfig()
	log.SetLogLevel(cfg.LogLevel)

	if cfg.DatabaseURL == "" {
		log.Fatal("dashboard: DATABASE_URL is required")
	}
	if err := store.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("dashboard: %v", err)
	}
	pool := store.GetPool()

	var pointSink sink.WritePoints
	if cfg.InfluxURL != "" {
		influx := sink.NewInfluxSink(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
		defer influx.Close()
		pointSink = influx
	} else {
		pointSink = sink.NewMemorySink()
	}

	handler := &api.DashboardHandler{
		State:   store.NewState(pool),
		Ticker:  store.NewTicker(pool),
		Devices: store.NewDevices(pool),
		CRUD:    store.NewCRUD(pool),
		Sink:    pointSink,
	}

	router := mux.NewRouter()
	handler.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	ctx, stop := runtimeenv.WithShutdownSignal()
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info("dashboard: shutting down")
		srv.Close()
	}()

	log.Infof("dashboard: listening on %s", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("dashboard: %v", err)
	}
}
