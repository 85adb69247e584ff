// Command router binds the UDP socket devices send telemetry to,
// decodes and fingerprints each datagram, and forwards size/time
// bounded batches to the supervisor's Ingest RPC.
package main

import (
	"github.com/plantwatch/telemetry-pipeline/internal/config"
	"github.com/plantwatch/telemetry-pipeline/internal/router"
	"github.com/plantwatch/telemetry-pipeline/internal/runtimeenv"
	"github.com/plantwatch/telemetry-pipeline/pkg/log"
)

func main() {
	if err := runtimeenv.LoadEnv("./.env"); err != nil {
		log.Warnf("router: .env load: %v", err)
	}

	cfg := config.LoadRouterConfig()
	log.SetLogLevel(cfg.LogLevel)

	receiver, err := router.NewReceiver(cfg.UDPAddr)
	if err != nil {
		log.Fatalf("router: bind %s: %v", cfg.UDPAddr, err)
	}
	defer receiver.Close()

	forwarder := router.NewHTTPForwarder(cfg.SupervisorAddr + "/v1/ingest")
	batcher := router.NewBatcher(receiver.Queue(), forwarder, cfg.BatchSize)

	ctx, stop := runtimeenv.WithShutdownSignal()
	defer stop()

	go batcher.Run(ctx)

	go func() {
		<-ctx.Done()
		log.Info("router: shutting down")
		receiver.Close()
	}()

	log.Infof("router: listening on %s, forwarding to %s", cfg.UDPAddr, cfg.SupervisorAddr)
	if err := receiver.Run(ctx); err != nil && ctx.Err() == nil {
		log.Errorf("router: receiver stopped: %v", err)
	}
}
