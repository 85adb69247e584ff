// Package config loads the environment-variable-driven configuration
// for each binary, per SPEC_FULL §6's variable table.
package config

import (
	"os"
	"strconv"
)

// RouterConfig configures cmd/router.
type RouterConfig struct {
	UDPAddr        string
	SupervisorAddr string
	BatchSize      int
	LogLevel       string
}

// SupervisorConfig configures cmd/supervisor.
type SupervisorConfig struct {
	HTTPAddr     string
	DatabaseURL  string
	NatsURL      string
	InfluxURL    string
	InfluxOrg    string
	InfluxToken  string
	InfluxBucket string
	LogLevel     string
}

// DashboardConfig configures cmd/dashboard.
type DashboardConfig struct {
	HTTPAddr     string
	DatabaseURL  string
	InfluxURL    string
	InfluxOrg    string
	InfluxToken  string
	InfluxBucket string
	LogLevel     string
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func LoadRouterConfig() RouterConfig {
	return RouterConfig{
		UDPAddr:        getenv("ROUTER_UDP_ADDR", "0.0.0.0:7000"),
		SupervisorAddr: getenv("SUPERVISOR_ADDR", "http://localhost:8090"),
		BatchSize:      atoiOrDefault(os.Getenv("ROUTER_BATCH_SIZE"), 64),
		LogLevel:       getenv("ROUTER_LOG_LEVEL", "info"),
	}
}

func LoadSupervisorConfig() SupervisorConfig {
	return SupervisorConfig{
		HTTPAddr:     getenv("SUPERVISOR_HTTP_ADDR", "0.0.0.0:8090"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		NatsURL:      os.Getenv("NATS_URL"),
		InfluxURL:    os.Getenv("INFLUXDB_URL"),
		InfluxOrg:    os.Getenv("INFLUXDB_ORG"),
		InfluxToken:  os.Getenv("INFLUXDB_TOKEN"),
		InfluxBucket: os.Getenv("INFLUXDB_BUCKET"),
		LogLevel:     getenv("SUPERVISOR_LOG_LEVEL", "info"),
	}
}

func LoadDashboardConfig() DashboardConfig {
	return DashboardConfig{
		HTTPAddr:     getenv("DASHBOARD_HTTP_ADDR", "0.0.0.0:8091"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		InfluxURL:    os.Getenv("INFLUXDB_URL"),
		InfluxOrg:    os.Getenv("INFLUXDB_ORG"),
		InfluxToken:  os.Getenv("INFLUXDB_TOKEN"),
		InfluxBucket: os.Getenv("INFLUXDB_BUCKET"),
		LogLevel:     getenv("DASHBOARD_LOG_LEVEL", "info"),
	}
}

func atoiOrDefault(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
