package store

import (
	"context"
	"fmt"

	"github.com/plantwatch/telemetry-pipeline/pkg/severity"
)

// thresholdRow mirrors plant_type_metric_threshold.
type thresholdRow struct {
	Metric  string   `db:"metric"`
	WarnMin *float64 `db:"warn_min"`
	WarnMax *float64 `db:"warn_max"`
	CritMin *float64 `db:"crit_min"`
	CritMax *float64 `db:"crit_max"`
}

type Thresholds struct {
	pool *Pool
}

func NewThresholds(pool *Pool) *Thresholds {
	return &Thresholds{pool: pool}
}

// LoadForPlantType returns every threshold row for plantTypeID, keyed
// by metric name. A metric with no row evaluates to Normal (the
// caller supplies the zero-value MetricThreshold in that case).
func (t *Thresholds) LoadForPlantType(ctx context.Context, plantTypeID string) (map[string]severity.MetricThreshold, error) {
	var rows []thresholdRow
	err := t.pool.DB.SelectContext(ctx, &rows,
		`SELECT metric, warn_min, warn_max, crit_min, crit_max
		 FROM plant_type_metric_threshold WHERE plant_type_id = $1`, plantTypeID)
	if err != nil {
		return nil, fmt.Errorf("store: load thresholds: %w", err)
	}

	out := make(map[string]severity.MetricThreshold, len(rows))
	for _, r := range rows {
		out[r.Metric] = severity.MetricThreshold{
			Metric:  r.Metric,
			WarnMin: r.WarnMin,
			WarnMax: r.WarnMax,
			CritMin: r.CritMin,
			CritMax: r.CritMax,
		}
	}
	return out, nil
}
