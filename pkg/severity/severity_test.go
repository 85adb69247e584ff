package severity

import "testing"

import "github.com/stretchr/testify/assert"

func f(v float64) *float64 { return &v }

func thresh(warnMin, warnMax, critMin, critMax *float64) MetricThreshold {
	return MetricThreshold{Metric: "test", WarnMin: warnMin, WarnMax: warnMax, CritMin: critMin, CritMax: critMax}
}

func TestEvaluateMetric(t *testing.T) {
	full := thresh(f(20), f(80), f(10), f(90))

	cases := []struct {
		name  string
		value float64
		t     MetricThreshold
		want  Severity
	}{
		{"within warn band", 50, full, Normal},
		{"below warn min", 15, full, Warn},
		{"above warn max", 85, full, Warn},
		{"below crit min", 5, full, Critical},
		{"above crit max", 95, full, Critical},
		{"equal to warn min is inside", 20, full, Normal},
		{"equal to warn max is inside", 80, full, Normal},
		{"equal to crit min is inside", 10, full, Normal},
		{"equal to crit max is inside", 90, full, Normal},
		{"no crit bounds never critical", 5, thresh(f(20), f(80), nil, nil), Warn},
		{"no bounds always normal low", 0, thresh(nil, nil, nil, nil), Normal},
		{"no bounds always normal high", 100, thresh(nil, nil, nil, nil), Normal},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, EvaluateMetric(c.value, c.t))
		})
	}
}

func TestAggregate(t *testing.T) {
	assert.Equal(t, Critical, Aggregate([]Severity{Normal, Critical, Warn}))
	assert.Equal(t, Warn, Aggregate([]Severity{Normal, Warn, Normal}))
	assert.Equal(t, Normal, Aggregate([]Severity{Normal, Normal}))
	assert.Equal(t, Normal, Aggregate(nil))
}

func TestSeverityStringRoundTrip(t *testing.T) {
	for _, s := range []Severity{Normal, Warn, Critical} {
		assert.Equal(t, s, Parse(s.String()))
	}
	assert.Equal(t, Normal, Parse("garbage"))
}

func TestMonotoneDistanceFromWarnBand(t *testing.T) {
	// For fully nested thresholds, moving further outside the warn
	// band never decreases severity.
	full := thresh(f(20), f(80), f(10), f(90))
	values := []float64{50, 19, 15, 9, 5}
	prev := Normal
	for i, v := range values {
		got := EvaluateMetric(v, full)
		if i > 0 {
			assert.GreaterOrEqual(t, int(got), int(prev))
		}
		prev = got
	}
}
