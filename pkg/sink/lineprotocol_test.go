package sink

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildLineOmitsTimestampWhenZero(t *testing.T) {
	line := BuildLine(Point{
		Measurement: "plant_telemetry",
		Fields:      map[string]float64{"soil_moisture": 50},
	})
	assert.Equal(t, "plant_telemetry soil_moisture=50", line)
}

func TestBuildLineIncludesTimestampWhenNonZero(t *testing.T) {
	line := BuildLine(Point{
		Measurement: "plant_telemetry",
		Fields:      map[string]float64{"soil_moisture": 50},
		TimestampNs: 1_700_000_000_000_000_000,
	})
	assert.Equal(t, "plant_telemetry soil_moisture=50 1700000000000000000", line)
}

func TestBuildLineEmptyTagsAndSingleField(t *testing.T) {
	line := BuildLine(Point{
		Measurement: "m",
		Tags:        map[string]string{},
		Fields:      map[string]float64{"v": 1},
	})
	assert.Equal(t, "m v=1", line)
}

func TestBuildLineEscapesSpaceCommaEquals(t *testing.T) {
	line := BuildLine(Point{
		Measurement: "plant telemetry",
		Tags:        map[string]string{"a,b=c": "x y"},
		Fields:      map[string]float64{"f": 1},
	})
	assert.True(t, strings.HasPrefix(line, `plant\ telemetry,a\,b\=c=x\ y `))
}

func TestBuildLineEscapesFieldKeys(t *testing.T) {
	line := BuildLine(Point{
		Measurement: "m",
		Fields:      map[string]float64{"a b": 1},
	})
	assert.Contains(t, line, `a\ b=1`)
}

func TestBuildLinesJoinedByNewline(t *testing.T) {
	lines := BuildLines([]Point{
		{Measurement: "a", Fields: map[string]float64{"v": 1}},
		{Measurement: "b", Fields: map[string]float64{"v": 2}},
	})
	assert.Equal(t, "a v=1\nb v=2", lines)
}
