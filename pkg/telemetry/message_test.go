package telemetry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() []byte {
	b, _ := json.Marshal(map[string]interface{}{
		"version":       1,
		"device_uid":    "esp32-abc",
		"plant_id":      "550e8400-e29b-41d4-a716-446655440000",
		"seq":           42,
		"timestamp_ns":  1_700_000_000_000_000_000,
		"soil_moisture": 55.0,
		"ambient_temp_c": 22.5,
	})
	return b
}

func TestDecodeValidPayload(t *testing.T) {
	m, err := Decode(validPayload())
	require.NoError(t, err)
	assert.Equal(t, "esp32-abc", m.DeviceUID)
	assert.EqualValues(t, 42, m.Seq)
	require.NotNil(t, m.SoilMoisture)
	assert.Equal(t, 55.0, *m.SoilMoisture)
	require.NotNil(t, m.AmbientTempC)
	assert.Equal(t, 22.5, *m.AmbientTempC)
	assert.Nil(t, m.AmbientLightLux)
}

func TestDecodeInvalidJSON(t *testing.T) {
	_, err := Decode([]byte("not json"))
	require.Error(t, err)
}

func TestDecodeWrongVersion(t *testing.T) {
	b, _ := json.Marshal(map[string]interface{}{
		"version": 99, "device_uid": "dev", "plant_id": "pid", "seq": 1, "timestamp_ns": 0,
	})
	_, err := Decode(b)
	require.Error(t, err)
}

func TestDecodeEmptyDeviceUID(t *testing.T) {
	b, _ := json.Marshal(map[string]interface{}{
		"version": 1, "device_uid": "  ", "plant_id": "pid", "seq": 1, "timestamp_ns": 0,
	})
	_, err := Decode(b)
	require.Error(t, err)
}

func TestDecodeEmptyPlantID(t *testing.T) {
	b, _ := json.Marshal(map[string]interface{}{
		"version": 1, "device_uid": "dev", "plant_id": "", "seq": 1, "timestamp_ns": 0,
	})
	_, err := Decode(b)
	require.Error(t, err)
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	orig, err := Decode(validPayload())
	require.NoError(t, err)

	encoded, err := json.Marshal(orig)
	require.NoError(t, err)

	roundTripped, err := Decode(encoded)
	require.NoError(t, err)

	assert.Equal(t, orig, roundTripped)
}
