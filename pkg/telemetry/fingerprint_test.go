package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintDeterministic(t *testing.T) {
	id1 := Fingerprint("dev-1", "plant-uuid", 42, 1_700_000_000_000_000_000)
	id2 := Fingerprint("dev-1", "plant-uuid", 42, 1_700_000_000_000_000_000)
	assert.Equal(t, id1, id2)
}

func TestFingerprintVariesWithSeq(t *testing.T) {
	id1 := Fingerprint("dev-1", "plant-uuid", 42, 1_000_000)
	id2 := Fingerprint("dev-1", "plant-uuid", 43, 1_000_000)
	assert.NotEqual(t, id1, id2)
}

func TestFingerprintVariesWithTimestamp(t *testing.T) {
	id1 := Fingerprint("dev-1", "plant-uuid", 1, 1_000_000)
	id2 := Fingerprint("dev-1", "plant-uuid", 1, 2_000_000)
	assert.NotEqual(t, id1, id2)
}

func TestFingerprintVariesWithDeviceUID(t *testing.T) {
	id1 := Fingerprint("dev-1", "plant-uuid", 1, 1_000_000)
	id2 := Fingerprint("dev-2", "plant-uuid", 1, 1_000_000)
	assert.NotEqual(t, id1, id2)
}

func TestFingerprintIs64LowercaseHex(t *testing.T) {
	id := Fingerprint("dev-1", "plant-uuid", 1, 1_000_000)
	assert.Len(t, id, 64)
	for _, c := range id {
		isLowerHex := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
		assert.True(t, isLowerHex, "unexpected char %q", c)
	}
}
