package telemetry

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Fingerprint computes the stable ingest_id for a
// (device_uid, plant_id, seq, timestamp_ns) tuple: the lowercase hex
// SHA-256 digest of
//
//	device_uid || 0x00 || plant_id || 0x00 || seq(LE,4) || timestamp_ns(LE,8)
//
// Identical inputs always produce the identical fingerprint, across
// processes and restarts — this is the pipeline's sole dedup key.
func Fingerprint(deviceUID, plantID string, seq uint32, timestampNs int64) string {
	h := sha256.New()
	h.Write([]byte(deviceUID))
	h.Write([]byte{0x00})
	h.Write([]byte(plantID))
	h.Write([]byte{0x00})

	var seqBuf [4]byte
	binary.LittleEndian.PutUint32(seqBuf[:], seq)
	h.Write(seqBuf[:])

	var tsBuf [8]byte
	binary.LittleEndian.PutUint64(tsBuf[:], uint64(timestampNs))
	h.Write(tsBuf[:])

	return hex.EncodeToString(h.Sum(nil))
}
