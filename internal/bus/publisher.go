// Package bus publishes plant status-change events to a durable
// message bus (NATS). Publication is best-effort: the ingest
// processor never aborts an envelope because a publish failed.
package bus

import (
	"encoding/json"
	"fmt"

	"github.com/plantwatch/telemetry-pipeline/pkg/log"
	"github.com/plantwatch/telemetry-pipeline/pkg/severity"
)

const StatusChangeSubject = "plant.status_change"

// StatusChange is the JSON shape published on StatusChangeSubject.
type StatusChange struct {
	Type         string `json:"type"`
	PlantID      string `json:"plant_id"`
	PrevSeverity string `json:"prev_severity"`
	NewSeverity  string `json:"new_severity"`
	OccurredAtNs int64  `json:"occurred_at_ns"`
}

// NewStatusChange builds the event for a plant whose aggregate
// severity moved from prev to next.
func NewStatusChange(plantID string, prev, next severity.Severity, occurredAtNs int64) StatusChange {
	return StatusChange{
		Type:         "PlantStatusChanged.v1",
		PlantID:      plantID,
		PrevSeverity: prev.String(),
		NewSeverity:  next.String(),
		OccurredAtNs: occurredAtNs,
	}
}

// Publisher is the capability the ingest processor depends on.
// Implemented by *Client (NATS) and NoopPublisher (bus unconfigured).
type Publisher interface {
	PublishStatusChange(sc StatusChange) error
}

// NoopPublisher is used when no bus address is configured. Transitions
// are still recorded in plant_current_state; they are simply not
// broadcast.
type NoopPublisher struct{}

func (NoopPublisher) PublishStatusChange(StatusChange) error { return nil }

// publish marshals sc and hands it to send, wrapping any error.
func publish(sc StatusChange, send func(subject string, data []byte) error) error {
	data, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("bus: marshal status change: %w", err)
	}
	if err := send(StatusChangeSubject, data); err != nil {
		return fmt.Errorf("bus: publish status change: %w", err)
	}
	return nil
}

// logAndSwallow is the helper callers on the ingest hot path use:
// publish errors are logged at warn and never propagated.
func logAndSwallow(p Publisher, sc StatusChange) {
	if err := p.PublishStatusChange(sc); err != nil {
		log.Warnf("bus: %v", err)
	}
}

// Publish is the ingest processor's entry point: publish sc via p,
// swallowing any error after logging it.
func Publish(p Publisher, sc StatusChange) {
	logAndSwallow(p, sc)
}
