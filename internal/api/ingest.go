// Package api hosts the HTTP surfaces of the pipeline: the Ingest RPC
// the batcher calls into, and the read/CRUD dashboard façade.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/plantwatch/telemetry-pipeline/internal/ingest"
	"github.com/plantwatch/telemetry-pipeline/pkg/log"
	"github.com/plantwatch/telemetry-pipeline/pkg/telemetry"
)

// IngestHandler realizes the Ingest RPC (SPEC_FULL §4.5): it decodes a
// batch of envelopes and hands them to the processor.
type IngestHandler struct {
	Processor *ingest.Processor
}

type ingestRequestBody struct {
	Envelopes []telemetry.Message `json:"envelopes"`
}

// Register wires the handler's routes onto r.
func (h *IngestHandler) Register(r *mux.Router) {
	r.HandleFunc("/v1/ingest", h.handleIngest).Methods(http.MethodPost)
}

func (h *IngestHandler) handleIngest(w http.ResponseWriter, req *http.Request) {
	var body ingestRequestBody
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		log.Warnf("api: malformed ingest request: %v", err)
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	envelopes := make([]ingest.Envelope, 0, len(body.Envelopes))
	for _, msg := range body.Envelopes {
		id := telemetry.Fingerprint(msg.DeviceUID, msg.PlantID, msg.Seq, msg.TimestampNs)
		envelopes = append(envelopes, ingest.Envelope{Message: msg, IngestID: id})
	}

	outcome := h.Processor.ProcessBatch(context.Background(), envelopes)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(outcome); err != nil {
		log.Errorf("api: encode ingest response: %v", err)
	}
}
