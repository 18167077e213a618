// Package telemetry provides a JSONL event stream for recording what a
// planning run did. Run starts and completions, composite resolutions,
// found paths and catalog reloads are recorded as structured JSON events,
// making runs auditable and comparable across catalog revisions.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event kinds identify the type of telemetry event.
const (
	KindPlanStart           = "plan_start"
	KindPlanDone            = "plan_done"
	KindPathFound           = "path_found"
	KindCompositeResolved   = "composite_resolved"
	KindCompositeUnresolved = "composite_unresolved"
	KindExpansionLimit      = "expansion_limit"
	KindBatchStart          = "batch_start"
	KindBatchDone           = "batch_done"
	KindCatalogReloaded     = "catalog_reloaded"
)

// Event represents a single telemetry record. Each event carries a timestamp,
// a kind tag, and optional context identifiers (run, unit) along with
// arbitrary structured data.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	RunID     string    `json:"run,omitempty"`
	UnitID    string    `json:"unit,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// NewRunID returns a fresh identifier tying together the events of one
// planning run.
func NewRunID() string {
	return uuid.NewString()
}

// Emitter writes telemetry events to a JSONL file. It is safe for concurrent
// use by multiple goroutines. A nil *Emitter is a valid no-op emitter.
type Emitter struct {
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
}

// NewEmitter creates a new Emitter that writes JSONL events to the file at
// path. The file is created if it does not exist, or appended to if it does.
func NewEmitter(path string) (*Emitter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	return &Emitter{
		file: f,
		enc:  json.NewEncoder(f),
	}, nil
}

// Emit writes a single event to the JSONL file. It is safe for concurrent use.
// Calling Emit on a nil Emitter is a no-op.
func (e *Emitter) Emit(evt Event) error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enc.Encode(evt); err != nil {
		return fmt.Errorf("telemetry: encode event: %w", err)
	}
	return nil
}

// Record stamps and emits an event, dropping encode errors. Planning must
// not fail because the event stream did.
func (e *Emitter) Record(kind, runID, unitID string, data any) {
	if e == nil {
		return
	}
	_ = e.Emit(Event{
		Timestamp: time.Now().UTC(),
		Kind:      kind,
		RunID:     runID,
		UnitID:    unitID,
		Data:      data,
	})
}

// Close flushes and closes the underlying file. Calling Close on a nil
// Emitter is a no-op.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("telemetry: close: %w", err)
	}
	return nil
}
