// Package persist writes episode state to disk. Only the canonical
// projection of the pose model ever crosses this boundary; raw pose values
// carrying gonum types are never serialized directly.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/embodia/embodia/internal/core/observability/log"
	"github.com/embodia/embodia/internal/core/state"
)

// ErrRecorderClosed is returned by Record after Close.
var ErrRecorderClosed = errors.New("recorder is closed")

// Record is one persisted step: the canonical motor system state plus the
// step's control descriptor.
type Record struct {
	Step    int                  `json:"step"`
	Control state.StepControl    `json:"control"`
	State   state.CanonicalState `json:"state"`
}

// Recorder appends one JSON document per step to its writer (JSONL).
type Recorder struct {
	w      io.WriteCloser
	enc    *json.Encoder
	log    log.Log
	steps  int
	closed bool
}

// NewRecorder wraps an open writer. The recorder takes ownership and
// closes it in Close.
func NewRecorder(w io.WriteCloser, logger log.Log) *Recorder {
	if logger == nil {
		logger = log.Nop()
	}
	return &Recorder{
		w:   w,
		enc: json.NewEncoder(w),
		log: logger.With(log.String("component", "recorder")),
	}
}

// Create opens path for writing, truncating any previous episode.
func Create(path string, logger log.Log) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create episode file: %w", err)
	}
	return NewRecorder(f, logger), nil
}

// Record canonicalizes the motor system state and appends it with its
// control descriptor.
func (r *Recorder) Record(step int, st state.MotorSystemState, control state.StepControl) error {
	if r.closed {
		return ErrRecorderClosed
	}
	rec := Record{Step: step, Control: control, State: st.Canonical()}
	if err := r.enc.Encode(rec); err != nil {
		return fmt.Errorf("encode step %d: %w", step, err)
	}
	r.steps++
	return nil
}

// Close flushes and releases the underlying writer. Idempotent.
func (r *Recorder) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.log.Info("episode recorded", log.Int("steps", r.steps))
	return r.w.Close()
}

// ReadAll decodes every record from an episode stream, in order.
func ReadAll(rd io.Reader) ([]Record, error) {
	dec := json.NewDecoder(rd)
	var out []Record
	for {
		var rec Record
		if err := dec.Decode(&rec); err == io.EOF {
			return out, nil
		} else if err != nil {
			return nil, fmt.Errorf("decode record %d: %w", len(out), err)
		}
		out = append(out, rec)
	}
}
