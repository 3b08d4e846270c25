// Package simulator defines the capability contract between the embodied
// learning system and a simulation backend. Any backend exposing these
// operations with these semantics is usable interchangeably; the learning
// loop never depends on a concrete backend type.
package simulator

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/embodia/embodia/internal/core/state"
)

// Modalities holds one sensor's observations for one step, keyed by
// modality name. The value shape per modality is backend-defined.
type Modalities map[string]any

// SensorObservations holds one agent's observations, keyed by sensor.
type SensorObservations map[state.SensorID]Modalities

// Observations holds a whole step's observations, keyed by agent.
type Observations map[state.AgentID]SensorObservations

// Simulator is the capability set an embodied-environment backend must
// expose. Backends may assume exclusive, serialized access: the learning
// system issues one call at a time and blocks until it returns.
//
// A backend has two macro-states: uninitialized-or-reset, and active
// (entered by the first ApplyAction or explicit agent/object setup).
// Reset is callable at any time and always yields the initial
// configuration; Close is terminal, idempotent, and invalidates every
// other operation.
type Simulator interface {
	// InitializeAgent sets the backend's runtime state for the agent to
	// match the given pose.
	InitializeAgent(id state.AgentID, pose state.AgentPose) error

	// RemoveAllObjects removes every interactable object from the
	// environment, leaving agents untouched. Idempotent.
	RemoveAllObjects() error

	// AddObject instantiates a registered object by name. The returned
	// semantic ID is the resolved label for the instance (zero when the
	// object carries none). When WithPrimaryTarget is given, the object is
	// placed so it does not occlude the initial view of the target, a
	// guarantee stronger than mere non-collision. Fails for names absent
	// from the backend's preloaded registry.
	AddObject(name string, opts ...AddObjectOption) (state.ObjectID, state.SemanticID, error)

	// NumObjects returns the count of currently instantiated objects.
	NumObjects() int

	// Observations returns the current sensor observations.
	Observations() (Observations, error)

	// States returns the current proprioceptive state. The value is fresh
	// per call; the backend never mutates it afterwards.
	States() (state.ProprioceptiveState, error)

	// ApplyAction executes the action and returns the resulting
	// observations. Unsupported action types must fail, never no-op.
	ApplyAction(action Action) (Observations, error)

	// Reset returns the backend to its initial configuration, regardless
	// of prior history, and returns the initial observations.
	Reset() (Observations, error)

	// Close releases backend resources. Idempotent; no other operation is
	// valid afterwards.
	Close() error
}

// AddObjectRequest collects the optional parameters of AddObject.
type AddObjectRequest struct {
	Position      *r3.Vec
	Rotation      *quat.Number
	Scale         *r3.Vec
	SemanticID    state.SemanticID
	EnablePhysics bool
	PrimaryTarget *state.ObjectID
}

// AddObjectOption configures one optional AddObject parameter.
type AddObjectOption func(*AddObjectRequest)

// NewAddObjectRequest applies opts over an empty request.
func NewAddObjectRequest(opts ...AddObjectOption) AddObjectRequest {
	var req AddObjectRequest
	for _, opt := range opts {
		opt(&req)
	}
	return req
}

// WithPosition sets the object's initial absolute position.
func WithPosition(p r3.Vec) AddObjectOption {
	return func(r *AddObjectRequest) { r.Position = &p }
}

// WithRotation sets the object's initial orientation.
func WithRotation(q quat.Number) AddObjectOption {
	return func(r *AddObjectRequest) { r.Rotation = &q }
}

// WithScale sets the object's initial scale.
func WithScale(s r3.Vec) AddObjectOption {
	return func(r *AddObjectRequest) { r.Scale = &s }
}

// WithSemanticID overrides the object's semantic label.
func WithSemanticID(id state.SemanticID) AddObjectOption {
	return func(r *AddObjectRequest) { r.SemanticID = id }
}

// WithPhysics enables physics simulation on the object.
func WithPhysics(enabled bool) AddObjectOption {
	return func(r *AddObjectRequest) { r.EnablePhysics = enabled }
}

// WithPrimaryTarget asks the backend to place the object so it does not
// obscure the initial view of the given target object.
func WithPrimaryTarget(id state.ObjectID) AddObjectOption {
	return func(r *AddObjectRequest) { r.PrimaryTarget = &id }
}
