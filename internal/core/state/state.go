package state

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Identifier types shared across the simulation core.
type (
	// AgentID identifies an embodied agent.
	AgentID string
	// SensorID identifies a sensor attached to an agent.
	SensorID string
	// ObjectID identifies one instantiated object in the environment.
	ObjectID string
	// SemanticID labels an object's category for perception purposes.
	// Zero means "no semantic label".
	SemanticID uint32
)

// unitTolerance bounds how far a rotation's norm may drift from 1.
const unitTolerance = 1e-6

// SensorPose is the proprioceptive state of a single sensor, relative to
// its owning agent.
type SensorPose struct {
	// Position of the sensor in the agent's frame.
	Position r3.Vec
	// Rotation of the sensor in the agent's frame. Must be a unit
	// quaternion; this layer never normalizes on behalf of the caller.
	Rotation quat.Number
}

// Validate reports whether the sensor pose satisfies the pose contract.
func (p SensorPose) Validate() error {
	if err := validateVec(p.Position); err != nil {
		return err
	}
	return validateRotation(p.Rotation)
}

// Clone returns an independent copy of the sensor pose.
func (p SensorPose) Clone() SensorPose { return p }

// AgentPose is the proprioceptive state of one agent: its pose in the
// global frame plus the relative pose of every active sensor.
//
// Per-step control signaling (see StepControl) deliberately lives outside
// this type so that pose data stays pure data.
type AgentPose struct {
	Sensors  map[SensorID]SensorPose
	Position r3.Vec
	Rotation quat.Number
}

// Validate checks the agent pose and every sensor pose it carries.
func (p AgentPose) Validate() error {
	if err := validateVec(p.Position); err != nil {
		return fmt.Errorf("agent position: %w", err)
	}
	if err := validateRotation(p.Rotation); err != nil {
		return fmt.Errorf("agent rotation: %w", err)
	}
	for id, sensor := range p.Sensors {
		if err := sensor.Validate(); err != nil {
			return fmt.Errorf("sensor %q: %w", id, err)
		}
	}
	return nil
}

// Clone returns a deep copy: mutating the copy's sensor map never
// affects the original.
func (p AgentPose) Clone() AgentPose {
	out := AgentPose{Position: p.Position, Rotation: p.Rotation}
	if p.Sensors != nil {
		out.Sensors = make(map[SensorID]SensorPose, len(p.Sensors))
		for id, sensor := range p.Sensors {
			out.Sensors[id] = sensor.Clone()
		}
	}
	return out
}

// ProprioceptiveState is exactly what a simulator backend reports for one
// time step: one AgentPose per agent. Backends produce a fresh value every
// step and never mutate one after returning it.
type ProprioceptiveState map[AgentID]AgentPose

// Clone returns a deep copy of the state.
func (s ProprioceptiveState) Clone() ProprioceptiveState {
	out := make(ProprioceptiveState, len(s))
	for id, pose := range s {
		out[id] = pose.Clone()
	}
	return out
}

// MotorSystemState is the motor system's operating state. It starts as a
// copy of a ProprioceptiveState and is owned and extended by the motor
// system for the lifetime of an episode. It is a named type distinct from
// ProprioceptiveState so the two cannot be interchanged by accident;
// NewMotorSystemState is the only sanctioned conversion.
type MotorSystemState map[AgentID]AgentPose

// NewMotorSystemState builds a motor system state from the proprioceptive
// state reported by the environment. The copy is deep: the returned state
// shares no sensor maps with the input.
func NewMotorSystemState(s ProprioceptiveState) MotorSystemState {
	out := make(MotorSystemState, len(s))
	for id, pose := range s {
		out[id] = pose.Clone()
	}
	return out
}

// Clone returns a deep copy of the state.
func (s MotorSystemState) Clone() MotorSystemState {
	out := make(MotorSystemState, len(s))
	for id, pose := range s {
		out[id] = pose.Clone()
	}
	return out
}

// StepControl is the per-step control descriptor that travels alongside a
// MotorSystemState. It carries control-flow signaling that must not live
// inside the pose data itself.
type StepControl struct {
	// MotorOnly marks a step whose state update bypasses downstream
	// learning processing.
	MotorOnly bool `json:"motor_only"`
}

func validateVec(v r3.Vec) error {
	if !isFinite(v.X) || !isFinite(v.Y) || !isFinite(v.Z) {
		return fmt.Errorf("%w: (%v, %v, %v)", ErrInvalidPosition, v.X, v.Y, v.Z)
	}
	return nil
}

func validateRotation(q quat.Number) error {
	if !isFinite(q.Real) || !isFinite(q.Imag) || !isFinite(q.Jmag) || !isFinite(q.Kmag) {
		return fmt.Errorf("%w: non-finite components", ErrInvalidRotation)
	}
	if math.Abs(quat.Abs(q)-1) > unitTolerance {
		return fmt.Errorf("%w: norm %v is not 1", ErrInvalidRotation, quat.Abs(q))
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
