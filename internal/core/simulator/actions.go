package simulator

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/embodia/embodia/internal/core/state"
)

// Action is a backend-agnostic command describing one agent's intended
// movement or interaction for one step. Backends dispatch on the concrete
// type; an unrecognized type is a contract violation, not a no-op.
type Action interface {
	// AgentID names the agent the action applies to.
	AgentID() state.AgentID
	// Name is the action's stable wire/log name.
	Name() string
}

// MoveForward translates the agent along its current facing direction.
type MoveForward struct {
	Agent    state.AgentID
	Distance float64
}

func (a MoveForward) AgentID() state.AgentID { return a.Agent }
func (a MoveForward) Name() string           { return "move_forward" }

// MoveTangentially translates the agent along a direction given in the
// agent's own frame, leaving its orientation untouched.
type MoveTangentially struct {
	Agent     state.AgentID
	Distance  float64
	Direction r3.Vec
}

func (a MoveTangentially) AgentID() state.AgentID { return a.Agent }
func (a MoveTangentially) Name() string           { return "move_tangentially" }

// TurnLeft rotates the agent counterclockwise about the global up axis.
type TurnLeft struct {
	Agent   state.AgentID
	Degrees float64
}

func (a TurnLeft) AgentID() state.AgentID { return a.Agent }
func (a TurnLeft) Name() string           { return "turn_left" }

// TurnRight rotates the agent clockwise about the global up axis.
type TurnRight struct {
	Agent   state.AgentID
	Degrees float64
}

func (a TurnRight) AgentID() state.AgentID { return a.Agent }
func (a TurnRight) Name() string           { return "turn_right" }

// LookUp pitches every sensor on the agent upward in its local frame.
type LookUp struct {
	Agent   state.AgentID
	Degrees float64
}

func (a LookUp) AgentID() state.AgentID { return a.Agent }
func (a LookUp) Name() string           { return "look_up" }

// LookDown pitches every sensor on the agent downward in its local frame.
type LookDown struct {
	Agent   state.AgentID
	Degrees float64
}

func (a LookDown) AgentID() state.AgentID { return a.Agent }
func (a LookDown) Name() string           { return "look_down" }

// SetAgentPose teleports the agent to an absolute pose.
type SetAgentPose struct {
	Agent    state.AgentID
	Position r3.Vec
	Rotation quat.Number
}

func (a SetAgentPose) AgentID() state.AgentID { return a.Agent }
func (a SetAgentPose) Name() string           { return "set_agent_pose" }

// SetSensorRotation sets the relative rotation of one sensor.
type SetSensorRotation struct {
	Agent    state.AgentID
	Sensor   state.SensorID
	Rotation quat.Number
}

func (a SetSensorRotation) AgentID() state.AgentID { return a.Agent }
func (a SetSensorRotation) Name() string           { return "set_sensor_rotation" }
