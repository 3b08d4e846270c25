package state

// Canonical state is the serialization-safe projection of the pose model.
// Vector and quaternion values are flattened into plain float64 slices so
// the result can cross any interchange boundary (JSON, gob, a wire codec)
// without dragging gonum types along. Raw pose values must never be
// serialized directly; this projection is the only sanctioned form.

// CanonicalPose is a sensor pose reduced to primitive containers.
type CanonicalPose struct {
	// Position holds exactly 3 elements: x, y, z.
	Position []float64 `json:"position"`
	// Rotation holds exactly 4 elements in WXYZ order: the scalar part
	// first, then the three imaginary components.
	Rotation []float64 `json:"rotation"`
}

// CanonicalAgentState is an agent pose reduced to primitive containers.
type CanonicalAgentState struct {
	Position []float64                  `json:"position"`
	Rotation []float64                  `json:"rotation"`
	Sensors  map[SensorID]CanonicalPose `json:"sensors"`
}

// CanonicalState is the serialization-safe image of a whole state mapping.
type CanonicalState map[AgentID]CanonicalAgentState

// Canonical projects the motor system state into its canonical form. The
// projection is pure: the receiver is not mutated and the result shares no
// memory with it.
func (s MotorSystemState) Canonical() CanonicalState {
	out := make(CanonicalState, len(s))
	for id, pose := range s {
		out[id] = canonicalAgent(pose)
	}
	return out
}

// Canonical projects the proprioceptive state into its canonical form.
func (s ProprioceptiveState) Canonical() CanonicalState {
	out := make(CanonicalState, len(s))
	for id, pose := range s {
		out[id] = canonicalAgent(pose)
	}
	return out
}

func canonicalAgent(pose AgentPose) CanonicalAgentState {
	agent := CanonicalAgentState{
		Position: []float64{pose.Position.X, pose.Position.Y, pose.Position.Z},
		Rotation: []float64{pose.Rotation.Real, pose.Rotation.Imag, pose.Rotation.Jmag, pose.Rotation.Kmag},
		Sensors:  make(map[SensorID]CanonicalPose, len(pose.Sensors)),
	}
	for id, sensor := range pose.Sensors {
		agent.Sensors[id] = CanonicalPose{
			Position: []float64{sensor.Position.X, sensor.Position.Y, sensor.Position.Z},
			Rotation: []float64{sensor.Rotation.Real, sensor.Rotation.Imag, sensor.Rotation.Jmag, sensor.Rotation.Kmag},
		}
	}
	return agent
}
