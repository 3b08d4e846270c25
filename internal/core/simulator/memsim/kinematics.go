package memsim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/embodia/embodia/internal/core/simulator"
	"github.com/embodia/embodia/internal/core/spatial"
	"github.com/embodia/embodia/internal/core/state"
)

// Agents face along -Z in their own frame; +Y is up.
var (
	forwardAxis = r3.Vec{Z: -1}
	upAxis      = r3.Vec{Y: 1}
	pitchAxis   = r3.Vec{X: 1}
)

// applyKinematics computes the agent pose after one action. It operates on
// a private clone and either returns the fully updated pose or an error,
// so the caller can keep state transitions all-or-nothing.
func applyKinematics(pose state.AgentPose, action simulator.Action) (state.AgentPose, error) {
	switch a := action.(type) {
	case simulator.MoveForward:
		forward := spatial.Rotate(pose.Rotation, forwardAxis)
		pose.Position = r3.Add(pose.Position, r3.Scale(a.Distance, forward))

	case simulator.MoveTangentially:
		if r3.Norm(a.Direction) == 0 {
			return pose, fmt.Errorf("move_tangentially: zero direction")
		}
		dir := spatial.Rotate(pose.Rotation, r3.Unit(a.Direction))
		pose.Position = r3.Add(pose.Position, r3.Scale(a.Distance, dir))

	case simulator.TurnLeft:
		yaw := spatial.RotationAbout(radians(a.Degrees), upAxis)
		pose.Rotation = spatial.Compose(yaw, pose.Rotation)

	case simulator.TurnRight:
		yaw := spatial.RotationAbout(-radians(a.Degrees), upAxis)
		pose.Rotation = spatial.Compose(yaw, pose.Rotation)

	case simulator.LookUp:
		pitchSensors(pose, radians(a.Degrees))

	case simulator.LookDown:
		pitchSensors(pose, -radians(a.Degrees))

	case simulator.SetAgentPose:
		pose.Position = a.Position
		pose.Rotation = a.Rotation
		if err := pose.Validate(); err != nil {
			return pose, fmt.Errorf("set_agent_pose: %w", err)
		}

	case simulator.SetSensorRotation:
		sensor, ok := pose.Sensors[a.Sensor]
		if !ok {
			return pose, fmt.Errorf("%w: %q on agent %q", simulator.ErrUnknownSensor, a.Sensor, a.Agent)
		}
		sensor.Rotation = a.Rotation
		if err := sensor.Validate(); err != nil {
			return pose, fmt.Errorf("set_sensor_rotation: %w", err)
		}
		pose.Sensors[a.Sensor] = sensor

	default:
		return pose, fmt.Errorf("%w: %s", simulator.ErrUnsupportedAction, action.Name())
	}
	return pose, nil
}

// pitchSensors rotates every sensor about its local pitch axis.
func pitchSensors(pose state.AgentPose, angle float64) {
	pitch := spatial.RotationAbout(angle, pitchAxis)
	for id, sensor := range pose.Sensors {
		sensor.Rotation = spatial.Compose(sensor.Rotation, pitch)
		pose.Sensors[id] = sensor
	}
}

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
