package memsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/embodia/embodia/internal/core/events/bus"
	"github.com/embodia/embodia/internal/core/scene"
	"github.com/embodia/embodia/internal/core/simulator"
	"github.com/embodia/embodia/internal/core/spatial"
	"github.com/embodia/embodia/internal/core/state"
)

const agent = state.AgentID("agent_id_0")

func testRegistry(t *testing.T) *scene.Registry {
	t.Helper()
	reg, err := scene.NewRegistry(
		scene.ObjectSpec{Name: "mug", Radius: 0.2},
		scene.ObjectSpec{Name: "banana", Radius: 0.15, SemanticID: 7},
	)
	require.NoError(t, err)
	return reg
}

func newTestSim(t *testing.T) *Simulator {
	t.Helper()
	return New(Config{Registry: testRegistry(t)})
}

func identityPose() state.AgentPose {
	return state.AgentPose{
		Rotation: quat.Number{Real: 1},
		Sensors: map[state.SensorID]state.SensorPose{
			"patch": {Position: r3.Vec{Y: 0.1}, Rotation: quat.Number{Real: 1}},
		},
	}
}

func TestInitializeAgentRejectsInvalidPose(t *testing.T) {
	s := newTestSim(t)
	err := s.InitializeAgent(agent, state.AgentPose{}) // zero rotation
	assert.ErrorIs(t, err, state.ErrInvalidRotation)
}

func TestStatesReturnsFreshCopies(t *testing.T) {
	s := newTestSim(t)
	require.NoError(t, s.InitializeAgent(agent, identityPose()))

	first, err := s.States()
	require.NoError(t, err)
	first[agent].Sensors["patch"] = state.SensorPose{
		Position: r3.Vec{X: 99},
		Rotation: quat.Number{Real: 1},
	}

	second, err := s.States()
	require.NoError(t, err)
	assert.Equal(t, 0.0, second[agent].Sensors["patch"].Position.X)
}

func TestAddObjectUnknownName(t *testing.T) {
	s := newTestSim(t)
	_, _, err := s.AddObject("teapot")
	assert.ErrorIs(t, err, simulator.ErrUnknownObject)
}

func TestAddObjectSemanticResolution(t *testing.T) {
	s := newTestSim(t)

	_, semantic, err := s.AddObject("banana")
	require.NoError(t, err)
	assert.EqualValues(t, 7, semantic, "registry semantic id wins")

	_, semantic, err = s.AddObject("mug")
	require.NoError(t, err)
	assert.Equal(t, scene.DeriveSemanticID("mug"), semantic, "derived when unconfigured")

	_, semantic, err = s.AddObject("mug", simulator.WithSemanticID(99))
	require.NoError(t, err)
	assert.EqualValues(t, 99, semantic, "caller override wins")

	assert.Equal(t, 3, s.NumObjects())
}

func TestAddObjectAvoidsOccludingPrimaryTarget(t *testing.T) {
	s := newTestSim(t)
	require.NoError(t, s.InitializeAgent(agent, identityPose()))

	targetID, _, err := s.AddObject("banana", simulator.WithPosition(r3.Vec{Z: -2}))
	require.NoError(t, err)

	// Request a placement squarely between the agent and the target.
	_, _, err = s.AddObject("mug",
		simulator.WithPosition(r3.Vec{Z: -1}),
		simulator.WithPrimaryTarget(targetID),
	)
	require.NoError(t, err)

	mug := s.objects[1]
	assert.NotEqual(t, r3.Vec{Z: -1}, mug.position, "occluding placement must be adjusted")
	assert.False(t, spatial.Occludes(mug.position, mug.radius, r3.Vec{}, r3.Vec{Z: -2}))
}

func TestAddObjectUnknownPrimaryTarget(t *testing.T) {
	s := newTestSim(t)
	_, _, err := s.AddObject("mug", simulator.WithPrimaryTarget(state.ObjectID("nope")))
	assert.ErrorIs(t, err, simulator.ErrUnknownInstance)
}

func TestRemoveAllObjectsIsIdempotent(t *testing.T) {
	s := newTestSim(t)
	_, _, err := s.AddObject("mug")
	require.NoError(t, err)

	require.NoError(t, s.RemoveAllObjects())
	require.NoError(t, s.RemoveAllObjects())
	assert.Zero(t, s.NumObjects())
}

func TestApplyActionUnknownAgent(t *testing.T) {
	s := newTestSim(t)
	_, err := s.ApplyAction(simulator.MoveForward{Agent: "ghost", Distance: 1})
	assert.ErrorIs(t, err, simulator.ErrUnknownAgent)
}

type bogusAction struct{}

func (bogusAction) AgentID() state.AgentID { return agent }
func (bogusAction) Name() string           { return "bogus" }

func TestApplyActionUnsupportedType(t *testing.T) {
	s := newTestSim(t)
	require.NoError(t, s.InitializeAgent(agent, identityPose()))
	_, err := s.ApplyAction(bogusAction{})
	assert.ErrorIs(t, err, simulator.ErrUnsupportedAction)
}

func TestMoveForwardFollowsFacing(t *testing.T) {
	s := newTestSim(t)
	require.NoError(t, s.InitializeAgent(agent, identityPose()))

	_, err := s.ApplyAction(simulator.MoveForward{Agent: agent, Distance: 2})
	require.NoError(t, err)

	states, err := s.States()
	require.NoError(t, err)
	assert.InDelta(t, -2, states[agent].Position.Z, 1e-12, "identity rotation faces -Z")

	// After a 90 degree left turn, forward is -X.
	_, err = s.ApplyAction(simulator.TurnLeft{Agent: agent, Degrees: 90})
	require.NoError(t, err)
	_, err = s.ApplyAction(simulator.MoveForward{Agent: agent, Distance: 1})
	require.NoError(t, err)

	states, err = s.States()
	require.NoError(t, err)
	assert.InDelta(t, -1, states[agent].Position.X, 1e-12)
	assert.InDelta(t, -2, states[agent].Position.Z, 1e-12)
}

func TestLookUpPitchesSensorsOnly(t *testing.T) {
	s := newTestSim(t)
	require.NoError(t, s.InitializeAgent(agent, identityPose()))

	before, err := s.States()
	require.NoError(t, err)

	_, err = s.ApplyAction(simulator.LookUp{Agent: agent, Degrees: 30})
	require.NoError(t, err)

	after, err := s.States()
	require.NoError(t, err)
	assert.Equal(t, before[agent].Rotation, after[agent].Rotation, "agent body must not pitch")
	assert.NotEqual(t, before[agent].Sensors["patch"].Rotation, after[agent].Sensors["patch"].Rotation)
	assert.NoError(t, after[agent].Validate(), "pitched sensor rotation stays unit")
}

func TestFailedActionCommitsNothing(t *testing.T) {
	s := newTestSim(t)
	require.NoError(t, s.InitializeAgent(agent, identityPose()))

	before, err := s.States()
	require.NoError(t, err)

	// Invalid target rotation: the whole step must be rolled back.
	_, err = s.ApplyAction(simulator.SetAgentPose{
		Agent:    agent,
		Position: r3.Vec{X: 5},
		Rotation: quat.Number{Real: 3},
	})
	require.ErrorIs(t, err, state.ErrInvalidRotation)

	after, err := s.States()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSetSensorRotationUnknownSensor(t *testing.T) {
	s := newTestSim(t)
	require.NoError(t, s.InitializeAgent(agent, identityPose()))
	_, err := s.ApplyAction(simulator.SetSensorRotation{
		Agent:    agent,
		Sensor:   "missing",
		Rotation: quat.Number{Real: 1},
	})
	assert.ErrorIs(t, err, simulator.ErrUnknownSensor)
}

func TestResetMatchesFreshSimulator(t *testing.T) {
	used := newTestSim(t)
	fresh := newTestSim(t)
	for _, s := range []*Simulator{used, fresh} {
		require.NoError(t, s.InitializeAgent(agent, identityPose()))
	}

	// Drive only one of them through an episode.
	_, _, err := used.AddObject("mug", simulator.WithPosition(r3.Vec{Z: -1}))
	require.NoError(t, err)
	_, err = used.ApplyAction(simulator.MoveForward{Agent: agent, Distance: 3})
	require.NoError(t, err)
	_, err = used.ApplyAction(simulator.TurnRight{Agent: agent, Degrees: 45})
	require.NoError(t, err)

	usedObs, err := used.Reset()
	require.NoError(t, err)
	freshObs, err := fresh.Reset()
	require.NoError(t, err)
	assert.Equal(t, freshObs, usedObs)

	usedStates, err := used.States()
	require.NoError(t, err)
	freshStates, err := fresh.States()
	require.NoError(t, err)
	assert.Equal(t, freshStates, usedStates)
	assert.Zero(t, used.NumObjects())
}

func TestClosedSimulatorFailsEverything(t *testing.T) {
	s := newTestSim(t)
	require.NoError(t, s.InitializeAgent(agent, identityPose()))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "close is idempotent")

	_, err := s.ApplyAction(simulator.MoveForward{Agent: agent, Distance: 1})
	assert.ErrorIs(t, err, simulator.ErrSimulatorClosed)
	_, err = s.Observations()
	assert.ErrorIs(t, err, simulator.ErrSimulatorClosed)
	_, err = s.States()
	assert.ErrorIs(t, err, simulator.ErrSimulatorClosed)
	_, err = s.Reset()
	assert.ErrorIs(t, err, simulator.ErrSimulatorClosed)
	_, _, err = s.AddObject("mug")
	assert.ErrorIs(t, err, simulator.ErrSimulatorClosed)
	assert.ErrorIs(t, s.RemoveAllObjects(), simulator.ErrSimulatorClosed)
	assert.ErrorIs(t, s.InitializeAgent(agent, identityPose()), simulator.ErrSimulatorClosed)
}

func TestLifecycleEventsPublished(t *testing.T) {
	b := bus.New()
	s := New(Config{Registry: testRegistry(t), Bus: b})

	var added []ObjectAdded
	_, err := b.Subscribe(EventTypeObjectAdded, func(e bus.Event) {
		added = append(added, e.Data.(ObjectAdded))
	})
	require.NoError(t, err)

	var applied []ActionApplied
	_, err = b.Subscribe(EventTypeActionApplied, func(e bus.Event) {
		applied = append(applied, e.Data.(ActionApplied))
	})
	require.NoError(t, err)

	require.NoError(t, s.InitializeAgent(agent, identityPose()))
	_, _, err = s.AddObject("banana")
	require.NoError(t, err)
	_, err = s.ApplyAction(simulator.TurnLeft{Agent: agent, Degrees: 10})
	require.NoError(t, err)

	require.Len(t, added, 1)
	assert.Equal(t, "banana", added[0].Name)
	require.Len(t, applied, 1)
	assert.Equal(t, "turn_left", applied[0].Action)
	assert.Equal(t, 1, applied[0].Step)
}

func TestObservationsShape(t *testing.T) {
	s := newTestSim(t)
	require.NoError(t, s.InitializeAgent(agent, identityPose()))
	_, _, err := s.AddObject("mug", simulator.WithPosition(r3.Vec{Z: -1}))
	require.NoError(t, err)

	obs, err := s.Observations()
	require.NoError(t, err)
	require.Contains(t, obs, agent)
	require.Contains(t, obs[agent], state.SensorID("patch"))

	mod := obs[agent]["patch"]
	assert.Len(t, mod["position"], 3)
	assert.Len(t, mod["rotation"], 4)
	assert.Equal(t, scene.DeriveSemanticID("mug"), mod["semantic"])
	depth, ok := mod["depth"].(float64)
	require.True(t, ok)
	assert.Greater(t, depth, 0.0)
}
