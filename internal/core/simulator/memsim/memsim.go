// Package memsim is an in-memory Simulator backend. It implements the
// full capability contract with simple analytic kinematics and synthetic
// observations, and serves as the contract's executable reference for
// tests and host-side tooling. Rendering backends live elsewhere.
package memsim

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/embodia/embodia/internal/core/events/bus"
	"github.com/embodia/embodia/internal/core/observability/log"
	"github.com/embodia/embodia/internal/core/scene"
	"github.com/embodia/embodia/internal/core/simulator"
	"github.com/embodia/embodia/internal/core/spatial"
	"github.com/embodia/embodia/internal/core/state"
)

var _ simulator.Simulator = (*Simulator)(nil)

// Config wires a Simulator's collaborators. Registry is required; Logger
// and Bus default to no-ops when absent.
type Config struct {
	Registry *scene.Registry
	Logger   log.Log
	Bus      bus.Bus
}

// object is one instantiated environment object.
type object struct {
	id       state.ObjectID
	name     string
	semantic state.SemanticID
	position r3.Vec
	rotation quat.Number
	scale    r3.Vec
	radius   float64
	physics  bool
}

// Simulator is the in-memory backend. Callers hold exclusive access; all
// methods are step-driven and synchronous.
type Simulator struct {
	registry *scene.Registry
	log      log.Log
	bus      bus.Bus

	agents  map[state.AgentID]state.AgentPose
	initial map[state.AgentID]state.AgentPose
	objects []*object

	steps  int
	closed bool
}

// New builds a simulator in the uninitialized-or-reset macro-state.
func New(cfg Config) *Simulator {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Nop()
	}
	return &Simulator{
		registry: cfg.Registry,
		log:      logger.With(log.String("component", "memsim")),
		bus:      cfg.Bus,
		agents:   make(map[state.AgentID]state.AgentPose),
		initial:  make(map[state.AgentID]state.AgentPose),
	}
}

// InitializeAgent sets the agent's runtime pose. The pose also becomes the
// agent's reset pose.
func (s *Simulator) InitializeAgent(id state.AgentID, pose state.AgentPose) error {
	if s.closed {
		return simulator.ErrSimulatorClosed
	}
	if err := pose.Validate(); err != nil {
		return fmt.Errorf("initialize agent %q: %w", id, err)
	}
	s.agents[id] = pose.Clone()
	s.initial[id] = pose.Clone()
	s.log.Debug("agent initialized", log.String("agent", string(id)))
	s.publish(EventTypeAgentInitialized, AgentInitialized{Agent: id})
	return nil
}

// RemoveAllObjects clears every instantiated object. Agents are untouched.
func (s *Simulator) RemoveAllObjects() error {
	if s.closed {
		return simulator.ErrSimulatorClosed
	}
	s.objects = nil
	s.publish(EventTypeObjectsCleared, nil)
	return nil
}

// AddObject instantiates a registered object, adjusting its placement to
// keep the primary target visible when one is given.
func (s *Simulator) AddObject(name string, opts ...simulator.AddObjectOption) (state.ObjectID, state.SemanticID, error) {
	if s.closed {
		return "", 0, simulator.ErrSimulatorClosed
	}
	spec, ok := s.registry.Lookup(name)
	if !ok {
		return "", 0, fmt.Errorf("%w: %q", simulator.ErrUnknownObject, name)
	}
	req := simulator.NewAddObjectRequest(opts...)

	obj := &object{
		id:       state.ObjectID(uuid.NewString()),
		name:     name,
		rotation: quat.Number{Real: 1},
		scale:    r3.Vec{X: 1, Y: 1, Z: 1},
		radius:   spec.Radius,
		physics:  req.EnablePhysics,
	}
	if req.Position != nil {
		obj.position = *req.Position
	}
	if req.Rotation != nil {
		obj.rotation = *req.Rotation
	}
	if req.Scale != nil {
		obj.scale = *req.Scale
		obj.radius = spec.Radius * maxComponent(*req.Scale)
	}
	obj.semantic = req.SemanticID
	if obj.semantic == 0 {
		obj.semantic = spec.ResolveSemanticID()
	}

	if req.PrimaryTarget != nil {
		target := s.findObject(*req.PrimaryTarget)
		if target == nil {
			return "", 0, fmt.Errorf("%w: primary target %q", simulator.ErrUnknownInstance, *req.PrimaryTarget)
		}
		placed, err := spatial.ClearPlacement(obj.position, obj.radius, s.agentViewpoints(), target.position)
		if err != nil {
			return "", 0, fmt.Errorf("%w: %q near target %q", simulator.ErrNoPlacement, name, target.name)
		}
		obj.position = placed
	}

	s.objects = append(s.objects, obj)
	s.log.Debug("object added",
		log.String("name", name),
		log.String("id", string(obj.id)),
		log.Int("semantic", int(obj.semantic)),
	)
	s.publish(EventTypeObjectAdded, ObjectAdded{
		ID:       obj.id,
		Name:     name,
		Semantic: obj.semantic,
		Position: obj.position,
	})
	return obj.id, obj.semantic, nil
}

// NumObjects returns the count of instantiated objects.
func (s *Simulator) NumObjects() int { return len(s.objects) }

// Observations returns the current synthetic sensor observations.
func (s *Simulator) Observations() (simulator.Observations, error) {
	if s.closed {
		return nil, simulator.ErrSimulatorClosed
	}
	return s.observations(), nil
}

// States returns a fresh proprioceptive state snapshot.
func (s *Simulator) States() (state.ProprioceptiveState, error) {
	if s.closed {
		return nil, simulator.ErrSimulatorClosed
	}
	out := make(state.ProprioceptiveState, len(s.agents))
	for id, pose := range s.agents {
		out[id] = pose.Clone()
	}
	return out, nil
}

// ApplyAction executes one action and returns the resulting observations.
// A failure leaves the runtime state exactly as it was: no partial update
// is committed.
func (s *Simulator) ApplyAction(action simulator.Action) (simulator.Observations, error) {
	if s.closed {
		return nil, simulator.ErrSimulatorClosed
	}
	if action == nil {
		return nil, simulator.ErrUnsupportedAction
	}
	pose, ok := s.agents[action.AgentID()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", simulator.ErrUnknownAgent, action.AgentID())
	}

	next, err := applyKinematics(pose.Clone(), action)
	if err != nil {
		return nil, err
	}
	s.agents[action.AgentID()] = next
	s.steps++
	s.publish(EventTypeActionApplied, ActionApplied{
		Agent:  action.AgentID(),
		Action: action.Name(),
		Step:   s.steps,
	})
	return s.observations(), nil
}

// Reset restores the initial configuration: all objects removed, agents
// back at their initialization poses. Valid in any state except closed.
func (s *Simulator) Reset() (simulator.Observations, error) {
	if s.closed {
		return nil, simulator.ErrSimulatorClosed
	}
	s.objects = nil
	s.steps = 0
	s.agents = make(map[state.AgentID]state.AgentPose, len(s.initial))
	for id, pose := range s.initial {
		s.agents[id] = pose.Clone()
	}
	s.log.Debug("simulator reset")
	s.publish(EventTypeReset, nil)
	return s.observations(), nil
}

// Close releases the simulator. Idempotent; all later operations fail with
// ErrSimulatorClosed.
func (s *Simulator) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.objects = nil
	s.agents = nil
	s.initial = nil
	s.log.Info("simulator closed", log.Int("steps", s.steps))
	s.publish(EventTypeClosed, nil)
	return nil
}

func (s *Simulator) publish(eventType string, data any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(bus.NewEvent(eventType, "memsim", data)); err != nil {
		s.log.Warn("event publish failed", log.String("type", eventType), log.Err(err))
	}
}

func (s *Simulator) findObject(id state.ObjectID) *object {
	for _, obj := range s.objects {
		if obj.id == id {
			return obj
		}
	}
	return nil
}

func (s *Simulator) agentViewpoints() []r3.Vec {
	viewpoints := make([]r3.Vec, 0, len(s.agents))
	for _, pose := range s.agents {
		viewpoints = append(viewpoints, pose.Position)
	}
	return viewpoints
}

// observations builds the synthetic per-modality observation set: each
// sensor reports its world pose, the distance to the nearest object
// surface, and that object's semantic label.
func (s *Simulator) observations() simulator.Observations {
	out := make(simulator.Observations, len(s.agents))
	for agentID, pose := range s.agents {
		sensors := make(simulator.SensorObservations, len(pose.Sensors))
		for sensorID, sensor := range pose.Sensors {
			worldPos := r3.Add(pose.Position, spatial.Rotate(pose.Rotation, sensor.Position))
			worldRot := spatial.Compose(pose.Rotation, sensor.Rotation)

			depth, semantic := s.nearestSurface(worldPos)
			sensors[sensorID] = simulator.Modalities{
				"position": []float64{worldPos.X, worldPos.Y, worldPos.Z},
				"rotation": []float64{worldRot.Real, worldRot.Imag, worldRot.Jmag, worldRot.Kmag},
				"depth":    depth,
				"semantic": semantic,
			}
		}
		out[agentID] = sensors
	}
	return out
}

// nearestSurface returns the distance from p to the closest object surface
// and that object's semantic label. With no objects it reports -1 and no
// label.
func (s *Simulator) nearestSurface(p r3.Vec) (float64, state.SemanticID) {
	best := math.MaxFloat64
	var semantic state.SemanticID
	for _, obj := range s.objects {
		d := r3.Norm(r3.Sub(obj.position, p)) - obj.radius
		if d < best {
			best = d
			semantic = obj.semantic
		}
	}
	if semantic == 0 && len(s.objects) == 0 {
		return -1, 0
	}
	if best < 0 {
		best = 0
	}
	return best, semantic
}

func maxComponent(v r3.Vec) float64 {
	return math.Max(v.X, math.Max(v.Y, v.Z))
}
