package memsim

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/embodia/embodia/internal/core/state"
)

// Lifecycle event types published to the configured bus.
const (
	EventTypeAgentInitialized = "sim.agent_initialized"
	EventTypeObjectAdded      = "sim.object_added"
	EventTypeObjectsCleared   = "sim.objects_cleared"
	EventTypeActionApplied    = "sim.action_applied"
	EventTypeReset            = "sim.reset"
	EventTypeClosed           = "sim.closed"
)

// AgentInitialized is the payload of EventTypeAgentInitialized.
type AgentInitialized struct {
	Agent state.AgentID
}

// ObjectAdded is the payload of EventTypeObjectAdded.
type ObjectAdded struct {
	ID       state.ObjectID
	Name     string
	Semantic state.SemanticID
	Position r3.Vec
}

// ActionApplied is the payload of EventTypeActionApplied.
type ActionApplied struct {
	Agent  state.AgentID
	Action string
	Step   int
}
