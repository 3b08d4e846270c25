// Command simrun drives the in-memory simulator backend through a short
// scripted episode and records the canonical motor system state of every
// step to a JSONL file. It doubles as a smoke test of the full contract:
// agent setup, object placement, action application, persistence, reset.
package main

import (
	"flag"
	"fmt"
	"os"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/embodia/embodia/internal/core/events/bus"
	"github.com/embodia/embodia/internal/core/observability/log"
	"github.com/embodia/embodia/internal/core/persist"
	"github.com/embodia/embodia/internal/core/scene"
	"github.com/embodia/embodia/internal/core/simulator"
	"github.com/embodia/embodia/internal/core/simulator/memsim"
	"github.com/embodia/embodia/internal/core/state"
)

func main() {
	var (
		scenePath = flag.String("scene", "", "scene registry YAML (optional; a built-in registry is used when empty)")
		outPath   = flag.String("out", "episode.jsonl", "episode output file")
		steps     = flag.Int("steps", 20, "number of action steps to run")
		verbose   = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := log.LevelInfo
	if *verbose {
		level = log.LevelDebug
	}
	logger := log.New(level)

	if err := run(logger, *scenePath, *outPath, *steps); err != nil {
		logger.Error("episode failed", log.Err(err))
		os.Exit(1)
	}
}

func run(logger log.Log, scenePath, outPath string, steps int) error {
	registry, err := loadRegistry(scenePath)
	if err != nil {
		return err
	}

	events := bus.New()
	defer events.Close()
	_, err = events.Subscribe(memsim.EventTypeActionApplied, func(e bus.Event) {
		data := e.Data.(memsim.ActionApplied)
		logger.Debug("action applied",
			log.String("agent", string(data.Agent)),
			log.String("action", data.Action),
			log.Int("step", data.Step),
		)
	})
	if err != nil {
		return err
	}

	sim := memsim.New(memsim.Config{Registry: registry, Logger: logger, Bus: events})
	defer sim.Close()

	const agent = state.AgentID("agent_id_0")
	err = sim.InitializeAgent(agent, state.AgentPose{
		Rotation: quat.Number{Real: 1},
		Sensors: map[state.SensorID]state.SensorPose{
			"patch": {Position: r3.Vec{Y: 0.1}, Rotation: quat.Number{Real: 1}},
		},
	})
	if err != nil {
		return err
	}

	names := registry.Names()
	if len(names) == 0 {
		return fmt.Errorf("scene registry is empty")
	}
	targetID, semantic, err := sim.AddObject(names[0], simulator.WithPosition(r3.Vec{Z: -2}))
	if err != nil {
		return err
	}
	logger.Info("target placed",
		log.String("object", names[0]),
		log.Int("semantic", int(semantic)),
	)
	if len(names) > 1 {
		// Put a distractor in the scene without blocking the target view.
		if _, _, err = sim.AddObject(names[1],
			simulator.WithPosition(r3.Vec{Z: -1}),
			simulator.WithPrimaryTarget(targetID),
		); err != nil {
			return err
		}
	}

	recorder, err := persist.Create(outPath, logger)
	if err != nil {
		return err
	}
	defer recorder.Close()

	for step := 0; step < steps; step++ {
		action := scriptedAction(agent, step)
		if _, err = sim.ApplyAction(action); err != nil {
			return fmt.Errorf("step %d (%s): %w", step, action.Name(), err)
		}
		proprio, err := sim.States()
		if err != nil {
			return err
		}
		motor := state.NewMotorSystemState(proprio)
		control := state.StepControl{MotorOnly: step%4 == 3}
		if err = recorder.Record(step, motor, control); err != nil {
			return err
		}
	}

	if _, err = sim.Reset(); err != nil {
		return err
	}
	logger.Info("episode complete", log.Int("steps", steps), log.String("out", outPath))
	return nil
}

// scriptedAction is a fixed orbit-ish policy: step forward, nudge
// sideways, turn, occasionally glance down at the object.
func scriptedAction(agent state.AgentID, step int) simulator.Action {
	switch step % 4 {
	case 0:
		return simulator.MoveForward{Agent: agent, Distance: 0.05}
	case 1:
		return simulator.MoveTangentially{Agent: agent, Distance: 0.05, Direction: r3.Vec{X: 1}}
	case 2:
		return simulator.TurnLeft{Agent: agent, Degrees: 5}
	default:
		return simulator.LookDown{Agent: agent, Degrees: 2}
	}
}

func loadRegistry(path string) (*scene.Registry, error) {
	if path != "" {
		return scene.LoadFile(path)
	}
	return scene.NewRegistry(
		scene.ObjectSpec{Name: "mug", Radius: 0.12},
		scene.ObjectSpec{Name: "banana", Radius: 0.1},
		scene.ObjectSpec{Name: "bowl", Radius: 0.15},
	)
}
