package services

import (
	"context"
	"sync"
	"testing"

	"github.com/dukex/flowmodel/pkg/eventbus"
	"github.com/dukex/flowmodel/pkg/events"
	"github.com/dukex/flowmodel/pkg/models"
	"github.com/dukex/flowmodel/pkg/persistence"
	"github.com/dukex/flowmodel/pkg/persistence/file"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	keys   []string
	events []eventbus.Event
}

func (p *recordingPublisher) Publish(_ context.Context, key string, event eventbus.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.keys = append(p.keys, key)
	p.events = append(p.events, event)

	return nil
}

func (p *recordingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := make([]events.EventType, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.GetType())
	}

	return types
}

func (p *recordingPublisher) last() eventbus.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.events) == 0 {
		return nil
	}

	return p.events[len(p.events)-1]
}

type testEnv struct {
	persistence persistence.Persistence
	publisher   *recordingPublisher
	models      *FunctionModels
	links       *Links
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	p := file.NewPersistence(t.TempDir())
	publisher := &recordingPublisher{}
	opts := Options{Publisher: publisher, DefaultEnvironment: "development"}

	return testEnv{
		persistence: p,
		publisher:   publisher,
		models:      NewFunctionModels(p, opts),
		links:       NewLinks(p, opts),
	}
}

type graphFixture struct {
	model  *models.FunctionModel
	input  *models.Node
	stage  *models.Node
	output *models.Node
	action *models.Node
}

// buildGraph creates a draft model with input -> stage -> output and one tether action under the stage.
func buildGraph(t *testing.T, env testEnv) graphFixture {
	t.Helper()

	ctx := t.Context()

	model, err := env.models.Create(ctx, CreateModelRequest{Name: "Order intake", Owner: "alice"})
	require.NoError(t, err)

	input, err := env.models.AddContainerNode(ctx, model.ID, ContainerNodeRequest{
		Kind: "io", Name: "orders in", Direction: "input",
	})
	require.NoError(t, err)

	stage, err := env.models.AddContainerNode(ctx, model.ID, ContainerNodeRequest{
		Kind:         "stage",
		Name:         "validate",
		Position:     models.Position{X: 100},
		Dependencies: []string{input.ID},
		Payload:      &models.NodePayload{Stage: &models.StageConfig{Processing: &models.ProcessingConfig{Strategy: "batch"}}},
	})
	require.NoError(t, err)

	output, err := env.models.AddContainerNode(ctx, model.ID, ContainerNodeRequest{
		Kind:         "io",
		Name:         "orders out",
		Position:     models.Position{X: 200},
		Dependencies: []string{stage.ID},
		Payload: &models.NodePayload{IO: &models.IOConfig{
			Direction:      models.IODirectionOutput,
			OutputContract: map[string]any{"type": "object"},
		}},
	})
	require.NoError(t, err)

	action, err := env.models.AddActionNode(ctx, model.ID, ActionNodeRequest{
		ParentID:       stage.ID,
		Kind:           "tether",
		Name:           "check stock",
		ExecutionOrder: 1,
		Resources:      &models.ResourceRequirements{CPU: 0.5, MemoryMB: 128},
		Payload:        &models.NodePayload{Tether: &models.TetherConfig{Connection: &models.ConnectionConfig{Endpoint: "https://stock.example.com"}}},
	})
	require.NoError(t, err)

	stored, err := env.models.FetchByID(ctx, model.ID)
	require.NoError(t, err)

	return graphFixture{model: stored, input: input, stage: stage, output: output, action: action}
}
