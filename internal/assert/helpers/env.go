package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/volleyhq/volley/internal/config"
	"github.com/volleyhq/volley/internal/engine"
	"github.com/volleyhq/volley/internal/engine/event"
	"github.com/volleyhq/volley/internal/store"
	"github.com/volleyhq/volley/pkg/api"
)

// TestEnv holds all the components needed for engine testing
type TestEnv struct {
	Engine     *engine.Engine
	Stores     *store.Stores
	Dispatcher *MockDispatcher
	Hub        *event.Hub
	Config     *config.Config
	Cleanup    func()
}

// NewTestEnv creates a fully configured test environment with in-memory
// stores and a mock dispatcher
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	cfg := NewTestConfig()
	cfg.ShutdownTimeout = 2 * time.Second

	stores := store.NewMemoryStores()
	dispatcher := NewMockDispatcher()
	hub := event.NewHub()
	eng := engine.New(stores, dispatcher, hub, nil, cfg)

	return &TestEnv{
		Engine:     eng,
		Stores:     stores,
		Dispatcher: dispatcher,
		Hub:        hub,
		Config:     cfg,
		Cleanup: func() {
			_ = eng.Close()
		},
	}
}

// Seed stores the given fixtures, failing the test on any store error
func (env *TestEnv) Seed(t *testing.T, items ...any) {
	t.Helper()
	ctx := context.Background()
	for _, item := range items {
		var err error
		switch v := item.(type) {
		case *api.Environment:
			err = env.Stores.Environments.Add(ctx, v)
		case *api.Collection:
			err = env.Stores.Collections.Add(ctx, v)
		case *api.Request:
			err = env.Stores.Requests.Add(ctx, v)
		case *api.Flow:
			err = env.Stores.Flows.Add(ctx, v)
		default:
			t.Fatalf("unsupported fixture type %T", item)
		}
		assert.NoError(t, err)
	}
}

// Activate marks an environment as the active selection
func (env *TestEnv) Activate(t *testing.T, id api.ID) {
	t.Helper()
	err := env.Stores.Settings.SetActiveEnvironment(context.Background(), id)
	assert.NoError(t, err)
}

// WithTestEnv creates a test environment, executes the provided function
// with it, and ensures cleanup happens automatically
func WithTestEnv(t *testing.T, fn func(*TestEnv)) {
	t.Helper()
	env := NewTestEnv(t)
	defer env.Cleanup()
	fn(env)
}

// WithEngine creates a test environment, executes the provided function
// with its engine, and ensures cleanup happens automatically
func WithEngine(t *testing.T, fn func(*engine.Engine)) {
	t.Helper()
	WithTestEnv(t, func(env *TestEnv) {
		fn(env.Engine)
	})
}
