package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/volleyhq/volley/internal/assert/helpers"
	"github.com/volleyhq/volley/internal/engine"
	"github.com/volleyhq/volley/pkg/api"
)

const testTimeout = 5 * time.Second

func TestNew(t *testing.T) {
	helpers.WithEngine(t, func(eng *engine.Engine) {
		assert.NotNil(t, eng)
	})
}

func TestCloseIdempotent(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		assert.NoError(t, env.Engine.Close())
		assert.NoError(t, env.Engine.Close())
	})
}

func TestCloseCancelsActiveRuns(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		req := helpers.NewRESTRequest("https://api.example.com/slow")
		flow := helpers.NewTestFlow(req)
		env.Seed(t, req, flow)
		env.Dispatcher.SetDelay(req.ID, 10*time.Second)

		res, err := env.Engine.StartRun(context.Background(), flow.ID)
		assert.NoError(t, err)
		assert.True(t, env.Dispatcher.WaitForCall(req.ID, testTimeout))

		assert.NoError(t, env.Engine.Close())

		final, err := env.Engine.GetRun(res.ID)
		assert.NoError(t, err)
		assert.Equal(t, api.RunCancelled, final.Status)
	})
}

func TestGetRunNotFound(t *testing.T) {
	helpers.WithEngine(t, func(eng *engine.Engine) {
		res, err := eng.GetRun("no-such-run")
		assert.Nil(t, res)
		assert.ErrorIs(t, err, engine.ErrRunNotFound)
	})
}

func TestCancelRunNotFound(t *testing.T) {
	helpers.WithEngine(t, func(eng *engine.Engine) {
		err := eng.CancelRun("no-such-run")
		assert.ErrorIs(t, err, engine.ErrRunNotFound)
	})
}
