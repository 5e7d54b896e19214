package vars_test

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/volleyhq/volley/pkg/api"
	"github.com/volleyhq/volley/pkg/vars"
)

func testScope() *vars.Scope {
	env := &api.Environment{
		ID:   "env-1",
		Name: "staging",
		Variables: map[string]string{
			"base_url": "https://stage.example.com",
			"shared":   "from-env",
		},
		Dynamic: []*api.DynamicVar{
			{Name: "trace_id", Kind: api.DynamicUUID},
		},
	}
	col := &api.Collection{
		ID:   "col-1",
		Name: "Users API",
		Variables: map[string]string{
			"shared":  "from-collection",
			"version": "v2",
		},
	}
	return vars.NewScope(env, col)
}

func TestResolvePrecedence(t *testing.T) {
	scope := testScope()

	res := scope.Resolve("{{base_url}}/{{version}}/users?s={{shared}}")
	assert.Equal(
		t, "https://stage.example.com/v2/users?s=from-collection", res,
	)
}

func TestEnvironmentVariableBeatsDynamic(t *testing.T) {
	env := &api.Environment{
		Name:      "e",
		Variables: map[string]string{"token": "static"},
	}
	col := &api.Collection{
		Name: "c",
		Dynamic: []*api.DynamicVar{
			{Name: "token", Kind: api.DynamicUUID},
		},
	}

	// environment variables outrank collection dynamics
	scope := vars.NewScope(env, col)
	assert.Equal(t, "static", scope.Resolve("{{token}}"))
}

func TestResolveWhitespaceTrimmed(t *testing.T) {
	scope := testScope()
	assert.Equal(t, "v2", scope.Resolve("{{ version }}"))
	assert.Equal(t, "v2", scope.Resolve("{{\tversion }}"))
}

func TestUnresolvedLeftVerbatim(t *testing.T) {
	scope := testScope()

	assert.Equal(t, "x {{missing}} y", scope.Resolve("x {{missing}} y"))
	assert.Equal(t, "{{ missing }}", scope.Resolve("{{ missing }}"))
}

func TestMalformedNamesNotRecognized(t *testing.T) {
	scope := testScope()

	for _, text := range []string{"{{9bad}}", "{{a-b}}", "{{}}", "{{ a b }}"} {
		assert.Equal(t, text, scope.Resolve(text))
		assert.False(t, vars.ContainsVariables(text))
	}
}

func TestResolveIdempotent(t *testing.T) {
	scope := testScope()

	once := scope.Resolve("{{base_url}}/{{missing}}/x")
	twice := scope.Resolve(once)
	assert.Equal(t, once, twice)
}

func TestSecretsOverlay(t *testing.T) {
	env := &api.Environment{
		Name: "prod",
		Variables: map[string]string{
			"api_key": "placeholder",
		},
		SecretNames: map[string]bool{"api_key": true},
	}
	scope := vars.NewScope(env, nil).
		WithSecrets(map[string]string{"api_key": "s3cret"}, nil)

	assert.Equal(t, "s3cret", scope.Resolve("{{api_key}}"))
	// the record itself stays untouched
	assert.Equal(t, "placeholder", env.Variables["api_key"])
}

func TestDynamicMemoizedPerCall(t *testing.T) {
	env := &api.Environment{
		Name: "e",
		Dynamic: []*api.DynamicVar{
			{Name: "req_id", Kind: api.DynamicUUID},
		},
	}
	scope := vars.NewScope(env, nil)

	res := scope.Resolve("{{req_id}}:{{req_id}}")
	parts := strings.Split(res, ":")
	assert.Equal(t, parts[0], parts[1])
	assert.Len(t, parts[0], 36)

	again := scope.Resolve("{{req_id}}")
	assert.NotEqual(t, parts[0], again)
}

func TestDynamicKinds(t *testing.T) {
	env := &api.Environment{
		Name: "e",
		Dynamic: []*api.DynamicVar{
			{Name: "ts", Kind: api.DynamicTimestamp, Format: "2006-01-02"},
			{Name: "ms", Kind: api.DynamicUnixMilli},
			{Name: "n", Kind: api.DynamicRandomInt, Min: 5, Max: 10},
			{Name: "hex", Kind: api.DynamicRandomHex, Length: 7},
		},
	}
	scope := vars.NewScope(env, nil)

	ts, ok := scope.Lookup("ts")
	assert.True(t, ok)
	_, err := time.Parse("2006-01-02", ts)
	assert.NoError(t, err)

	ms, ok := scope.Lookup("ms")
	assert.True(t, ok)
	parsed, err := strconv.ParseInt(ms, 10, 64)
	assert.NoError(t, err)
	assert.Greater(t, parsed, int64(0))

	for range 20 {
		v, ok := scope.Lookup("n")
		assert.True(t, ok)
		n, err := strconv.ParseInt(v, 10, 64)
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, n, int64(5))
		assert.LessOrEqual(t, n, int64(10))
	}

	hex, ok := scope.Lookup("hex")
	assert.True(t, ok)
	assert.Len(t, hex, 7)
}

func TestSet(t *testing.T) {
	t.Run("environment scope", func(t *testing.T) {
		scope := testScope()
		assert.NoError(t, scope.Set("token", "abc", false))
		assert.Equal(t, "abc", scope.Resolve("{{token}}"))
		assert.Equal(t, "abc", scope.Environment().Variables["token"])
	})

	t.Run("collection scope", func(t *testing.T) {
		scope := testScope()
		assert.NoError(t, scope.Set("token", "abc", true))
		assert.Equal(t, "abc", scope.Collection().Variables["token"])
		_, ok := scope.Environment().Variables["token"]
		assert.False(t, ok)
	})

	t.Run("collection write falls back to environment", func(t *testing.T) {
		env := &api.Environment{Name: "e"}
		scope := vars.NewScope(env, nil)
		assert.NoError(t, scope.Set("token", "abc", true))
		assert.Equal(t, "abc", env.Variables["token"])
	})

	t.Run("no scope at all", func(t *testing.T) {
		scope := vars.NewScope(nil, nil)
		assert.ErrorIs(t, scope.Set("token", "abc", false), vars.ErrNoScope)
	})

	t.Run("invalid name", func(t *testing.T) {
		scope := testScope()
		assert.ErrorIs(
			t, scope.Set("not valid", "abc", false), vars.ErrInvalidName,
		)
	})
}

func TestResolveTracked(t *testing.T) {
	scope := testScope()

	res, unresolved := scope.ResolveTracked(
		"{{version}} {{gone}} {{also_gone}} {{gone}}",
	)
	assert.Equal(t, "v2 {{gone}} {{also_gone}} {{gone}}", res)
	assert.Equal(t, []string{"gone", "also_gone"}, unresolved)
}

func TestExtractNames(t *testing.T) {
	names := vars.ExtractNames("{{a}} {{ b }} {{a}} {{9bad}} {{c_1}}")
	assert.Equal(t, []string{"a", "b", "c_1"}, names)

	assert.Nil(t, vars.ExtractNames("no placeholders here"))
}

func TestResolveRequest(t *testing.T) {
	scope := testScope()
	assert.NoError(t, scope.Set("user", "kay", false))
	assert.NoError(t, scope.Set("secret", "hunter2", false))

	req := &api.Request{
		Kind: api.KindREST,
		URL:  "{{base_url}}/{{version}}/users",
		Headers: map[string]string{
			"X-Client": "workbench/{{version}}",
		},
		Auth: &api.AuthConfig{
			Mode:     api.AuthBasic,
			Username: "{{user}}",
			Password: "{{secret}}",
		},
		REST: &api.RESTConfig{
			Method:   "POST",
			Body:     `{"name":"{{user}}"}`,
			BodyType: api.BodyJSON,
			Query:    map[string]string{"v": "{{version}}"},
		},
	}

	resolved := req.Clone()
	vars.ResolveRequest(scope, resolved)

	assert.Equal(t, "https://stage.example.com/v2/users", resolved.URL)
	assert.Equal(t, "workbench/v2", resolved.Headers["X-Client"])
	assert.Equal(t, "kay", resolved.Auth.Username)
	assert.Equal(t, "hunter2", resolved.Auth.Password)
	assert.Equal(t, `{"name":"kay"}`, resolved.REST.Body)
	assert.Equal(t, "v2", resolved.REST.Query["v"])

	// template untouched
	assert.Equal(t, "{{base_url}}/{{version}}/users", req.URL)
	assert.Equal(t, "{{user}}", req.Auth.Username)
}
