package builder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/volleyhq/volley/pkg/api"
)

type (
	// Client talks to a running workbench server over HTTP
	Client struct {
		httpClient *http.Client
		baseURL    string
	}

	// RunClient scopes operations to one flow run
	RunClient struct {
		client *Client
		runID  api.ID
	}
)

var (
	ErrSaveRequest       = errors.New("failed to save request")
	ErrExecuteRequest    = errors.New("failed to execute request")
	ErrSaveFlow          = errors.New("failed to save flow")
	ErrSaveEnvironment   = errors.New("failed to save environment")
	ErrSaveCollection    = errors.New("failed to save collection")
	ErrSelectEnvironment = errors.New("failed to select environment")
	ErrStartRun          = errors.New("failed to start flow run")
	ErrGetRun            = errors.New("failed to get run")
	ErrCancelRun         = errors.New("failed to cancel run")
)

const (
	routeRequests     = "/api/requests"
	routeExecute      = "/api/requests/execute"
	routeFlows        = "/api/flows"
	routeRuns         = "/api/runs"
	routeEnvironments = "/api/environments"
	routeCollections  = "/api/collections"
	routeActiveEnv    = "/api/active-environment"

	runPollInterval = 50 * time.Millisecond
)

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SaveRequest stores a request template on the server
func (c *Client) SaveRequest(ctx context.Context, req *api.Request) error {
	return c.do(ctx, "POST", routeRequests, req, nil, ErrSaveRequest)
}

// Execute runs an execution body, either an inline request or a stored
// template with optional scope overrides
func (c *Client) Execute(
	ctx context.Context, body *api.ExecuteRequestBody,
) (*api.RequestResponse, error) {
	var res api.RequestResponse
	err := c.do(ctx, "POST", routeExecute, body, &res, ErrExecuteRequest)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ExecuteRequest runs a stored request template under the active scopes
func (c *Client) ExecuteRequest(
	ctx context.Context, requestID api.ID,
) (*api.RequestResponse, error) {
	return c.Execute(ctx, &api.ExecuteRequestBody{RequestID: requestID})
}

// SaveFlow stores a flow on the server
func (c *Client) SaveFlow(ctx context.Context, flow *api.Flow) error {
	return c.do(ctx, "POST", routeFlows, flow, nil, ErrSaveFlow)
}

// SaveEnvironment stores an environment on the server
func (c *Client) SaveEnvironment(
	ctx context.Context, env *api.Environment,
) error {
	return c.do(ctx, "POST", routeEnvironments, env, nil, ErrSaveEnvironment)
}

// SaveCollection stores a collection on the server
func (c *Client) SaveCollection(
	ctx context.Context, col *api.Collection,
) error {
	return c.do(ctx, "POST", routeCollections, col, nil, ErrSaveCollection)
}

// UseEnvironment selects the active environment; an empty ID clears the
// selection
func (c *Client) UseEnvironment(ctx context.Context, id api.ID) error {
	body := &api.ActiveEnvironmentBody{EnvironmentID: id}
	return c.do(ctx, "PUT", routeActiveEnv, body, nil, ErrSelectEnvironment)
}

// StartRun launches a flow and returns the accepted run identifiers
func (c *Client) StartRun(
	ctx context.Context, flowID api.ID,
) (*api.RunStartedResponse, error) {
	var res api.RunStartedResponse
	path := c.path("%s/%s/run", routeFlows, flowID)
	if err := c.do(ctx, "POST", path, nil, &res, ErrStartRun); err != nil {
		return nil, err
	}
	return &res, nil
}

// Run returns a client scoped to one flow run
func (c *Client) Run(runID api.ID) *RunClient {
	return &RunClient{
		client: c,
		runID:  runID,
	}
}

// Get fetches the run's current record
func (rc *RunClient) Get(ctx context.Context) (*api.FlowResult, error) {
	var res api.FlowResult
	path := rc.client.path("%s/%s", routeRuns, rc.runID)
	err := rc.client.do(ctx, "GET", path, nil, &res, ErrGetRun)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Cancel requests cancellation of the run
func (rc *RunClient) Cancel(ctx context.Context) error {
	path := rc.client.path("%s/%s/cancel", routeRuns, rc.runID)
	return rc.client.do(ctx, "POST", path, nil, nil, ErrCancelRun)
}

// Wait polls the run until it reaches a terminal status. The context
// bounds the wait
func (rc *RunClient) Wait(ctx context.Context) (*api.FlowResult, error) {
	ticker := time.NewTicker(runPollInterval)
	defer ticker.Stop()
	for {
		res, err := rc.Get(ctx)
		if err != nil {
			return nil, err
		}
		if res.Finished() {
			return res, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (rc *RunClient) RunID() api.ID {
	return rc.runID
}

func (c *Client) path(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

func (c *Client) do(
	ctx context.Context, method, path string, in, out any, sentinel error,
) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(
		ctx, method, c.baseURL+path, body,
	)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: %s", sentinel, errorText(resp))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return nil
}

// errorText extracts the server's error envelope, falling back to the
// bare status code when the body is not one
func errorText(resp *http.Response) string {
	var envelope api.ErrorResponse
	err := json.NewDecoder(resp.Body).Decode(&envelope)
	if err == nil && envelope.Error != "" {
		return fmt.Sprintf("status %d: %s", resp.StatusCode, envelope.Error)
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}
