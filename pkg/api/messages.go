package api

import "time"

type (
	// ExecuteRequestBody carries an ad-hoc request execution. When Request
	// is nil the stored template named by RequestID runs instead. Explicit
	// environment or collection identifiers override the active selections
	ExecuteRequestBody struct {
		Request       *Request `json:"request,omitempty"`
		RequestID     ID       `json:"request_id,omitempty"`
		EnvironmentID ID       `json:"environment_id,omitempty"`
		CollectionID  ID       `json:"collection_id,omitempty"`
	}

	// ConvertRequestBody names the target variant for a request conversion
	ConvertRequestBody struct {
		Kind RequestKind `json:"kind"`
	}

	// ResolveBody carries text for a variable resolution preview
	ResolveBody struct {
		Text          string `json:"text"`
		EnvironmentID ID     `json:"environment_id,omitempty"`
		CollectionID  ID     `json:"collection_id,omitempty"`
	}

	// ResolveResponse returns the preview result along with the placeholder
	// names that had no value in scope
	ResolveResponse struct {
		Text       string   `json:"text"`
		Unresolved []string `json:"unresolved,omitempty"`
	}

	// VariableBody sets a single variable value in a chosen scope
	VariableBody struct {
		Value            string `json:"value"`
		EnvironmentID    ID     `json:"environment_id,omitempty"`
		CollectionID     ID     `json:"collection_id,omitempty"`
		SaveToCollection bool   `json:"save_to_collection,omitempty"`
	}

	// VariableResponse returns a single variable lookup
	VariableResponse struct {
		Name  string `json:"name"`
		Value string `json:"value"`
		Found bool   `json:"found"`
	}

	// RunStartedResponse is returned when a flow run is accepted
	RunStartedResponse struct {
		Message string `json:"message"`
		RunID   ID     `json:"run_id"`
		FlowID  ID     `json:"flow_id"`
	}

	// RunsListResponse contains the runs known to the engine
	RunsListResponse struct {
		Runs  []*FlowResult `json:"runs"`
		Count int           `json:"count"`
	}

	// HistoryEntry summarizes one archived flow run
	HistoryEntry struct {
		RunID      ID        `json:"run_id"`
		ArchivedAt time.Time `json:"archived_at"`
		SizeBytes  int64     `json:"size_bytes"`
	}

	// HistoryListResponse contains the archived runs of a flow
	HistoryListResponse struct {
		FlowID  ID              `json:"flow_id"`
		Entries []*HistoryEntry `json:"entries"`
		Count   int             `json:"count"`
	}

	// EnvironmentsListResponse contains stored environments
	EnvironmentsListResponse struct {
		Environments []*Environment `json:"environments"`
		Count        int            `json:"count"`
	}

	// CollectionsListResponse contains stored collections
	CollectionsListResponse struct {
		Collections []*Collection `json:"collections"`
		Count       int           `json:"count"`
	}

	// RequestsListResponse contains stored request templates
	RequestsListResponse struct {
		Requests []*Request `json:"requests"`
		Count    int        `json:"count"`
	}

	// FlowsListResponse contains stored flows
	FlowsListResponse struct {
		Flows []*Flow `json:"flows"`
		Count int     `json:"count"`
	}

	// SecretsBody carries secret values for an environment or collection.
	// Secrets are stored apart from the owning record
	SecretsBody struct {
		Secrets map[string]string `json:"secrets"`
	}

	// ActiveEnvironmentBody selects the environment used for resolution
	// when a caller does not name one explicitly
	ActiveEnvironmentBody struct {
		EnvironmentID ID `json:"environment_id"`
	}

	// HealthResponse provides service health information
	HealthResponse struct {
		Service string `json:"service"`
		Status  string `json:"status"`
		Version string `json:"version,omitempty"`
	}

	// MessageResponse contains a simple message string
	MessageResponse struct {
		Message string `json:"message"`
	}

	// ErrorResponse contains error details for failed requests
	ErrorResponse struct {
		Error  string `json:"error"`
		Status int    `json:"status,omitempty"`
	}
)
