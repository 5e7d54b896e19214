// Package volley is an API testing workbench core. It resolves scoped
// variables inside request templates, executes REST, GraphQL, and WebSocket
// requests through protocol executors, extracts values from responses, and
// runs multi-step flows sequentially with per-step failure policies.
package volley

const (
	// Name is the service name reported in logs and health output
	Name = "volley"

	// Version is the build version, overridden at release time
	Version = "0.1.0"
)
