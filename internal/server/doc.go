// Package server implements the HTTP API for the workbench
//
// This package provides REST endpoints for managing environments,
// collections, requests, and flows, for executing requests and flow runs,
// and a WebSocket endpoint streaming run progress events
package server
