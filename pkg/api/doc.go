// Package api defines the core data types for the workbench
//
// This package contains all the shared types used across the execution
// pipeline, including request templates and their protocol variants,
// environments and collections, flows, run results, live run events, and
// HTTP messages
package api
