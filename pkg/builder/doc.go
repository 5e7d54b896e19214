// Package builder provides a fluent API for composing workbench entities
// and driving a running server
//
// Builders are immutable: every With* call returns a copy, so a partially
// configured builder can serve as a prototype for several variations. The
// Client covers the HTTP surface for saving and executing what the
// builders produce.
package builder
