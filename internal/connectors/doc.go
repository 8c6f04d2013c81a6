// Package connectors provides document source implementations. Each
// connector knows how to load raw documents from one source type and,
// where the source supports it, watch it for changes.
package connectors
