// Package ports declares what the dispatch core needs from the outside world:
// order and courier storage with atomic conditional updates, an optional
// courier geo cache, and metrics sinks. Adapters under internal/adapters/out
// implement them.
package ports
