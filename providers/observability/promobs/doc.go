// Package promobs backs the metrics half of an observability.Provider with
// Prometheus collectors while delegating tracing and logging to another
// provider. [Observer.Handler] serves the registry in the text exposition format.
package promobs
