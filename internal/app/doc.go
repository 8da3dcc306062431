// Package app assembles a ready-to-use answer agent from a [config.Config]:
// observer, model provider and client chain, tool catalog, dispatcher and loop.
// The CLI and the HTTP server share it.
package app
