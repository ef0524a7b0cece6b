// Package main hosts the artistdb CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once per invocation and
// hands it to the pipeline, state store, and preflight packages. Commands
// that publish (build, format) hold the single-instance lock; read-only
// commands (list, show, decode, history) never do.
//
// Command output goes to stdout and logs go to stderr, so list and history
// stay pipeable. Keep heavy lifting in internal packages and surface it here.
package main
