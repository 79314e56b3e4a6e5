// Package daemon ties the queue store, workflow manager, and inbox watcher
// together behind a single-instance lock and exposes the operations the IPC
// layer serves to the CLI.
package daemon
