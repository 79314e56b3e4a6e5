// Package api defines transport-friendly representations of queue and
// workflow state shared by the IPC layer and the CLI.
package api
