// Package logs reads the daemon log file incrementally so the CLI can show
// recent activity and follow new lines without holding the file open.
package logs
