// Package workflow drives queue items through the clip pipeline. Two lanes
// poll the queue: the foreground lane probes newly dropped files so problems
// surface fast, while the background lane runs the long speech, analysis, and
// encode stages. Each stage execution is wrapped with a heartbeat so a
// crashed run is reclaimed and restarted from the top of its stage.
package workflow
