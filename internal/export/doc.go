// Package export finishes the pipeline: rendered clips move from staging into
// a per-item library folder with a manifest and an optional concatenated
// reel. It also routes problem items into the review directory for manual
// triage.
package export
