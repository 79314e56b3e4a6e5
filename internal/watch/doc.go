// Package watch feeds the queue from an inbox directory. New video files are
// enqueued only after their size stops changing for a settle period, so files
// still being copied in never enter the pipeline half-written.
package watch
