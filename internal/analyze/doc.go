// Package analyze selects clip windows from a transcript. An LLM picks and
// titles clips when an API key is configured; otherwise a heuristic scorer
// built on hook phrasing and speech density takes over. Either way results
// are clamped to the configured length bounds, de-overlapped, and capped.
package analyze
