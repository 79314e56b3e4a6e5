// Package llm wraps an OpenAI-compatible chat completion API used for clip
// analysis. The client forces JSON-only responses, retries transient HTTP
// failures with backoff (honoring Retry-After), and tolerates the content
// placement quirks of different providers (message content, streaming deltas,
// legacy text, and tool call arguments).
package llm
