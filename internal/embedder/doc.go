// Package embedder supplies the two external capabilities the
// indexing pipeline consumes: text description generation and vector
// embedding generation.
//
// Providers (OpenAI, Ollama, and a deterministic offline local
// provider) implement the Provider interface. Production use wraps a
// provider in Resilient, which adds the reliability layer at the most
// failure-prone boundary of the system: an LRU embedding cache keyed
// by content hash, a shared rate limiter, and bounded retry with
// exponential backoff. Provider failures surface as typed errors
// wrapping ErrProviderFailed; the orchestrator decides per call
// whether to degrade or skip.
package embedder
