// Package llm threads provider calls through a linear middleware chain. The
// gateway performs every generation round trip (answer, persona inference,
// auto-memory) through the same wrapped SendFunc, so cross-cutting concerns
// like request logging live here rather than in the pipeline stages.
package llm
