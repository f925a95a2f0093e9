// Package ai defines the provider-neutral chat request/response model and the
// Provider interface implemented by concrete LLM backends (see the gemini
// subpackage). Callers build a ChatRequest, dispatch it through a Provider,
// and receive a normalized ChatResponse regardless of the underlying wire
// format.
package ai
