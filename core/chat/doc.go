// Package chat orchestrates a single chat exchange as a pipeline of named
// stages: select memories, infer a persona, compose the system prompt, call
// the model, split canvas content out of the answer, and derive a compact
// memory record from the exchange.
//
// Each stage carries an explicit failure policy. The main generation call is
// fail-fast; auxiliary model calls (persona inference, auto-memory) degrade:
// their failure is logged and the request proceeds without their output.
package chat
