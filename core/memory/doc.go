// Package memory models the user-provided memory records and selects the
// subset worth injecting into a prompt. Selection is a pure function of the
// inputs: score memories against the prompt's significant tokens, group them
// by topic, and pack groups greedily into a character budget.
package memory
