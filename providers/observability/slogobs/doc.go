// Package slogobs provides an observability.Provider implementation backed by
// Go's standard library log/slog package.
// It supports structured span events, in-memory metrics, and levelled logging.
// The main entry point is [New]; output and log level can be tuned with
// [WithLogger], [WithLevel], and [WithOutput].
package slogobs
