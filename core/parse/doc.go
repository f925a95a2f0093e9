// Package parse extracts structured data from raw LLM text output. Language
// models frequently wrap JSON in narrative prose or markdown code fences, so
// the package applies a layered recovery strategy: candidate extraction,
// automatic JSON repair, then unmarshaling — before falling back to a clear
// error.
//
// The main entry point is the generic [ParseStringAs] function; callers that
// need the raw JSON document first can use [ExtractFirstJSONObject].
package parse
