// Package parse turns model output text into typed Go values.
//
// Model output is JSON-shaped more often than it is JSON: fences, single
// quotes, trailing commas and truncation are all common. [As] unmarshals
// strictly first and falls back to a jsonrepair pass before giving up, so
// tool-call arguments and structured responses survive the usual mangling.
package parse
