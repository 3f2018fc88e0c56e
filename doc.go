package dyaml

// Package dyaml defines and enforces a canonical, deterministic subset of
// YAML ("restricted form") in which semantically identical data always
// serializes to byte-identical text, and human comments survive as
// first-class $human$ data fields instead of being discarded.
//
// It provides:
//
// - A canonical encoder (Encode) that renders a value tree into the unique
//   restricted-form text for that tree
// - A comment-aware parser (Parse) built on yaml.v3 that yields a value tree
//   plus the comment records extracted from the original text
// - An annotation synthesizer (Synthesize/Strip) that consolidates extracted
//   comments into $human$ fields, optionally stamping CRC32 markers
// - A structural validator (Validate) with line-scoped diagnostics and an
//   authoritative re-encode canonicality check
// - A semantic differ (Diff/Equal) over value trees
//
// Design policy:
// - Keep only public APIs in the root package; checksum/parity utilities live
//   under checksum/, schema-driven field encoding under schema/, and the CLI
//   under cmd/dyaml.
// - Every expected failure is a value (Issues, Result); only malformed input
//   surfaces as a plain error.
// - All entry points are pure functions over in-memory trees: no I/O, no
//   shared state, safe to call from concurrent goroutines.
//
// Typical usage:
//
//	out, err := dyaml.Normalize(data, dyaml.SynthOptions{Preserve: true})
//	res := dyaml.Validate(data)
//	if !res.Valid { ... }
