// Package ingest is the event source: it turns a CSV input stream into
// typed ledger events and feeds them, in file order, into the bounded
// channel the engine consumes.
//
// The package owns all row-level validation. Malformed rows (wrong field
// count, unparsable client/tx/amount, broken CSV quoting) are logged,
// collected for an optional rejects file, and never reach the engine. A
// well-formed row with an unrecognized type token is forwarded as an
// Unknown event so the engine can account for it.
//
// Input bytes pass through a small reader stack before CSV decoding:
// BOM stripping, on-the-fly UTF-8 repair, and byte counting. See
// [WrapInput].
package ingest
