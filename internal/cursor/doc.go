// Package cursor implements the opaque pagination token used by recipe
// listings.
//
// A Cursor records where the next page starts (the sort value and id of the
// first row NOT yet returned) and the sort configuration it was minted for.
//
// # Wire format
//
// The token is the URL-safe, unpadded base64 encoding of a compact JSON
// object with four keys:
//
//	{"v": <last value>, "o": "ASC"|"DESC", "f": "title"|"updatedAt"|"createdAt", "i": "<uuid>"}
//
// Textual values are JSON strings, timestamps are RFC 3339 strings in UTC
// with nanosecond precision, and integers are JSON integers. Encoding is a
// pure function of the Cursor, so equal cursors always produce equal tokens.
//
// # Validation
//
// Decode never panics on client input. Anything that is not a token this
// package could have produced is a VALIDATION error. Validate rejects a
// well-formed token presented with a different sort field or order as a
// CONSISTENCY error: a token is only meaningful for the ordering it was
// minted under.
package cursor
