// Package vault implements the PIN-keyed encrypted document store.
//
// Layout on disk:
//
//	<root>/<sha256(PIN)[:12]>/<document-id>.json
//
// Every file is an envelope {"salt": ..., "ciphertext": ...}. The salt is
// fresh for each write and the key is re-derived from the PIN on every
// operation, so nothing secret is kept between calls. There is no separate
// PIN check: a wrong PIN shows up as ErrAuthenticationFailed when a document
// is opened.
//
// The directory name is a 12 hex character prefix of the PIN hash. Two PINs
// sharing that prefix share a directory; they still cannot read each other's
// documents, but they can see and delete each other's files.
package vault
