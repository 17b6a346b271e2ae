package vault

import "errors"

// Vault errors. Store classifies low-level failures into these values,
// callers match them with errors.Is.
var (
	// ErrInvalidInput indicates a bad PIN, display name or document id
	ErrInvalidInput = errors.New("invalid input")

	// ErrPayloadTooLarge indicates the serialized document exceeds the size limit
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrNotFound indicates that the document does not exist
	ErrNotFound = errors.New("document not found")

	// ErrCorruptVault indicates the stored envelope is malformed
	ErrCorruptVault = errors.New("corrupt vault data")

	// ErrAuthenticationFailed indicates a wrong PIN or a tampered ciphertext
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrStorage indicates a filesystem failure (permissions, disk full, I/O)
	ErrStorage = errors.New("storage error")
)

// IsOpenFailure reports whether err must be shown to the user as
// "could not open document: check your PIN". Wrong PIN and corrupted files
// are not distinguished outside the vault.
func IsOpenFailure(err error) bool {
	return errors.Is(err, ErrAuthenticationFailed) || errors.Is(err, ErrCorruptVault)
}
