package vault

import (
	"fmt"
	"strings"

	"github.com/iudanet/cvvault/internal/crypto"
	"github.com/iudanet/cvvault/internal/validation"
)

// Credentials carries the PIN and its hash for the duration of one request.
// Values are built by the caller per request and never stored by the vault.
type Credentials struct {
	PIN     string
	PinHash string
}

// NewCredentials validates the PIN and computes its hash. Surrounding
// whitespace is not part of the PIN, whatever source it was read from.
func NewCredentials(pin string) (Credentials, error) {
	pin = strings.TrimSpace(pin)
	if err := validation.ValidatePIN(pin); err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return Credentials{PIN: pin, PinHash: crypto.HashPIN(pin)}, nil
}

func (c Credentials) validate() error {
	if err := validation.ValidatePIN(c.PIN); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if crypto.HashPIN(c.PIN) != c.PinHash {
		return fmt.Errorf("%w: pin hash does not match pin", ErrInvalidInput)
	}
	return nil
}
