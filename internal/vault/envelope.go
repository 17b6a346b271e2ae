package vault

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/iudanet/cvvault/internal/crypto"
	"github.com/iudanet/cvvault/internal/models"
)

// Envelope is the on-disk record of one document
type Envelope struct {
	Salt       string `json:"salt"`       // base64-url, 16 bytes
	Ciphertext string `json:"ciphertext"` // base64-url of nonce + AES-GCM output
}

// sealDocument serializes doc and encrypts it under a key derived from pin
// with a fresh salt. It returns the envelope file content.
func sealDocument(doc *models.Document, pin string) ([]byte, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	// Проверяем размер до медленной деривации ключа
	if len(payload) > crypto.MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrPayloadTooLarge, len(payload), crypto.MaxPayloadSize)
	}

	salt, err := crypto.GenerateSalt()
	if err != nil {
		return nil, err
	}

	key, err := crypto.DeriveKey(pin, salt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	defer crypto.Wipe(key)

	sealed, err := crypto.Seal(payload, key)
	if err != nil {
		if errors.Is(err, crypto.ErrPayloadTooLarge) {
			return nil, fmt.Errorf("%w: %v", ErrPayloadTooLarge, err)
		}
		return nil, fmt.Errorf("seal document: %w", err)
	}

	return json.Marshal(Envelope{
		Salt:       crypto.EncodeSalt(salt),
		Ciphertext: base64.URLEncoding.EncodeToString(sealed),
	})
}

// parseEnvelope decodes an envelope file. Anything other than an object with
// exactly the two non-empty string fields is ErrCorruptVault.
func parseEnvelope(data []byte) (salt, sealed []byte, err error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var env Envelope
	if err := dec.Decode(&env); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorruptVault, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%w: trailing data after envelope", ErrCorruptVault)
	}

	if env.Salt == "" {
		return nil, nil, fmt.Errorf("%w: missing salt", ErrCorruptVault)
	}
	if env.Ciphertext == "" {
		return nil, nil, fmt.Errorf("%w: missing ciphertext", ErrCorruptVault)
	}

	salt, err = crypto.DecodeSalt(env.Salt)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorruptVault, err)
	}

	sealed, err = base64.URLEncoding.DecodeString(env.Ciphertext)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to decode ciphertext: %v", ErrCorruptVault, err)
	}

	return salt, sealed, nil
}

// openDocument decrypts an envelope file with a key derived from pin
func openDocument(data []byte, pin string) (*models.Document, error) {
	salt, sealed, err := parseEnvelope(data)
	if err != nil {
		return nil, err
	}

	key, err := crypto.DeriveKey(pin, salt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	defer crypto.Wipe(key)

	plaintext, err := crypto.Open(sealed, key)
	if err != nil {
		if errors.Is(err, crypto.ErrAuthenticationFailed) {
			return nil, ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("open document: %w", err)
	}

	var doc models.Document
	if err := json.Unmarshal(plaintext, &doc); err != nil {
		return nil, fmt.Errorf("%w: payload is not a document: %v", ErrCorruptVault, err)
	}

	return &doc, nil
}
