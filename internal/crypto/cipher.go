package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
)

const (
	// NonceSize - размер nonce для AES-GCM (12 bytes стандартный размер)
	NonceSize = 12
	// TagSize - размер authentication tag GCM
	TagSize = 16
	// MaxPayloadSize - максимальный размер plaintext до шифрования
	MaxPayloadSize = 1_000_000
)

var (
	// ErrAuthenticationFailed возвращается, когда ciphertext подделан,
	// обрезан или ключ неверный. Причины намеренно не различаются.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrPayloadTooLarge возвращается, когда plaintext превышает MaxPayloadSize
	ErrPayloadTooLarge = errors.New("payload too large")
)

// Seal шифрует данные с использованием AES-256-GCM
// Формат результата: nonce (12 bytes) + ciphertext + auth_tag (16 bytes)
// Результат самодостаточен: кроме него хранить нужно только соль.
func Seal(plaintext, key []byte) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, fmt.Errorf("plaintext cannot be empty")
	}
	if len(plaintext) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrPayloadTooLarge, len(plaintext), MaxPayloadSize)
	}

	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	// Генерируем случайный nonce
	nonce := make([]byte, NonceSize, NonceSize+len(plaintext)+TagSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Seal дописывает ciphertext + auth_tag сразу после nonce
	return aesGCM.Seal(nonce, nonce, plaintext, nil), nil
}

// Open дешифрует данные, зашифрованные с помощью Seal
// Ожидает формат: nonce (12 bytes) + ciphertext + auth_tag (16 bytes)
func Open(sealed, key []byte) ([]byte, error) {
	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	// Обрезанные данные неотличимы от подделки
	if len(sealed) < NonceSize+TagSize {
		return nil, ErrAuthenticationFailed
	}

	nonce := sealed[:NonceSize]
	ciphertext := sealed[NonceSize:]

	// Дешифруем и проверяем authentication tag
	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}

	return plaintext, nil
}

// newGCM создает AES-256-GCM для ключа длиной KeySize
func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return aesGCM, nil
}
