package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// Параметры PBKDF2 для деривации ключа из PIN
const (
	// PBKDF2Iterations - количество итераций HMAC-SHA256.
	// PIN низкоэнтропийный, поэтому деривация намеренно медленная.
	PBKDF2Iterations = 200_000
	// KeySize - длина выходного ключа в байтах (AES-256)
	KeySize = 32
	// SaltSize - размер соли в байтах
	SaltSize = 16
)

// GenerateSalt генерирует криптографически случайную соль.
// Соль генерируется заново при каждом шифровании и никогда не переиспользуется.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// EncodeSalt кодирует соль в base64-url (с padding) для хранения в envelope
func EncodeSalt(salt []byte) string {
	return base64.URLEncoding.EncodeToString(salt)
}

// DecodeSalt декодирует соль из base64-url и проверяет её длину
func DecodeSalt(encoded string) ([]byte, error) {
	salt, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("salt must be %d bytes, got %d", SaltSize, len(salt))
	}
	return salt, nil
}

// DeriveKey получает 32-байтный симметричный ключ из PIN и соли
// через PBKDF2-HMAC-SHA256. Чистая функция: одинаковые (pin, salt)
// всегда дают одинаковый ключ. Ключи не кэшируются.
func DeriveKey(pin string, salt []byte) ([]byte, error) {
	if pin == "" {
		return nil, fmt.Errorf("pin cannot be empty")
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("salt must be %d bytes, got %d", SaltSize, len(salt))
	}

	return pbkdf2.Key([]byte(pin), salt, PBKDF2Iterations, KeySize, sha256.New), nil
}

// Wipe затирает нулями содержимое слайса (ключи не должны жить дольше вызова)
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
