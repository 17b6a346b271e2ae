package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashPIN возвращает SHA-256 от PIN в виде hex-строки (64 символа).
// Это НЕ ключевой материал: хеш используется только для выбора каталога
// пользователя. Для короткого PIN хеш перебирается за секунды, поэтому
// его нельзя отдавать клиенту или писать в логи.
func HashPIN(pin string) string {
	hash := sha256.Sum256([]byte(pin))
	return hex.EncodeToString(hash[:])
}

// IsPinHash проверяет, что строка похожа на результат HashPIN
func IsPinHash(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
