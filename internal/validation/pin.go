package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MinPINLen минимальная длина PIN (в символах)
	MinPINLen = 4
	// MaxPINLen максимальная длина PIN
	MaxPINLen = 128
	// MaxDisplayNameLen максимальная длина отображаемого имени документа
	MaxDisplayNameLen = 200
)

// DocumentIDPattern определяет допустимый формат идентификатора документа.
// Только латинские буквы, цифры, '-' и '_': идентификатор становится именем файла,
// поэтому разделители пути и точки запрещены.
var DocumentIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidatePIN проверяет минимальные требования к PIN
func ValidatePIN(pin string) error {
	if pin == "" {
		return fmt.Errorf("PIN cannot be empty")
	}

	n := utf8.RuneCountInString(pin)
	if n < MinPINLen {
		return fmt.Errorf("PIN must be at least %d characters", MinPINLen)
	}
	if n > MaxPINLen {
		return fmt.Errorf("PIN must not exceed %d characters", MaxPINLen)
	}

	return nil
}

// ValidateDisplayName проверяет отображаемое имя документа
func ValidateDisplayName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name cannot be empty")
	}

	if utf8.RuneCountInString(name) > MaxDisplayNameLen {
		return fmt.Errorf("name must not exceed %d characters", MaxDisplayNameLen)
	}

	return nil
}

// ValidateDocumentID проверяет идентификатор документа
func ValidateDocumentID(id string) error {
	if id == "" {
		return fmt.Errorf("document id cannot be empty")
	}

	if !DocumentIDPattern.MatchString(id) {
		return fmt.Errorf("document id can only contain letters, numbers, '-' and '_' (max 64)")
	}

	return nil
}
