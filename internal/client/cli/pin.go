package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/iudanet/cvvault/internal/validation"
)

// PinEnv переменная окружения с PIN
const PinEnv = "CVVAULT_PIN"

// readPIN получает PIN из источников по приоритету:
// 1. переменная окружения CVVAULT_PIN
// 2. файл из --pin-file
// 3. интерактивный ввод
func (c *Cli) readPIN() (string, error) {
	pin, err := c.lookupPIN()
	if err != nil {
		return "", err
	}
	pin = strings.TrimSpace(pin)
	if err := validation.ValidatePIN(pin); err != nil {
		return "", fmt.Errorf("invalid PIN: %w", err)
	}
	return pin, nil
}

func (c *Cli) lookupPIN() (string, error) {
	if pin := c.getenv(PinEnv); pin != "" {
		c.logger.Debug("PIN taken from environment")
		return pin, nil
	}

	if c.pinFile != "" {
		return readPINFile(c.pinFile)
	}

	pin, err := c.io.ReadPassword("PIN: ")
	if err != nil {
		return "", fmt.Errorf("failed to read PIN: %w", err)
	}
	if pin == "" {
		return "", errors.New("PIN cannot be empty")
	}
	return pin, nil
}

// readNewPIN получает новый PIN для rekey: из файла или двойным вводом
func (c *Cli) readNewPIN(path string) (string, error) {
	var pin string
	if path != "" {
		p, err := readPINFile(path)
		if err != nil {
			return "", err
		}
		pin = p
	} else {
		first, err := c.io.ReadPassword("New PIN: ")
		if err != nil {
			return "", fmt.Errorf("failed to read new PIN: %w", err)
		}
		second, err := c.io.ReadPassword("Repeat new PIN: ")
		if err != nil {
			return "", fmt.Errorf("failed to read new PIN: %w", err)
		}
		if first != second {
			return "", errors.New("PINs do not match")
		}
		pin = first
	}

	pin = strings.TrimSpace(pin)
	if err := validation.ValidatePIN(pin); err != nil {
		return "", fmt.Errorf("invalid new PIN: %w", err)
	}
	return pin, nil
}

func readPINFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read PIN file: %w", err)
	}
	// Убираем trailing newline/whitespace
	pin := strings.TrimSpace(string(content))
	if pin == "" {
		return "", errors.New("PIN file is empty")
	}
	return pin, nil
}
