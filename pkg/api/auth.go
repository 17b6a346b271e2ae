package api

import "time"

// LoginRequest представляет запрос на открытие сессии по PIN
type LoginRequest struct {
	PIN string `json:"pin"` // PIN пользователя, никогда не сохраняется на сервере
}

// LoginResponse представляет ответ на успешный вход
type LoginResponse struct {
	ExpiresAt   time.Time  `json:"expires_at"`   // время истечения сессии
	AccessToken string     `json:"access_token"` // JWT токен сессии
	Files       []FileInfo `json:"files"`        // документы, открывающиеся этим PIN
	ExpiresIn   int64      `json:"expires_in"`   // время жизни токена в секундах
}

// RekeyRequest представляет запрос на смену PIN
type RekeyRequest struct {
	NewPIN string `json:"new_pin"` // новый PIN
}

// RekeyResponse представляет ответ на смену PIN
type RekeyResponse struct {
	Moved int `json:"moved"` // количество перешифрованных документов
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
