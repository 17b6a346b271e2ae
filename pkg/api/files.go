package api

import (
	"time"

	"github.com/iudanet/cvvault/internal/models"
)

// FileInfo представляет запись в списке документов
type FileInfo struct {
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
	ID       string    `json:"id"`
	Name     string    `json:"name"`
}

// FilesResponse представляет список документов
type FilesResponse struct {
	Files []FileInfo `json:"files"`
}

// CreateFileRequest представляет запрос на создание документа
type CreateFileRequest struct {
	Name string `json:"name"` // отображаемое имя, пустое → "Untitled"
}

// CreateFileResponse представляет ответ на создание документа
type CreateFileResponse struct {
	ID string `json:"id"`
}

// DocumentResponse представляет расшифрованный документ
type DocumentResponse struct {
	Profile *models.Document `json:"profile"`
	ID      string           `json:"id"`
}

// SaveFileRequest представляет запрос на сохранение документа
type SaveFileRequest struct {
	Profile *models.Document `json:"profile"`
}

// RenameFileRequest представляет запрос на переименование документа
type RenameFileRequest struct {
	Name string `json:"name"`
}

// StatusResponse представляет простой ответ об успешной операции
type StatusResponse struct {
	Status string `json:"status"`
}

// FromModels converts vault listing entries into API entries
func FromModels(files []models.FileInfo) []FileInfo {
	result := make([]FileInfo, 0, len(files))
	for _, f := range files {
		result = append(result, FileInfo{
			ID:       f.ID,
			Name:     f.Name,
			Created:  f.Created,
			Modified: f.Modified,
		})
	}
	return result
}
