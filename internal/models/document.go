package models

import "time"

// Meta представляет служебный блок документа (_meta).
// Хранится только внутри зашифрованного payload.
type Meta struct {
	Created  time.Time `json:"created"`  // Created время создания, не меняется после создания
	Modified time.Time `json:"modified"` // Modified время последнего сохранения
	Name     string    `json:"name"`     // Name отображаемое имя документа (например, "My CV")
}

// Experience представляет одну запись об опыте работы
type Experience struct {
	Title       string `json:"title"`       // Title должность
	Company     string `json:"company"`     // Company компания
	Location    string `json:"location"`    // Location город/страна
	Start       string `json:"start"`       // Start начало работы (свободный формат, например "2021-03")
	End         string `json:"end"`         // End окончание работы, пусто - по настоящее время
	Description string `json:"description"` // Description обязанности и достижения
}

// Education представляет одну запись об образовании
type Education struct {
	Degree      string `json:"degree"`      // Degree степень или программа
	Institution string `json:"institution"` // Institution учебное заведение
	Location    string `json:"location"`    // Location город/страна
	Start       string `json:"start"`       // Start начало обучения
	End         string `json:"end"`         // End окончание обучения
	Description string `json:"description"` // Description дополнительная информация
}

// Document представляет расшифрованный CV документ.
// Это payload, который сериализуется в JSON и шифруется целиком.
type Document struct {
	Photo      *string      `json:"photo"`      // Photo опциональное фото (data URL), null если нет
	Meta       Meta         `json:"_meta"`      // Meta служебные метаданные
	Name       string       `json:"name"`       // Name имя владельца CV
	Title      string       `json:"title"`      // Title желаемая должность
	Summary    string       `json:"summary"`    // Summary краткое описание
	Email      string       `json:"email"`      // Email контактный email
	Phone      string       `json:"phone"`      // Phone контактный телефон
	Location   string       `json:"location"`   // Location город/страна
	Website    string       `json:"website"`    // Website персональный сайт
	Experience []Experience `json:"experience"` // Experience опыт работы
	Education  []Education  `json:"education"`  // Education образование
	Skills     []string     `json:"skills"`     // Skills навыки
}

// NewDocument создает пустой документ с created == modified == now
func NewDocument(displayName string, now time.Time) *Document {
	return &Document{
		Meta: Meta{
			Name:     displayName,
			Created:  now,
			Modified: now,
		},
		Experience: []Experience{},
		Education:  []Education{},
		Skills:     []string{},
	}
}

// FileInfo представляет запись в списке документов пользователя
type FileInfo struct {
	Created  time.Time `json:"created"`  // Created время создания
	Modified time.Time `json:"modified"` // Modified время последнего изменения
	ID       string    `json:"id"`       // ID идентификатор документа
	Name     string    `json:"name"`     // Name отображаемое имя
}
