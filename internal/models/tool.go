package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tags is an ordered list of tag strings, stored as a JSON column so the
// same model works on both PostgreSQL and SQLite.
type Tags []string

// Tool represents an entry in the tools directory.
type Tool struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Title       string    `json:"title" validate:"required,min=1,max=200"`
	Description string    `json:"description" validate:"required,max=2000"`
	Link        string    `json:"link" validate:"required,url"`
	Tags        Tags      `json:"tags" gorm:"serializer:json" validate:"required,min=1,dive,required"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (t *Tool) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}
