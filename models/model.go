package models

import (
	"time"

	"gorm.io/gorm"
)

// Model is the base for all integer-keyed entities.
type Model struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Blacklist holds access tokens invalidated by logout.
type Blacklist struct {
	Model
	Token string `json:"token" gorm:"index"`
}
