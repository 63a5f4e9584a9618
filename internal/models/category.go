package models

import (
	"time"

	"github.com/google/uuid"
)

// Sentinel category ids used by the category list read model.
const (
	CategoryIDAll        int64 = 0
	CategoryIDUnassigned int64 = -1
)

// Category uses an integer id (not BaseModel) because the read model
// reserves 0 for the synthetic "All" element and -1 for achievements
// without a category.
type Category struct {
	ID        int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string     `json:"name" gorm:"type:varchar(100);not null"`
	UserID    *uuid.UUID `json:"userID,omitempty" gorm:"type:uuid;index"`
	GroupID   *uuid.UUID `json:"groupID,omitempty" gorm:"type:uuid;index"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CategoryMetaData is the read projection of a category: its achievement
// count and the time of the most recent achievement. It is computed per
// request, never persisted.
type CategoryMetaData struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Continued      int64      `json:"continued"`
	LastChallenged *time.Time `json:"lastChallenged,omitempty"`
}
