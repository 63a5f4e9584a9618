package models

import (
	"time"

	"github.com/google/uuid"
)

// Achievement ids are monotonically increasing, which the list API relies
// on for its whereIdLessThan cursor.
type Achievement struct {
	ID           int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Title        string     `json:"title" gorm:"type:varchar(150);not null"`
	Content      string     `json:"content" gorm:"type:text;not null"`
	PhotoURL     string     `json:"photoURL" gorm:"type:text;not null"`
	ThumbnailURL *string    `json:"thumbnailURL,omitempty" gorm:"type:text"`
	CategoryID   *int64     `json:"categoryID,omitempty" gorm:"index"`
	UserID       uuid.UUID  `json:"userID" gorm:"type:uuid;not null;index"`
	GroupID      *uuid.UUID `json:"groupID,omitempty" gorm:"type:uuid;index"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	User         User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
