package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scope identifies the owner context of categories and achievements:
// either one user's personal space or one group. UserID is always the
// acting user; GroupID is set for group-scoped requests.
type Scope struct {
	UserID  uuid.UUID
	GroupID *uuid.UUID
}

func UserScope(userID uuid.UUID) Scope {
	return Scope{UserID: userID}
}

func GroupScope(userID, groupID uuid.UUID) Scope {
	return Scope{UserID: userID, GroupID: &groupID}
}

func (s Scope) categoryFilter(tx *gorm.DB) *gorm.DB {
	if s.GroupID != nil {
		return tx.Where("categories.group_id = ?", *s.GroupID)
	}
	return tx.Where("categories.user_id = ? AND categories.group_id IS NULL", s.UserID)
}

func (s Scope) achievementFilter(tx *gorm.DB) *gorm.DB {
	if s.GroupID != nil {
		return tx.Where("achievements.group_id = ?", *s.GroupID)
	}
	return tx.Where("achievements.user_id = ? AND achievements.group_id IS NULL", s.UserID)
}
