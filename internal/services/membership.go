package services

import (
	"github.com/google/uuid"
	"github.com/motimate/backend/internal/apperr"
	"github.com/motimate/backend/internal/models"
	"gorm.io/gorm"
)

// findActiveMembership resolves the membership edge for a (user, group)
// pair, ignoring removed edges. The missing-membership case is always
// reported as its own error kind, before any grade check that depends on it.
func findActiveMembership(tx *gorm.DB, userID, groupID uuid.UUID) (*models.UserGroup, error) {
	var membership models.UserGroup
	err := tx.First(&membership, "user_id = ? AND group_id = ? AND status = ?",
		userID, groupID, models.MembershipActive).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperr.ErrNotFoundUserGroup
	}
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func hasActiveMembership(tx *gorm.DB, userID, groupID uuid.UUID) (bool, error) {
	var count int64
	err := tx.Model(&models.UserGroup{}).
		Where("user_id = ? AND group_id = ? AND status = ?", userID, groupID, models.MembershipActive).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
