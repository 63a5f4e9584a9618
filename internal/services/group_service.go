package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/motimate/backend/internal/apperr"
	"github.com/motimate/backend/internal/models"
	"github.com/motimate/backend/pkg/shortcode"
	"gorm.io/gorm"
)

// GroupService owns the group membership workflow: create, join by code,
// invite by user code, leave, and grade changes. Every mutating method runs
// inside a single transaction so domain failures never leave partial writes.
type GroupService struct {
	DB               *gorm.DB
	Codes            *shortcode.Generator
	DefaultAvatarURL string
}

func NewGroupService(db *gorm.DB, codes *shortcode.Generator, defaultAvatarURL string) *GroupService {
	return &GroupService{DB: db, Codes: codes, DefaultAvatarURL: defaultAvatarURL}
}

// GroupSummary is the list projection of a group for one member.
type GroupSummary struct {
	ID          uuid.UUID             `json:"id"`
	Name        string                `json:"name"`
	AvatarURL   *string               `json:"avatarURL,omitempty"`
	GroupCode   *string               `json:"groupCode,omitempty"`
	Grade       models.UserGroupGrade `json:"grade"`
	MemberCount int64                 `json:"memberCount"`
}

// Create persists a new group with the caller as its LEADER. A default
// avatar is assigned when none was supplied, and a unique join code is
// generated before the group row is written.
func (s *GroupService) Create(ctx context.Context, user *models.User, name string, avatarURL *string) (*models.Group, error) {
	group := &models.Group{Name: name, AvatarURL: avatarURL}
	if group.AvatarURL == nil && s.DefaultAvatarURL != "" {
		defaultAvatar := s.DefaultAvatarURL
		group.AvatarURL = &defaultAvatar
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		code, err := s.Codes.Generate(func(candidate string) (bool, error) {
			var count int64
			if err := tx.Model(&models.Group{}).Where("group_code = ?", candidate).Count(&count).Error; err != nil {
				return false, err
			}
			return count > 0, nil
		})
		if err != nil {
			return err
		}
		group.GroupCode = &code

		if err := tx.Create(group).Error; err != nil {
			return err
		}

		membership := models.UserGroup{
			UserID:  user.ID,
			GroupID: group.ID,
			Grade:   models.GradeLeader,
			Status:  models.MembershipActive,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// List returns the groups the user actively belongs to, newest first.
func (s *GroupService) List(ctx context.Context, userID uuid.UUID) ([]GroupSummary, error) {
	summaries := []GroupSummary{}
	err := s.DB.WithContext(ctx).
		Table("groups").
		Select(`groups.id, groups.name, groups.avatar_url, groups.group_code, user_groups.grade,
			(SELECT COUNT(*) FROM user_groups members
			 WHERE members.group_id = groups.id AND members.status = ?) AS member_count`,
			models.MembershipActive).
		Joins("JOIN user_groups ON user_groups.group_id = groups.id").
		Where("user_groups.user_id = ? AND user_groups.status = ?", userID, models.MembershipActive).
		Order("groups.created_at DESC").
		Scan(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// Get loads a group with its active members. Non-members get the
// missing-membership error, not the group.
func (s *GroupService) Get(ctx context.Context, userID, groupID uuid.UUID) (*models.Group, error) {
	db := s.DB.WithContext(ctx)

	if _, err := findActiveMembership(db, userID, groupID); err != nil {
		return nil, err
	}

	var group models.Group
	err := db.
		Preload("Memberships", "status = ?", models.MembershipActive).
		Preload("Memberships.User").
		First(&group, "id = ?", groupID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperr.ErrNotFoundGroup
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// RequireMembership resolves the caller's active membership in a group.
// Group-scoped category and achievement handlers gate on it.
func (s *GroupService) RequireMembership(ctx context.Context, userID, groupID uuid.UUID) (*models.UserGroup, error) {
	return findActiveMembership(s.DB.WithContext(ctx), userID, groupID)
}

// Join adds the user to the group identified by its join code as a
// PARTICIPANT. The group-existence check runs before the duplicate check.
func (s *GroupService) Join(ctx context.Context, user *models.User, groupCode string) (*models.UserGroup, error) {
	var membership models.UserGroup
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.Group
		err := tx.First(&group, "group_code = ?", groupCode).Error
		if err == gorm.ErrRecordNotFound {
			return apperr.ErrNotFoundGroup
		}
		if err != nil {
			return err
		}

		joined, err := hasActiveMembership(tx, user.ID, group.ID)
		if err != nil {
			return err
		}
		if joined {
			return apperr.ErrDuplicatedJoin
		}

		membership = models.UserGroup{
			UserID:  user.ID,
			GroupID: group.ID,
			Grade:   models.GradeParticipant,
			Status:  models.MembershipActive,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// Invite adds the user identified by userCode to the group as a
// PARTICIPANT. Only LEADER and MANAGER members may invite.
func (s *GroupService) Invite(ctx context.Context, inviterID, groupID uuid.UUID, targetUserCode string) (*models.UserGroup, error) {
	var membership models.UserGroup
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inviter, err := findActiveMembership(tx, inviterID, groupID)
		if err != nil {
			return err
		}
		if !inviter.Grade.CanInvite() {
			return apperr.ErrInvitePermissionDenied
		}

		var target models.User
		err = tx.First(&target, "user_code = ?", targetUserCode).Error
		if err == gorm.ErrRecordNotFound {
			return apperr.ErrNoSuchUser
		}
		if err != nil {
			return err
		}

		joined, err := hasActiveMembership(tx, target.ID, groupID)
		if err != nil {
			return err
		}
		if joined {
			return apperr.ErrDuplicatedInvite
		}

		membership = models.UserGroup{
			UserID:  target.ID,
			GroupID: groupID,
			Grade:   models.GradeParticipant,
			Status:  models.MembershipActive,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// Leave soft-removes the user's membership. The LEADER may never leave;
// leadership has to be transferred first via UpdateGrade.
func (s *GroupService) Leave(ctx context.Context, userID, groupID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		membership, err := findActiveMembership(tx, userID, groupID)
		if err != nil {
			return err
		}
		if membership.Grade == models.GradeLeader {
			return apperr.ErrLeaderNotAllowedToLeave
		}
		return tx.Model(&models.UserGroup{}).
			Where("id = ?", membership.ID).
			Update("status", models.MembershipRemoved).Error
	})
}

// UpdateGrade assigns a new grade to the member identified by userCode.
// Only the LEADER may assign grades. Promoting a member to LEADER transfers
// leadership: the current leader is demoted to MANAGER in the same
// transaction, so the group always has exactly one active LEADER.
func (s *GroupService) UpdateGrade(ctx context.Context, requesterID, groupID uuid.UUID, targetUserCode string, grade models.UserGroupGrade) (*models.UserGroup, error) {
	var target models.UserGroup
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requester, err := findActiveMembership(tx, requesterID, groupID)
		if err != nil {
			return err
		}
		if requester.Grade != models.GradeLeader {
			return apperr.ErrOnlyLeaderAllowedAssignGrade
		}

		err = tx.
			Joins("JOIN users ON users.id = user_groups.user_id").
			Where("users.user_code = ? AND user_groups.group_id = ? AND user_groups.status = ?",
				targetUserCode, groupID, models.MembershipActive).
			First(&target).Error
		if err == gorm.ErrRecordNotFound {
			return apperr.ErrNotFoundUserGroup
		}
		if err != nil {
			return err
		}

		if target.ID == requester.ID {
			return apperr.ErrLeaderGradeChangeNotAllowed
		}

		if grade == models.GradeLeader {
			if err := tx.Model(&models.UserGroup{}).
				Where("id = ?", requester.ID).
				Update("grade", models.GradeManager).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.UserGroup{}).
			Where("id = ?", target.ID).
			Update("grade", grade).Error; err != nil {
			return err
		}
		target.Grade = grade
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &target, nil
}
