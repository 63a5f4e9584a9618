package services

import (
	"context"

	"github.com/motimate/backend/internal/apperr"
	"github.com/motimate/backend/internal/models"
	"gorm.io/gorm"
)

const (
	defaultListTake = 12
	maxListTake     = 100
)

type AchievementService struct {
	DB *gorm.DB
}

func NewAchievementService(db *gorm.DB) *AchievementService {
	return &AchievementService{DB: db}
}

type AchievementCreate struct {
	Title        string
	Content      string
	PhotoURL     string
	ThumbnailURL *string
	CategoryID   *int64
}

type AchievementUpdate struct {
	Title      *string
	Content    *string
	CategoryID *int64
}

// AchievementListQuery filters the cursor-paginated list. CategoryID nil or
// the "All" sentinel means every achievement in scope; the unassigned
// sentinel selects achievements without a category.
type AchievementListQuery struct {
	CategoryID      *int64
	Take            int
	WhereIDLessThan *int64
}

// AchievementList carries a page plus the cursor for the next one. Next is
// nil once the listing is exhausted.
type AchievementList struct {
	Achievements []models.Achievement `json:"achievements"`
	Next         *int64               `json:"next"`
}

func (s *AchievementService) Create(ctx context.Context, scope Scope, input AchievementCreate) (*models.Achievement, error) {
	achievement := &models.Achievement{
		Title:        input.Title,
		Content:      input.Content,
		PhotoURL:     input.PhotoURL,
		ThumbnailURL: input.ThumbnailURL,
		CategoryID:   input.CategoryID,
		UserID:       scope.UserID,
		GroupID:      scope.GroupID,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.CategoryID != nil {
			if err := s.checkCategory(tx, scope, *input.CategoryID); err != nil {
				return err
			}
		}
		return tx.Create(achievement).Error
	})
	if err != nil {
		return nil, err
	}
	return achievement, nil
}

// List returns achievements newest-first, paginated by id cursor.
func (s *AchievementService) List(ctx context.Context, scope Scope, query AchievementListQuery) (*AchievementList, error) {
	take := query.Take
	if take <= 0 {
		take = defaultListTake
	}
	if take > maxListTake {
		take = maxListTake
	}

	db := scope.achievementFilter(s.DB.WithContext(ctx).Model(&models.Achievement{}))

	if query.CategoryID != nil && *query.CategoryID != models.CategoryIDAll {
		if *query.CategoryID == models.CategoryIDUnassigned {
			db = db.Where("achievements.category_id IS NULL")
		} else {
			db = db.Where("achievements.category_id = ?", *query.CategoryID)
		}
	}
	if query.WhereIDLessThan != nil {
		db = db.Where("achievements.id < ?", *query.WhereIDLessThan)
	}

	var achievements []models.Achievement
	if err := db.Preload("User").Order("achievements.id DESC").Limit(take).Find(&achievements).Error; err != nil {
		return nil, err
	}

	list := &AchievementList{Achievements: achievements}
	if len(achievements) == take {
		last := achievements[len(achievements)-1].ID
		list.Next = &last
	}
	return list, nil
}

func (s *AchievementService) Get(ctx context.Context, scope Scope, achievementID int64) (*models.Achievement, error) {
	var achievement models.Achievement
	err := scope.achievementFilter(s.DB.WithContext(ctx)).
		Preload("User").
		First(&achievement, "achievements.id = ?", achievementID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperr.ErrNotFoundAchievement
	}
	if err != nil {
		return nil, err
	}
	return &achievement, nil
}

// Update edits an achievement. Only the author's rows are visible to the
// update, so editing someone else's achievement reports not-found.
func (s *AchievementService) Update(ctx context.Context, scope Scope, achievementID int64, input AchievementUpdate) (*models.Achievement, error) {
	var achievement models.Achievement
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := scope.achievementFilter(tx).
			First(&achievement, "achievements.id = ? AND achievements.user_id = ?", achievementID, scope.UserID).Error
		if err == gorm.ErrRecordNotFound {
			return apperr.ErrNotFoundAchievement
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if input.Title != nil {
			updates["title"] = *input.Title
		}
		if input.Content != nil {
			updates["content"] = *input.Content
		}
		if input.CategoryID != nil {
			if *input.CategoryID == models.CategoryIDUnassigned {
				updates["category_id"] = nil
			} else {
				if err := s.checkCategory(tx, scope, *input.CategoryID); err != nil {
					return err
				}
				updates["category_id"] = *input.CategoryID
			}
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&achievement).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&achievement, "id = ?", achievement.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &achievement, nil
}

func (s *AchievementService) Delete(ctx context.Context, scope Scope, achievementID int64) error {
	result := scope.achievementFilter(s.DB.WithContext(ctx)).
		Where("achievements.user_id = ?", scope.UserID).
		Delete(&models.Achievement{}, "achievements.id = ?", achievementID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFoundAchievement
	}
	return nil
}

func (s *AchievementService) checkCategory(tx *gorm.DB, scope Scope, categoryID int64) error {
	var count int64
	err := scope.categoryFilter(tx.Model(&models.Category{})).
		Where("categories.id = ?", categoryID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return apperr.ErrNotFoundCategory
	}
	return nil
}
