package services

import (
	"context"
	"time"

	"github.com/motimate/backend/internal/apperr"
	"github.com/motimate/backend/internal/models"
	"gorm.io/gorm"
)

// CategoryService owns per-user and per-group categories together with
// their read projection (achievement count, last challenged time).
type CategoryService struct {
	DB *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{DB: db}
}

func (s *CategoryService) Create(ctx context.Context, scope Scope, name string) (*models.Category, error) {
	category := &models.Category{Name: name}
	if scope.GroupID != nil {
		category.GroupID = scope.GroupID
	} else {
		userID := scope.UserID
		category.UserID = &userID
	}

	if err := s.DB.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// categoryAgg is the raw aggregation row. LastID carries the newest
// achievement id per category; achievement ids are monotonic, so the id is
// resolved to its creation time in a second query. MAX over the timestamp
// column directly would not scan portably across postgres and sqlite.
type categoryAgg struct {
	ID        int64
	Name      string
	Continued int64
	LastID    *int64
}

// ListMetadata returns the category projections for a scope, ordered by id.
// When uncategorized achievements exist, a synthetic row with the
// unassigned sentinel id comes first.
func (s *CategoryService) ListMetadata(ctx context.Context, scope Scope) ([]models.CategoryMetaData, error) {
	db := s.DB.WithContext(ctx)

	query := db.Table("categories").
		Select("categories.id, categories.name, COUNT(achievements.id) AS continued, MAX(achievements.id) AS last_id")
	if scope.GroupID != nil {
		query = query.Joins(
			"LEFT JOIN achievements ON achievements.category_id = categories.id AND achievements.group_id = ?",
			*scope.GroupID)
	} else {
		query = query.Joins(
			"LEFT JOIN achievements ON achievements.category_id = categories.id AND achievements.user_id = ? AND achievements.group_id IS NULL",
			scope.UserID)
	}

	var rows []categoryAgg
	err := scope.categoryFilter(query).
		Group("categories.id, categories.name").
		Order("categories.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	var unassigned categoryAgg
	err = scope.achievementFilter(db.Table("achievements")).
		Where("achievements.category_id IS NULL").
		Select("COUNT(achievements.id) AS continued, MAX(achievements.id) AS last_id").
		Scan(&unassigned).Error
	if err != nil {
		return nil, err
	}

	if unassigned.Continued > 0 {
		unassigned.ID = models.CategoryIDUnassigned
		unassigned.Name = "Unassigned"
		rows = append([]categoryAgg{unassigned}, rows...)
	}

	return s.resolveLastChallenged(db, rows)
}

// GetMetadata returns the projection of a single category in the scope.
func (s *CategoryService) GetMetadata(ctx context.Context, scope Scope, categoryID int64) (*models.CategoryMetaData, error) {
	db := s.DB.WithContext(ctx)

	var category models.Category
	err := scope.categoryFilter(db).First(&category, "categories.id = ?", categoryID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperr.ErrNotFoundCategory
	}
	if err != nil {
		return nil, err
	}

	agg := categoryAgg{ID: category.ID, Name: category.Name}
	err = scope.achievementFilter(db.Table("achievements")).
		Where("achievements.category_id = ?", category.ID).
		Select("COUNT(achievements.id) AS continued, MAX(achievements.id) AS last_id").
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	agg.ID = category.ID
	agg.Name = category.Name

	metadata, err := s.resolveLastChallenged(db, []categoryAgg{agg})
	if err != nil {
		return nil, err
	}
	return &metadata[0], nil
}

// Delete removes a category; its achievements become uncategorized.
func (s *CategoryService) Delete(ctx context.Context, scope Scope, categoryID int64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		err := scope.categoryFilter(tx).First(&category, "categories.id = ?", categoryID).Error
		if err == gorm.ErrRecordNotFound {
			return apperr.ErrNotFoundCategory
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Achievement{}).
			Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Category{}, "id = ?", category.ID).Error
	})
}

func (s *CategoryService) resolveLastChallenged(db *gorm.DB, rows []categoryAgg) ([]models.CategoryMetaData, error) {
	lastIDs := make([]int64, 0, len(rows))
	for _, row := range rows {
		if row.LastID != nil {
			lastIDs = append(lastIDs, *row.LastID)
		}
	}

	timesByID := map[int64]time.Time{}
	if len(lastIDs) > 0 {
		var achievements []models.Achievement
		if err := db.Find(&achievements, "id IN ?", lastIDs).Error; err != nil {
			return nil, err
		}
		for _, achievement := range achievements {
			timesByID[achievement.ID] = achievement.CreatedAt
		}
	}

	metadata := make([]models.CategoryMetaData, 0, len(rows))
	for _, row := range rows {
		entry := models.CategoryMetaData{
			ID:        row.ID,
			Name:      row.Name,
			Continued: row.Continued,
		}
		if row.LastID != nil {
			if challenged, ok := timesByID[*row.LastID]; ok {
				entry.LastChallenged = &challenged
			}
		}
		metadata = append(metadata, entry)
	}
	return metadata, nil
}
