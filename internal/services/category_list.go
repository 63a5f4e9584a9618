package services

import "github.com/motimate/backend/internal/models"

// BuildCategoryList turns the metadata rows into the display list: a
// synthetic "All" element first (summed count, most recent challenge),
// then an "Unassigned" placeholder unless the rows already lead with the
// unassigned sentinel, then the rows in repository order.
func BuildCategoryList(metadata []models.CategoryMetaData) []models.CategoryMetaData {
	total := models.CategoryMetaData{
		ID:   models.CategoryIDAll,
		Name: "All",
	}

	list := make([]models.CategoryMetaData, 0, len(metadata)+2)
	list = append(list, total)

	if len(metadata) == 0 || metadata[0].ID != models.CategoryIDUnassigned {
		list = append(list, models.CategoryMetaData{
			ID:   models.CategoryIDUnassigned,
			Name: "Unassigned",
		})
	}

	for _, entry := range metadata {
		total.Continued += entry.Continued
		if entry.LastChallenged != nil &&
			(total.LastChallenged == nil || total.LastChallenged.Before(*entry.LastChallenged)) {
			total.LastChallenged = entry.LastChallenged
		}
		list = append(list, entry)
	}

	list[0] = total
	return list
}
