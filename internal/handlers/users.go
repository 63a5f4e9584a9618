package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/motimate/backend/internal/middleware"
	"github.com/motimate/backend/internal/models"
	"github.com/motimate/backend/pkg/utils"
	"gorm.io/gorm"
)

type UsersHandler struct {
	DB *gorm.DB
}

func NewUsersHandler(db *gorm.DB) *UsersHandler {
	return &UsersHandler{DB: db}
}

// userSearchResult exposes only what an inviter needs to confirm the
// target; email stays private.
type userSearchResult struct {
	UserCode  string  `json:"userCode"`
	Nickname  string  `json:"nickname"`
	AvatarURL *string `json:"avatarURL,omitempty"`
}

func (h *UsersHandler) Search(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	code := strings.ToUpper(strings.TrimSpace(c.Query("code")))
	if code == "" {
		return utils.Error(c, fiber.StatusBadRequest, "code is required")
	}

	var user models.User
	if err := h.DB.First(&user, "user_code = ?", code).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "user not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed searching user")
	}

	return utils.Success(c, fiber.StatusOK, userSearchResult{
		UserCode:  user.UserCode,
		Nickname:  user.Nickname,
		AvatarURL: user.AvatarURL,
	})
}
