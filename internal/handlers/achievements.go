package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/motimate/backend/internal/middleware"
	"github.com/motimate/backend/internal/models"
	"github.com/motimate/backend/internal/services"
	"github.com/motimate/backend/pkg/utils"
)

type AchievementsHandler struct {
	Achievements *services.AchievementService
	Groups       *services.GroupService
}

func NewAchievementsHandler(achievements *services.AchievementService, groups *services.GroupService) *AchievementsHandler {
	return &AchievementsHandler{Achievements: achievements, Groups: groups}
}

func (h *AchievementsHandler) groupScope(c *fiber.Ctx, user *models.User) (services.Scope, error) {
	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return services.Scope{}, utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}
	if _, err := h.Groups.RequireMembership(c.Context(), user.ID, groupID); err != nil {
		return services.Scope{}, respondError(c, err, "failed validating membership")
	}
	return services.GroupScope(user.ID, groupID), nil
}

type createAchievementRequest struct {
	Title        string  `json:"title"`
	Content      string  `json:"content"`
	PhotoURL     string  `json:"photoURL"`
	ThumbnailURL *string `json:"thumbnailURL"`
	CategoryID   *int64  `json:"categoryID"`
}

func (h *AchievementsHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return h.create(c, services.UserScope(currentUser.ID))
}

func (h *AchievementsHandler) CreateInGroup(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	scope, err := h.groupScope(c, currentUser)
	if err != nil {
		return err
	}
	return h.create(c, scope)
}

func (h *AchievementsHandler) create(c *fiber.Ctx, scope services.Scope) error {
	var req createAchievementRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return utils.Error(c, fiber.StatusBadRequest, "title is required")
	}
	if strings.TrimSpace(req.PhotoURL) == "" {
		return utils.Error(c, fiber.StatusBadRequest, "photoURL is required")
	}

	achievement, err := h.Achievements.Create(c.Context(), scope, services.AchievementCreate{
		Title:        req.Title,
		Content:      req.Content,
		PhotoURL:     req.PhotoURL,
		ThumbnailURL: req.ThumbnailURL,
		CategoryID:   req.CategoryID,
	})
	if err != nil {
		return respondError(c, err, "failed creating achievement")
	}
	return utils.Success(c, fiber.StatusCreated, achievement)
}

func (h *AchievementsHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return h.list(c, services.UserScope(currentUser.ID))
}

func (h *AchievementsHandler) ListInGroup(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	scope, err := h.groupScope(c, currentUser)
	if err != nil {
		return err
	}
	return h.list(c, scope)
}

func (h *AchievementsHandler) list(c *fiber.Ctx, scope services.Scope) error {
	query := services.AchievementListQuery{}

	if raw := c.Query("categoryId"); raw != "" {
		categoryID, err := parseInt64(raw)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid categoryId")
		}
		query.CategoryID = &categoryID
	}
	if raw := c.Query("take"); raw != "" {
		take, err := parseInt64(raw)
		if err != nil || take < 1 {
			return utils.Error(c, fiber.StatusBadRequest, "invalid take")
		}
		query.Take = int(take)
	}
	if raw := c.Query("whereIdLessThan"); raw != "" {
		cursor, err := parseInt64(raw)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid whereIdLessThan")
		}
		query.WhereIDLessThan = &cursor
	}

	list, err := h.Achievements.List(c.Context(), scope, query)
	if err != nil {
		return respondError(c, err, "failed listing achievements")
	}
	return utils.Success(c, fiber.StatusOK, list)
}

func (h *AchievementsHandler) Get(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return h.get(c, services.UserScope(currentUser.ID), c.Params("achievementId"))
}

func (h *AchievementsHandler) GetInGroup(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	scope, err := h.groupScope(c, currentUser)
	if err != nil {
		return err
	}
	return h.get(c, scope, c.Params("achievementId"))
}

func (h *AchievementsHandler) get(c *fiber.Ctx, scope services.Scope, rawID string) error {
	achievementID, err := parseInt64(rawID)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid achievement id")
	}

	achievement, err := h.Achievements.Get(c.Context(), scope, achievementID)
	if err != nil {
		return respondError(c, err, "failed loading achievement")
	}
	return utils.Success(c, fiber.StatusOK, achievement)
}

type updateAchievementRequest struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	CategoryID *int64  `json:"categoryID"`
}

func (h *AchievementsHandler) Update(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return h.update(c, services.UserScope(currentUser.ID), c.Params("achievementId"))
}

func (h *AchievementsHandler) UpdateInGroup(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	scope, err := h.groupScope(c, currentUser)
	if err != nil {
		return err
	}
	return h.update(c, scope, c.Params("achievementId"))
}

func (h *AchievementsHandler) update(c *fiber.Ctx, scope services.Scope, rawID string) error {
	achievementID, err := parseInt64(rawID)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid achievement id")
	}

	var req updateAchievementRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return utils.Error(c, fiber.StatusBadRequest, "title cannot be empty")
	}

	achievement, err := h.Achievements.Update(c.Context(), scope, achievementID, services.AchievementUpdate{
		Title:      req.Title,
		Content:    req.Content,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		return respondError(c, err, "failed updating achievement")
	}
	return utils.Success(c, fiber.StatusOK, achievement)
}

func (h *AchievementsHandler) Delete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return h.delete(c, services.UserScope(currentUser.ID), c.Params("achievementId"))
}

func (h *AchievementsHandler) DeleteInGroup(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	scope, err := h.groupScope(c, currentUser)
	if err != nil {
		return err
	}
	return h.delete(c, scope, c.Params("achievementId"))
}

func (h *AchievementsHandler) delete(c *fiber.Ctx, scope services.Scope, rawID string) error {
	achievementID, err := parseInt64(rawID)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid achievement id")
	}

	if err := h.Achievements.Delete(c.Context(), scope, achievementID); err != nil {
		return respondError(c, err, "failed deleting achievement")
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "achievement deleted"})
}
