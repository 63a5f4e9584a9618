package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/motimate/backend/internal/middleware"
	"github.com/motimate/backend/internal/models"
	"github.com/motimate/backend/internal/services"
	"github.com/motimate/backend/pkg/utils"
)

type CategoriesHandler struct {
	Categories *services.CategoryService
	Groups     *services.GroupService
}

func NewCategoriesHandler(categories *services.CategoryService, groups *services.GroupService) *CategoriesHandler {
	return &CategoriesHandler{Categories: categories, Groups: groups}
}

// groupScope resolves the :id route param into a group scope, requiring an
// active membership.
func (h *CategoriesHandler) groupScope(c *fiber.Ctx, user *models.User) (services.Scope, error) {
	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return services.Scope{}, utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}
	if _, err := h.Groups.RequireMembership(c.Context(), user.ID, groupID); err != nil {
		return services.Scope{}, respondError(c, err, "failed validating membership")
	}
	return services.GroupScope(user.ID, groupID), nil
}

type createCategoryRequest struct {
	Name string `json:"name"`
}

func (h *CategoriesHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return h.create(c, services.UserScope(currentUser.ID))
}

func (h *CategoriesHandler) CreateInGroup(c *fiber.Ctx) error {
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

func (h *CategoriesHandler) create(c *fiber.Ctx, scope services.Scope) error {
	var req createCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return utils.Error(c, fiber.StatusBadRequest, "name is required")
	}

	category, err := h.Categories.Create(c.Context(), scope, req.Name)
	if err != nil {
		return respondError(c, err, "failed creating category")
	}
	return utils.Success(c, fiber.StatusCreated, category)
}

func (h *CategoriesHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return h.list(c, services.UserScope(currentUser.ID))
}

func (h *CategoriesHandler) ListInGroup(c *fiber.Ctx) error {
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

func (h *CategoriesHandler) list(c *fiber.Ctx, scope services.Scope) error {
	metadata, err := h.Categories.ListMetadata(c.Context(), scope)
	if err != nil {
		return respondError(c, err, "failed listing categories")
	}
	return utils.Success(c, fiber.StatusOK, services.BuildCategoryList(metadata))
}

func (h *CategoriesHandler) Get(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return h.get(c, services.UserScope(currentUser.ID), c.Params("categoryId"))
}

func (h *CategoriesHandler) GetInGroup(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	scope, err := h.groupScope(c, currentUser)
	if err != nil {
		return err
	}
	return h.get(c, scope, c.Params("categoryId"))
}

func (h *CategoriesHandler) get(c *fiber.Ctx, scope services.Scope, rawID string) error {
	categoryID, err := parseInt64(rawID)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid category id")
	}

	metadata, err := h.Categories.GetMetadata(c.Context(), scope, categoryID)
	if err != nil {
		return respondError(c, err, "failed loading category")
	}
	return utils.Success(c, fiber.StatusOK, metadata)
}

func (h *CategoriesHandler) Delete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return h.delete(c, services.UserScope(currentUser.ID), c.Params("categoryId"))
}

func (h *CategoriesHandler) DeleteInGroup(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	scope, err := h.groupScope(c, currentUser)
	if err != nil {
		return err
	}
	return h.delete(c, scope, c.Params("categoryId"))
}

func (h *CategoriesHandler) delete(c *fiber.Ctx, scope services.Scope, rawID string) error {
	categoryID, err := parseInt64(rawID)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid category id")
	}

	if err := h.Categories.Delete(c.Context(), scope, categoryID); err != nil {
		return respondError(c, err, "failed deleting category")
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "category deleted"})
}
