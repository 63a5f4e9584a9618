package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/motimate/backend/internal/middleware"
	"github.com/motimate/backend/internal/models"
	"github.com/motimate/backend/internal/services"
	"github.com/motimate/backend/pkg/logger"
	"github.com/motimate/backend/pkg/utils"
)

type GroupsHandler struct {
	Groups *services.GroupService
}

func NewGroupsHandler(groups *services.GroupService) *GroupsHandler {
	return &GroupsHandler{Groups: groups}
}

type createGroupRequest struct {
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatarURL"`
}

func (h *GroupsHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req createGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return utils.Error(c, fiber.StatusBadRequest, "name is required")
	}

	group, err := h.Groups.Create(c.Context(), currentUser, req.Name, req.AvatarURL)
	if err != nil {
		return respondError(c, err, "failed creating group")
	}

	logger.InfoWithUser(currentUser.ID.String(), "group_created", map[string]interface{}{
		"group_id":   group.ID.String(),
		"group_name": group.Name,
	})

	return utils.Success(c, fiber.StatusCreated, group)
}

func (h *GroupsHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	summaries, err := h.Groups.List(c.Context(), currentUser.ID)
	if err != nil {
		return respondError(c, err, "failed listing groups")
	}

	return utils.Success(c, fiber.StatusOK, summaries)
}

func (h *GroupsHandler) Get(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	group, err := h.Groups.Get(c.Context(), currentUser.ID, groupID)
	if err != nil {
		return respondError(c, err, "failed loading group")
	}

	return utils.Success(c, fiber.StatusOK, group)
}

type joinGroupRequest struct {
	GroupCode string `json:"groupCode"`
}

func (h *GroupsHandler) Join(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req joinGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.GroupCode = strings.ToUpper(strings.TrimSpace(req.GroupCode))
	if req.GroupCode == "" {
		return utils.Error(c, fiber.StatusBadRequest, "groupCode is required")
	}

	membership, err := h.Groups.Join(c.Context(), currentUser, req.GroupCode)
	if err != nil {
		return respondError(c, err, "failed joining group")
	}

	logger.InfoWithUser(currentUser.ID.String(), "group_joined", map[string]interface{}{
		"group_id": membership.GroupID.String(),
	})

	return utils.Success(c, fiber.StatusCreated, membership)
}

type inviteRequest struct {
	UserCode string `json:"userCode"`
}

func (h *GroupsHandler) Invite(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	var req inviteRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.UserCode = strings.ToUpper(strings.TrimSpace(req.UserCode))
	if req.UserCode == "" {
		return utils.Error(c, fiber.StatusBadRequest, "userCode is required")
	}

	membership, err := h.Groups.Invite(c.Context(), currentUser.ID, groupID, req.UserCode)
	if err != nil {
		return respondError(c, err, "failed inviting user")
	}

	logger.InfoWithUser(currentUser.ID.String(), "group_member_invited", map[string]interface{}{
		"group_id":  groupID.String(),
		"user_code": req.UserCode,
	})

	return utils.Success(c, fiber.StatusCreated, membership)
}

// RemoveMember handles leaving a group. Members may only remove
// themselves; there is no kick operation.
func (h *GroupsHandler) RemoveMember(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	userParam := c.Params("userId")
	if userParam != "me" {
		userID, err := parseUUID(userParam)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
		}
		if userID != currentUser.ID {
			return utils.Error(c, fiber.StatusForbidden, "members can only remove themselves")
		}
	}

	if err := h.Groups.Leave(c.Context(), currentUser.ID, groupID); err != nil {
		return respondError(c, err, "failed leaving group")
	}

	logger.InfoWithUser(currentUser.ID.String(), "group_left", map[string]interface{}{
		"group_id": groupID.String(),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "left group"})
}

type updateGradeRequest struct {
	Grade models.UserGroupGrade `json:"grade"`
}

func (h *GroupsHandler) UpdateGrade(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	userCode := strings.ToUpper(strings.TrimSpace(c.Params("userCode")))
	if userCode == "" {
		return utils.Error(c, fiber.StatusBadRequest, "userCode is required")
	}

	var req updateGradeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if !models.ValidGrade(req.Grade) {
		return utils.Error(c, fiber.StatusBadRequest, "invalid grade")
	}

	membership, err := h.Groups.UpdateGrade(c.Context(), currentUser.ID, groupID, userCode, req.Grade)
	if err != nil {
		return respondError(c, err, "failed updating grade")
	}

	logger.InfoWithUser(currentUser.ID.String(), "group_grade_updated", map[string]interface{}{
		"group_id":  groupID.String(),
		"user_code": userCode,
		"grade":     string(req.Grade),
	})

	return utils.Success(c, fiber.StatusOK, membership)
}
