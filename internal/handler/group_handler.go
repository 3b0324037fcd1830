package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"userhub/internal/auth"
	"userhub/internal/model"
	"userhub/internal/service"
)

// GroupHandler handles admin-only group endpoints.
type GroupHandler struct {
	groups    service.GroupService
	adminPerm auth.Permission
}

// NewGroupHandler creates a group handler.
func NewGroupHandler(groups service.GroupService) *GroupHandler {
	return &GroupHandler{
		groups:    groups,
		adminPerm: auth.AnyOf(auth.AdminOnly),
	}
}

// GroupRequest carries a group name for create and rename.
type GroupRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// CreateGroup godoc
// @Summary Create a group
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GroupRequest true "Group name"
// @Success 201 {object} model.Group
// @Failure 403 {object} errors.ErrorResponse
// @Router /groups [post]
func (h *GroupHandler) CreateGroup(c echo.Context) error {
	if _, err := h.requireAdmin(c); err != nil {
		return err
	}

	var req GroupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	group, err := h.groups.Create(c.Request().Context(), req.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, group)
}

// ListGroups godoc
// @Summary List groups with their members
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Group
// @Failure 403 {object} errors.ErrorResponse
// @Router /groups [get]
func (h *GroupHandler) ListGroups(c echo.Context) error {
	if _, err := h.requireAdmin(c); err != nil {
		return err
	}
	groups, err := h.groups.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, groups)
}

// GetGroup godoc
// @Summary Get a group by id
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Success 200 {object} model.Group
// @Failure 404 {object} errors.ErrorResponse
// @Router /groups/{id} [get]
func (h *GroupHandler) GetGroup(c echo.Context) error {
	if _, err := h.requireAdmin(c); err != nil {
		return err
	}
	id, err := groupID(c)
	if err != nil {
		return err
	}
	group, err := h.groups.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, group)
}

// RenameGroup godoc
// @Summary Rename a group
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Param request body GroupRequest true "New name"
// @Success 200 {object} model.Group
// @Failure 404 {object} errors.ErrorResponse
// @Router /groups/{id} [patch]
func (h *GroupHandler) RenameGroup(c echo.Context) error {
	if _, err := h.requireAdmin(c); err != nil {
		return err
	}
	id, err := groupID(c)
	if err != nil {
		return err
	}

	var req GroupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	group, err := h.groups.Rename(c.Request().Context(), id, req.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, group)
}

// DeleteGroup godoc
// @Summary Delete an empty group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /groups/{id} [delete]
func (h *GroupHandler) DeleteGroup(c echo.Context) error {
	if _, err := h.requireAdmin(c); err != nil {
		return err
	}
	id, err := groupID(c)
	if err != nil {
		return err
	}
	if err := h.groups.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Group deleted successfully"})
}

func (h *GroupHandler) requireAdmin(c echo.Context) (*model.User, error) {
	actor, ok := currentUser(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	if err := h.adminPerm(c.Request().Context(), actor, uuid.Nil); err != nil {
		return nil, respondError(c, err)
	}
	return actor, nil
}

func groupID(c echo.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid group id")
	}
	return uint(id), nil
}
