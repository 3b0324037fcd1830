package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"userhub/internal/auth"
	"userhub/internal/model"
	"userhub/internal/service"
)

// UserHandler handles user endpoints. Permission gates are composed once at
// construction and run after the JWT guard resolved the acting user.
type UserHandler struct {
	users      service.UserService
	managePerm auth.Permission
	listPerm   auth.Permission
	batchPerm  auth.Permission
}

// NewUserHandler creates a user handler with its permission gates.
func NewUserHandler(users service.UserService, lookup auth.UserLookup) *UserHandler {
	return &UserHandler{
		users:      users,
		managePerm: auth.AnyOf(auth.AdminOnly, auth.ModeratorSameGroup(lookup)),
		listPerm:   auth.AnyOf(auth.AdminOnly, auth.ModeratorOnly),
		batchPerm:  auth.AnyOf(auth.AdminOnly),
	}
}

// BatchRequest looks up users by a list of UUIDs.
type BatchRequest struct {
	UUIDList []string `json:"uuid_list" validate:"required,min=1"`
}

// Me godoc
// @Summary Get the authenticated user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.UserData
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	actor, ok := currentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	data, err := h.users.Get(c.Request().Context(), actor.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, data)
}

// PatchMe godoc
// @Summary Update the authenticated user
// @Tags users
// @Accept json
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param avatar formData file false "Avatar image"
// @Success 200 {object} service.UserData
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/me [patch]
func (h *UserHandler) PatchMe(c echo.Context) error {
	actor, ok := currentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	patch, avatar, err := bindPatch(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	// Self-service never touches privileged fields.
	patch.Role = nil
	patch.GroupID = nil
	patch.IsBlocked = nil
	if err := c.Validate(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	data, err := h.users.Patch(c.Request().Context(), actor.ID, patch, avatar)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, data)
}

// DeleteMe godoc
// @Summary Delete the authenticated user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Router /users/me [delete]
func (h *UserHandler) DeleteMe(c echo.Context) error {
	actor, ok := currentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	if err := h.users.Delete(c.Request().Context(), actor.ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "user deleted successfully"})
}

// GetUser godoc
// @Summary Get a user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User UUID"
// @Success 200 {object} service.UserData
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	actor, id, err := h.resolve(c)
	if err != nil {
		return err
	}
	if err := h.managePerm(c.Request().Context(), actor, id); err != nil {
		return respondError(c, err)
	}
	data, err := h.users.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, data)
}

// PatchUser godoc
// @Summary Update a user, including role, group and block flag
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User UUID"
// @Param request body service.UserPatch true "Fields to update"
// @Success 200 {object} service.UserData
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/{id} [patch]
func (h *UserHandler) PatchUser(c echo.Context) error {
	actor, id, err := h.resolve(c)
	if err != nil {
		return err
	}
	if err := h.managePerm(c.Request().Context(), actor, id); err != nil {
		return respondError(c, err)
	}

	var patch service.UserPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	data, err := h.users.Patch(c.Request().Context(), id, patch, nil)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, data)
}

// DeleteUser godoc
// @Summary Delete a user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User UUID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	actor, id, err := h.resolve(c)
	if err != nil {
		return err
	}
	if err := h.managePerm(c.Request().Context(), actor, id); err != nil {
		return respondError(c, err)
	}
	if err := h.users.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "user deleted successfully"})
}

// ListUsers godoc
// @Summary List users with paging, filtering and sorting
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10)"
// @Param filter_by_name query string false "Substring filter on name"
// @Param sort_by query string false "Sort column"
// @Param order_by query string false "asc or desc"
// @Success 200 {array} service.UserData
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	actor, ok := currentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	if err := h.listPerm(c.Request().Context(), actor, uuid.Nil); err != nil {
		return respondError(c, err)
	}

	q := service.ListQuery{
		Page:         queryInt(c, "page", 1),
		Limit:        queryInt(c, "limit", 10),
		FilterByName: c.QueryParam("filter_by_name"),
		SortBy:       c.QueryParam("sort_by"),
		OrderBy:      c.QueryParam("order_by"),
	}
	users, err := h.users.List(c.Request().Context(), actor, q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// BatchUsers godoc
// @Summary Look up users by a list of UUIDs
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BatchRequest true "UUID list"
// @Success 200 {array} service.UserData
// @Failure 403 {object} errors.ErrorResponse
// @Router /users/batch [post]
func (h *UserHandler) BatchUsers(c echo.Context) error {
	actor, ok := currentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	if err := h.batchPerm(c.Request().Context(), actor, uuid.Nil); err != nil {
		return respondError(c, err)
	}

	var req BatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ids := make([]uuid.UUID, 0, len(req.UUIDList))
	for _, raw := range req.UUIDList {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid uuid: "+raw)
		}
		ids = append(ids, id)
	}

	users, err := h.users.GetByIDs(c.Request().Context(), ids)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) resolve(c echo.Context) (actor *model.User, id uuid.UUID, err error) {
	user, ok := currentUser(c)
	if !ok {
		return nil, uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	id, parseErr := uuid.Parse(c.Param("id"))
	if parseErr != nil {
		return nil, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return user, id, nil
}

// bindPatch reads a patch from either a JSON body or a multipart/url-encoded
// form; the form path also yields an optional avatar upload.
func bindPatch(c echo.Context) (service.UserPatch, *service.AvatarUpload, error) {
	var patch service.UserPatch

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(contentType, echo.MIMEApplicationJSON) {
		if err := c.Bind(&patch); err != nil {
			return patch, nil, err
		}
		return patch, nil, nil
	}

	params, err := c.FormParams()
	if err != nil {
		return patch, nil, err
	}
	formVal := func(key string) *string {
		if vs, ok := params[key]; ok && len(vs) > 0 {
			v := vs[0]
			return &v
		}
		return nil
	}
	patch.Name = formVal("name")
	patch.Surname = formVal("surname")
	patch.Username = formVal("username")
	patch.Email = formVal("email")
	patch.PhoneNumber = formVal("phone_number")

	avatar, err := avatarFromForm(c)
	if err != nil {
		return patch, nil, err
	}
	return patch, avatar, nil
}

func avatarFromForm(c echo.Context) (*service.AvatarUpload, error) {
	fh, err := c.FormFile("avatar")
	if err != nil {
		// No file attached.
		return nil, nil
	}
	file, err := fh.Open()
	if err != nil {
		return nil, err
	}
	return &service.AvatarUpload{
		Content:     file,
		ContentType: fh.Header.Get("Content-Type"),
	}, nil
}

func queryInt(c echo.Context, key string, def int) int {
	if v := c.QueryParam(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}
