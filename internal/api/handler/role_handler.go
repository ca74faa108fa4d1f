package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-api/internal/core/ports"
)

// RoleHandler serves role administration plus the role-gated demo endpoints.
type RoleHandler struct {
	service ports.IdentityService
}

func NewRoleHandler(service ports.IdentityService) *RoleHandler {
	return &RoleHandler{service: service}
}

// Profile handles GET /api/roles/profile.
//
// @Summary      Any authenticated caller
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/roles/profile [get]
func (h *RoleHandler) Profile(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "access granted to " + id.Subject()})
}

// UserData handles GET /api/roles/user/data.
//
// @Summary      ROLE_USER only
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/roles/user/data [get]
func (h *RoleHandler) UserData(c echo.Context) error {
	return c.JSON(http.StatusOK, messageResponse{Message: "sensitive data for ROLE_USER"})
}

// AdminData handles GET /api/roles/admin/data.
//
// @Summary      ROLE_ADMIN only
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/roles/admin/data [get]
func (h *RoleHandler) AdminData(c echo.Context) error {
	return c.JSON(http.StatusOK, messageResponse{Message: "sensitive data for ROLE_ADMIN"})
}

// List handles GET /api/roles.
//
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   roleResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/roles [get]
func (h *RoleHandler) List(c echo.Context) error {
	roles, err := h.service.ListRoles(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRoleResponses(roles))
}

// Create handles POST /api/roles.
//
// @Summary      Create a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createRoleRequest  true  "New role"
// @Success      201   {object}  roleResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/roles [post]
func (h *RoleHandler) Create(c echo.Context) error {
	var req createRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	role, err := h.service.CreateRole(c.Request().Context(), req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toRoleResponse(role))
}

// Update handles PUT /api/roles/:roleName.
//
// @Summary      Update a role description
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        roleName  path      string             true  "Role name"
// @Param        body      body      updateRoleRequest  true  "Description"
// @Success      200       {object}  roleResponse
// @Failure      400       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /api/roles/{roleName} [put]
func (h *RoleHandler) Update(c echo.Context) error {
	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	role, err := h.service.UpdateRole(c.Request().Context(), c.Param("roleName"), req.Description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRoleResponse(role))
}

// Delete handles DELETE /api/roles/:roleName. Holders lose the role first.
//
// @Summary      Delete a role
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        roleName  path      string  true  "Role name"
// @Success      200       {object}  messageResponse
// @Failure      404       {object}  errorResponse
// @Router       /api/roles/{roleName} [delete]
func (h *RoleHandler) Delete(c echo.Context) error {
	name := c.Param("roleName")
	if err := h.service.DeleteRole(c.Request().Context(), name); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "role '" + name + "' deleted"})
}

// Users handles GET /api/roles/:roleName/users.
//
// @Summary      List users holding a role
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        roleName  path      string  true  "Role name"
// @Success      200       {array}   domain.User
// @Failure      403       {object}  errorResponse
// @Router       /api/roles/{roleName}/users [get]
func (h *RoleHandler) Users(c echo.Context) error {
	users, err := h.service.ListUsersByRole(c.Request().Context(), c.Param("roleName"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNilUsers(users))
}

// AddToUser handles POST /api/roles/user/:username/add-role?roleName=ROLE_X.
//
// @Summary      Grant a role to a user
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Param        roleName  query     string  true  "Role name"
// @Success      200       {object}  domain.User
// @Failure      400       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /api/roles/user/{username}/add-role [post]
func (h *RoleHandler) AddToUser(c echo.Context) error {
	roleName := c.QueryParam("roleName")
	if roleName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "roleName is required")
	}

	user, err := h.service.AddRole(c.Request().Context(), c.Param("username"), roleName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// RemoveFromUser handles DELETE /api/roles/user/:username/remove-role?roleName=ROLE_X.
//
// @Summary      Revoke a role from a user
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Param        roleName  query     string  true  "Role name"
// @Success      200       {object}  domain.User
// @Failure      400       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /api/roles/user/{username}/remove-role [delete]
func (h *RoleHandler) RemoveFromUser(c echo.Context) error {
	roleName := c.QueryParam("roleName")
	if roleName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "roleName is required")
	}

	user, err := h.service.RemoveRole(c.Request().Context(), c.Param("username"), roleName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
