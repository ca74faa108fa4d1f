package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-api/internal/core/domain"
	"github.com/99minutos/identity-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	identities  ports.IdentityService
	tokenTTL    time.Duration
}

func NewAuthHandler(authService ports.AuthService, identities ports.IdentityService, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{authService: authService, identities: identities, tokenTTL: tokenTTL}
}

// Login authenticates a user and returns a signed bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(h.tokenTTL / time.Second),
		Username:  user.Username,
	})
}

// Logout drops the identity from the current request. Tokens are stateless
// and stay valid until they expire; clients discard them.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	req := c.Request()
	c.SetRequest(req.WithContext(domain.WithIdentity(req.Context(), nil)))
	return c.JSON(http.StatusOK, messageResponse{Message: "logout successful"})
}

// Me returns the caller's profile and the authorities resolved for this request.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.identities.GetUser(c.Request().Context(), id.Subject())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, meResponse{
		Username:    id.Subject(),
		Authorities: id.Authorities(),
		User:        user,
	})
}
