package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-rating/internal/apperror"
	"github.com/iliyamo/store-rating/internal/config"
	"github.com/iliyamo/store-rating/internal/middleware"
	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/repository"
	"github.com/iliyamo/store-rating/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens TokenIssuer
}

func NewAuthHandler(cfg config.Config, u UserStore, t TokenIssuer) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type signupReq struct {
	Name     string `json:"name" validate:"required,min=2,max=60"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,strongpwd"`
	Address  string `json:"address" validate:"required,min=5,max=400"`
	Role     string `json:"role" validate:"required,oneof=user store_owner"`
}

func (r *signupReq) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Address = strings.TrimSpace(r.Address)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *loginReq) normalize() { r.Email = strings.ToLower(strings.TrimSpace(r.Email)) }

type updatePasswordReq struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,strongpwd"`
}

func (r *updatePasswordReq) normalize() { r.Email = strings.ToLower(strings.TrimSpace(r.Email)) }

// Signup registers a user or store owner and starts a session.
// Administrators are only created through the admin API.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := bind(c, &req); err != nil {
		return err
	}
	role, _ := model.ParseRole(req.Role)

	ctx, cancel := dbContext(c, h.Cfg.DBTimeout)
	defer cancel()

	u, err := h.Users.Create(ctx, repository.NewUser{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Address:  req.Address,
		Role:     role,
	}, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return apperror.Conflict("User already exists")
		}
		return storageError(err)
	}
	return h.startSession(c, http.StatusCreated, "Signup successful", u)
}

// Login verifies credentials and starts a session. Unknown emails and
// wrong passwords get the same answer.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx, cancel := dbContext(c, h.Cfg.DBTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.Unauthenticated("Invalid email or password")
		}
		return storageError(err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return apperror.Unauthenticated("Invalid email or password")
	}
	return h.startSession(c, http.StatusOK, "Login successful", u)
}

// Logout clears the session cookie. Tokens are not tracked server side,
// so a copied token stays valid until it expires.
func (h *AuthHandler) Logout(c echo.Context) error {
	ck := h.cookie("", -1)
	ck.Expires = time.Unix(0, 0)
	c.SetCookie(ck)
	return success(c, http.StatusOK, "Logged Out Successfully", nil)
}

// UpdatePassword replaces a password after checking the current one.
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	var req updatePasswordReq
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx, cancel := dbContext(c, h.Cfg.DBTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.NotFound("User not found")
		}
		return storageError(err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return apperror.Unauthenticated("Current password is incorrect")
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, req.NewPassword, h.Cfg.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.NotFound("User not found")
		}
		return storageError(err)
	}
	return success(c, http.StatusOK, "Password updated successfully", nil)
}

// Check returns the user resolved from the session.
func (h *AuthHandler) Check(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return apperror.Unauthenticated("Unauthorized: no token provided")
	}
	return success(c, http.StatusOK, "Authenticated", echo.Map{"user": u})
}

func (h *AuthHandler) startSession(c echo.Context, status int, msg string, u model.User) error {
	tok, err := h.Tokens.Issue(u.ID, u.Email, u.Role.String())
	if err != nil {
		return apperror.Internal(err)
	}
	c.SetCookie(h.cookie(tok.Token, int(time.Until(tok.ExpiresAt).Seconds())))
	return success(c, status, msg, echo.Map{
		"token":      tok.Token,
		"expires_at": tok.ExpiresAt,
		"user":       u.Public(),
	})
}

// cookie builds the session cookie. maxAge < 0 deletes it.
func (h *AuthHandler) cookie(value string, maxAge int) *http.Cookie {
	name := h.Cfg.CookieName
	if name == "" {
		name = "jwt"
	}
	sameSite := h.Cfg.CookieSameSite
	if sameSite == 0 {
		sameSite = http.SameSiteStrictMode
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
		SameSite: sameSite,
	}
}
