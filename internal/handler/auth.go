package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/swiftbus/reservation/internal/middleware"
    "github.com/swiftbus/reservation/internal/repository"
    "github.com/swiftbus/reservation/internal/utils"
)

// AuthHandler serves registration, login and the current-user endpoint.
type AuthHandler struct {
    users      *repository.UserRepo
    jwtSecret  string
    accessMin  int
    bcryptCost int
}

func NewAuthHandler(users *repository.UserRepo, jwtSecret string, accessMin, bcryptCost int) *AuthHandler {
    return &AuthHandler{users: users, jwtSecret: jwtSecret, accessMin: accessMin, bcryptCost: bcryptCost}
}

type registerRequest struct {
    Email    string `json:"email"`
    Password string `json:"password"`
    Name     string `json:"name"`
}

// Register handles POST /v1/auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"code": "bad_request", "message": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    req.Name = strings.TrimSpace(req.Name)
    if req.Email == "" || !strings.Contains(req.Email, "@") {
        return c.JSON(http.StatusBadRequest, echo.Map{"code": "bad_request", "message": "valid email is required"})
    }
    if len(req.Password) < 8 {
        return c.JSON(http.StatusBadRequest, echo.Map{"code": "bad_request", "message": "password must be at least 8 characters"})
    }
    if req.Name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"code": "bad_request", "message": "name is required"})
    }

    hash, err := utils.HashPassword(req.Password, h.bcryptCost)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"code": "internal", "message": "could not hash password"})
    }
    id := utils.NewID()
    if err := h.users.Create(c.Request().Context(), id, req.Email, hash, req.Name); err != nil {
        if err == repository.ErrEmailExists {
            return c.JSON(http.StatusConflict, echo.Map{"code": "email_exists", "message": "email is already registered"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"code": "internal", "message": "could not create user"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"id": id, "email": req.Email, "name": req.Name})
}

type loginRequest struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}

// Login handles POST /v1/auth/login.  Unknown email and wrong password
// produce the same response.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"code": "bad_request", "message": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))

    user, err := h.users.GetByEmail(c.Request().Context(), req.Email)
    if err != nil || !utils.VerifyPassword(user.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"code": "invalid_credentials", "message": "invalid email or password"})
    }
    tok, err := utils.NewAccessToken(h.jwtSecret, user.ID, h.accessMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"code": "internal", "message": "could not issue token"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "access_token": tok.Token,
        "expires_at":   tok.Exp,
        "user":         echo.Map{"id": user.ID, "email": user.Email, "name": user.Name},
    })
}

// Me handles GET /v1/auth/me.
func (h *AuthHandler) Me(c echo.Context) error {
    userID := middleware.UserID(c)
    user, err := h.users.GetByID(c.Request().Context(), userID)
    if err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"code": "not_found", "message": "user not found"})
    }
    return c.JSON(http.StatusOK, echo.Map{"id": user.ID, "email": user.Email, "name": user.Name, "created_at": user.CreatedAt})
}
