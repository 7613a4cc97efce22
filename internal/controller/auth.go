package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Evgen-Mutagen/qr-wallet/internal/core"
	"github.com/Evgen-Mutagen/qr-wallet/internal/service"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type AuthController struct {
	authService core.AuthService
	logger      *zap.Logger
}

func NewAuthController(authService core.AuthService, logger *zap.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Username string           `json:"username"`
		Password string           `json:"password"`
		Balance  *decimal.Decimal `json:"balance"`
	}

	if err := render.DecodeJSON(r.Body, &request); err != nil {
		c.logger.Debug("Invalid request format", zap.Error(err))
		writeError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if request.Username == "" || request.Password == "" || request.Balance == nil {
		writeError(w, r, http.StatusBadRequest, "Username, password, and balance are required")
		return
	}

	user, err := c.authService.Register(r.Context(), request.Username, request.Password, *request.Balance)
	if err != nil {
		c.logger.Warn("Registration failed",
			zap.String("username", request.Username),
			zap.Error(err))

		switch {
		case errors.Is(err, service.ErrUserAlreadyExists):
			writeError(w, r, http.StatusBadRequest, "User already exists")
		case errors.Is(err, service.ErrInvalidInput):
			writeError(w, r, http.StatusBadRequest, validationMessage(err))
		default:
			writeError(w, r, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.logger.Info("User registered successfully",
		zap.String("username", user.Username))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, messageResponse{Message: "User created successfully"})
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := render.DecodeJSON(r.Body, &request); err != nil {
		c.logger.Debug("Invalid request format", zap.Error(err))
		writeError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	token, err := c.authService.Login(r.Context(), request.Username, request.Password)
	if err != nil {
		c.logger.Warn("Login failed",
			zap.String("username", request.Username),
			zap.Error(err))

		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			writeError(w, r, http.StatusUnauthorized, "Invalid username or password")
		default:
			writeError(w, r, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.logger.Info("User logged in successfully",
		zap.String("username", request.Username))

	render.JSON(w, r, struct {
		AccessToken string `json:"accessToken"`
	}{AccessToken: token})
}

// validationMessage strips the sentinel prefix so clients only see the reason.
func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": ")
	if msg == "" {
		return "Invalid input"
	}
	return msg
}
