package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/Evgen-Mutagen/qr-wallet/internal/core"
	"github.com/Evgen-Mutagen/qr-wallet/internal/middlewareinternal"
	"github.com/Evgen-Mutagen/qr-wallet/internal/service"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type BalanceController struct {
	balanceService core.BalanceService
	logger         *zap.Logger
}

func NewBalanceController(balanceService core.BalanceService, logger *zap.Logger) *BalanceController {
	return &BalanceController{
		balanceService: balanceService,
		logger:         logger,
	}
}

func (c *BalanceController) GetBalance(w http.ResponseWriter, r *http.Request) {
	username, ok := middlewareinternal.GetUsernameFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	statement, err := c.balanceService.GetBalanceAndHistory(r.Context(), username)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, r, http.StatusNotFound, "User not found")
			return
		}
		c.logger.Error("Failed to get balance",
			zap.String("username", username),
			zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	render.JSON(w, r, statement)
}

// Index is the unauthenticated landing route.
func Index(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, struct {
		Message   string    `json:"message"`
		Timestamp time.Time `json:"timestamp"`
	}{
		Message:   "Digital wallet backend",
		Timestamp: time.Now().UTC(),
	})
}
