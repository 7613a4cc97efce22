package controller

import (
	"errors"
	"net/http"

	"github.com/Evgen-Mutagen/qr-wallet/internal/core"
	"github.com/Evgen-Mutagen/qr-wallet/internal/middlewareinternal"
	"github.com/Evgen-Mutagen/qr-wallet/internal/service"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PaymentController struct {
	paymentService core.PaymentService
	logger         *zap.Logger
}

func NewPaymentController(paymentService core.PaymentService, logger *zap.Logger) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		logger:         logger,
	}
}

type processPaymentResponse struct {
	Message    string          `json:"message"`
	NewBalance decimal.Decimal `json:"newBalance"`
}

func (c *PaymentController) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	username, ok := middlewareinternal.GetUsernameFromContext(r.Context())
	if !ok {
		c.logger.Error("Username not found in context")
		writeError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var request struct {
		TransactionID string `json:"transactionId"`
	}

	if err := render.DecodeJSON(r.Body, &request); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	settlement, err := c.paymentService.ProcessPayment(r.Context(), username, request.TransactionID)
	if err != nil {
		c.logger.Warn("Payment failed",
			zap.String("username", username),
			zap.String("transaction_id", request.TransactionID),
			zap.Error(err))

		switch {
		case errors.Is(err, service.ErrInvalidInput):
			writeError(w, r, http.StatusBadRequest, "Transaction ID is required")
		case errors.Is(err, service.ErrTransactionNotFound):
			writeError(w, r, http.StatusNotFound, "Transaction not found")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, r, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrInsufficientFunds):
			writeError(w, r, http.StatusBadRequest, "Insufficient funds")
		case errors.Is(err, service.ErrTransactionSettled):
			writeError(w, r, http.StatusConflict, "Transaction already settled")
		case errors.Is(err, service.ErrStoreConflict):
			writeError(w, r, http.StatusServiceUnavailable, "Too many concurrent updates, try again")
		default:
			writeError(w, r, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	render.JSON(w, r, processPaymentResponse{
		Message:    "Payment successful",
		NewBalance: settlement.NewBalance,
	})
}
