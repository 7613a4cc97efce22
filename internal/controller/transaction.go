package controller

import (
	"errors"
	"net/http"

	"github.com/Evgen-Mutagen/qr-wallet/internal/core"
	"github.com/Evgen-Mutagen/qr-wallet/internal/middlewareinternal"
	"github.com/Evgen-Mutagen/qr-wallet/internal/model"
	"github.com/Evgen-Mutagen/qr-wallet/internal/service"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type TransactionController struct {
	transactionService core.TransactionService
	logger             *zap.Logger
}

func NewTransactionController(transactionService core.TransactionService, logger *zap.Logger) *TransactionController {
	return &TransactionController{
		transactionService: transactionService,
		logger:             logger,
	}
}

type generateQRResponse struct {
	QRCode             string        `json:"qrCode"`
	TransactionDetails model.Details `json:"transactionDetails"`
}

func (c *TransactionController) GenerateQR(w http.ResponseWriter, r *http.Request) {
	username, ok := middlewareinternal.GetUsernameFromContext(r.Context())
	if !ok {
		c.logger.Error("Username not found in context")
		writeError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	rawAmount := r.URL.Query().Get("amount")
	if rawAmount == "" {
		writeError(w, r, http.StatusBadRequest, "Amount is required")
		return
	}

	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Amount must be a number")
		return
	}

	txn, qrCode, err := c.transactionService.CreateTransaction(r.Context(), username, amount)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrAmountOutOfRange):
			writeError(w, r, http.StatusBadRequest, "Amount is out of range")
		case errors.Is(err, service.ErrInvalidAmount):
			writeError(w, r, http.StatusBadRequest, "Amount must be greater than zero")
		case errors.Is(err, service.ErrEncodeFailed):
			c.logger.Error("Failed to encode qr code",
				zap.String("username", username),
				zap.Error(err))
			writeError(w, r, http.StatusInternalServerError, "Error generating QR code")
		default:
			c.logger.Error("Failed to create transaction",
				zap.String("username", username),
				zap.Error(err))
			writeError(w, r, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.logger.Info("Transaction created",
		zap.String("username", username),
		zap.String("transaction_id", txn.ID),
		zap.String("amount", txn.Amount.String()))

	render.JSON(w, r, generateQRResponse{
		QRCode:             qrCode,
		TransactionDetails: txn.Details(),
	})
}
