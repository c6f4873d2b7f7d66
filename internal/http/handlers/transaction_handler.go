package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/lingvo-market/internal/dto"
	"github.com/ignatzorin/lingvo-market/internal/http/handlers/common"
	"github.com/ignatzorin/lingvo-market/internal/repository"
	"github.com/ignatzorin/lingvo-market/internal/service"
)

type TransactionHandler struct {
	escrow *service.EscrowService
}

func NewTransactionHandler(escrow *service.EscrowService) *TransactionHandler {
	return &TransactionHandler{escrow: escrow}
}

// CreateIntent POST /projects/:id/payment-intent
func (h *TransactionHandler) CreateIntent(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	intent, err := h.escrow.CreateIntent(c.Request.Context(), projectID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTransactionNotFound):
			common.RespondNotFound(c, "транзакция не найдена")
		case errors.Is(err, service.ErrForbidden):
			common.RespondForbidden(c, err.Error())
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, intent)
}

// Confirm POST /projects/:id/confirm-payment
func (h *TransactionHandler) Confirm(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	transaction, err := h.escrow.Confirm(c.Request.Context(), projectID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTransactionNotFound):
			common.RespondNotFound(c, "транзакция не найдена")
		case errors.Is(err, service.ErrForbidden):
			common.RespondForbidden(c, err.Error())
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, transaction)
}

// Release POST /transactions/:id/release
func (h *TransactionHandler) Release(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	transactionID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	transaction, err := h.escrow.Release(c.Request.Context(), transactionID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTransactionNotFound):
			common.RespondNotFound(c, "транзакция не найдена")
		case errors.Is(err, service.ErrForbidden):
			common.RespondForbidden(c, err.Error())
		case errors.Is(err, repository.ErrTransactionNotPending):
			c.JSON(http.StatusBadRequest, gin.H{"error": "транзакция уже закрыта"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, transaction)
}

// Refund POST /transactions/:id/refund
func (h *TransactionHandler) Refund(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	transactionID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	// Тело запроса опционально: возврат допускается и без причины.
	var req dto.RefundRequest
	if c.Request.ContentLength > 0 {
		if err := common.BindAndValidate(c, &req); err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
	}

	transaction, err := h.escrow.Refund(c.Request.Context(), transactionID, userID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTransactionNotFound):
			common.RespondNotFound(c, "транзакция не найдена")
		case errors.Is(err, service.ErrForbidden):
			common.RespondForbidden(c, err.Error())
		case errors.Is(err, repository.ErrTransactionNotPending):
			c.JSON(http.StatusBadRequest, gin.H{"error": "транзакция уже закрыта"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, transaction)
}

// GetByProject GET /projects/:id/transaction
func (h *TransactionHandler) GetByProject(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	transaction, err := h.escrow.GetByProject(c.Request.Context(), projectID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTransactionNotFound):
			common.RespondNotFound(c, "транзакция не найдена")
		case errors.Is(err, service.ErrForbidden):
			common.RespondForbidden(c, err.Error())
		default:
			common.RespondInternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, transaction)
}
