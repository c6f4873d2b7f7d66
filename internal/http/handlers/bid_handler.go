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

type BidHandler struct {
	bids *service.BidService
}

func NewBidHandler(bids *service.BidService) *BidHandler {
	return &BidHandler{bids: bids}
}

// Submit POST /projects/:id/bids
func (h *BidHandler) Submit(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, err := common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.CreateBidRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	bid, err := h.bids.Submit(c.Request.Context(), userID, role, service.SubmitBidInput{
		ProjectID:     projectID,
		Amount:        req.Amount,
		EstimatedDays: req.EstimatedDays,
		Comment:       req.Comment,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProjectNotFound):
			common.RespondNotFound(c, "проект не найден")
		case errors.Is(err, repository.ErrBidAlreadyExists):
			common.RespondError(c, http.StatusConflict, "вы уже подали предложение по этому проекту")
		case errors.Is(err, service.ErrForbidden):
			common.RespondForbidden(c, err.Error())
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, bid)
}

// Accept PUT /bids/:id/accept
func (h *BidHandler) Accept(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	bidID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	result, err := h.bids.Accept(c.Request.Context(), bidID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBidNotFound):
			common.RespondNotFound(c, "предложение не найдено")
		case errors.Is(err, repository.ErrProjectNotFound):
			common.RespondForbidden(c, "проект принадлежит другому пользователю")
		case errors.Is(err, repository.ErrBidNotPending):
			c.JSON(http.StatusBadRequest, gin.H{"error": "предложение уже обработано"})
		case errors.Is(err, repository.ErrProjectNotOpen):
			c.JSON(http.StatusBadRequest, gin.H{"error": "проект уже не принимает предложения"})
		default:
			common.RespondInternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, dto.AcceptBidResponse{
		Bid:         result.Bid,
		Project:     result.Project,
		Transaction: result.Transaction,
	})
}

// Reject PUT /bids/:id/reject
func (h *BidHandler) Reject(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	bidID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	bid, err := h.bids.Reject(c.Request.Context(), bidID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBidNotFound):
			common.RespondNotFound(c, "предложение не найдено")
		case errors.Is(err, repository.ErrBidNotPending):
			c.JSON(http.StatusBadRequest, gin.H{"error": "предложение уже обработано"})
		case errors.Is(err, service.ErrForbidden):
			common.RespondForbidden(c, err.Error())
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, bid)
}

// ListByProject GET /projects/:id/bids
func (h *BidHandler) ListByProject(c *gin.Context) {
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

	bids, err := h.bids.ListByProject(c.Request.Context(), projectID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			common.RespondNotFound(c, "проект не найден")
			return
		}
		common.RespondInternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"bids": bids})
}

// ListMine GET /bids/my
func (h *BidHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	bids, err := h.bids.ListMine(c.Request.Context(), userID)
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"bids": bids})
}
