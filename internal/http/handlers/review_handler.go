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

type ReviewHandler struct {
	reviews *service.ReviewService
}

func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// Create POST /projects/:id/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
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

	var req dto.CreateReviewRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	review, err := h.reviews.Create(c.Request.Context(), userID, service.CreateReviewInput{
		ProjectID: projectID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProjectNotFound):
			common.RespondNotFound(c, "проект не найден")
		case errors.Is(err, repository.ErrReviewAlreadyExists):
			common.RespondError(c, http.StatusConflict, "вы уже оставили отзыв по этому проекту")
		case errors.Is(err, service.ErrForbidden):
			common.RespondForbidden(c, err.Error())
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, review)
}

// Update PUT /reviews/:id
func (h *ReviewHandler) Update(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	reviewID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.UpdateReviewRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	review, err := h.reviews.Update(c.Request.Context(), reviewID, userID, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrReviewNotFound):
			common.RespondNotFound(c, "отзыв не найден")
		case errors.Is(err, service.ErrForbidden):
			common.RespondForbidden(c, err.Error())
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, review)
}

// CanReview GET /projects/:id/can-review
func (h *ReviewHandler) CanReview(c *gin.Context) {
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

	canReview, err := h.reviews.CanReview(c.Request.Context(), projectID, userID)
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, dto.CanReviewResponse{CanReview: canReview})
}

// ListByUser GET /users/:id/reviews
func (h *ReviewHandler) ListByUser(c *gin.Context) {
	revieweeID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	reviews, err := h.reviews.ListByReviewee(c.Request.Context(), revieweeID, limit, offset)
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// ListByProject GET /projects/:id/reviews
func (h *ReviewHandler) ListByProject(c *gin.Context) {
	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	reviews, err := h.reviews.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}
