package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignatzorin/lingvo-market/internal/logger"
	"github.com/ignatzorin/lingvo-market/internal/models"
	"github.com/ignatzorin/lingvo-market/internal/repository"
	"github.com/ignatzorin/lingvo-market/internal/validation"
)

// ReviewRepository описывает операции с отзывами, нужные сервису.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	Exists(ctx context.Context, projectID, reviewerID, revieweeID uuid.UUID) (bool, error)
	ListByRevieweeID(ctx context.Context, revieweeID uuid.UUID, limit, offset int) ([]models.Review, error)
	ListByProjectID(ctx context.Context, projectID uuid.UUID) ([]models.Review, error)
}

// ReviewService отвечает за отзывы и рейтинг пользователей.
type ReviewService struct {
	reviews  ReviewRepository
	projects BidProjectReader
	bids     ProjectBidReader
}

// NewReviewService создаёт сервис отзывов.
func NewReviewService(reviews ReviewRepository, projects BidProjectReader, bids ProjectBidReader) *ReviewService {
	return &ReviewService{reviews: reviews, projects: projects, bids: bids}
}

// errNoAcceptedBid означает, что у проекта ещё нет исполнителя.
var errNoAcceptedBid = errors.New("по проекту нет принятого предложения")

// participants возвращает заказчика и переводчика завершённой сделки.
func (s *ReviewService) participants(ctx context.Context, projectID uuid.UUID) (*models.Project, *models.Bid, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}

	bid, err := s.bids.GetAcceptedByProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrBidNotFound) {
			return nil, nil, errNoAcceptedBid
		}
		return nil, nil, err
	}

	return project, bid, nil
}

// CreateReviewInput содержит данные нового отзыва.
type CreateReviewInput struct {
	ProjectID uuid.UUID
	Rating    int
	Comment   *string
}

// Create оставляет отзыв о втором участнике проекта. Доступно заказчику и
// переводчику после завершения работы, по одному отзыву с каждой стороны.
func (s *ReviewService) Create(ctx context.Context, reviewerID uuid.UUID, input CreateReviewInput) (*models.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, fmt.Errorf("оценка должна быть от 1 до 5")
	}
	if err := validation.ValidateReviewComment(input.Comment); err != nil {
		return nil, err
	}

	project, bid, err := s.participants(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}

	if project.Status != models.ProjectStatusCompleted && project.Status != models.ProjectStatusPaid {
		return nil, fmt.Errorf("отзыв можно оставить только после завершения работы")
	}

	var revieweeID uuid.UUID
	switch reviewerID {
	case project.ClientID:
		revieweeID = bid.BidderID
	case bid.BidderID:
		revieweeID = project.ClientID
	default:
		return nil, fmt.Errorf("отзывы оставляют только участники проекта: %w", ErrForbidden)
	}

	review := &models.Review{
		ProjectID:  input.ProjectID,
		ReviewerID: reviewerID,
		RevieweeID: revieweeID,
		Rating:     input.Rating,
		Comment:    input.Comment,
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"review_id":  review.ID,
		"project_id": review.ProjectID,
	}).Info("оставлен отзыв")

	return review, nil
}

// Update изменяет собственный отзыв автора. Оба поля опциональны,
// непереданное поле сохраняет прежнее значение.
func (s *ReviewService) Update(ctx context.Context, reviewID, reviewerID uuid.UUID, rating *int, comment *string) (*models.Review, error) {
	if rating == nil && comment == nil {
		return nil, fmt.Errorf("нет полей для обновления")
	}
	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, fmt.Errorf("оценка должна быть от 1 до 5")
	}
	if comment != nil {
		if err := validation.ValidateReviewComment(comment); err != nil {
			return nil, err
		}
	}

	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.ReviewerID != reviewerID {
		return nil, fmt.Errorf("отзыв принадлежит другому пользователю: %w", ErrForbidden)
	}

	if rating != nil {
		review.Rating = *rating
	}
	if comment != nil {
		review.Comment = comment
	}

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

// CanReview сообщает, может ли пользователь оставить отзыв по проекту.
// Определённое "нельзя" возвращается только по бизнес-причинам, сбой
// БД поднимается как ошибка.
func (s *ReviewService) CanReview(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	project, bid, err := s.participants(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) || errors.Is(err, errNoAcceptedBid) {
			return false, nil
		}
		return false, err
	}

	if project.Status != models.ProjectStatusCompleted && project.Status != models.ProjectStatusPaid {
		return false, nil
	}

	var revieweeID uuid.UUID
	switch userID {
	case project.ClientID:
		revieweeID = bid.BidderID
	case bid.BidderID:
		revieweeID = project.ClientID
	default:
		return false, nil
	}

	exists, err := s.reviews.Exists(ctx, projectID, userID, revieweeID)
	if err != nil {
		return false, err
	}

	return !exists, nil
}

// ListByReviewee возвращает отзывы о пользователе.
func (s *ReviewService) ListByReviewee(ctx context.Context, revieweeID uuid.UUID, limit, offset int) ([]models.Review, error) {
	return s.reviews.ListByRevieweeID(ctx, revieweeID, limit, offset)
}

// ListByProject возвращает отзывы по проекту.
func (s *ReviewService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Review, error) {
	return s.reviews.ListByProjectID(ctx, projectID)
}
