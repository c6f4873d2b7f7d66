package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignatzorin/lingvo-market/internal/logger"
	"github.com/ignatzorin/lingvo-market/internal/models"
	"github.com/ignatzorin/lingvo-market/internal/repository"
	"github.com/ignatzorin/lingvo-market/internal/validation"
)

// BidRepository описывает операции со ставками, нужные сервису.
type BidRepository interface {
	Create(ctx context.Context, bid *models.Bid) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bid, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Bid, error)
	ListByBidder(ctx context.Context, bidderID uuid.UUID) ([]models.Bid, error)
	Accept(ctx context.Context, bidID uuid.UUID, clientID uuid.UUID) (*repository.AcceptResult, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// BidProjectReader описывает доступ к проектам, нужный сервису ставок.
type BidProjectReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

// BidUserReader описывает доступ к пользователям, нужный сервису ставок.
type BidUserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Notifier рассылает события пользователям в реальном времени.
type Notifier interface {
	Notify(userID uuid.UUID, event string, payload any)
}

// BidService отвечает за подачу и обработку предложений переводчиков.
type BidService struct {
	bids     BidRepository
	projects BidProjectReader
	users    BidUserReader
	notifier Notifier
}

// NewBidService создаёт сервис ставок.
func NewBidService(bids BidRepository, projects BidProjectReader, users BidUserReader, notifier Notifier) *BidService {
	return &BidService{bids: bids, projects: projects, users: users, notifier: notifier}
}

// SubmitBidInput содержит данные нового предложения.
type SubmitBidInput struct {
	ProjectID     uuid.UUID
	Amount        float64
	EstimatedDays *int
	Comment       *string
}

// Submit подаёт предложение переводчика по открытому проекту.
func (s *BidService) Submit(ctx context.Context, bidderID uuid.UUID, role string, input SubmitBidInput) (*models.Bid, error) {
	if role != models.RoleFreelancer {
		return nil, fmt.Errorf("подавать предложения могут только переводчики: %w", ErrForbidden)
	}

	if err := validation.ValidateBudget(input.Amount); err != nil {
		return nil, err
	}
	if input.EstimatedDays != nil && *input.EstimatedDays <= 0 {
		return nil, fmt.Errorf("срок выполнения в днях должен быть положительным")
	}
	if err := validation.ValidateBidComment(input.Comment); err != nil {
		return nil, err
	}

	bidder, err := s.users.GetByID(ctx, bidderID)
	if err != nil {
		return nil, err
	}
	if len(bidder.Languages) == 0 {
		return nil, fmt.Errorf("укажите рабочие языки в профиле перед подачей предложения")
	}

	project, err := s.projects.GetByID(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.Status != models.ProjectStatusPosted {
		return nil, fmt.Errorf("проект уже не принимает предложения")
	}
	if project.ClientID == bidderID {
		return nil, fmt.Errorf("нельзя подавать предложение на собственный проект")
	}

	bid := &models.Bid{
		ProjectID:     input.ProjectID,
		BidderID:      bidderID,
		Amount:        input.Amount,
		EstimatedDays: input.EstimatedDays,
		Comment:       input.Comment,
		Status:        models.BidStatusPending,
	}

	if err := s.bids.Create(ctx, bid); err != nil {
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"bid_id":     bid.ID,
		"project_id": bid.ProjectID,
	}).Info("подано предложение")

	if s.notifier != nil {
		s.notifier.Notify(project.ClientID, "new_bid", bid)
	}

	return bid, nil
}

// Accept принимает предложение от имени владельца проекта. Остальные
// предложения отклоняются, проект переходит в работу, создаётся
// эскроу-транзакция. Всё происходит в одной транзакции БД.
func (s *BidService) Accept(ctx context.Context, bidID, clientID uuid.UUID) (*repository.AcceptResult, error) {
	result, err := s.bids.Accept(ctx, bidID, clientID)
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"bid_id":         result.Bid.ID,
		"project_id":     result.Project.ID,
		"transaction_id": result.Transaction.ID,
	}).Info("предложение принято")

	if s.notifier != nil {
		s.notifier.Notify(result.Bid.BidderID, "bid_accepted", result.Bid)
	}

	return result, nil
}

// Reject отклоняет ожидающее предложение от имени владельца проекта.
func (s *BidService) Reject(ctx context.Context, bidID, clientID uuid.UUID) (*models.Bid, error) {
	bid, err := s.bids.GetByID(ctx, bidID)
	if err != nil {
		return nil, err
	}

	project, err := s.projects.GetByID(ctx, bid.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.ClientID != clientID {
		return nil, fmt.Errorf("проект принадлежит другому пользователю: %w", ErrForbidden)
	}

	if err := s.bids.UpdateStatus(ctx, bidID, models.BidStatusRejected); err != nil {
		return nil, err
	}
	bid.Status = models.BidStatusRejected

	if s.notifier != nil {
		s.notifier.Notify(bid.BidderID, "bid_rejected", bid)
	}

	return bid, nil
}

// ListByProject возвращает предложения по проекту. Ожидающие предложения
// видны только владельцу проекта, принятое видно всем.
func (s *BidService) ListByProject(ctx context.Context, projectID uuid.UUID, viewerID uuid.UUID) ([]models.Bid, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	bids, err := s.bids.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if project.ClientID == viewerID {
		return bids, nil
	}

	visible := make([]models.Bid, 0, len(bids))
	for _, b := range bids {
		if b.Status == models.BidStatusAccepted || b.BidderID == viewerID {
			visible = append(visible, b)
		}
	}

	return visible, nil
}

// ListMine возвращает предложения текущего переводчика.
func (s *BidService) ListMine(ctx context.Context, bidderID uuid.UUID) ([]models.Bid, error) {
	return s.bids.ListByBidder(ctx, bidderID)
}
