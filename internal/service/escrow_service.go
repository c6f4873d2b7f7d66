package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignatzorin/lingvo-market/internal/logger"
	"github.com/ignatzorin/lingvo-market/internal/models"
	"github.com/ignatzorin/lingvo-market/internal/payment"
)

// TransactionRepository описывает операции с эскроу-транзакциями, нужные сервису.
type TransactionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.EscrowTransaction, error)
	GetByProjectID(ctx context.Context, projectID uuid.UUID) (*models.EscrowTransaction, error)
	SetHoldRef(ctx context.Context, id uuid.UUID, holdRef string) error
	Release(ctx context.Context, id uuid.UUID) (*models.EscrowTransaction, error)
	Refund(ctx context.Context, id uuid.UUID, reason *string) (*models.EscrowTransaction, error)
}

// EscrowService отвечает за удержание и распределение средств по проектам.
type EscrowService struct {
	transactions TransactionRepository
	processor    payment.Processor
	notifier     Notifier
}

// NewEscrowService создаёт сервис эскроу.
func NewEscrowService(transactions TransactionRepository, processor payment.Processor, notifier Notifier) *EscrowService {
	return &EscrowService{transactions: transactions, processor: processor, notifier: notifier}
}

// PaymentIntent содержит данные для оплаты на стороне клиента.
type PaymentIntent struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	HoldRef       string    `json:"hold_ref"`
	ClientSecret  string    `json:"client_secret,omitempty"`
	Amount        float64   `json:"amount"`
}

// CreateIntent создаёт холд у платёжного провайдера для транзакции проекта.
func (s *EscrowService) CreateIntent(ctx context.Context, projectID, clientID uuid.UUID) (*PaymentIntent, error) {
	transaction, err := s.transactions.GetByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if transaction.PayerID != clientID {
		return nil, fmt.Errorf("оплату проводит владелец проекта: %w", ErrForbidden)
	}
	if transaction.Status != models.EscrowStatusPending {
		return nil, fmt.Errorf("транзакция уже закрыта")
	}

	// Холд уже создан, возвращаем существующий
	if transaction.HoldRef != nil {
		hold, err := s.processor.GetHold(ctx, *transaction.HoldRef)
		if err != nil {
			return nil, err
		}
		return &PaymentIntent{
			TransactionID: transaction.ID,
			HoldRef:       hold.ID,
			ClientSecret:  hold.ClientSecret,
			Amount:        transaction.Amount,
		}, nil
	}

	hold, err := s.processor.CreateHold(ctx, transaction.Amount, map[string]string{
		"project_id":     transaction.ProjectID.String(),
		"transaction_id": transaction.ID.String(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.transactions.SetHoldRef(ctx, transaction.ID, hold.ID); err != nil {
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"transaction_id": transaction.ID,
		"hold_ref":       hold.ID,
	}).Info("создан платёжный холд")

	return &PaymentIntent{
		TransactionID: transaction.ID,
		HoldRef:       hold.ID,
		ClientSecret:  hold.ClientSecret,
		Amount:        transaction.Amount,
	}, nil
}

// Confirm проверяет у провайдера, что средства заморожены.
func (s *EscrowService) Confirm(ctx context.Context, projectID, clientID uuid.UUID) (*models.EscrowTransaction, error) {
	transaction, err := s.transactions.GetByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if transaction.PayerID != clientID {
		return nil, fmt.Errorf("оплату проводит владелец проекта: %w", ErrForbidden)
	}
	if transaction.HoldRef == nil {
		return nil, fmt.Errorf("платёж ещё не создан")
	}

	hold, err := s.processor.GetHold(ctx, *transaction.HoldRef)
	if err != nil {
		return nil, err
	}
	if hold.Status != payment.HoldStatusSucceeded {
		return nil, fmt.Errorf("платёж не подтверждён, статус: %s", hold.Status)
	}

	if s.notifier != nil {
		s.notifier.Notify(transaction.PayeeID, "escrow_funded", transaction)
	}

	return transaction, nil
}

// Release выплачивает удержанные средства переводчику и переводит
// проект в статус paid. Допускается только один раз.
func (s *EscrowService) Release(ctx context.Context, transactionID, clientID uuid.UUID) (*models.EscrowTransaction, error) {
	transaction, err := s.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if transaction.PayerID != clientID {
		return nil, fmt.Errorf("выплату подтверждает владелец проекта: %w", ErrForbidden)
	}
	if transaction.Status != models.EscrowStatusPending {
		return nil, fmt.Errorf("транзакция уже закрыта")
	}

	if transaction.HoldRef != nil {
		if _, err := s.processor.ReleaseHold(ctx, *transaction.HoldRef); err != nil {
			return nil, fmt.Errorf("escrow service: release hold %w", err)
		}
	}

	released, err := s.transactions.Release(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	logger.Log.WithField("transaction_id", released.ID).Info("средства выплачены переводчику")

	if s.notifier != nil {
		s.notifier.Notify(released.PayeeID, "escrow_released", released)
	}

	return released, nil
}

// Refund возвращает удержанные средства заказчику и отменяет проект.
// Причину возврата заказчик указывать не обязан.
func (s *EscrowService) Refund(ctx context.Context, transactionID, clientID uuid.UUID, reason *string) (*models.EscrowTransaction, error) {
	transaction, err := s.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if transaction.PayerID != clientID {
		return nil, fmt.Errorf("возврат запрашивает владелец проекта: %w", ErrForbidden)
	}
	if transaction.Status != models.EscrowStatusPending {
		return nil, fmt.Errorf("транзакция уже закрыта")
	}

	if transaction.HoldRef != nil {
		var holdReason string
		if reason != nil {
			holdReason = *reason
		}
		if _, err := s.processor.RefundHold(ctx, *transaction.HoldRef, holdReason); err != nil {
			return nil, fmt.Errorf("escrow service: refund hold %w", err)
		}
	}

	refunded, err := s.transactions.Refund(ctx, transactionID, reason)
	if err != nil {
		return nil, err
	}

	logger.Log.WithField("transaction_id", refunded.ID).Info("средства возвращены заказчику")

	if s.notifier != nil {
		s.notifier.Notify(refunded.PayeeID, "escrow_refunded", refunded)
	}

	return refunded, nil
}

// GetByProject возвращает транзакцию проекта участнику сделки.
func (s *EscrowService) GetByProject(ctx context.Context, projectID, viewerID uuid.UUID) (*models.EscrowTransaction, error) {
	transaction, err := s.transactions.GetByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if transaction.PayerID != viewerID && transaction.PayeeID != viewerID {
		return nil, fmt.Errorf("транзакция доступна только участникам проекта: %w", ErrForbidden)
	}

	return transaction, nil
}
