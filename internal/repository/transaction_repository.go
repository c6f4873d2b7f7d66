package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/lingvo-market/internal/models"
)

var (
	// ErrTransactionNotFound возвращается, когда эскроу-транзакция не найдена.
	ErrTransactionNotFound = errors.New("escrow transaction not found")
	// ErrTransactionNotPending возвращается при попытке закрыть уже закрытую транзакцию.
	ErrTransactionNotPending = errors.New("escrow transaction is not pending")
)

// TransactionRepository отвечает за работу с таблицей escrow_transactions.
type TransactionRepository struct {
	db *sqlx.DB
}

// NewTransactionRepository создаёт экземпляр репозитория.
func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, project_id, payer_id, payee_id, amount, status, hold_ref, refund_reason, released_at, created_at, updated_at`

// GetByID возвращает транзакцию по идентификатору.
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.EscrowTransaction, error) {
	var transaction models.EscrowTransaction
	query := `SELECT ` + transactionColumns + ` FROM escrow_transactions WHERE id = $1`
	if err := r.db.GetContext(ctx, &transaction, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("transaction repository: get by id %w", err)
	}

	return &transaction, nil
}

// GetByProjectID возвращает транзакцию проекта.
func (r *TransactionRepository) GetByProjectID(ctx context.Context, projectID uuid.UUID) (*models.EscrowTransaction, error) {
	var transaction models.EscrowTransaction
	query := `SELECT ` + transactionColumns + ` FROM escrow_transactions WHERE project_id = $1`
	if err := r.db.GetContext(ctx, &transaction, query, projectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("transaction repository: get by project id %w", err)
	}

	return &transaction, nil
}

// SetHoldRef сохраняет внешний идентификатор холда после создания платежа.
func (r *TransactionRepository) SetHoldRef(ctx context.Context, id uuid.UUID, holdRef string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE escrow_transactions SET hold_ref = $2, updated_at = NOW() WHERE id = $1 AND status = $3`,
		id, holdRef, models.EscrowStatusPending)
	if err != nil {
		return fmt.Errorf("transaction repository: set hold ref %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("transaction repository: set hold ref rows affected %w", err)
	}
	if rowsAffected == 0 {
		return ErrTransactionNotPending
	}

	return nil
}

// Release переводит транзакцию в released и проект в paid одной транзакцией БД.
func (r *TransactionRepository) Release(ctx context.Context, id uuid.UUID) (*models.EscrowTransaction, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("transaction repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	transaction, err := r.lockPending(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err = tx.QueryRowxContext(ctx, `
		UPDATE escrow_transactions
		SET status = $2, released_at = NOW(), updated_at = NOW()
		WHERE id = $1
		RETURNING released_at, updated_at
	`, id, models.EscrowStatusReleased).Scan(&transaction.ReleasedAt, &transaction.UpdatedAt); err != nil {
		return nil, fmt.Errorf("transaction repository: release %w", err)
	}
	transaction.Status = models.EscrowStatusReleased

	if _, err = tx.ExecContext(ctx,
		`UPDATE projects SET status = $2, updated_at = NOW() WHERE id = $1`,
		transaction.ProjectID, models.ProjectStatusPaid); err != nil {
		return nil, fmt.Errorf("transaction repository: update project %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("transaction repository: commit %w", err)
	}

	return transaction, nil
}

// Refund переводит транзакцию в refunded и проект в cancelled одной транзакцией БД.
// Причина может отсутствовать, тогда в refund_reason пишется NULL.
func (r *TransactionRepository) Refund(ctx context.Context, id uuid.UUID, reason *string) (*models.EscrowTransaction, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("transaction repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	transaction, err := r.lockPending(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err = tx.QueryRowxContext(ctx, `
		UPDATE escrow_transactions
		SET status = $2, refund_reason = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, id, models.EscrowStatusRefunded, reason).Scan(&transaction.UpdatedAt); err != nil {
		return nil, fmt.Errorf("transaction repository: refund %w", err)
	}
	transaction.Status = models.EscrowStatusRefunded
	transaction.RefundReason = reason

	if _, err = tx.ExecContext(ctx,
		`UPDATE projects SET status = $2, updated_at = NOW() WHERE id = $1`,
		transaction.ProjectID, models.ProjectStatusCancelled); err != nil {
		return nil, fmt.Errorf("transaction repository: update project %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("transaction repository: commit %w", err)
	}

	return transaction, nil
}

// lockPending блокирует транзакцию и проверяет, что она ещё в статусе pending.
func (r *TransactionRepository) lockPending(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.EscrowTransaction, error) {
	var transaction models.EscrowTransaction
	if err := tx.GetContext(ctx, &transaction,
		`SELECT `+transactionColumns+` FROM escrow_transactions WHERE id = $1 FOR UPDATE`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("transaction repository: lock %w", err)
	}

	if transaction.Status != models.EscrowStatusPending {
		return nil, ErrTransactionNotPending
	}

	return &transaction, nil
}
