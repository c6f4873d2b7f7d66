package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/lingvo-market/internal/models"
)

func transactionRows(transaction *models.EscrowTransaction) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "project_id", "payer_id", "payee_id", "amount", "status",
		"hold_ref", "refund_reason", "released_at", "created_at", "updated_at",
	}).AddRow(
		transaction.ID.String(), transaction.ProjectID.String(), transaction.PayerID.String(),
		transaction.PayeeID.String(), transaction.Amount, transaction.Status,
		*transaction.HoldRef, nil, nil, transaction.CreatedAt, transaction.UpdatedAt,
	)
}

func pendingEscrowRow() *models.EscrowTransaction {
	now := time.Now()
	holdRef := "hold_123"
	return &models.EscrowTransaction{
		ID:        uuid.New(),
		ProjectID: uuid.New(),
		PayerID:   uuid.New(),
		PayeeID:   uuid.New(),
		Amount:    450,
		Status:    models.EscrowStatusPending,
		HoldRef:   &holdRef,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Выплата закрывает транзакцию и переводит проект в paid одной транзакцией БД.
func TestTransactionRepository_Release_TransactionSequence(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransactionRepository(db)

	transaction := pendingEscrowRow()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM escrow_transactions WHERE id = \$1 FOR UPDATE`).
		WithArgs(transaction.ID).
		WillReturnRows(transactionRows(transaction))
	mock.ExpectQuery(`UPDATE escrow_transactions SET status = \$2, released_at = NOW\(\), updated_at = NOW\(\) WHERE id = \$1 RETURNING released_at, updated_at`).
		WithArgs(transaction.ID, models.EscrowStatusReleased).
		WillReturnRows(sqlmock.NewRows([]string{"released_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec(`UPDATE projects SET status = \$2, updated_at = NOW\(\) WHERE id = \$1`).
		WithArgs(transaction.ProjectID, models.ProjectStatusPaid).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	released, err := repo.Release(context.Background(), transaction.ID)

	assert.NoError(t, err)
	assert.Equal(t, models.EscrowStatusReleased, released.Status)
	assert.NotNil(t, released.ReleasedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_Release_RollsBackClosedTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransactionRepository(db)

	transaction := pendingEscrowRow()
	transaction.Status = models.EscrowStatusReleased

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM escrow_transactions WHERE id = \$1 FOR UPDATE`).
		WithArgs(transaction.ID).
		WillReturnRows(transactionRows(transaction))
	mock.ExpectRollback()

	_, err := repo.Release(context.Background(), transaction.ID)

	assert.ErrorIs(t, err, ErrTransactionNotPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Возврат закрывает транзакцию и отменяет проект одной транзакцией БД.
func TestTransactionRepository_Refund_TransactionSequence(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransactionRepository(db)

	transaction := pendingEscrowRow()
	reason := "переводчик не вышел на связь"
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM escrow_transactions WHERE id = \$1 FOR UPDATE`).
		WithArgs(transaction.ID).
		WillReturnRows(transactionRows(transaction))
	mock.ExpectQuery(`UPDATE escrow_transactions SET status = \$2, refund_reason = \$3, updated_at = NOW\(\) WHERE id = \$1 RETURNING updated_at`).
		WithArgs(transaction.ID, models.EscrowStatusRefunded, &reason).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectExec(`UPDATE projects SET status = \$2, updated_at = NOW\(\) WHERE id = \$1`).
		WithArgs(transaction.ProjectID, models.ProjectStatusCancelled).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	refunded, err := repo.Refund(context.Background(), transaction.ID, &reason)

	assert.NoError(t, err)
	assert.Equal(t, models.EscrowStatusRefunded, refunded.Status)
	assert.Equal(t, reason, *refunded.RefundReason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_Refund_NilReasonStoredAsNull(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransactionRepository(db)

	transaction := pendingEscrowRow()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM escrow_transactions WHERE id = \$1 FOR UPDATE`).
		WithArgs(transaction.ID).
		WillReturnRows(transactionRows(transaction))
	mock.ExpectQuery(`UPDATE escrow_transactions SET status = \$2, refund_reason = \$3, updated_at = NOW\(\) WHERE id = \$1 RETURNING updated_at`).
		WithArgs(transaction.ID, models.EscrowStatusRefunded, nil).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectExec(`UPDATE projects SET status = \$2, updated_at = NOW\(\) WHERE id = \$1`).
		WithArgs(transaction.ProjectID, models.ProjectStatusCancelled).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	refunded, err := repo.Refund(context.Background(), transaction.ID, nil)

	assert.NoError(t, err)
	assert.Equal(t, models.EscrowStatusRefunded, refunded.Status)
	assert.Nil(t, refunded.RefundReason)
	assert.NoError(t, mock.ExpectationsWereMet())
}
