package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/lingvo-market/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	rawDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("не удалось создать sqlmock: %v", err)
	}
	db := sqlx.NewDb(rawDB, "postgres")
	t.Cleanup(func() { db.Close() })

	return db, mock
}

func bidRows(bid *models.Bid) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "project_id", "bidder_id", "amount", "estimated_days",
		"comment", "status", "created_at", "updated_at",
	}).AddRow(
		bid.ID.String(), bid.ProjectID.String(), bid.BidderID.String(), bid.Amount,
		nil, nil, bid.Status, bid.CreatedAt, bid.UpdatedAt,
	)
}

func projectRows(project *models.Project) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "client_id", "title", "description", "source_language", "target_language",
		"budget", "status", "deadline_at", "created_at", "updated_at",
	}).AddRow(
		project.ID.String(), project.ClientID.String(), project.Title, project.Description,
		project.SourceLanguage, project.TargetLanguage, project.Budget, project.Status,
		nil, project.CreatedAt, project.UpdatedAt,
	)
}

// Сценарий принятия: на проект поданы ставки 450 и 480, заказчик принимает 450.
// Вся цепочка записей должна пройти в одной транзакции БД: ставка принята,
// соперница отклонена, проект в работе, эскроу создан на сумму принятой ставки.
func TestBidRepository_Accept_TransactionSequence(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBidRepository(db)

	now := time.Now()
	clientID := uuid.New()
	bidderID := uuid.New()
	bid := &models.Bid{
		ID:        uuid.New(),
		ProjectID: uuid.New(),
		BidderID:  bidderID,
		Amount:    450,
		Status:    models.BidStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	project := &models.Project{
		ID:        bid.ProjectID,
		ClientID:  clientID,
		Title:     "Перевод договора поставки",
		Budget:    500,
		Status:    models.ProjectStatusPosted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	transactionID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM bids WHERE id = \$1 FOR UPDATE`).
		WithArgs(bid.ID).
		WillReturnRows(bidRows(bid))
	mock.ExpectQuery(`SELECT .+ FROM projects WHERE id = \$1 AND client_id = \$2 FOR UPDATE`).
		WithArgs(bid.ProjectID, clientID).
		WillReturnRows(projectRows(project))
	mock.ExpectQuery(`UPDATE bids SET status = \$2, updated_at = NOW\(\) WHERE id = \$1 RETURNING updated_at`).
		WithArgs(bid.ID, models.BidStatusAccepted).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectExec(`UPDATE bids SET status = \$3, updated_at = NOW\(\) WHERE project_id = \$1 AND id <> \$2 AND status = \$4`).
		WithArgs(bid.ProjectID, bid.ID, models.BidStatusRejected, models.BidStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`UPDATE projects SET status = \$2, updated_at = NOW\(\) WHERE id = \$1 RETURNING updated_at`).
		WithArgs(project.ID, models.ProjectStatusInProgress).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectQuery(`INSERT INTO escrow_transactions \(project_id, payer_id, payee_id, amount, status\)`).
		WithArgs(project.ID, clientID, bidderID, 450.0, models.EscrowStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "project_id", "payer_id", "payee_id", "amount", "status",
			"hold_ref", "refund_reason", "released_at", "created_at", "updated_at",
		}).AddRow(
			transactionID.String(), project.ID.String(), clientID.String(), bidderID.String(),
			450.0, models.EscrowStatusPending, nil, nil, nil, now, now,
		))
	mock.ExpectCommit()

	result, err := repo.Accept(context.Background(), bid.ID, clientID)

	assert.NoError(t, err)
	assert.Equal(t, models.BidStatusAccepted, result.Bid.Status)
	assert.Equal(t, models.ProjectStatusInProgress, result.Project.Status)
	assert.Equal(t, models.EscrowStatusPending, result.Transaction.Status)
	assert.Equal(t, 450.0, result.Transaction.Amount)
	assert.Equal(t, clientID, result.Transaction.PayerID)
	assert.Equal(t, bidderID, result.Transaction.PayeeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBidRepository_Accept_RollsBackDecidedBid(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBidRepository(db)

	now := time.Now()
	bid := &models.Bid{
		ID:        uuid.New(),
		ProjectID: uuid.New(),
		BidderID:  uuid.New(),
		Amount:    450,
		Status:    models.BidStatusRejected,
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM bids WHERE id = \$1 FOR UPDATE`).
		WithArgs(bid.ID).
		WillReturnRows(bidRows(bid))
	mock.ExpectRollback()

	_, err := repo.Accept(context.Background(), bid.ID, uuid.New())

	assert.ErrorIs(t, err, ErrBidNotPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBidRepository_Accept_RollsBackClosedProject(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBidRepository(db)

	now := time.Now()
	clientID := uuid.New()
	bid := &models.Bid{
		ID:        uuid.New(),
		ProjectID: uuid.New(),
		BidderID:  uuid.New(),
		Amount:    450,
		Status:    models.BidStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	project := &models.Project{
		ID:        bid.ProjectID,
		ClientID:  clientID,
		Status:    models.ProjectStatusInProgress,
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM bids WHERE id = \$1 FOR UPDATE`).
		WithArgs(bid.ID).
		WillReturnRows(bidRows(bid))
	mock.ExpectQuery(`SELECT .+ FROM projects WHERE id = \$1 AND client_id = \$2 FOR UPDATE`).
		WithArgs(bid.ProjectID, clientID).
		WillReturnRows(projectRows(project))
	mock.ExpectRollback()

	_, err := repo.Accept(context.Background(), bid.ID, clientID)

	assert.ErrorIs(t, err, ErrProjectNotOpen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBidRepository_Accept_BidNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBidRepository(db)

	bidID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM bids WHERE id = \$1 FOR UPDATE`).
		WithArgs(bidID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.Accept(context.Background(), bidID, uuid.New())

	assert.ErrorIs(t, err, ErrBidNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
