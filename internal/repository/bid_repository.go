package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/lingvo-market/internal/models"
)

var (
	// ErrBidNotFound возвращается, когда ставка не найдена.
	ErrBidNotFound = errors.New("bid not found")
	// ErrBidAlreadyExists возвращается при повторной ставке на тот же проект.
	ErrBidAlreadyExists = errors.New("bid already exists")
	// ErrBidNotPending возвращается при попытке обработать уже решённую ставку.
	ErrBidNotPending = errors.New("bid is not pending")
	// ErrProjectNotOpen возвращается, когда проект уже не принимает ставки.
	ErrProjectNotOpen = errors.New("project is not open for bids")
)

// BidRepository отвечает за работу с таблицей bids.
type BidRepository struct {
	db *sqlx.DB
}

// NewBidRepository создаёт экземпляр репозитория.
func NewBidRepository(db *sqlx.DB) *BidRepository {
	return &BidRepository{db: db}
}

const bidColumns = `id, project_id, bidder_id, amount, estimated_days, comment, status, created_at, updated_at`

// Create сохраняет новую ставку.
func (r *BidRepository) Create(ctx context.Context, bid *models.Bid) error {
	query := `
		INSERT INTO bids (project_id, bidder_id, amount, estimated_days, comment, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(
		ctx,
		query,
		bid.ProjectID,
		bid.BidderID,
		bid.Amount,
		bid.EstimatedDays,
		bid.Comment,
		bid.Status,
	).Scan(&bid.ID, &bid.CreatedAt, &bid.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrBidAlreadyExists
		}
		return fmt.Errorf("bid repository: create %w", err)
	}

	return nil
}

// GetByID возвращает ставку по идентификатору.
func (r *BidRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	var bid models.Bid
	query := `SELECT ` + bidColumns + ` FROM bids WHERE id = $1`
	if err := r.db.GetContext(ctx, &bid, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBidNotFound
		}
		return nil, fmt.Errorf("bid repository: get by id %w", err)
	}

	return &bid, nil
}

// ListByProject возвращает ставки проекта, новые первыми.
func (r *BidRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Bid, error) {
	var bids []models.Bid
	query := `SELECT ` + bidColumns + ` FROM bids WHERE project_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &bids, query, projectID); err != nil {
		return nil, fmt.Errorf("bid repository: list by project %w", err)
	}

	return bids, nil
}

// ListByBidder возвращает ставки исполнителя.
func (r *BidRepository) ListByBidder(ctx context.Context, bidderID uuid.UUID) ([]models.Bid, error) {
	var bids []models.Bid
	query := `SELECT ` + bidColumns + ` FROM bids WHERE bidder_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &bids, query, bidderID); err != nil {
		return nil, fmt.Errorf("bid repository: list by bidder %w", err)
	}

	return bids, nil
}

// GetAcceptedByProject возвращает принятую ставку проекта, если она есть.
func (r *BidRepository) GetAcceptedByProject(ctx context.Context, projectID uuid.UUID) (*models.Bid, error) {
	var bid models.Bid
	query := `SELECT ` + bidColumns + ` FROM bids WHERE project_id = $1 AND status = $2`
	if err := r.db.GetContext(ctx, &bid, query, projectID, models.BidStatusAccepted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBidNotFound
		}
		return nil, fmt.Errorf("bid repository: get accepted %w", err)
	}

	return &bid, nil
}

// UpdateStatus меняет статус ожидающей ставки (используется для отклонения).
func (r *BidRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bids SET status = $2, updated_at = NOW() WHERE id = $1 AND status = $3`,
		id, status, models.BidStatusPending)
	if err != nil {
		return fmt.Errorf("bid repository: update status %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("bid repository: update status rows affected %w", err)
	}
	if rowsAffected == 0 {
		return ErrBidNotPending
	}

	return nil
}

// AcceptResult описывает итог принятия ставки.
type AcceptResult struct {
	Bid         *models.Bid
	Project     *models.Project
	Transaction *models.EscrowTransaction
}

// Accept принимает ставку атомарно: ставка становится accepted, остальные
// ставки проекта rejected, проект переходит в in_progress, создаётся
// эскроу-транзакция в статусе pending. Любая ошибка откатывает всё целиком.
func (r *BidRepository) Accept(ctx context.Context, bidID uuid.UUID, clientID uuid.UUID) (*AcceptResult, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("bid repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var bid models.Bid
	if err = tx.GetContext(ctx, &bid,
		`SELECT `+bidColumns+` FROM bids WHERE id = $1 FOR UPDATE`, bidID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrBidNotFound
			return nil, err
		}
		return nil, fmt.Errorf("bid repository: lock bid %w", err)
	}

	if bid.Status != models.BidStatusPending {
		err = ErrBidNotPending
		return nil, err
	}

	var project models.Project
	if err = tx.GetContext(ctx, &project,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1 AND client_id = $2 FOR UPDATE`,
		bid.ProjectID, clientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrProjectNotFound
			return nil, err
		}
		return nil, fmt.Errorf("bid repository: lock project %w", err)
	}

	if project.Status != models.ProjectStatusPosted {
		err = ErrProjectNotOpen
		return nil, err
	}

	if err = tx.QueryRowxContext(ctx,
		`UPDATE bids SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at`,
		bid.ID, models.BidStatusAccepted).Scan(&bid.UpdatedAt); err != nil {
		return nil, fmt.Errorf("bid repository: accept bid %w", err)
	}
	bid.Status = models.BidStatusAccepted

	if _, err = tx.ExecContext(ctx,
		`UPDATE bids SET status = $3, updated_at = NOW() WHERE project_id = $1 AND id <> $2 AND status = $4`,
		bid.ProjectID, bid.ID, models.BidStatusRejected, models.BidStatusPending); err != nil {
		return nil, fmt.Errorf("bid repository: reject siblings %w", err)
	}

	if err = tx.QueryRowxContext(ctx,
		`UPDATE projects SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at`,
		project.ID, models.ProjectStatusInProgress).Scan(&project.UpdatedAt); err != nil {
		return nil, fmt.Errorf("bid repository: update project status %w", err)
	}
	project.Status = models.ProjectStatusInProgress

	var transaction models.EscrowTransaction
	if err = tx.QueryRowxContext(ctx, `
		INSERT INTO escrow_transactions (project_id, payer_id, payee_id, amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, project_id, payer_id, payee_id, amount, status, hold_ref, refund_reason, released_at, created_at, updated_at
	`, project.ID, project.ClientID, bid.BidderID, bid.Amount, models.EscrowStatusPending).
		StructScan(&transaction); err != nil {
		return nil, fmt.Errorf("bid repository: create escrow transaction %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("bid repository: commit %w", err)
	}

	return &AcceptResult{Bid: &bid, Project: &project, Transaction: &transaction}, nil
}
