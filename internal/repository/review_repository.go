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
	// ErrReviewNotFound возвращается, когда отзыв не найден.
	ErrReviewNotFound = errors.New("review not found")
	// ErrReviewAlreadyExists возвращается при повторном отзыве в рамках проекта.
	ErrReviewAlreadyExists = errors.New("review already exists")
)

// ReviewRepository отвечает за работу с таблицей reviews и рейтингом пользователей.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository создаёт экземпляр репозитория.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewColumns = `id, project_id, reviewer_id, reviewee_id, rating, comment, created_at, updated_at`

// Create сохраняет отзыв и пересчитывает рейтинг получателя в одной транзакции.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("review repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		INSERT INTO reviews (project_id, reviewer_id, reviewee_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	if err = tx.QueryRowxContext(
		ctx,
		query,
		review.ProjectID,
		review.ReviewerID,
		review.RevieweeID,
		review.Rating,
		review.Comment,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			err = ErrReviewAlreadyExists
			return err
		}
		return fmt.Errorf("review repository: create %w", err)
	}

	if err = r.recalculateRating(ctx, tx, review.RevieweeID); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("review repository: commit %w", err)
	}

	return nil
}

// Update изменяет оценку и комментарий отзыва и пересчитывает рейтинг получателя.
func (r *ReviewRepository) Update(ctx context.Context, review *models.Review) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("review repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		UPDATE reviews
		SET rating = $2, comment = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING reviewee_id, updated_at
	`

	if err = tx.QueryRowxContext(ctx, query, review.ID, review.Rating, review.Comment).
		Scan(&review.RevieweeID, &review.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrReviewNotFound
			return err
		}
		return fmt.Errorf("review repository: update %w", err)
	}

	if err = r.recalculateRating(ctx, tx, review.RevieweeID); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("review repository: commit %w", err)
	}

	return nil
}

// recalculateRating выводит рейтинг пользователя из таблицы reviews.
// Расчёт от первоисточника делает пересчёт идемпотентным при гонках.
func (r *ReviewRepository) recalculateRating(ctx context.Context, tx *sqlx.Tx, revieweeID uuid.UUID) error {
	query := `
		UPDATE users
		SET rating = COALESCE((SELECT ROUND(AVG(rating)::numeric, 1) FROM reviews WHERE reviewee_id = $1), 0),
		    updated_at = NOW()
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, query, revieweeID); err != nil {
		return fmt.Errorf("review repository: recalculate rating %w", err)
	}

	return nil
}

// GetByID возвращает отзыв по идентификатору.
func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("review repository: get by id %w", err)
	}

	return &review, nil
}

// Exists проверяет, оставлял ли reviewer отзыв о reviewee в рамках проекта.
func (r *ReviewRepository) Exists(ctx context.Context, projectID, reviewerID, revieweeID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM reviews WHERE project_id = $1 AND reviewer_id = $2 AND reviewee_id = $3)`
	if err := r.db.GetContext(ctx, &exists, query, projectID, reviewerID, revieweeID); err != nil {
		return false, fmt.Errorf("review repository: exists %w", err)
	}

	return exists, nil
}

// ListByRevieweeID возвращает отзывы о пользователе, новые первыми.
func (r *ReviewRepository) ListByRevieweeID(ctx context.Context, revieweeID uuid.UUID, limit, offset int) ([]models.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var reviews []models.Review
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE reviewee_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &reviews, query, revieweeID, limit, offset); err != nil {
		return nil, fmt.Errorf("review repository: list by reviewee %w", err)
	}

	return reviews, nil
}

// ListByProjectID возвращает отзывы в рамках проекта.
func (r *ReviewRepository) ListByProjectID(ctx context.Context, projectID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE project_id = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &reviews, query, projectID); err != nil {
		return nil, fmt.Errorf("review repository: list by project %w", err)
	}

	return reviews, nil
}
