package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/lingvo-market/internal/models"
)

// Рейтинг выводится из таблицы reviews с округлением до одного знака:
// оценки 5, 4, 5 дают AVG 4.666..., ROUND(..., 1) пишет в users 4.7.
const recalcRatingPattern = `UPDATE users SET rating = COALESCE\(\(SELECT ROUND\(AVG\(rating\)::numeric, 1\) FROM reviews WHERE reviewee_id = \$1\), 0\), updated_at = NOW\(\) WHERE id = \$1`

func TestReviewRepository_Create_RecalculatesRatingInSameTx(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReviewRepository(db)

	now := time.Now()
	review := &models.Review{
		ProjectID:  uuid.New(),
		ReviewerID: uuid.New(),
		RevieweeID: uuid.New(),
		Rating:     5,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO reviews \(project_id, reviewer_id, reviewee_id, rating, comment\)`).
		WithArgs(review.ProjectID, review.ReviewerID, review.RevieweeID, review.Rating, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(uuid.NewString(), now, now))
	mock.ExpectExec(recalcRatingPattern).
		WithArgs(review.RevieweeID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), review)

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, review.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Create_DuplicateRollsBackWithoutRecalc(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReviewRepository(db)

	review := &models.Review{
		ProjectID:  uuid.New(),
		ReviewerID: uuid.New(),
		RevieweeID: uuid.New(),
		Rating:     4,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO reviews \(project_id, reviewer_id, reviewee_id, rating, comment\)`).
		WithArgs(review.ProjectID, review.ReviewerID, review.RevieweeID, review.Rating, nil).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), review)

	assert.ErrorIs(t, err, ErrReviewAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Update_RecalculatesRatingInSameTx(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReviewRepository(db)

	now := time.Now()
	revieweeID := uuid.New()
	comment := "перевод пришлось дорабатывать"
	review := &models.Review{
		ID:      uuid.New(),
		Rating:  3,
		Comment: &comment,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE reviews SET rating = \$2, comment = \$3, updated_at = NOW\(\) WHERE id = \$1 RETURNING reviewee_id, updated_at`).
		WithArgs(review.ID, review.Rating, &comment).
		WillReturnRows(sqlmock.NewRows([]string{"reviewee_id", "updated_at"}).
			AddRow(revieweeID.String(), now))
	mock.ExpectExec(recalcRatingPattern).
		WithArgs(revieweeID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), review)

	assert.NoError(t, err)
	assert.Equal(t, revieweeID, review.RevieweeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Update_MissingReviewRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReviewRepository(db)

	review := &models.Review{ID: uuid.New(), Rating: 4}

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE reviews SET rating = \$2, comment = \$3, updated_at = NOW\(\) WHERE id = \$1 RETURNING reviewee_id, updated_at`).
		WithArgs(review.ID, review.Rating, nil).
		WillReturnRows(sqlmock.NewRows([]string{"reviewee_id", "updated_at"}))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), review)

	assert.ErrorIs(t, err, ErrReviewNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
