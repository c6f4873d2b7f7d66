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

// ErrProjectNotFound возвращается, когда проект не найден.
var ErrProjectNotFound = errors.New("project not found")

// ProjectRepository отвечает за работу с таблицами projects и project_files.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository создаёт экземпляр репозитория.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, client_id, title, description, source_language, target_language, budget, status, deadline_at, created_at, updated_at`

// GetByID возвращает проект по идентификатору.
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	if err := r.db.GetContext(ctx, &project, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("project repository: get by id %w", err)
	}

	return &project, nil
}

// GetByIDWithFiles возвращает проект вместе с прикреплёнными файлами.
func (r *ProjectRepository) GetByIDWithFiles(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	files, err := r.ListFiles(ctx, id)
	if err != nil {
		return nil, err
	}
	project.Files = files

	return project, nil
}

// Create сохраняет проект и записи о файлах в одной транзакции.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project, files []models.ProjectFile) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("project repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		INSERT INTO projects (client_id, title, description, source_language, target_language, budget, status, deadline_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	if err = tx.QueryRowxContext(
		ctx,
		query,
		project.ClientID,
		project.Title,
		project.Description,
		project.SourceLanguage,
		project.TargetLanguage,
		project.Budget,
		project.Status,
		project.DeadlineAt,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt); err != nil {
		return fmt.Errorf("project repository: insert project %w", err)
	}

	if len(files) > 0 {
		// Batch INSERT для файлов (устранение N+1)
		fileQuery := `INSERT INTO project_files (project_id, file_name, file_path, file_type, file_size) VALUES `
		fileValues := make([]interface{}, 0, len(files)*5)

		for i, f := range files {
			if i > 0 {
				fileQuery += ", "
			}
			fileQuery += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", i*5+1, i*5+2, i*5+3, i*5+4, i*5+5)
			fileValues = append(fileValues, project.ID, f.FileName, f.FilePath, f.FileType, f.FileSize)
		}

		if _, err = tx.ExecContext(ctx, fileQuery, fileValues...); err != nil {
			return fmt.Errorf("project repository: batch insert files %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("project repository: commit %w", err)
	}

	project.Files = files

	return nil
}

// Update изменяет изменяемые поля проекта.
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects
		SET title = $2,
		    description = $3,
		    source_language = $4,
		    target_language = $5,
		    budget = $6,
		    status = $7,
		    deadline_at = $8,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		project.ID,
		project.Title,
		project.Description,
		project.SourceLanguage,
		project.TargetLanguage,
		project.Budget,
		project.Status,
		project.DeadlineAt,
	).Scan(&project.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("project repository: update %w", err)
	}

	return nil
}

// UpdateStatus меняет только статус проекта.
func (r *ProjectRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE projects SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("project repository: update status %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("project repository: update status rows affected %w", err)
	}
	if rowsAffected == 0 {
		return ErrProjectNotFound
	}

	return nil
}

// Delete удаляет проект вместе с файлами и возвращает пути файлов для очистки диска.
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID, clientID uuid.UUID) ([]string, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("project repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var paths []string
	if err = tx.SelectContext(ctx, &paths,
		`SELECT file_path FROM project_files WHERE project_id = $1`, id); err != nil {
		return nil, fmt.Errorf("project repository: select file paths %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = $1 AND client_id = $2`, id, clientID)
	if err != nil {
		return nil, fmt.Errorf("project repository: delete %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("project repository: delete rows affected %w", err)
	}
	if rowsAffected == 0 {
		err = ErrProjectNotFound
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("project repository: commit %w", err)
	}

	return paths, nil
}

// ListFiles возвращает файлы проекта.
func (r *ProjectRepository) ListFiles(ctx context.Context, projectID uuid.UUID) ([]models.ProjectFile, error) {
	var files []models.ProjectFile
	query := `
		SELECT id, project_id, file_name, file_path, file_type, file_size, created_at
		FROM project_files
		WHERE project_id = $1
		ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &files, query, projectID); err != nil {
		return nil, fmt.Errorf("project repository: list files %w", err)
	}

	return files, nil
}

// ListFilterParams содержит параметры фильтрации списка проектов.
type ListFilterParams struct {
	Status         string
	SourceLanguage string
	TargetLanguage string
	Search         string
	Limit          int
	Offset         int
}

// ListResult содержит список проектов и метаданные пагинации.
type ListResult struct {
	Projects []models.Project
	Total    int
	Limit    int
	Offset   int
	HasMore  bool
}

// List возвращает список проектов с пагинацией и фильтрацией.
func (r *ProjectRepository) List(ctx context.Context, params ListFilterParams) (*ListResult, error) {
	countQuery := `SELECT COUNT(*) FROM projects p WHERE 1=1`
	query := `
		SELECT p.id, p.client_id, p.title, p.description, p.source_language, p.target_language,
			p.budget, p.status, p.deadline_at, p.created_at, p.updated_at,
			COALESCE(bid_counts.count, 0) AS bids_count
		FROM projects p
		LEFT JOIN (
			SELECT project_id, COUNT(*) AS count
			FROM bids
			GROUP BY project_id
		) bid_counts ON p.id = bid_counts.project_id
		WHERE 1=1
	`
	args := []interface{}{}
	argIndex := 1

	if params.Status != "" {
		clause := fmt.Sprintf(" AND p.status = $%d", argIndex)
		query += clause
		countQuery += clause
		args = append(args, params.Status)
		argIndex++
	}

	if params.SourceLanguage != "" {
		clause := fmt.Sprintf(" AND p.source_language = $%d", argIndex)
		query += clause
		countQuery += clause
		args = append(args, params.SourceLanguage)
		argIndex++
	}

	if params.TargetLanguage != "" {
		clause := fmt.Sprintf(" AND p.target_language = $%d", argIndex)
		query += clause
		countQuery += clause
		args = append(args, params.TargetLanguage)
		argIndex++
	}

	if params.Search != "" {
		clause := fmt.Sprintf(" AND (p.title ILIKE $%d OR p.description ILIKE $%d)", argIndex, argIndex)
		query += clause
		countQuery += clause
		args = append(args, "%"+params.Search+"%")
		argIndex++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, fmt.Errorf("project repository: count %w", err)
	}

	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	query += " ORDER BY p.created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	var projects []models.Project
	if err := r.db.SelectContext(ctx, &projects, query, args...); err != nil {
		return nil, fmt.Errorf("project repository: list %w", err)
	}

	return &ListResult{
		Projects: projects,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
		HasMore:  offset+limit < total,
	}, nil
}

// ListByClientID возвращает проекты заказчика.
func (r *ProjectRepository) ListByClientID(ctx context.Context, clientID uuid.UUID) ([]models.Project, error) {
	var projects []models.Project
	query := `SELECT ` + projectColumns + ` FROM projects WHERE client_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &projects, query, clientID); err != nil {
		return nil, fmt.Errorf("project repository: list by client %w", err)
	}

	return projects, nil
}
