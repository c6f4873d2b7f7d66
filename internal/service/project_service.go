package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/lingvo-market/internal/logger"
	"github.com/ignatzorin/lingvo-market/internal/models"
	"github.com/ignatzorin/lingvo-market/internal/repository"
	"github.com/ignatzorin/lingvo-market/internal/validation"
)

// ProjectRepository описывает операции с проектами, нужные сервису.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project, files []models.ProjectFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetByIDWithFiles(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context, params repository.ListFilterParams) (*repository.ListResult, error)
	ListByClientID(ctx context.Context, clientID uuid.UUID) ([]models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID, clientID uuid.UUID) ([]string, error)
}

// ProjectBidReader описывает доступ к ставкам, нужный сервису проектов.
type ProjectBidReader interface {
	GetAcceptedByProject(ctx context.Context, projectID uuid.UUID) (*models.Bid, error)
}

// FileRemover удаляет файлы проекта с диска после удаления проекта.
type FileRemover interface {
	Remove(path string) error
}

// ProjectService отвечает за жизненный цикл проектов.
type ProjectService struct {
	projects ProjectRepository
	bids     ProjectBidReader
	files    FileRemover
}

// NewProjectService создаёт сервис проектов.
func NewProjectService(projects ProjectRepository, bids ProjectBidReader, files FileRemover) *ProjectService {
	return &ProjectService{projects: projects, bids: bids, files: files}
}

// CreateProjectInput содержит данные нового проекта.
type CreateProjectInput struct {
	Title          string
	Description    string
	SourceLanguage string
	TargetLanguage string
	Budget         float64
	DeadlineAt     *time.Time
	Files          []models.ProjectFile
}

// Create публикует новый проект от имени заказчика.
func (s *ProjectService) Create(ctx context.Context, clientID uuid.UUID, role string, input CreateProjectInput) (*models.Project, error) {
	if role != models.RoleClient {
		return nil, fmt.Errorf("создавать проекты могут только заказчики: %w", ErrForbidden)
	}

	if err := validation.ValidateProjectTitle(input.Title); err != nil {
		return nil, err
	}
	if err := validation.ValidateProjectDescription(input.Description); err != nil {
		return nil, err
	}
	if err := validation.ValidateBudget(input.Budget); err != nil {
		return nil, err
	}
	if err := validation.ValidateLanguagePair(input.SourceLanguage, input.TargetLanguage); err != nil {
		return nil, err
	}
	if input.DeadlineAt != nil && input.DeadlineAt.Before(time.Now()) {
		return nil, fmt.Errorf("срок выполнения не может быть в прошлом")
	}

	project := &models.Project{
		ClientID:       clientID,
		Title:          input.Title,
		Description:    input.Description,
		SourceLanguage: input.SourceLanguage,
		TargetLanguage: input.TargetLanguage,
		Budget:         input.Budget,
		Status:         models.ProjectStatusPosted,
		DeadlineAt:     input.DeadlineAt,
	}

	if err := s.projects.Create(ctx, project, input.Files); err != nil {
		return nil, err
	}

	logger.Log.WithField("project_id", project.ID).Info("проект опубликован")

	return project, nil
}

// GetByID возвращает проект с файлами.
func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return s.projects.GetByIDWithFiles(ctx, id)
}

// List возвращает проекты по фильтру.
func (s *ProjectService) List(ctx context.Context, params repository.ListFilterParams) (*repository.ListResult, error) {
	if params.Status != "" {
		if _, ok := models.ValidProjectStatuses[params.Status]; !ok {
			return nil, fmt.Errorf("недопустимый статус: %s", params.Status)
		}
	}
	if params.SourceLanguage != "" {
		if err := validation.ValidateLanguageCode(params.SourceLanguage); err != nil {
			return nil, err
		}
	}
	if params.TargetLanguage != "" {
		if err := validation.ValidateLanguageCode(params.TargetLanguage); err != nil {
			return nil, err
		}
	}

	return s.projects.List(ctx, params)
}

// ListMine возвращает проекты текущего заказчика.
func (s *ProjectService) ListMine(ctx context.Context, clientID uuid.UUID) ([]models.Project, error) {
	return s.projects.ListByClientID(ctx, clientID)
}

// UpdateProjectInput содержит изменяемые поля проекта.
type UpdateProjectInput struct {
	Title          *string
	Description    *string
	SourceLanguage *string
	TargetLanguage *string
	Budget         *float64
	DeadlineAt     *time.Time
}

// Update изменяет проект. Разрешено только владельцу и только пока проект открыт.
func (s *ProjectService) Update(ctx context.Context, id, clientID uuid.UUID, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if project.ClientID != clientID {
		return nil, fmt.Errorf("проект принадлежит другому пользователю: %w", ErrForbidden)
	}
	if project.Status != models.ProjectStatusPosted {
		return nil, fmt.Errorf("проект можно изменять только до принятия предложения")
	}

	if input.Title != nil {
		project.Title = *input.Title
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.SourceLanguage != nil {
		project.SourceLanguage = *input.SourceLanguage
	}
	if input.TargetLanguage != nil {
		project.TargetLanguage = *input.TargetLanguage
	}
	if input.Budget != nil {
		project.Budget = *input.Budget
	}
	if input.DeadlineAt != nil {
		if input.DeadlineAt.Before(time.Now()) {
			return nil, fmt.Errorf("срок выполнения не может быть в прошлом")
		}
		project.DeadlineAt = input.DeadlineAt
	}

	if err := validation.ValidateProjectTitle(project.Title); err != nil {
		return nil, err
	}
	if err := validation.ValidateProjectDescription(project.Description); err != nil {
		return nil, err
	}
	if err := validation.ValidateBudget(project.Budget); err != nil {
		return nil, err
	}
	if err := validation.ValidateLanguagePair(project.SourceLanguage, project.TargetLanguage); err != nil {
		return nil, err
	}

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

// Delete удаляет проект владельца вместе с файлами на диске.
// Разрешено только пока проект открыт.
func (s *ProjectService) Delete(ctx context.Context, id, clientID uuid.UUID) error {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if project.ClientID != clientID {
		return fmt.Errorf("проект принадлежит другому пользователю: %w", ErrForbidden)
	}
	if project.Status != models.ProjectStatusPosted {
		return fmt.Errorf("удалить можно только открытый проект")
	}

	paths, err := s.projects.Delete(ctx, id, clientID)
	if err != nil {
		return err
	}

	for _, path := range paths {
		if err := s.files.Remove(path); err != nil {
			logger.Log.WithError(err).WithField("path", path).Warn("не удалось удалить файл проекта")
		}
	}

	return nil
}

// Complete отмечает проект выполненным. Доступно переводчику с принятой ставкой.
func (s *ProjectService) Complete(ctx context.Context, id, freelancerID uuid.UUID) (*models.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	bid, err := s.bids.GetAcceptedByProject(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBidNotFound) {
			return nil, fmt.Errorf("по проекту нет принятого предложения")
		}
		return nil, err
	}
	if bid.BidderID != freelancerID {
		return nil, fmt.Errorf("проект выполняет другой переводчик: %w", ErrForbidden)
	}

	if !models.CanTransitProject(project.Status, models.ProjectStatusCompleted) {
		return nil, fmt.Errorf("проект в статусе %s нельзя отметить выполненным", project.Status)
	}

	if err := s.projects.UpdateStatus(ctx, id, models.ProjectStatusCompleted); err != nil {
		return nil, err
	}
	project.Status = models.ProjectStatusCompleted

	logger.Log.WithField("project_id", project.ID).Info("проект отмечен выполненным")

	return project, nil
}

// Cancel отменяет открытый проект владельца.
func (s *ProjectService) Cancel(ctx context.Context, id, clientID uuid.UUID) (*models.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if project.ClientID != clientID {
		return nil, fmt.Errorf("проект принадлежит другому пользователю: %w", ErrForbidden)
	}
	if project.Status != models.ProjectStatusPosted {
		return nil, fmt.Errorf("отменить без возврата средств можно только открытый проект")
	}

	if err := s.projects.UpdateStatus(ctx, id, models.ProjectStatusCancelled); err != nil {
		return nil, err
	}
	project.Status = models.ProjectStatusCancelled

	return project, nil
}
