package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"

	"github.com/ignatzorin/lingvo-market/internal/dto"
	"github.com/ignatzorin/lingvo-market/internal/http/handlers/common"
	"github.com/ignatzorin/lingvo-market/internal/models"
	"github.com/ignatzorin/lingvo-market/internal/repository"
	"github.com/ignatzorin/lingvo-market/internal/service"
	"github.com/ignatzorin/lingvo-market/internal/storage"
)

// Типы документов, принимаемые при создании проекта. docx и odt
// определяются по внутренней структуре архива, произвольный zip не проходит.
var allowedDocumentMIMEs = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.oasis.opendocument.text":                                 {},
	"application/rtf":                                                         {},
}

type ProjectHandler struct {
	projects        *service.ProjectService
	storage         *storage.DocumentStorage
	maxProjectFiles int
}

func NewProjectHandler(projects *service.ProjectService, storage *storage.DocumentStorage, maxProjectFiles int) *ProjectHandler {
	return &ProjectHandler{projects: projects, storage: storage, maxProjectFiles: maxProjectFiles}
}

// detectDocumentType читает первые байты файла и проверяет по содержимому,
// что загружается документ, а не произвольный файл с подменённым расширением.
func detectDocumentType(file multipart.File, name string) (string, error) {
	// 8КБ хватает, чтобы отличить docx/odt от произвольного zip архива.
	head := make([]byte, 8192)
	n, err := file.Read(head)
	if err != nil && n == 0 {
		return "", fmt.Errorf("не удалось прочитать файл")
	}
	if _, err := file.Seek(0, 0); err != nil {
		return "", fmt.Errorf("не удалось перечитать файл")
	}

	kind, err := filetype.Match(head[:n])
	if err != nil || kind == filetype.Unknown {
		// Текстовые файлы не имеют магических байтов
		if strings.EqualFold(filepath.Ext(name), ".txt") {
			return "text/plain", nil
		}
		return "", fmt.Errorf("не удалось определить тип файла %s", name)
	}

	if _, ok := allowedDocumentMIMEs[kind.MIME.Value]; !ok {
		return "", fmt.Errorf("тип файла %s не поддерживается", kind.MIME.Value)
	}

	return kind.MIME.Value, nil
}

// Create POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, err := common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	title := c.PostForm("title")
	description := c.PostForm("description")
	sourceLanguage := c.PostForm("source_language")
	targetLanguage := c.PostForm("target_language")

	budget, err := strconv.ParseFloat(c.PostForm("budget"), 64)
	if err != nil {
		common.RespondBadRequest(c, "бюджет должен быть числом")
		return
	}

	var deadlineAt *time.Time
	if raw := c.PostForm("deadline_at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			common.RespondBadRequest(c, "срок должен быть в формате RFC3339")
			return
		}
		deadlineAt = &parsed
	}

	form, _ := c.MultipartForm()
	var fileHeaders []*multipart.FileHeader
	if form != nil {
		fileHeaders = form.File["files"]
	}
	if len(fileHeaders) > h.maxProjectFiles {
		common.RespondBadRequest(c, fmt.Sprintf("не более %d файлов на проект", h.maxProjectFiles))
		return
	}

	var files []models.ProjectFile
	var savedPaths []string
	cleanup := func() {
		for _, p := range savedPaths {
			_ = h.storage.Remove(p)
		}
	}

	for _, header := range fileHeaders {
		f, err := header.Open()
		if err != nil {
			cleanup()
			common.RespondBadRequest(c, "не удалось прочитать файл "+header.Filename)
			return
		}

		mimeType, err := detectDocumentType(f, header.Filename)
		if err != nil {
			f.Close()
			cleanup()
			common.RespondBadRequest(c, err.Error())
			return
		}

		path, size, err := h.storage.Save(c.Request.Context(), userID, header.Filename, f)
		f.Close()
		if err != nil {
			cleanup()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		savedPaths = append(savedPaths, path)
		files = append(files, models.ProjectFile{
			FileName: header.Filename,
			FilePath: path,
			FileType: mimeType,
			FileSize: size,
		})
	}

	project, err := h.projects.Create(c.Request.Context(), userID, role, service.CreateProjectInput{
		Title:          title,
		Description:    description,
		SourceLanguage: sourceLanguage,
		TargetLanguage: targetLanguage,
		Budget:         budget,
		DeadlineAt:     deadlineAt,
		Files:          files,
	})
	if err != nil {
		cleanup()
		if errors.Is(err, service.ErrForbidden) {
			common.RespondForbidden(c, err.Error())
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, project)
}

// Get GET /projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	project, err := h.projects.GetByID(c.Request.Context(), projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			common.RespondNotFound(c, "проект не найден")
			return
		}
		common.RespondInternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, project)
}

// List GET /projects
func (h *ProjectHandler) List(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	result, err := h.projects.List(c.Request.Context(), repository.ListFilterParams{
		Status:         c.Query("status"),
		SourceLanguage: c.Query("source_language"),
		TargetLanguage: c.Query("target_language"),
		Search:         c.Query("search"),
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ProjectListResponse{
		Projects: result.Projects,
		Total:    result.Total,
		Limit:    result.Limit,
		Offset:   result.Offset,
		HasMore:  result.HasMore,
	})
}

// ListMine GET /projects/my
func (h *ProjectHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	projects, err := h.projects.ListMine(c.Request.Context(), userID)
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// Update PUT /projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.UpdateProjectRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	project, err := h.projects.Update(c.Request.Context(), projectID, userID, service.UpdateProjectInput{
		Title:          req.Title,
		Description:    req.Description,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		Budget:         req.Budget,
		DeadlineAt:     req.DeadlineAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProjectNotFound):
			common.RespondNotFound(c, "проект не найден")
		case errors.Is(err, service.ErrForbidden):
			common.RespondForbidden(c, err.Error())
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, project)
}

// Delete DELETE /projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.projects.Delete(c.Request.Context(), projectID, userID); err != nil {
		switch {
		case errors.Is(err, repository.ErrProjectNotFound):
			common.RespondNotFound(c, "проект не найден")
		case errors.Is(err, service.ErrForbidden):
			common.RespondForbidden(c, err.Error())
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	common.RespondSuccess(c, http.StatusOK, "проект удалён", nil)
}

// Complete PUT /projects/:id/complete
func (h *ProjectHandler) Complete(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	project, err := h.projects.Complete(c.Request.Context(), projectID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProjectNotFound):
			common.RespondNotFound(c, "проект не найден")
		case errors.Is(err, service.ErrForbidden):
			common.RespondForbidden(c, err.Error())
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, project)
}

// Cancel PUT /projects/:id/cancel
func (h *ProjectHandler) Cancel(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	project, err := h.projects.Cancel(c.Request.Context(), projectID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProjectNotFound):
			common.RespondNotFound(c, "проект не найден")
		case errors.Is(err, service.ErrForbidden):
			common.RespondForbidden(c, err.Error())
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, project)
}
