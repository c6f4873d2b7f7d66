package dto

import (
	"github.com/ignatzorin/lingvo-market/internal/models"
)

// ErrorResponse стандартный ответ с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse стандартный ответ с сообщением и данными.
type SuccessResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// AuthResponse ответ на регистрацию и вход.
type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	User         *models.User `json:"user"`
}

// TokenResponse ответ на обновление токенов.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// ProjectListResponse ответ со списком проектов и пагинацией.
type ProjectListResponse struct {
	Projects []models.Project `json:"projects"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
	HasMore  bool             `json:"has_more"`
}

// AcceptBidResponse ответ на принятие предложения.
type AcceptBidResponse struct {
	Bid         *models.Bid               `json:"bid"`
	Project     *models.Project           `json:"project"`
	Transaction *models.EscrowTransaction `json:"transaction"`
}

// CanReviewResponse ответ на проверку возможности оставить отзыв.
type CanReviewResponse struct {
	CanReview bool `json:"can_review"`
}
