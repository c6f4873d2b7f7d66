package dto

import "time"

// RegisterRequest запрос регистрации пользователя.
type RegisterRequest struct {
	Email     string   `json:"email" binding:"required"`
	Username  string   `json:"username" binding:"required"`
	Password  string   `json:"password" binding:"required"`
	Role      string   `json:"role" binding:"required"`
	Languages []string `json:"languages"`
}

// LoginRequest запрос входа.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest запрос обновления токенов.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateLanguagesRequest запрос изменения рабочих языков.
type UpdateLanguagesRequest struct {
	Languages []string `json:"languages" binding:"required"`
}

// UpdateProjectRequest запрос изменения проекта.
type UpdateProjectRequest struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	SourceLanguage *string    `json:"source_language"`
	TargetLanguage *string    `json:"target_language"`
	Budget         *float64   `json:"budget"`
	DeadlineAt     *time.Time `json:"deadline_at"`
}

// CreateBidRequest запрос подачи предложения.
type CreateBidRequest struct {
	Amount        float64 `json:"amount" binding:"required"`
	EstimatedDays *int    `json:"estimated_days"`
	Comment       *string `json:"comment"`
}

// RefundRequest запрос возврата средств. Причина опциональна.
type RefundRequest struct {
	Reason *string `json:"reason"`
}

// CreateReviewRequest запрос создания отзыва.
type CreateReviewRequest struct {
	Rating  int     `json:"rating" binding:"required"`
	Comment *string `json:"comment"`
}

// UpdateReviewRequest запрос изменения отзыва. Меняются только переданные поля.
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}
