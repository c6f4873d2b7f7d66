package models

import (
	"time"

	"github.com/google/uuid"
)

// Project описывает заказ на перевод документов.
type Project struct {
	ID             uuid.UUID     `db:"id" json:"id"`
	ClientID       uuid.UUID     `db:"client_id" json:"client_id"`
	Title          string        `db:"title" json:"title"`
	Description    string        `db:"description" json:"description"`
	SourceLanguage string        `db:"source_language" json:"source_language"`
	TargetLanguage string        `db:"target_language" json:"target_language"`
	Budget         float64       `db:"budget" json:"budget"`
	Status         string        `db:"status" json:"status"`
	DeadlineAt     *time.Time    `db:"deadline_at" json:"deadline_at,omitempty"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
	Files          []ProjectFile `json:"files,omitempty"`
	BidsCount      *int          `db:"bids_count" json:"bids_count,omitempty"`
}

// ProjectFile описывает документ, прикреплённый к проекту.
type ProjectFile struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ProjectID uuid.UUID `db:"project_id" json:"project_id"`
	FileName  string    `db:"file_name" json:"file_name"`
	FilePath  string    `db:"file_path" json:"file_path"`
	FileType  string    `db:"file_type" json:"file_type"`
	FileSize  int64     `db:"file_size" json:"file_size"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Bid представляет предложение переводчика по проекту.
type Bid struct {
	ID            uuid.UUID `db:"id" json:"id"`
	ProjectID     uuid.UUID `db:"project_id" json:"project_id"`
	BidderID      uuid.UUID `db:"bidder_id" json:"bidder_id"`
	Amount        float64   `db:"amount" json:"amount"`
	EstimatedDays *int      `db:"estimated_days" json:"estimated_days,omitempty"`
	Comment       *string   `db:"comment" json:"comment,omitempty"`
	Status        string    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
