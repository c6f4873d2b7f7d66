package models

import (
	"time"

	"github.com/google/uuid"
)

// EscrowTransaction представляет удержание средств по проекту до выплаты переводчику.
type EscrowTransaction struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	ProjectID    uuid.UUID  `db:"project_id" json:"project_id"`
	PayerID      uuid.UUID  `db:"payer_id" json:"payer_id"`
	PayeeID      uuid.UUID  `db:"payee_id" json:"payee_id"`
	Amount       float64    `db:"amount" json:"amount"`
	Status       string     `db:"status" json:"status"`
	HoldRef      *string    `db:"hold_ref" json:"hold_ref,omitempty"`
	RefundReason *string    `db:"refund_reason" json:"refund_reason,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	ReleasedAt   *time.Time `db:"released_at" json:"released_at,omitempty"`
}
