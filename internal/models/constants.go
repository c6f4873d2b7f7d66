package models

// Роли пользователей
const (
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
)

// ProjectStatus константы статусов проектов
const (
	ProjectStatusPosted     = "posted"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusCompleted  = "completed"
	ProjectStatusPaid       = "paid"
	ProjectStatusCancelled  = "cancelled"
)

// BidStatus константы статусов предложений
const (
	BidStatusPending  = "pending"
	BidStatusAccepted = "accepted"
	BidStatusRejected = "rejected"
)

// EscrowStatus константы статусов escrow-транзакций
const (
	EscrowStatusPending  = "pending"
	EscrowStatusReleased = "released"
	EscrowStatusRefunded = "refunded"
)

// ValidProjectStatuses список валидных статусов проектов
var ValidProjectStatuses = map[string]struct{}{
	ProjectStatusPosted:     {},
	ProjectStatusInProgress: {},
	ProjectStatusCompleted:  {},
	ProjectStatusPaid:       {},
	ProjectStatusCancelled:  {},
}

// ValidBidStatuses список валидных статусов предложений
var ValidBidStatuses = map[string]struct{}{
	BidStatusPending:  {},
	BidStatusAccepted: {},
	BidStatusRejected: {},
}

// ValidRoles список валидных ролей
var ValidRoles = map[string]struct{}{
	RoleClient:     {},
	RoleFreelancer: {},
}

// projectTransitions описывает допустимые переходы статусов проекта.
// Переходы однонаправленные, cancelled достижим из любого не-paid статуса.
var projectTransitions = map[string]map[string]struct{}{
	ProjectStatusPosted: {
		ProjectStatusInProgress: {},
		ProjectStatusCancelled:  {},
	},
	ProjectStatusInProgress: {
		ProjectStatusCompleted: {},
		ProjectStatusPaid:      {},
		ProjectStatusCancelled: {},
	},
	ProjectStatusCompleted: {
		ProjectStatusPaid:      {},
		ProjectStatusCancelled: {},
	},
	ProjectStatusPaid:      {},
	ProjectStatusCancelled: {},
}

// CanTransitProject проверяет, разрешён ли переход статуса проекта.
func CanTransitProject(from, to string) bool {
	next, ok := projectTransitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}
