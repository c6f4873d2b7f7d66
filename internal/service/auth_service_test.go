package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/lingvo-market/internal/models"
	"github.com/ignatzorin/lingvo-market/internal/repository"
)

// mockUserRepository реализует UserRepository для тестов.
type mockUserRepository struct {
	usersByEmail map[string]*models.User
	usersByID    map[uuid.UUID]*models.User
	sessions     map[string]*models.Session
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		usersByEmail: make(map[string]*models.User),
		usersByID:    make(map[uuid.UUID]*models.User),
		sessions:     make(map[string]*models.Session),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = uuid.New()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.usersByEmail[user.Email] = user
	m.usersByID[user.ID] = user
	return nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := m.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := m.usersByID[id]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) UpdateLanguages(ctx context.Context, id uuid.UUID, languages []string) error {
	if user, ok := m.usersByID[id]; ok {
		user.Languages = languages
	}
	return nil
}

func (m *mockUserRepository) UpdateLastLoginAt(ctx context.Context, id uuid.UUID) error {
	if user, ok := m.usersByID[id]; ok {
		now := time.Now()
		user.LastLoginAt = &now
	}
	return nil
}

func (m *mockUserRepository) GetPublicProfile(ctx context.Context, id uuid.UUID) (*models.PublicProfile, error) {
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) CreateSession(ctx context.Context, session *models.Session) error {
	session.ID = uuid.New()
	session.CreatedAt = time.Now()
	m.sessions[session.RefreshToken] = session
	return nil
}

func (m *mockUserRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	delete(m.sessions, refreshToken)
	return nil
}

func (m *mockUserRepository) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	var sessions []models.Session
	for _, s := range m.sessions {
		if s.UserID == userID {
			sessions = append(sessions, *s)
		}
	}
	return sessions, nil
}

func (m *mockUserRepository) DeleteSessionByID(ctx context.Context, sessionID uuid.UUID, userID uuid.UUID) error {
	for token, s := range m.sessions {
		if s.ID == sessionID && s.UserID == userID {
			delete(m.sessions, token)
			return nil
		}
	}
	return nil
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	repo := newMockUserRepository()
	tokenManager := NewTokenManager("access", "refresh", time.Minute, time.Hour)
	service := NewAuthService(repo, tokenManager)

	ctx := context.Background()
	user, pair, err := service.Register(ctx, RegisterInput{
		Email:     "anna@example.com",
		Username:  "anna_translator",
		Password:  "password123",
		Role:      models.RoleFreelancer,
		Languages: []string{"ru", "en"},
	})
	if err != nil {
		t.Fatalf("register вернул ошибку: %v", err)
	}

	if user.ID == uuid.Nil {
		t.Fatalf("user ID должен быть установлен")
	}
	if pair.AccessToken == "" {
		t.Fatalf("ожидался access токен")
	}
	if len(repo.sessions) != 1 {
		t.Fatalf("ожидалась одна сессия, получили %d", len(repo.sessions))
	}

	_, loginPair, err := service.Login(ctx, "anna@example.com", "password123")
	if err != nil {
		t.Fatalf("login вернул ошибку: %v", err)
	}
	if loginPair.AccessToken == "" {
		t.Fatalf("ожидался access токен")
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := newMockUserRepository()
	service := NewAuthService(repo, NewTokenManager("access", "refresh", time.Minute, time.Hour))

	ctx := context.Background()
	input := RegisterInput{
		Email:    "client@example.com",
		Username: "client_one",
		Password: "password123",
		Role:     models.RoleClient,
	}
	if _, _, err := service.Register(ctx, input); err != nil {
		t.Fatalf("первая регистрация вернула ошибку: %v", err)
	}

	input.Username = "client_two"
	if _, _, err := service.Register(ctx, input); err == nil {
		t.Fatalf("ожидалась ошибка о дубликате email")
	}
}

func TestAuthService_Register_FreelancerRequiresLanguages(t *testing.T) {
	repo := newMockUserRepository()
	service := NewAuthService(repo, NewTokenManager("access", "refresh", time.Minute, time.Hour))

	_, _, err := service.Register(context.Background(), RegisterInput{
		Email:    "linguist@example.com",
		Username: "linguist",
		Password: "password123",
		Role:     models.RoleFreelancer,
	})
	if err == nil {
		t.Fatalf("ожидалась ошибка о рабочих языках")
	}
}

func TestAuthService_Register_InvalidRole(t *testing.T) {
	repo := newMockUserRepository()
	service := NewAuthService(repo, NewTokenManager("access", "refresh", time.Minute, time.Hour))

	_, _, err := service.Register(context.Background(), RegisterInput{
		Email:    "admin@example.com",
		Username: "admin_user",
		Password: "password123",
		Role:     "admin",
	})
	if err == nil {
		t.Fatalf("ожидалась ошибка о недопустимой роли")
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := newMockUserRepository()
	service := NewAuthService(repo, NewTokenManager("access", "refresh", time.Minute, time.Hour))

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "user@example.com",
		Username:     "some_user",
		PasswordHash: string(hash),
		Role:         models.RoleClient,
		IsActive:     true,
	}
	repo.usersByEmail[user.Email] = user
	repo.usersByID[user.ID] = user

	_, _, err := service.Login(context.Background(), "user@example.com", "wrong-password")
	if err == nil {
		t.Fatalf("ожидалась ошибка о неверном пароле")
	}
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	repo := newMockUserRepository()
	service := NewAuthService(repo, NewTokenManager("access", "refresh", time.Minute, time.Hour))

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "banned@example.com",
		Username:     "banned_user",
		PasswordHash: string(hash),
		Role:         models.RoleClient,
		IsActive:     false,
	}
	repo.usersByEmail[user.Email] = user
	repo.usersByID[user.ID] = user

	_, _, err := service.Login(context.Background(), "banned@example.com", "password123")
	if err == nil {
		t.Fatalf("ожидалась ошибка о деактивированном аккаунте")
	}
}

func TestAuthService_Refresh(t *testing.T) {
	repo := newMockUserRepository()
	tokenManager := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	service := NewAuthService(repo, tokenManager)

	ctx := context.Background()
	user := &models.User{
		ID:       uuid.New(),
		Email:    "user@example.com",
		Username: "some_user",
		Role:     models.RoleFreelancer,
		IsActive: true,
	}
	repo.usersByEmail[user.Email] = user
	repo.usersByID[user.ID] = user

	issued, err := tokenManager.GeneratePair(user)
	if err != nil {
		t.Fatalf("не удалось сгенерировать токены: %v", err)
	}
	if issued.AccessExpiresAt.After(issued.RefreshExpiresAt) {
		t.Fatalf("access должен истекать раньше refresh")
	}
	tokenPair := issued.Pair

	repo.sessions[tokenPair.RefreshToken] = &models.Session{
		ID:           uuid.New(),
		UserID:       user.ID,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresAt:    issued.RefreshExpiresAt,
	}

	newPair, err := service.Refresh(ctx, tokenPair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh вернул ошибку: %v", err)
	}

	if newPair.RefreshToken == tokenPair.RefreshToken {
		t.Fatalf("ожидался новый refresh токен")
	}
	if _, ok := repo.sessions[tokenPair.RefreshToken]; ok {
		t.Fatalf("старая сессия должна быть отозвана")
	}
}
