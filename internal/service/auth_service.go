package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/lingvo-market/internal/logger"
	"github.com/ignatzorin/lingvo-market/internal/models"
	"github.com/ignatzorin/lingvo-market/internal/repository"
	"github.com/ignatzorin/lingvo-market/internal/validation"
)

// UserRepository описывает операции с пользователями, нужные сервису авторизации.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLanguages(ctx context.Context, id uuid.UUID, languages []string) error
	UpdateLastLoginAt(ctx context.Context, id uuid.UUID) error
	GetPublicProfile(ctx context.Context, id uuid.UUID) (*models.PublicProfile, error)
	CreateSession(ctx context.Context, session *models.Session) error
	DeleteSession(ctx context.Context, refreshToken string) error
	ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error)
	DeleteSessionByID(ctx context.Context, sessionID uuid.UUID, userID uuid.UUID) error
}

// AuthService отвечает за регистрацию, вход и обновление токенов.
type AuthService struct {
	users  UserRepository
	tokens *TokenManager
}

// NewAuthService создаёт сервис авторизации.
func NewAuthService(users UserRepository, tokens *TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// RegisterInput содержит данные регистрации.
type RegisterInput struct {
	Email     string
	Username  string
	Password  string
	Role      string
	Languages []string
}

// Register создаёт пользователя и выпускает пару токенов.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, *TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}
	if err := validation.ValidateUsername(input.Username); err != nil {
		return nil, nil, err
	}
	if err := validation.ValidatePassword(input.Password); err != nil {
		return nil, nil, err
	}

	if _, ok := models.ValidRoles[input.Role]; !ok {
		return nil, nil, fmt.Errorf("недопустимая роль: %s", input.Role)
	}

	if input.Role == models.RoleFreelancer && len(input.Languages) == 0 {
		return nil, nil, fmt.Errorf("переводчик должен указать хотя бы один рабочий язык")
	}
	if len(input.Languages) > 0 {
		if err := validation.ValidateLanguages(input.Languages); err != nil {
			return nil, nil, err
		}
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, nil, fmt.Errorf("пользователь с таким email уже существует")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("auth service: hash password %w", err)
	}

	user := &models.User{
		Email:        email,
		Username:     strings.TrimSpace(input.Username),
		PasswordHash: string(hash),
		Role:         input.Role,
		Languages:    input.Languages,
		IsActive:     true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	logger.Log.WithField("user_id", user.ID).Info("пользователь зарегистрирован")

	return user, pair, nil
}

// Login проверяет учётные данные и выпускает пару токенов.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, fmt.Errorf("неверный email или пароль")
		}
		return nil, nil, err
	}

	if !user.IsActive {
		return nil, nil, fmt.Errorf("аккаунт деактивирован")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, fmt.Errorf("неверный email или пароль")
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	if err := s.users.UpdateLastLoginAt(ctx, user.ID); err != nil {
		logger.Log.WithError(err).Warn("не удалось обновить время входа")
	}
	user.LastLoginAt = &now

	return user, pair, nil
}

// Refresh обменивает refresh токен на новую пару.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("недействительный refresh токен")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("недействительный refresh токен")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, fmt.Errorf("аккаунт деактивирован")
	}

	// Старая сессия отзывается, новая создаётся
	if err := s.users.DeleteSession(ctx, refreshToken); err != nil {
		logger.Log.WithError(err).Warn("не удалось удалить старую сессию")
	}

	return s.issueTokens(ctx, user)
}

// Logout отзывает refresh токен.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.users.DeleteSession(ctx, refreshToken)
}

// ListSessions возвращает активные сессии пользователя.
func (s *AuthService) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	return s.users.ListSessions(ctx, userID)
}

// RevokeSession отзывает конкретную сессию пользователя.
func (s *AuthService) RevokeSession(ctx context.Context, sessionID, userID uuid.UUID) error {
	return s.users.DeleteSessionByID(ctx, sessionID, userID)
}

// UpdateLanguages обновляет рабочие языковые пары пользователя.
func (s *AuthService) UpdateLanguages(ctx context.Context, userID uuid.UUID, languages []string) error {
	if err := validation.ValidateLanguages(languages); err != nil {
		return err
	}

	return s.users.UpdateLanguages(ctx, userID, languages)
}

// GetPublicProfile возвращает публичный профиль пользователя.
func (s *AuthService) GetPublicProfile(ctx context.Context, userID uuid.UUID) (*models.PublicProfile, error) {
	return s.users.GetPublicProfile(ctx, userID)
}

// issueTokens выпускает пару токенов и сохраняет сессию.
func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	issued, err := s.tokens.GeneratePair(user)
	if err != nil {
		return nil, fmt.Errorf("auth service: generate tokens %w", err)
	}

	session := &models.Session{
		UserID:       user.ID,
		RefreshToken: issued.Pair.RefreshToken,
		ExpiresAt:    issued.RefreshExpiresAt,
	}
	if err := s.users.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	return issued.Pair, nil
}
