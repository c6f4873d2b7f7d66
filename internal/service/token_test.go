package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ignatzorin/lingvo-market/internal/models"
)

func testUser() *models.User {
	return &models.User{
		ID:   uuid.New(),
		Role: models.RoleClient,
	}
}

func TestTokenManager_AccessRoundTrip(t *testing.T) {
	manager := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	user := testUser()

	issued, err := manager.GeneratePair(user)
	if err != nil {
		t.Fatalf("не удалось выпустить токены: %v", err)
	}

	claims, err := manager.ParseAccess(issued.Pair.AccessToken)
	if err != nil {
		t.Fatalf("access токен не прошёл проверку: %v", err)
	}

	userID, err := claims.UserID()
	if err != nil {
		t.Fatalf("subject должен быть UUID: %v", err)
	}
	if userID != user.ID {
		t.Fatalf("ожидался пользователь %s, получен %s", user.ID, userID)
	}
	if claims.Role != models.RoleClient {
		t.Fatalf("ожидалась роль %s, получена %s", models.RoleClient, claims.Role)
	}
}

func TestTokenManager_RefreshNotAcceptedAsAccess(t *testing.T) {
	manager := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)

	issued, err := manager.GeneratePair(testUser())
	if err != nil {
		t.Fatalf("не удалось выпустить токены: %v", err)
	}

	if _, err := manager.ParseAccess(issued.Pair.RefreshToken); err == nil {
		t.Fatalf("refresh токен не должен приниматься как access")
	}
	if _, err := manager.ParseRefresh(issued.Pair.AccessToken); err == nil {
		t.Fatalf("access токен не должен приниматься как refresh")
	}
}

func TestTokenManager_RejectsForeignSecret(t *testing.T) {
	manager := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	foreign := NewTokenManager("other-access", "other-refresh", time.Minute, time.Hour)

	issued, err := foreign.GeneratePair(testUser())
	if err != nil {
		t.Fatalf("не удалось выпустить токены: %v", err)
	}

	if _, err := manager.ParseAccess(issued.Pair.AccessToken); err == nil {
		t.Fatalf("токен с чужой подписью не должен приниматься")
	}
}

func TestTokenManager_ExpiredAccess(t *testing.T) {
	manager := NewTokenManager("access-secret", "refresh-secret", -time.Minute, time.Hour)

	issued, err := manager.GeneratePair(testUser())
	if err != nil {
		t.Fatalf("не удалось выпустить токены: %v", err)
	}

	_, err = manager.ParseAccess(issued.Pair.AccessToken)
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("ожидалась ошибка истечения, получено: %v", err)
	}
}

func TestTokenManager_RefreshTokensUnique(t *testing.T) {
	manager := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	user := testUser()

	first, err := manager.GeneratePair(user)
	if err != nil {
		t.Fatalf("не удалось выпустить токены: %v", err)
	}
	second, err := manager.GeneratePair(user)
	if err != nil {
		t.Fatalf("не удалось выпустить токены: %v", err)
	}

	if first.Pair.RefreshToken == second.Pair.RefreshToken {
		t.Fatalf("refresh токены одного пользователя должны различаться")
	}
}
