package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

func startTestHub(t *testing.T, hub *Hub, userID uuid.UUID) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(conn, hub, userID)
		hub.Register(client)
		client.Run(r.Context())
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("не удалось открыть соединение: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// Ждём, пока хаб зарегистрирует подключение.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		registered := len(hub.clients[userID]) > 0
		hub.mu.RUnlock()
		if registered {
			return conn
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("клиент не зарегистрировался в хабе")
	return nil
}

func TestHub_NotifyDeliversEvent(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	userID := uuid.New()
	conn := startTestHub(t, hub, userID)

	hub.Notify(userID, "bid_received", map[string]any{"amount": 450})

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, raw, err := conn.ReadMessage()
	assert.NoError(t, err)

	var event struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, "bid_received", event.Type)
	assert.Equal(t, float64(450), event.Data["amount"])
}

func TestHub_NotifyOtherUserNotDelivered(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	userID := uuid.New()
	conn := startTestHub(t, hub, userID)

	hub.Notify(uuid.New(), "bid_received", nil)
	hub.Notify(userID, "escrow_released", nil)

	// Первым должно прийти событие своего пользователя, чужое не доставляется.
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, raw, err := conn.ReadMessage()
	assert.NoError(t, err)

	var event Event
	assert.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, "escrow_released", event.Type)
}
