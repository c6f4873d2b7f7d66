package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Статусы холда на стороне платёжного провайдера.
const (
	HoldStatusPending   = "pending"
	HoldStatusSucceeded = "succeeded"
	HoldStatusReleased  = "released"
	HoldStatusRefunded  = "refunded"
	HoldStatusFailed    = "failed"
)

// ErrHoldNotFound возвращается, когда провайдер не знает такой холд.
var ErrHoldNotFound = errors.New("payment hold not found")

// Hold описывает заморозку средств на стороне провайдера.
type Hold struct {
	ID           string  `json:"id"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	Status       string  `json:"status"`
	ClientSecret string  `json:"client_secret,omitempty"`
}

// Processor определяет операции платёжного провайдера, нужные эскроу.
type Processor interface {
	CreateHold(ctx context.Context, amount float64, metadata map[string]string) (*Hold, error)
	GetHold(ctx context.Context, holdID string) (*Hold, error)
	ReleaseHold(ctx context.Context, holdID string) (*Hold, error)
	RefundHold(ctx context.Context, holdID string, reason string) (*Hold, error)
}

// Client реализует Processor поверх HTTP API платёжного шлюза.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient создаёт экземпляр клиента.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreateHold замораживает сумму и возвращает созданный холд.
func (c *Client) CreateHold(ctx context.Context, amount float64, metadata map[string]string) (*Hold, error) {
	payload := map[string]any{
		"amount":   amount,
		"currency": "RUB",
		"capture":  false,
		"metadata": metadata,
	}

	var hold Hold
	if err := c.do(ctx, http.MethodPost, "/holds", payload, &hold); err != nil {
		return nil, err
	}

	return &hold, nil
}

// GetHold возвращает текущее состояние холда.
func (c *Client) GetHold(ctx context.Context, holdID string) (*Hold, error) {
	var hold Hold
	if err := c.do(ctx, http.MethodGet, "/holds/"+holdID, nil, &hold); err != nil {
		return nil, err
	}

	return &hold, nil
}

// ReleaseHold списывает замороженную сумму в пользу получателя.
func (c *Client) ReleaseHold(ctx context.Context, holdID string) (*Hold, error) {
	var hold Hold
	if err := c.do(ctx, http.MethodPost, "/holds/"+holdID+"/capture", nil, &hold); err != nil {
		return nil, err
	}

	return &hold, nil
}

// RefundHold возвращает замороженную сумму плательщику.
func (c *Client) RefundHold(ctx context.Context, holdID string, reason string) (*Hold, error) {
	payload := map[string]any{"reason": reason}

	var hold Hold
	if err := c.do(ctx, http.MethodPost, "/holds/"+holdID+"/refund", payload, &hold); err != nil {
		return nil, err
	}

	return &hold, nil
}

// do выполняет HTTP запрос к платёжному шлюзу.
func (c *Client) do(ctx context.Context, method, path string, payload any, out any) error {
	if c.baseURL == "" {
		return fmt.Errorf("payment: baseURL не задан")
	}

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return err
		}
	}

	url := strings.TrimSuffix(c.baseURL, "/") + path

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrHoldNotFound
	}

	if resp.StatusCode >= 400 {
		var errorBody map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errorBody)
		return fmt.Errorf("payment: код ответа %d: %v", resp.StatusCode, errorBody)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return err
		}
	}

	return nil
}
