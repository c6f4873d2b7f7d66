package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTransactionHandler_Release_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &TransactionHandler{escrow: nil}
	r.POST("/transactions/:id/release", handler.Release)

	req, _ := http.NewRequest("POST", "/transactions/00000000-0000-0000-0000-000000000001/release", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTransactionHandler_Release_InvalidTransactionID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &TransactionHandler{escrow: nil}
	r.Use(func(c *gin.Context) {
		c.Set("userID", uuid.New())
	})
	r.POST("/transactions/:id/release", handler.Release)

	req, _ := http.NewRequest("POST", "/transactions/not-a-uuid/release", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransactionHandler_Refund_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &TransactionHandler{escrow: nil}
	r.POST("/transactions/:id/refund", handler.Refund)

	req, _ := http.NewRequest("POST", "/transactions/00000000-0000-0000-0000-000000000001/refund", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTransactionHandler_CreateIntent_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &TransactionHandler{escrow: nil}
	r.POST("/projects/:id/payment-intent", handler.CreateIntent)

	req, _ := http.NewRequest("POST", "/projects/00000000-0000-0000-0000-000000000001/payment-intent", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTransactionHandler_GetByProject_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &TransactionHandler{escrow: nil}
	r.GET("/projects/:id/transaction", handler.GetByProject)

	req, _ := http.NewRequest("GET", "/projects/00000000-0000-0000-0000-000000000001/transaction", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
