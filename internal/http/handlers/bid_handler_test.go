package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBidHandler_Submit_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &BidHandler{bids: nil}
	r.POST("/projects/:id/bids", handler.Submit)

	req, _ := http.NewRequest("POST", "/projects/00000000-0000-0000-0000-000000000001/bids", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBidHandler_Accept_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &BidHandler{bids: nil}
	r.PUT("/bids/:id/accept", handler.Accept)

	req, _ := http.NewRequest("PUT", "/bids/00000000-0000-0000-0000-000000000001/accept", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBidHandler_Accept_InvalidBidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &BidHandler{bids: nil}
	r.Use(func(c *gin.Context) {
		c.Set("userID", uuid.New())
	})
	r.PUT("/bids/:id/accept", handler.Accept)

	req, _ := http.NewRequest("PUT", "/bids/not-a-uuid/accept", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBidHandler_ListMine_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &BidHandler{bids: nil}
	r.GET("/bids/my", handler.ListMine)

	req, _ := http.NewRequest("GET", "/bids/my", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
