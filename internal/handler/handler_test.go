package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"solarflow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"validation", &service.ValidationError{Fields: map[string]string{"clientId": "client not found"}}, http.StatusBadRequest},
		{"not found", service.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", service.ErrNotFound), http.StatusNotFound},
		{"credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"unauthenticated", service.ErrUnauthenticated, http.StatusUnauthorized},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"stock", service.ErrInsufficientStock, http.StatusConflict},
		{"conflict", service.ErrConflict, http.StatusConflict},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testContext(http.MethodGet, "/", "")
			respondError(c, tt.err)

			assert.Equal(t, tt.code, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "error", body["status"])
			assert.Equal(t, float64(tt.code), body["status_code"])
			assert.NotContains(t, w.Body.String(), "connection reset")
		})
	}
}

func TestRespondError_ValidationFields(t *testing.T) {
	c, w := testContext(http.MethodGet, "/", "")
	respondError(c, &service.ValidationError{Fields: map[string]string{"items[0].unitPrice": "is required"}})

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "is required", body.Errors["items[0].unitPrice"])
}

func TestBindJSON(t *testing.T) {
	RegisterValidators()

	t.Run("field errors use json names", func(t *testing.T) {
		c, w := testContext(http.MethodPost, "/", `{"email":"nope","role":"owner"}`)
		var req service.CreateUserRequest
		assert.False(t, bindJSON(c, &req))
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var body struct {
			Errors map[string]string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "must be a valid email", body.Errors["email"])
		assert.Equal(t, "is required", body.Errors["name"])
		assert.Equal(t, "must be one of admin, agent", body.Errors["role"])
	})

	t.Run("nested invoice lines", func(t *testing.T) {
		c, w := testContext(http.MethodPost, "/", `{"clientId":"`+"6f1c2a9e-3b7d-4c55-9a0e-2d8f4b1e7c63"+`","dueDate":"2026-01-01T00:00:00Z","items":[{"itemId":"x","quantity":1}]}`)
		var req service.CreateInvoiceRequest
		assert.False(t, bindJSON(c, &req))

		var body struct {
			Errors map[string]string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Contains(t, body.Errors, "items[0].itemId")
	})

	t.Run("decimal tag", func(t *testing.T) {
		c, w := testContext(http.MethodPost, "/", `{"amount":"-5"}`)
		var req service.RecordPaymentRequest
		assert.False(t, bindJSON(c, &req))
		assert.Contains(t, w.Body.String(), "non-negative decimal")
	})

	t.Run("malformed json", func(t *testing.T) {
		c, w := testContext(http.MethodPost, "/", `{"email":`)
		var req service.LoginRequest
		assert.False(t, bindJSON(c, &req))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid request payload")
	})
}

func TestPathAndQueryIDs(t *testing.T) {
	c, w := testContext(http.MethodGet, "/clients/abc", "")
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	_, ok := pathID(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusNotFound, w.Code)

	c, _ = testContext(http.MethodGet, "/tasks", "")
	id, ok := queryID(c, "clientId")
	assert.True(t, ok)
	assert.Nil(t, id)

	c, w = testContext(http.MethodGet, "/tasks?clientId=42", "")
	_, ok = queryID(c, "clientId")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "clientId")
}
