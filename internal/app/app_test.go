package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"solarflow/internal/config"
	"solarflow/internal/database"
	"solarflow/internal/model"
	"solarflow/internal/session"
	"solarflow/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router http.Handler
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard

	db := testutil.NewDB(t)
	require.NoError(t, database.Seed(context.Background(), db))

	router := NewRouter(Deps{
		Config:   &config.Config{GinMode: gin.TestMode, CORSOrigins: []string{"http://localhost:5173"}},
		DB:       db,
		Sessions: session.NewManager([]byte("test-secret"), time.Hour, 24*time.Hour, nil),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return &testServer{router: router}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": database.DemoPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]string](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestLogin(t *testing.T) {
	s := newServer(t)

	t.Run("wrong password has no user", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "admin@solarflow.com", "password": "not-the-password"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
		body := decode[map[string]interface{}](t, w)
		assert.NotContains(t, body, "user")
		assert.Equal(t, float64(http.StatusUnauthorized), body["status_code"])
	})

	t.Run("success never includes the password", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "Admin@SolarFlow.com", "password": database.DemoPassword})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.NotContains(t, w.Body.String(), "password")

		body := decode[map[string]interface{}](t, w)
		user, ok := body["user"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "John Smith", user["name"])
		assert.Equal(t, model.RoleAdmin, user["role"])
		assert.NotEmpty(t, body["token"])
		assert.NotEmpty(t, body["refreshToken"])

		var cookies []string
		for _, c := range w.Result().Cookies() {
			cookies = append(cookies, c.Name)
		}
		assert.ElementsMatch(t, []string{"access_token", "refresh_token"}, cookies)
	})

	t.Run("short password fails validation", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "admin@solarflow.com", "password": "abc"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decode[map[string]interface{}](t, w)
		assert.Contains(t, body["errors"], "password")
	})
}

func TestProtectedRoutes(t *testing.T) {
	s := newServer(t)
	priya := s.login(t, "priya@solarflow.com")

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/clients", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/dashboard/metrics", "garbage", nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/users", priya, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/audit-logs", priya, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/clients/not-a-uuid", priya, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/tasks?clientId=nope", priya, nil).Code)

	w := s.do(t, http.MethodPost, "/api/clients", priya, gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[map[string]interface{}](t, w)
	assert.Contains(t, body["errors"], "name")
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newServer(t)
	token := s.login(t, "rohit@solarflow.com")

	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/auth/me", token, nil).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/auth/logout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/auth/me", token, nil).Code)
}

func TestScenario_AgentSeesOwnLead(t *testing.T) {
	s := newServer(t)
	priya := s.login(t, "priya@solarflow.com")
	rohit := s.login(t, "rohit@solarflow.com")

	w := s.do(t, http.MethodPost, "/api/clients", priya, gin.H{
		"name":    "Client A",
		"phone":   "+91 98765 43210",
		"address": "12 MG Road, Pune",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.Client](t, w)
	assert.Equal(t, model.ProjectStatusLead, created.ProjectStatus)

	w = s.do(t, http.MethodGet, "/api/clients", priya, nil)
	require.Equal(t, http.StatusOK, w.Code)
	clients := decode[[]model.ClientWithAgent](t, w)
	require.Len(t, clients, 1)
	assert.Equal(t, created.ID, clients[0].ID)
	assert.Equal(t, "lead", clients[0].ProjectStatus)
	require.NotNil(t, clients[0].AssignedAgent)
	assert.Equal(t, "Priya Singh", clients[0].AssignedAgent.Name)

	w = s.do(t, http.MethodGet, "/api/clients", rohit, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]model.ClientWithAgent](t, w))
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/clients/"+created.ID.String(), rohit, nil).Code)
}

func TestScenario_PipelineCountsEveryApproval(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, "admin@solarflow.com")

	var clientIDs []string
	for _, name := range []string{"Client A", "Client B"} {
		w := s.do(t, http.MethodPost, "/api/clients", admin, gin.H{"name": name, "phone": "1", "address": "x"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		clientIDs = append(clientIDs, decode[model.Client](t, w).ID.String())
	}

	statuses := []string{"pending", "approved", "rejected", "pending", "approved"}
	for i, status := range statuses {
		w := s.do(t, http.MethodPost, "/api/approvals", admin, gin.H{
			"clientId": clientIDs[i%2],
			"step":     model.StepApplication,
			"status":   status,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := s.do(t, http.MethodGet, "/api/dashboard/metrics", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	metrics := decode[model.DashboardMetrics](t, w)

	require.Len(t, metrics.ApprovalPipeline, 5)
	application := metrics.ApprovalPipeline[0]
	assert.Equal(t, model.StepApplication, application.Step)
	assert.Equal(t, 5, application.Count)
	assert.Equal(t, 250, application.Percentage)
	assert.Equal(t, 2, metrics.PendingApprovals)
	assert.Equal(t, 2, metrics.TotalClients)
	assert.Regexp(t, `^₹\d+\.\dL$`, metrics.MonthlyRevenue)
}

func TestScenario_CriticalStockIsReported(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, "admin@solarflow.com")

	w := s.do(t, http.MethodPost, "/api/inventory", admin, gin.H{"itemName": "MC4 Connector", "quantity": 5, "threshold": 20})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	item := decode[model.InventoryItem](t, w)

	w = s.do(t, http.MethodGet, "/api/dashboard/metrics", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	metrics := decode[model.DashboardMetrics](t, w)

	var found *model.LowStockItem
	for i := range metrics.LowStockItems {
		if metrics.LowStockItems[i].ID == item.ID {
			found = &metrics.LowStockItems[i]
		}
	}
	require.NotNil(t, found)
	assert.True(t, found.IsLow)
	assert.Equal(t, model.StockCritical, found.Level)
}

func TestScenario_OverdueTaskIsPending(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, "admin@solarflow.com")

	w := s.do(t, http.MethodPost, "/api/clients", admin, gin.H{"name": "Client A", "phone": "1", "address": "x"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	client := decode[model.Client](t, w)

	w = s.do(t, http.MethodPost, "/api/tasks", admin, gin.H{
		"clientId": client.ID.String(),
		"title":    "Site survey",
		"dueDate":  time.Now().Add(-48 * time.Hour).UTC().Format(time.RFC3339),
		"status":   model.TaskPending,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	task := decode[model.Task](t, w)

	w = s.do(t, http.MethodGet, "/api/dashboard/metrics", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	metrics := decode[model.DashboardMetrics](t, w)

	require.Len(t, metrics.PendingTasks, 1)
	pending := metrics.PendingTasks[0]
	assert.Equal(t, task.ID, pending.ID)
	assert.Equal(t, "Client A", pending.Client.Name)
	assert.True(t, pending.Due.Overdue)
	assert.Equal(t, model.UrgencyOverdue, pending.Due.Urgency)
}

func TestStockRequestApprovalFlow(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, "admin@solarflow.com")
	priya := s.login(t, "priya@solarflow.com")

	w := s.do(t, http.MethodPost, "/api/inventory", admin, gin.H{"itemName": "Mounting Rail", "quantity": 10, "threshold": 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	item := decode[model.InventoryItem](t, w)

	w = s.do(t, http.MethodPost, "/api/stock-requests", priya, gin.H{"itemId": item.ID.String(), "quantityRequested": 4})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	request := decode[model.StockRequest](t, w)

	path := "/api/stock-requests/" + request.ID.String()
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPut, path, priya, gin.H{"status": model.StockRequestApproved}).Code)

	w = s.do(t, http.MethodPut, path, admin, gin.H{"status": model.StockRequestApproved})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/inventory/"+item.ID.String(), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 6, decode[model.InventoryItem](t, w).Quantity)

	w = s.do(t, http.MethodGet, "/api/stock-requests", priya, nil)
	require.Equal(t, http.StatusOK, w.Code)
	requests := decode[[]model.StockRequestWithDetails](t, w)
	require.Len(t, requests, 1)
	require.NotNil(t, requests[0].ApprovedByUser)
	assert.Equal(t, "John Smith", requests[0].ApprovedByUser.Name)
}

func TestAuditLogsArePaginated(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, "admin@solarflow.com")

	var firstID string
	for _, name := range []string{"A", "B", "C"} {
		w := s.do(t, http.MethodPost, "/api/clients", admin, gin.H{"name": name, "phone": "1", "address": "x"})
		require.Equal(t, http.StatusCreated, w.Code)
		if firstID == "" {
			firstID = decode[model.Client](t, w).ID.String()
		}
	}

	w := s.do(t, http.MethodGet, "/api/audit-logs?page=1&limit=2", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page struct {
		Data       []map[string]interface{} `json:"data"`
		Total      int64                    `json:"total"`
		TotalPages int                      `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Data, 2)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, "John Smith", page.Data[0]["userName"])

	w = s.do(t, http.MethodGet, "/api/audit-logs?action="+model.ActionCreateClient+"&entityId="+firstID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, "A", page.Data[0]["entityName"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t)
	s.do(t, http.MethodGet, "/api/health", "", nil)

	w := s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestWebsocketNeedsRunningHub(t *testing.T) {
	s := newServer(t)
	token := s.login(t, "priya@solarflow.com")

	w := s.do(t, http.MethodGet, "/ws?token="+token, "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestListAgentsShowsPublicFields(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, "admin@solarflow.com")

	w := s.do(t, http.MethodGet, "/api/users", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	agents := decode[[]map[string]interface{}](t, w)
	require.NotEmpty(t, agents)
	for _, a := range agents {
		keys := make([]string, 0, len(a))
		for k := range a {
			keys = append(keys, k)
		}
		assert.ElementsMatch(t, []string{"id", "name", "email", "role"}, keys)
		assert.Equal(t, model.RoleAgent, a["role"])
	}
}
