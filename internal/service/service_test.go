package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"solarflow/internal/access"
	"solarflow/internal/model"
	"solarflow/internal/repository"
	"solarflow/internal/resolver"
	"solarflow/internal/session"
	"solarflow/internal/testutil"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type recordedEvents struct {
	mu    sync.Mutex
	names []string
}

func (r *recordedEvents) Publish(event string, _ interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, event)
}

func (r *recordedEvents) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

type harness struct {
	db       *gorm.DB
	events   *recordedEvents
	sessions *session.Manager

	userRepo      repository.UserRepository
	clientRepo    repository.ClientRepository
	approvalRepo  repository.ApprovalRepository
	taskRepo      repository.TaskRepository
	inventoryRepo repository.InventoryRepository
	stockRepo     repository.StockRequestRepository
	invoiceRepo   repository.InvoiceRepository
	auditRepo     repository.AuditRepository

	users     UserService
	clients   ClientService
	approvals ApprovalService
	tasks     TaskService
	inventory InventoryService
	stock     StockRequestService
	invoices  InvoiceService
	audit     AuditService

	admin, priya, rohit model.User
}

const testPassword = "password123"

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewDB(t)
	h := &harness{
		db:       db,
		events:   &recordedEvents{},
		sessions: session.NewManager([]byte("test-secret"), time.Hour, 24*time.Hour, nil),

		userRepo:      repository.NewUserRepository(db),
		clientRepo:    repository.NewClientRepository(db),
		approvalRepo:  repository.NewApprovalRepository(db),
		taskRepo:      repository.NewTaskRepository(db),
		inventoryRepo: repository.NewInventoryRepository(db),
		stockRepo:     repository.NewStockRequestRepository(db),
		invoiceRepo:   repository.NewInvoiceRepository(db),
		auditRepo:     repository.NewAuditRepository(db),
	}
	tokens := repository.NewRefreshTokenRepository(db)
	tx := repository.NewTransactionManager(db)
	res := resolver.New(h.userRepo, h.clientRepo, h.approvalRepo, h.taskRepo, h.inventoryRepo, h.invoiceRepo,
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	h.users = NewUserService(h.userRepo, tokens, h.auditRepo, tx, h.sessions, h.events)
	h.clients = NewClientService(h.clientRepo, h.userRepo, res, h.auditRepo, tx, h.events)
	h.approvals = NewApprovalService(h.approvalRepo, h.clientRepo, h.auditRepo, tx, h.events)
	h.tasks = NewTaskService(h.taskRepo, h.clientRepo, h.userRepo, res, h.auditRepo, tx, h.events)
	h.inventory = NewInventoryService(h.inventoryRepo, h.auditRepo, tx, h.events)
	h.stock = NewStockRequestService(h.stockRepo, h.inventoryRepo, h.userRepo, res, h.auditRepo, tx, h.events)
	h.invoices = NewInvoiceService(h.invoiceRepo, h.clientRepo, h.inventoryRepo, res, h.auditRepo, tx, h.events)
	h.audit = NewAuditService(h.auditRepo)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	h.admin = h.createUser(t, "John Smith", "admin@solarflow.com", string(hash), model.RoleAdmin)
	h.priya = h.createUser(t, "Priya Singh", "priya@solarflow.com", string(hash), model.RoleAgent)
	h.rohit = h.createUser(t, "Rohit Sharma", "rohit@solarflow.com", string(hash), model.RoleAgent)
	return h
}

func (h *harness) createUser(t *testing.T, name, email, hash, role string) model.User {
	t.Helper()
	u := model.User{Name: name, Email: email, Password: hash, Role: role}
	require.NoError(t, h.userRepo.Create(context.Background(), &u))
	return u
}

func (h *harness) client(t *testing.T, name string, agent *model.User) *model.Client {
	t.Helper()
	c := &model.Client{Name: name, Phone: "9876543210", Address: "Pune", ProjectStatus: model.ProjectStatusLead}
	if agent != nil {
		c.AssignedAgentID = &agent.ID
	}
	require.NoError(t, h.clientRepo.Create(context.Background(), c))
	return c
}

func callerOf(u model.User) access.Caller {
	return access.Caller{ID: u.ID, Role: u.Role}
}

func ptr[T any](v T) *T { return &v }
