package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/shopbackoffice/internal/admin/application"
	"github.com/wyfcoding/shopbackoffice/internal/admin/domain"
)

type memAdminRepo struct {
	mu     sync.Mutex
	admins map[uint]*domain.Admin
	roles  *memRoleRepo
	nextID uint
}

func (r *memAdminRepo) Save(ctx context.Context, admin *domain.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if admin.ID == 0 {
		r.nextID++
		admin.ID = r.nextID
	}
	stored := *admin
	r.admins[admin.ID] = &stored
	return nil
}

func (r *memAdminRepo) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, admin := range r.admins {
		if admin.Username == username {
			out := *admin
			if role, ok := r.roles.roles[admin.RoleID]; ok {
				out.Role = *role
			}
			return &out, nil
		}
	}
	return nil, domain.ErrAdminNotFound
}

func (r *memAdminRepo) GetByID(ctx context.Context, id uint) (*domain.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	admin, ok := r.admins[id]
	if !ok {
		return nil, domain.ErrAdminNotFound
	}
	out := *admin
	return &out, nil
}

func (r *memAdminRepo) List(ctx context.Context, offset, limit int) ([]*domain.Admin, int64, error) {
	return nil, 0, nil
}

func (r *memAdminRepo) Delete(ctx context.Context, id uint) error { return nil }

type memRoleRepo struct {
	mu     sync.Mutex
	roles  map[uint]*domain.Role
	nextID uint
}

func (r *memRoleRepo) Save(ctx context.Context, role *domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if role.ID == 0 {
		r.nextID++
		role.ID = r.nextID
	}
	stored := *role
	r.roles[role.ID] = &stored
	return nil
}

func (r *memRoleRepo) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, role := range r.roles {
		if role.Name == name {
			out := *role
			return &out, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (r *memRoleRepo) GetByID(ctx context.Context, id uint) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	out := *role
	return &out, nil
}

func (r *memRoleRepo) List(ctx context.Context) ([]*domain.Role, error) { return nil, nil }

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func (r *memSessionRepo) Save(ctx context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *session
	r.sessions[session.ID] = &stored
	return nil
}

func (r *memSessionRepo) Get(ctx context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	out := *session
	return &out, nil
}

func (r *memSessionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

type nullPublisher struct{}

func (nullPublisher) Publish(ctx context.Context, topic, key string, event any) error { return nil }

// newGatedRouter builds a router shaped like the real order detail route:
// authentication first, then the view permission, then a handler that would
// disclose order data.
func newGatedRouter(t *testing.T) (*gin.Engine, *application.AdminApplicationService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	roles := &memRoleRepo{roles: make(map[uint]*domain.Role)}
	admins := &memAdminRepo{admins: make(map[uint]*domain.Admin), roles: roles}
	sessions := &memSessionRepo{sessions: make(map[string]*domain.Session)}
	svc := application.NewAdminApplicationService(admins, roles, sessions, nullPublisher{}, "test-secret", time.Hour)

	ctx := context.Background()
	require.NoError(t, svc.Bootstrap(ctx, "root", "swordfish"))
	_, err := svc.CreateRole(ctx, application.CreateRoleCommand{Name: "intern", Permissions: nil})
	require.NoError(t, err)
	_, err = svc.CreateAdmin(ctx, application.CreateAdminCommand{
		Username: "intern",
		Password: "hunter2",
		RoleName: "intern",
	})
	require.NoError(t, err)

	router := gin.New()
	authed := router.Group("", AuthRequired(svc))
	authed.GET("/orders/:id/detail", RequirePermission(domain.PermOrdersView), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": 1, "username": "alice", "total": 1500})
	})
	return router, svc
}

func login(t *testing.T, svc *application.AdminApplicationService, username, password string) string {
	t.Helper()
	token, _, err := svc.Login(context.Background(), username, password)
	require.NoError(t, err)
	return token
}

func TestDetailRouteRejectsAnonymous(t *testing.T) {
	router, _ := newGatedRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/orders/1/detail", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assertNoOrderFields(t, rec.Body.Bytes())
}

func TestDetailRouteRejectsBadToken(t *testing.T) {
	router, _ := newGatedRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/orders/1/detail", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assertNoOrderFields(t, rec.Body.Bytes())
}

func TestDetailRouteRejectsMissingPermission(t *testing.T) {
	router, svc := newGatedRouter(t)
	token := login(t, svc, "intern", "hunter2")

	req := httptest.NewRequest(http.MethodGet, "/orders/1/detail", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assertNoOrderFields(t, rec.Body.Bytes())
}

func TestDetailRouteAllowsPermittedViewer(t *testing.T) {
	router, svc := newGatedRouter(t)
	token := login(t, svc, "root", "swordfish")

	req := httptest.NewRequest(http.MethodGet, "/orders/1/detail", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 1500, body["total"])
}

func TestRevokedTokenIsRejected(t *testing.T) {
	router, svc := newGatedRouter(t)
	token := login(t, svc, "root", "swordfish")

	session, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(context.Background(), session.ID))

	req := httptest.NewRequest(http.MethodGet, "/orders/1/detail", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assertNoOrderFields(t, rec.Body.Bytes())
}

// assertNoOrderFields checks a rejection body carries only the error, not
// any order data.
func assertNoOrderFields(t *testing.T, body []byte) {
	t.Helper()
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Contains(t, decoded, "error")
	assert.NotContains(t, decoded, "total")
	assert.NotContains(t, decoded, "username")
	assert.NotContains(t, decoded, "items")
}
