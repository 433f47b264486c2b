package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/lunch-orders/internal/auth"
	"github.com/example/lunch-orders/internal/command"
	"github.com/example/lunch-orders/internal/domain/aggregate"
	"github.com/example/lunch-orders/internal/domain/calendar"
	"github.com/example/lunch-orders/internal/domain/menu"
	"github.com/example/lunch-orders/internal/domain/order"
	"github.com/example/lunch-orders/internal/infrastructure/store"
	"github.com/example/lunch-orders/internal/infrastructure/store/mocks"
	"github.com/example/lunch-orders/internal/query"
	"github.com/example/lunch-orders/internal/readmodel"
)

type testServer struct {
	router    http.Handler
	readStore *mocks.MockReadStore
	jwt       *auth.JWTService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	registry := aggregate.NewRegistry()
	menu.RegisterEvents(registry)
	calendar.RegisterEvents(registry)
	order.RegisterEvents(registry)

	eventStore := mocks.NewMockEventStore()
	readStore := mocks.NewMockReadStore()
	queries := query.NewHandler(readStore, zap.NewNop())
	commands := command.NewHandler(aggregate.NewStore(eventStore, registry), queries, zap.NewNop())

	jwtService := auth.NewJWTService("test-secret-key-that-is-long-enough-000", 15*time.Minute)

	adminHash, err := auth.HashPassword("admin-pass")
	require.NoError(t, err)
	editors := EditorDirectory{
		"admin@example.com": {ID: "ed-admin", Email: "admin@example.com", Role: "admin", PasswordHash: adminHash},
	}

	handlers := NewHandlers(commands, queries, zap.NewNop())
	authHandlers := NewAuthHandlers(editors, jwtService, zap.NewNop())
	return &testServer{
		router:    NewRouter(handlers, authHandlers, jwtService, zap.NewNop()),
		readStore: readStore,
		jwt:       jwtService,
	}
}

func (s *testServer) token(t *testing.T, editorID, role string) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(editorID, editorID+"@example.com", role)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, r)
	return w
}

func (s *testServer) seedLunchWorld() (menuID, calendarID, fillingID uuid.UUID) {
	menuID, calendarID, fillingID = uuid.New(), uuid.New(), uuid.New()
	s.readStore.SetData(store.CollectionMenus, menuID.String(), &readmodel.Menu{
		ID:       menuID.String(),
		Name:     "Menu",
		Fillings: []readmodel.Filling{{ID: fillingID.String(), Name: "Cheese", AllowsBread: true}},
		Version:  1,
	})
	s.readStore.SetData(store.CollectionCalendars, calendarID.String(), &readmodel.Calendar{
		ID:               calendarID.String(),
		OrdersOpenBeyond: "2026-09-01",
		WithdrawnDates:   []string{},
		Version:          1,
	})
	return
}

// ============================================
// Auth Endpoint Tests
// ============================================

func TestRouter_Login(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "admin-pass",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "ed-admin", resp.EditorID)
	assert.Equal(t, "admin", resp.Role)

	var sawCookie bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "access_token" {
			sawCookie = true
			assert.True(t, c.HttpOnly)
		}
	}
	assert.True(t, sawCookie)
}

func TestRouter_Login_BadPassword(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "nope",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_UnauthenticatedRequestsRefused(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/menus", "/orders", "/auth/me"} {
		w := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

// ============================================
// Role Enforcement Tests
// ============================================

func TestRouter_MenuWritesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	editorToken := s.token(t, "ed-1", "editor")

	w := s.do(t, http.MethodPost, "/menus", editorToken, map[string]string{"name": "Menu"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Reads are open to any authenticated editor.
	w = s.do(t, http.MethodGet, "/menus", editorToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// ============================================
// Command Flow Tests
// ============================================

func TestRouter_CreateMenuFlow(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.token(t, "ed-admin", "admin")

	w := s.do(t, http.MethodPost, "/menus", adminToken, map[string]any{"name": "Weekday menu"})

	require.Equal(t, http.StatusCreated, w.Code)
	var outcome command.Outcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outcome))
	assert.True(t, outcome.Accepted)
	assert.NotEqual(t, uuid.Nil, outcome.CommitID)
}

func TestRouter_RejectionStatuses(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.token(t, "ed-admin", "admin")

	// Blank name: plain business rejection.
	w := s.do(t, http.MethodPost, "/menus", adminToken, map[string]any{"name": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Renaming a menu that never existed: not found.
	w = s.do(t, http.MethodPut, "/menus/"+uuid.NewString(), adminToken, map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_PlaceOrderFlow(t *testing.T) {
	s := newTestServer(t)
	menuID, calendarID, fillingID := s.seedLunchWorld()
	token := s.token(t, "ed-1", "editor")

	w := s.do(t, http.MethodPost, "/orders", token, map[string]any{
		"menu_id":     menuID,
		"calendar_id": calendarID,
		"date":        "2026-09-10",
		"filling_id":  fillingID,
		"bread":       true,
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var outcome command.Outcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outcome))
	assert.True(t, outcome.Accepted)
}

func TestRouter_PlaceOrder_UnknownFillingRejected(t *testing.T) {
	s := newTestServer(t)
	menuID, calendarID, _ := s.seedLunchWorld()
	token := s.token(t, "ed-1", "editor")

	w := s.do(t, http.MethodPost, "/orders", token, map[string]any{
		"menu_id":     menuID,
		"calendar_id": calendarID,
		"date":        "2026-09-10",
		"filling_id":  uuid.New(),
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// ============================================
// Order Ownership Tests
// ============================================

func TestRouter_OrderOwnership(t *testing.T) {
	s := newTestServer(t)
	orderID := uuid.New()
	s.readStore.SetData(store.CollectionOrders, orderID.String(), &readmodel.Order{
		ID:     orderID.String(),
		Editor: "ed-1",
		Status: readmodel.OrderStatusPlaced,
	})

	// The owner sees the order.
	w := s.do(t, http.MethodGet, "/orders/"+orderID.String(), s.token(t, "ed-1", "editor"), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Another editor does not.
	w = s.do(t, http.MethodGet, "/orders/"+orderID.String(), s.token(t, "ed-2", "editor"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// An admin does.
	w = s.do(t, http.MethodGet, "/orders/"+orderID.String(), s.token(t, "ed-admin", "admin"), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Mutations are gated the same way.
	w = s.do(t, http.MethodPost, fmt.Sprintf("/orders/%s/cancel", orderID), s.token(t, "ed-2", "editor"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_OrdersListScopedToEditor(t *testing.T) {
	s := newTestServer(t)
	for i, editor := range []string{"ed-1", "ed-1", "ed-2"} {
		id := uuid.NewString()
		s.readStore.SetData(store.CollectionOrders, id, &readmodel.Order{
			ID:     id,
			Editor: editor,
			Date:   fmt.Sprintf("2026-09-1%d", i),
			Status: readmodel.OrderStatusPlaced,
		})
	}

	w := s.do(t, http.MethodGet, "/orders", s.token(t, "ed-1", "editor"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []readmodel.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	assert.Len(t, mine, 2)

	w = s.do(t, http.MethodGet, "/orders", s.token(t, "ed-admin", "admin"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []readmodel.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 3)
}

// ============================================
// Auth Directory Tests
// ============================================

func TestParseEditorDirectory(t *testing.T) {
	dir := ParseEditorDirectory("ed-1:a@example.com:editor:$2a$10$hash1; ed-2:b@example.com:admin:$2a$10$hash2;;broken-entry")

	require.Len(t, dir, 2)
	assert.Equal(t, "ed-1", dir["a@example.com"].ID)
	assert.Equal(t, "admin", dir["b@example.com"].Role)
	assert.Equal(t, "$2a$10$hash2", dir["b@example.com"].PasswordHash)
}

func TestParseEditorDirectory_Empty(t *testing.T) {
	assert.Empty(t, ParseEditorDirectory(""))
}
