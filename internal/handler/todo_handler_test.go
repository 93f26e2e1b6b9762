package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/taskdeck/internal/middleware"
	"github.com/hitoshi/taskdeck/internal/model"
	"github.com/hitoshi/taskdeck/internal/todo"
)

// mockTodoService はTodoServiceのモック実装。
type mockTodoService struct {
	listFunc   func(ctx context.Context, username string) ([]*model.Todo, error)
	createFunc func(ctx context.Context, username, title string) (*model.Todo, error)
	getFunc    func(ctx context.Context, username, todoID string) (*model.Todo, error)
	updateFunc func(ctx context.Context, username, todoID string, input todo.UpdateInput) (*model.Todo, error)
	deleteFunc func(ctx context.Context, username, todoID string) error
}

func (m *mockTodoService) List(ctx context.Context, username string) ([]*model.Todo, error) {
	return m.listFunc(ctx, username)
}

func (m *mockTodoService) Create(ctx context.Context, username, title string) (*model.Todo, error) {
	return m.createFunc(ctx, username, title)
}

func (m *mockTodoService) Get(ctx context.Context, username, todoID string) (*model.Todo, error) {
	return m.getFunc(ctx, username, todoID)
}

func (m *mockTodoService) Update(ctx context.Context, username, todoID string, input todo.UpdateInput) (*model.Todo, error) {
	return m.updateFunc(ctx, username, todoID, input)
}

func (m *mockTodoService) Delete(ctx context.Context, username, todoID string) error {
	return m.deleteFunc(ctx, username, todoID)
}

// newAuthenticatedRequest は認証済みサブジェクト付きのリクエストを生成する。
func newAuthenticatedRequest(t *testing.T, method, target, subject, body string) *http.Request {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.ContextWithSubject(req.Context(), subject))
}

// withURLParam はchiのURLパラメータをリクエストコンテキストに設定する。
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestTodoHandler_HandleList_ReturnsOwnedTodos(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	service := &mockTodoService{
		listFunc: func(ctx context.Context, username string) ([]*model.Todo, error) {
			if username != "alice" {
				t.Errorf("List() username = %q, want %q", username, "alice")
			}
			return []*model.Todo{
				{ID: "todo-2", UserID: "user-1", Title: "新しい方", Completed: false, CreatedAt: createdAt},
				{ID: "todo-1", UserID: "user-1", Title: "古い方", Completed: true, CreatedAt: createdAt.Add(-time.Hour)},
			}, nil
		},
	}
	h := NewTodoHandler(service, nil)

	req := newAuthenticatedRequest(t, http.MethodGet, "/api/todos", "alice", "")
	rec := httptest.NewRecorder()

	h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body []todoResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body) != 2 {
		t.Fatalf("len(body) = %d, want 2", len(body))
	}
	if body[0].ID != "todo-2" {
		t.Errorf("body[0].ID = %q, want %q", body[0].ID, "todo-2")
	}
	if body[0].CreatedAt != "2026-08-01T12:00:00Z" {
		t.Errorf("body[0].CreatedAt = %q, want RFC3339", body[0].CreatedAt)
	}
}

func TestTodoHandler_HandleList_EmptyResult_ReturnsEmptyArray(t *testing.T) {
	t.Parallel()

	service := &mockTodoService{
		listFunc: func(ctx context.Context, username string) ([]*model.Todo, error) {
			return []*model.Todo{}, nil
		},
	}
	h := NewTodoHandler(service, nil)

	req := newAuthenticatedRequest(t, http.MethodGet, "/api/todos", "alice", "")
	rec := httptest.NewRecorder()

	h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	// nullではなく[]でなければならない
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %q, want %q", got, "[]")
	}
}

func TestTodoHandler_HandleList_WithoutSubject_Returns401(t *testing.T) {
	t.Parallel()

	service := &mockTodoService{
		listFunc: func(ctx context.Context, username string) ([]*model.Todo, error) {
			t.Error("List() should not be called without subject")
			return nil, nil
		},
	}
	h := NewTodoHandler(service, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	rec := httptest.NewRecorder()

	h.HandleList(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestTodoHandler_HandleCreate_ValidTitle_Returns201(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	service := &mockTodoService{
		createFunc: func(ctx context.Context, username, title string) (*model.Todo, error) {
			if title != "買い物に行く" {
				t.Errorf("Create() title = %q, want %q", title, "買い物に行く")
			}
			return &model.Todo{
				ID: "todo-1", UserID: "user-1", Title: title, Completed: false, CreatedAt: createdAt,
			}, nil
		},
	}
	h := NewTodoHandler(service, nil)

	req := newAuthenticatedRequest(t, http.MethodPost, "/api/todos", "alice", `{"title":"買い物に行く"}`)
	rec := httptest.NewRecorder()

	h.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}

	var body todoResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Title != "買い物に行く" {
		t.Errorf("title = %q, want %q", body.Title, "買い物に行く")
	}
	if body.Completed {
		t.Error("completed = true, want false")
	}
}

func TestTodoHandler_HandleCreate_BlankTitle_Returns400(t *testing.T) {
	t.Parallel()

	service := &mockTodoService{
		createFunc: func(ctx context.Context, username, title string) (*model.Todo, error) {
			return nil, model.NewTitleRequiredError()
		},
	}
	h := NewTodoHandler(service, nil)

	req := newAuthenticatedRequest(t, http.MethodPost, "/api/todos", "alice", `{"title":"   "}`)
	rec := httptest.NewRecorder()

	h.HandleCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body.Code != model.ErrCodeTitleRequired {
		t.Errorf("error code = %q, want %q", body.Code, model.ErrCodeTitleRequired)
	}
}

func TestTodoHandler_HandleGet_NotFound_Returns404(t *testing.T) {
	t.Parallel()

	service := &mockTodoService{
		getFunc: func(ctx context.Context, username, todoID string) (*model.Todo, error) {
			return nil, model.NewTodoNotFoundError(todoID)
		},
	}
	h := NewTodoHandler(service, nil)

	req := newAuthenticatedRequest(t, http.MethodGet, "/api/todos/missing", "alice", "")
	req = withURLParam(req, "todoID", "missing")
	rec := httptest.NewRecorder()

	h.HandleGet(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestTodoHandler_HandleUpdate_PartialBody_PassesNilFields(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	service := &mockTodoService{
		updateFunc: func(ctx context.Context, username, todoID string, input todo.UpdateInput) (*model.Todo, error) {
			if input.Title != nil {
				t.Errorf("input.Title = %v, want nil", *input.Title)
			}
			if input.Completed == nil || !*input.Completed {
				t.Error("input.Completed should be true")
			}
			return &model.Todo{
				ID: todoID, UserID: "user-1", Title: "既存タイトル", Completed: true, CreatedAt: createdAt,
			}, nil
		},
	}
	h := NewTodoHandler(service, nil)

	req := newAuthenticatedRequest(t, http.MethodPut, "/api/todos/todo-1", "alice", `{"completed":true}`)
	req = withURLParam(req, "todoID", "todo-1")
	rec := httptest.NewRecorder()

	h.HandleUpdate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body todoResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !body.Completed {
		t.Error("completed = false, want true")
	}
}

func TestTodoHandler_HandleDelete_Success_Returns204NoBody(t *testing.T) {
	t.Parallel()

	service := &mockTodoService{
		deleteFunc: func(ctx context.Context, username, todoID string) error {
			if todoID != "todo-1" {
				t.Errorf("Delete() todoID = %q, want %q", todoID, "todo-1")
			}
			return nil
		},
	}
	h := NewTodoHandler(service, nil)

	req := newAuthenticatedRequest(t, http.MethodDelete, "/api/todos/todo-1", "alice", "")
	req = withURLParam(req, "todoID", "todo-1")
	rec := httptest.NewRecorder()

	h.HandleDelete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body length = %d, want 0", rec.Body.Len())
	}
}

func TestTodoHandler_HandleDelete_AlreadyDeleted_Returns404(t *testing.T) {
	t.Parallel()

	service := &mockTodoService{
		deleteFunc: func(ctx context.Context, username, todoID string) error {
			return model.NewTodoNotFoundError(todoID)
		},
	}
	h := NewTodoHandler(service, nil)

	req := newAuthenticatedRequest(t, http.MethodDelete, "/api/todos/todo-1", "alice", "")
	req = withURLParam(req, "todoID", "todo-1")
	rec := httptest.NewRecorder()

	h.HandleDelete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestTodoHandler_HandleUpdate_UnresolvableSubject_Returns401(t *testing.T) {
	t.Parallel()

	service := &mockTodoService{
		updateFunc: func(ctx context.Context, username, todoID string, input todo.UpdateInput) (*model.Todo, error) {
			return nil, model.NewUnauthorizedError()
		},
	}
	h := NewTodoHandler(service, nil)

	req := newAuthenticatedRequest(t, http.MethodPut, "/api/todos/todo-1", "ghost", `{"completed":true}`)
	req = withURLParam(req, "todoID", "todo-1")
	rec := httptest.NewRecorder()

	h.HandleUpdate(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
