package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/taskdeck/internal/metrics"
	"github.com/hitoshi/taskdeck/internal/middleware"
	"github.com/hitoshi/taskdeck/internal/model"
	"github.com/hitoshi/taskdeck/internal/todo"
)

// TodoService はTodo操作に必要なサービスのインターフェース。
type TodoService interface {
	List(ctx context.Context, username string) ([]*model.Todo, error)
	Create(ctx context.Context, username, title string) (*model.Todo, error)
	Get(ctx context.Context, username, todoID string) (*model.Todo, error)
	Update(ctx context.Context, username, todoID string, input todo.UpdateInput) (*model.Todo, error)
	Delete(ctx context.Context, username, todoID string) error
}

// TodoHandler はTodo関連のHTTPハンドラー。
// すべてのハンドラーは認証ミドルウェアの背後で実行される前提で、
// コンテキストからサブジェクトを取得する。
type TodoHandler struct {
	todoService TodoService
	metrics     *metrics.Metrics
}

// NewTodoHandler はTodoHandlerを生成する。
func NewTodoHandler(todoService TodoService, m *metrics.Metrics) *TodoHandler {
	return &TodoHandler{
		todoService: todoService,
		metrics:     m,
	}
}

// todoResponse はTodoのレスポンス表現。
type todoResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	CreatedAt string `json:"createdAt"`
}

// newTodoResponse はモデルをレスポンス表現に変換する。
func newTodoResponse(t *model.Todo) todoResponse {
	return todoResponse{
		ID:        t.ID,
		Title:     t.Title,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
}

// createTodoRequest はTodo作成リクエストのボディ。
type createTodoRequest struct {
	Title string `json:"title"`
}

// updateTodoRequest はTodo部分更新リクエストのボディ。
// 省略されたフィールドは変更されない。
type updateTodoRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

// HandleList はGET /api/todosを処理する。
// 呼び出し元が所有するTodoを作成日時の降順で返す。
func (h *TodoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	username, err := middleware.SubjectFromContext(r.Context())
	if err != nil {
		middleware.WriteUnauthorizedResponse(w)
		return
	}

	todos, err := h.todoService.List(r.Context(), username)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	responses := make([]todoResponse, 0, len(todos))
	for _, t := range todos {
		responses = append(responses, newTodoResponse(t))
	}
	writeJSONResponse(w, http.StatusOK, responses)
}

// HandleCreate はPOST /api/todosを処理する。
func (h *TodoHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	username, err := middleware.SubjectFromContext(r.Context())
	if err != nil {
		middleware.WriteUnauthorizedResponse(w)
		return
	}

	var req createTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("リクエストボディを解析できません"))
		return
	}

	created, err := h.todoService.Create(r.Context(), username, req.Title)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.TodosCreatedTotal.Inc()
	}

	writeJSONResponse(w, http.StatusCreated, newTodoResponse(created))
}

// HandleGet はGET /api/todos/{todoID}を処理する。
func (h *TodoHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	username, err := middleware.SubjectFromContext(r.Context())
	if err != nil {
		middleware.WriteUnauthorizedResponse(w)
		return
	}

	todoID := chi.URLParam(r, "todoID")
	found, err := h.todoService.Get(r.Context(), username, todoID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, newTodoResponse(found))
}

// HandleUpdate はPUT /api/todos/{todoID}を処理する。
// ボディに含まれるフィールドのみを変更する部分更新。
func (h *TodoHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	username, err := middleware.SubjectFromContext(r.Context())
	if err != nil {
		middleware.WriteUnauthorizedResponse(w)
		return
	}

	var req updateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("リクエストボディを解析できません"))
		return
	}

	todoID := chi.URLParam(r, "todoID")
	updated, err := h.todoService.Update(r.Context(), username, todoID, todo.UpdateInput{
		Title:     req.Title,
		Completed: req.Completed,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, newTodoResponse(updated))
}

// HandleDelete はDELETE /api/todos/{todoID}を処理する。
// 成功時はボディなしの204を返す。
func (h *TodoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	username, err := middleware.SubjectFromContext(r.Context())
	if err != nil {
		middleware.WriteUnauthorizedResponse(w)
		return
	}

	todoID := chi.URLParam(r, "todoID")
	if err := h.todoService.Delete(r.Context(), username, todoID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
