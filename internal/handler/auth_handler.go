package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hitoshi/taskdeck/internal/auth"
	"github.com/hitoshi/taskdeck/internal/metrics"
	"github.com/hitoshi/taskdeck/internal/middleware"
	"github.com/hitoshi/taskdeck/internal/model"
)

// AuthService は認証に必要なサービスのインターフェース。
type AuthService interface {
	Login(ctx context.Context, username, password string) (*auth.LoginResult, error)
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	authService AuthService
	metrics     *metrics.Metrics
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(authService AuthService, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		metrics:     m,
	}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse はログイン成功時のレスポンスボディ。
type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// HandleLogin はPOST /api/auth/loginを処理する。
// 資格情報を検証してトークンを返す。どちらかのフィールドが空白のみの
// 場合は資格情報の照合を行わずに400を返す。
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("リクエストボディを解析できません"))
		return
	}

	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Password) == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("ユーザー名とパスワードは必須です"))
		return
	}

	result, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordLoginFailure()
		}
		handleServiceError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordLoginSuccess()
	}

	writeJSONResponse(w, http.StatusOK, loginResponse{
		Token:    result.Token,
		Username: result.Username,
	})
}
