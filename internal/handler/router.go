package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/taskdeck/internal/metrics"
	"github.com/hitoshi/taskdeck/internal/middleware"
	"github.com/hitoshi/taskdeck/internal/model"
)

// RouterDeps はルーター構築に必要な依存を保持する。
type RouterDeps struct {
	Logger            *slog.Logger
	DB                Pinger
	TokenVerifier     middleware.TokenVerifier
	AuthHandler       *AuthHandler
	TodoHandler       *TodoHandler
	Metrics           *metrics.Metrics
	StaticDir         string
	CORSAllowedOrigin string
}

// meteredVerifier はトークン検証の失敗をメトリクスに記録するラッパー。
type meteredVerifier struct {
	inner   middleware.TokenVerifier
	metrics *metrics.Metrics
}

func (v *meteredVerifier) Verify(tokenString string) (string, error) {
	subject, err := v.inner.Verify(tokenString)
	if err != nil && v.metrics != nil {
		v.metrics.TokenVerifyFailureTotal.Inc()
	}
	return subject, err
}

// NewRouter はアプリケーションのHTTPルーターを構築する。
// /api/auth/loginを除くすべての/api配下のルートは認証ミドルウェアで
// 保護され、/api以外のパスはSPAハンドラーにフォールバックする。
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.CORSAllowedOrigin != "" {
		r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	}
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	// 未定義の/api配下はJSONの404、それ以外はSPAにフォールバックする。
	// サブルーターはマウント時に親のNotFoundを継承するため、
	// ルート定義より前に登録しておく必要がある。
	spa := NewSPAHandler(deps.StaticDir)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/api" {
			middleware.WriteErrorResponse(w, http.StatusNotFound, &model.APIError{
				Code:     "NOT_FOUND",
				Message:  "指定されたリソースが見つかりません。",
				Category: "system",
				Action:   "URLを確認してください。",
			})
			return
		}
		spa.ServeHTTP(w, r)
	})

	verifier := middleware.TokenVerifier(&meteredVerifier{
		inner:   deps.TokenVerifier,
		metrics: deps.Metrics,
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", deps.AuthHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.NewAuthMiddleware(verifier))
			r.Get("/todos", deps.TodoHandler.HandleList)
			r.Post("/todos", deps.TodoHandler.HandleCreate)
			r.Get("/todos/{todoID}", deps.TodoHandler.HandleGet)
			r.Put("/todos/{todoID}", deps.TodoHandler.HandleUpdate)
			r.Delete("/todos/{todoID}", deps.TodoHandler.HandleDelete)
		})
	})

	r.Get("/health", NewHealthHandler(deps.DB))

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	return r
}
