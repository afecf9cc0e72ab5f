package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/blogcore/internal/metrics"
	"github.com/hitoshi/blogcore/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenParser       middleware.TokenParser
	CORSAllowedOrigin string
	Logger            *slog.Logger
	Metrics           metrics.MetricsCollector

	// 運用
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	AuthService AuthServiceInterface
	PostService PostServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → (Optional|Require)Auth
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(logger, deps.Metrics))

	authHandler := NewAuthHandler(deps.AuthService)
	postHandler := NewPostHandler(deps.PostService)

	requireAuth := middleware.NewRequireAuthMiddleware(deps.TokenParser)
	optionalAuth := middleware.NewOptionalAuthMiddleware(deps.TokenParser)

	// --- 運用エンドポイント ---
	if deps.HealthChecker != nil {
		r.Get("/health", NewHealthHandler(deps.HealthChecker))
	}
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// --- 認証 ---
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.With(requireAuth).Get("/me", authHandler.Me)
	})

	// --- 記事 ---
	r.Route("/api/posts", func(r chi.Router) {
		r.With(optionalAuth).Get("/", postHandler.ListPosts)
		r.With(requireAuth).Post("/", postHandler.CreatePost)

		r.Route("/{id}", func(r chi.Router) {
			r.With(optionalAuth).Get("/", postHandler.GetPost)
			r.With(requireAuth).Put("/", postHandler.UpdatePost)
			r.With(requireAuth).Delete("/", postHandler.DeletePost)
		})
	})

	r.Get("/api/categories", postHandler.ListCategories)

	return r
}
