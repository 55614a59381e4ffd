// Package handler は運用エンドポイント（ヘルスチェック・メトリクス・ダッシュボード）を提供する。
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/praxede/cinepool/internal/metrics"
	"github.com/praxede/cinepool/internal/middleware"
)

// HealthChecker はヘルスチェックでの到達性確認インターフェース。
// *sql.DBがそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	HealthChecker HealthChecker
	Gatherer      prometheus.Gatherer
	Reports       ReportSource
	Logger        *slog.Logger
}

// NewRouter は運用エンドポイントのルーティングを構成したchi.Routerを返す。
//
// ルート:
//
//	GET /health    - DB到達性を含むヘルスチェック
//	GET /metrics   - Prometheusメトリクス
//	GET /dashboard - 直近のスクレイプランの可視化
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))

	r.Get("/health", newHealthHandler(deps.HealthChecker))
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	r.Get("/dashboard", newDashboardHandler(deps.Reports))

	return r
}

// newHealthHandler はヘルスチェックハンドラーを生成する。
// DBへ到達できれば200、できなければ503を返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")

		if err := checker.PingContext(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}

		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
