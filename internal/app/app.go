// Package app はアプリケーションの起動と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/praxede/cinepool/internal/config"
	"github.com/praxede/cinepool/internal/database"
	"github.com/praxede/cinepool/internal/handler"
	"github.com/praxede/cinepool/internal/ingest"
	"github.com/praxede/cinepool/internal/letterboxd"
	"github.com/praxede/cinepool/internal/logger"
	"github.com/praxede/cinepool/internal/metrics"
	"github.com/praxede/cinepool/internal/repository"
	"github.com/praxede/cinepool/internal/roster"
	"github.com/praxede/cinepool/internal/security"
	"github.com/praxede/cinepool/internal/worker/scrape"
)

// Init はアプリケーションの初期化を行う。
// .envファイル（存在する場合）と環境変数からConfigを読み込み、
// JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// .envは開発時の利便のためだけに読む。なくてもエラーにしない。
	_ = godotenv.Load()

	logger.SetupDefault(w)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("OPS_PORT")
		if port == "" {
			port = "9090"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("base_url", cfg.BaseURL),
		slog.String("ops_port", cfg.OpsPort),
	)

	switch cmd {
	case CommandWorker:
		return runWorker(cfg, args)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runScrape(cfg, args)
	}
}

// deps はスクレイプ実行に必要な依存関係の束。
type deps struct {
	db       *sql.DB
	runner   *scrape.Runner
	board    *scrape.StatusBoard
	registry *prometheus.Registry
}

// buildDeps はDB接続からランナーまでの全依存関係をワイヤリングする。
func buildDeps(cfg *config.Config) (*deps, error) {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	ratingRepo := repository.NewPostgresRatingRepo(db)
	movieRepo := repository.NewPostgresMovieRepo(db)
	accountRepo := repository.NewPostgresAccountRepo(db)

	// 3. セキュリティサービスの初期化
	guard := security.NewFetchGuard()
	sanitizer := security.NewTextSanitizer()

	// 4. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 5. スクレイプ層の初期化
	client, err := letterboxd.NewClient(guard, letterboxd.ClientConfig{
		BaseURL:     cfg.BaseURL,
		UserAgent:   cfg.UserAgent,
		Timeout:     cfg.FetchTimeout,
		MaxBodySize: cfg.FetchMaxSize,
		RPS:         cfg.ScrapeRPS,
	}, slog.Default(), collector)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to build scrape client: %w", err)
	}

	extractor := letterboxd.NewExtractor(slog.Default())
	crawler := letterboxd.NewCrawler(client, extractor, slog.Default(), cfg.MaxPages)
	enricher := letterboxd.NewEnricher(client, extractor, slog.Default(), cfg.EnrichMaxConcurrent)

	// 6. 取り込み層とランナーの初期化
	reconciler := ingest.NewReconciler(ratingRepo, movieRepo, accountRepo, sanitizer, slog.Default(), collector)

	board := scrape.NewStatusBoard()
	runner := scrape.NewRunner(
		crawler, enricher, reconciler, accountRepo, client, board,
		slog.Default(), collector,
		scrape.RunnerOptions{
			Concurrency:   cfg.AccountConcurrency,
			EnrichYears:   cfg.EnrichYears,
			SkipUnchanged: cfg.SkipUnchanged,
		},
	)

	return &deps{db: db, runner: runner, board: board, registry: registry}, nil
}

// newOpsServer は運用エンドポイント用のHTTPサーバーを生成する。
func newOpsServer(port string, d *deps) *http.Server {
	router := handler.NewRouter(&handler.RouterDeps{
		HealthChecker: d.db,
		Gatherer:      d.registry,
		Reports:       d.board,
		Logger:        slog.Default(),
	})

	return &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// runScrape は名簿を1回スクレイプして終了する。
// 実行中は運用エンドポイントを公開し、SIGINT/SIGTERMで走査を中断できる。
func runScrape(cfg *config.Config, args []string) error {
	d, err := buildDeps(cfg)
	if err != nil {
		return err
	}
	defer d.db.Close()

	accounts, err := roster.Load(cfg.AccountsFile, AccountArgs(args), slog.Default())
	if err != nil {
		return fmt.Errorf("failed to load account roster: %w", err)
	}

	server := newOpsServer(cfg.OpsPort, d)
	go func() {
		slog.Info("ops server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("ops server listen error", slog.String("error", err.Error()))
		}
	}()

	// シグナルで走査を中断できるようにする
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		slog.Info("interrupting scrape run...")
		cancel()
	}()

	report := d.runner.RunOnce(ctx, accounts)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("ops server shutdown failed", slog.String("error", err.Error()))
	}

	if report.AllFailed() {
		return fmt.Errorf("all %d accounts failed", len(report.Accounts))
	}
	return nil
}

// runWorker は定期スクレイプのワーカーモードで起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runWorker(cfg *config.Config, args []string) error {
	d, err := buildDeps(cfg)
	if err != nil {
		return err
	}
	defer d.db.Close()

	accounts, err := roster.Load(cfg.AccountsFile, AccountArgs(args), slog.Default())
	if err != nil {
		return fmt.Errorf("failed to load account roster: %w", err)
	}

	server := newOpsServer(cfg.OpsPort, d)
	go func() {
		slog.Info("ops server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("ops server listen error", slog.String("error", err.Error()))
		}
	}()

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("scrape_interval", cfg.ScrapeInterval),
		slog.Int("account_count", len(accounts)),
		slog.Int("concurrency", cfg.AccountConcurrency),
	)

	// スケジューラをメインgoroutineで実行（ブロッキング）
	d.runner.Start(ctx, cfg.ScrapeInterval, accounts)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ops server shutdown failed: %w", err)
	}

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully",
		slog.Uint64("version", uint64(version)),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
