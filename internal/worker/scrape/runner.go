// Package scrape はアカウント名簿に対するバッチスクレイプ処理を提供する。
// ランナー、実行レポート、定期実行スケジューリングを含む。
package scrape

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/praxede/cinepool/internal/model"
	"github.com/praxede/cinepool/internal/repository"
)

// CrawlerService は1アカウント分のページ走査インターフェース。
type CrawlerService interface {
	// Crawl はアカウントのレーティングページを走査して結果を返す。
	// 1ページ目の取得に失敗した場合のみエラーを返す。
	Crawl(ctx context.Context, accountID string) (*model.AccountResult, error)
}

// EnrichService は作品エントリの補完パスのインターフェース。
type EnrichService interface {
	Enrich(ctx context.Context, films []model.FilmEntry)
}

// IngestService はスクレイプ結果の取り込みインターフェース。
type IngestService interface {
	Ingest(ctx context.Context, result *model.AccountResult) *model.IngestSummary
}

// ActivityProber はアカウントの最新アクティビティ時刻の取得インターフェース。
type ActivityProber interface {
	LatestActivity(ctx context.Context, accountID string) (*time.Time, error)
}

// RunnerMetrics はランナー系メトリクスの記録インターフェース。
type RunnerMetrics interface {
	RecordFilmsScraped(count int)
	RecordAccountProcessed()
	RecordAccountFailure()
}

// RunnerOptions はRunnerの動作設定。
type RunnerOptions struct {
	Concurrency   int  // アカウントの並列処理数。0以下は1。
	EnrichYears   bool // 作品詳細ページから公開年を補完するか。
	SkipUnchanged bool // 更新のないアカウントをプローブでスキップするか。
}

// Runner はアカウント名簿に対して走査・補完・取り込みを実行する。
// アカウント間に順序の保証はなく、semaphoreパターンで並列数を制御する。
// 1アカウントの失敗は他のアカウントの処理を妨げない。
type Runner struct {
	crawler       CrawlerService
	enricher      EnrichService
	reconciler    IngestService
	accountRepo   repository.AccountRepository
	prober        ActivityProber
	board         *StatusBoard
	logger        *slog.Logger
	metrics       RunnerMetrics
	concurrency   int
	enrichYears   bool
	skipUnchanged bool
}

// NewRunner はRunnerの新しいインスタンスを生成する。
func NewRunner(
	crawler CrawlerService,
	enricher EnrichService,
	reconciler IngestService,
	accountRepo repository.AccountRepository,
	prober ActivityProber,
	board *StatusBoard,
	logger *slog.Logger,
	metrics RunnerMetrics,
	opts RunnerOptions,
) *Runner {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Runner{
		crawler:       crawler,
		enricher:      enricher,
		reconciler:    reconciler,
		accountRepo:   accountRepo,
		prober:        prober,
		board:         board,
		logger:        logger,
		metrics:       metrics,
		concurrency:   concurrency,
		enrichYears:   opts.EnrichYears,
		skipUnchanged: opts.SkipUnchanged,
	}
}

// RunOnce は名簿の全アカウントを1回処理してレポートを返す。
// semaphoreパターンで並列数を制御する。各goroutineはレポートの
// 自分のスロットにだけ書き込むため、合流までロックは不要である。
func (r *Runner) RunOnce(ctx context.Context, accountIDs []string) *RunReport {
	report := &RunReport{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
		Accounts:  make([]AccountReport, len(accountIDs)),
	}

	r.logger.Info("スクレイプランを開始します",
		slog.String("run_id", report.RunID),
		slog.Int("account_count", len(accountIDs)),
		slog.Int("concurrency", r.concurrency),
	)

	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup

	for i, accountID := range accountIDs {
		wg.Add(1)
		sem <- struct{}{} // semaphore取得（ブロック）

		go func(idx int, id string) {
			defer wg.Done()
			defer func() { <-sem }() // semaphore解放

			report.Accounts[idx] = r.processAccount(ctx, report.RunID, id)
		}(i, accountID)
	}

	wg.Wait()
	report.FinishedAt = time.Now()

	if r.board != nil {
		r.board.Publish(report)
	}

	duration := report.FinishedAt.Sub(report.StartedAt)
	r.logger.Info("スクレイプランが完了しました",
		slog.String("run_id", report.RunID),
		slog.Int("account_count", len(accountIDs)),
		slog.Int("failed", report.FailedCount()),
		slog.Int("skipped", report.SkippedCount()),
		slog.Int("films_total", report.TotalFilms()),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return report
}

// Start は指定間隔のティッカーで定期スクレイプを起動する。
// 起動直後に1回実行し、以降はコンテキストがキャンセルされるまで繰り返す。
func (r *Runner) Start(ctx context.Context, interval time.Duration, accountIDs []string) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.logger.Info("スクレイプスケジューラを開始しました",
		slog.Duration("interval", interval),
		slog.Int("account_count", len(accountIDs)),
	)

	// 起動直後に1回実行
	r.RunOnce(ctx, accountIDs)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("スクレイプスケジューラを停止しました")
			return
		case <-ticker.C:
			r.RunOnce(ctx, accountIDs)
		}
	}
}

// processAccount は1アカウント分の走査・補完・取り込みを実行する。
// 失敗はレポートに封じ込め、エラーは返さない。
func (r *Runner) processAccount(ctx context.Context, runID, accountID string) AccountReport {
	start := time.Now()
	report := AccountReport{AccountID: accountID}

	if r.skipUnchanged && r.unchangedSinceBookmark(ctx, accountID) {
		report.Skipped = true
		report.Duration = time.Since(start)
		r.logger.Info("新しいアクティビティがないためスキップします",
			slog.String("run_id", runID),
			slog.String("account_id", accountID),
		)
		return report
	}

	result, err := r.crawler.Crawl(ctx, accountID)
	if err != nil {
		report.Failed = true
		report.Error = err.Error()
		report.Duration = time.Since(start)
		r.metrics.RecordAccountFailure()
		r.logger.Error("アカウントの走査に失敗しました",
			slog.String("run_id", runID),
			slog.String("account_id", accountID),
			slog.String("error", err.Error()),
		)
		return report
	}

	if r.enrichYears && r.enricher != nil {
		r.enricher.Enrich(ctx, result.Films)
	}

	r.metrics.RecordFilmsScraped(len(result.Films))

	summary := r.reconciler.Ingest(ctx, result)

	report.DisplayName = result.DisplayName
	report.FilmsScraped = len(result.Films)
	report.RatedCount = result.RatedCount()
	report.LastPage = result.LastPage
	report.RatingsNew = summary.RatingsNew
	report.MoviesUpserted = summary.MoviesUpserted
	if summary.Failed() {
		report.Failed = true
		report.Error = strings.Join(summary.Errors, "; ")
	}
	report.Duration = time.Since(start)

	r.metrics.RecordAccountProcessed()
	r.logger.Info("アカウントの処理が完了しました",
		slog.String("run_id", runID),
		slog.String("account_id", accountID),
		slog.Int("films", report.FilmsScraped),
		slog.Int("rated", report.RatedCount),
		slog.Int("last_page", report.LastPage),
		slog.Int("ratings_new", report.RatingsNew),
		slog.Int("movies_upserted", report.MoviesUpserted),
		slog.Int("store_errors", len(summary.Errors)),
		slog.Float64("duration_ms", float64(report.Duration.Milliseconds())),
	)

	return report
}

// unchangedSinceBookmark はブックマークの保存時刻とRSSフィードの最新エントリを
// 突き合わせ、前回の取り込み以降に新しいアクティビティがないかを判定する。
// プローブの失敗・フィードなし・ブックマークなしはいずれも「スキップしない」に
// 倒す。この判定はあくまで省力化のためで、正確性には寄与しない。
func (r *Runner) unchangedSinceBookmark(ctx context.Context, accountID string) bool {
	if r.prober == nil {
		return false
	}

	bookmark, err := r.accountRepo.FindByID(ctx, accountID)
	if err != nil || bookmark == nil || bookmark.UpdatedAt.IsZero() {
		return false
	}

	latest, err := r.prober.LatestActivity(ctx, accountID)
	if err != nil {
		r.logger.Warn("アクティビティの事前判定に失敗したため通常走査します",
			slog.String("account_id", accountID),
			slog.String("error", err.Error()),
		)
		return false
	}
	if latest == nil {
		return false
	}

	return latest.Before(bookmark.UpdatedAt)
}
