package letterboxd

import (
	"context"
	"log/slog"
	"sync"

	"github.com/praxede/cinepool/internal/model"
)

// Enricher は作品詳細ページから公開年などの補完情報を取得する。
// ページ走査とは独立したセカンドパスとして動き、専用のsemaphoreで
// 同時リクエスト数を制御する。
type Enricher struct {
	client         *Client
	extractor      *Extractor
	logger         *slog.Logger
	maxConcurrency int
}

// NewEnricher はEnricherの新しいインスタンスを生成する。
// maxConcurrencyが0以下の場合はデフォルト値20を使用する。
func NewEnricher(client *Client, extractor *Extractor, logger *slog.Logger, maxConcurrency int) *Enricher {
	if maxConcurrency <= 0 {
		maxConcurrency = 20
	}
	return &Enricher{
		client:         client,
		extractor:      extractor,
		logger:         logger,
		maxConcurrency: maxConcurrency,
	}
}

// Enrich は各作品の詳細ページを並列に取得し、公開年と欠けているタイトルを
// その場で埋める。semaphoreパターンで最大並列数を制御する。
// 個別の取得失敗は警告を残すだけで、該当フィールドは未設定のまま残り、
// 他の作品の補完には影響しない。
func (e *Enricher) Enrich(ctx context.Context, films []model.FilmEntry) {
	if len(films) == 0 {
		return
	}

	sem := make(chan struct{}, e.maxConcurrency)
	var wg sync.WaitGroup

	for i := range films {
		wg.Add(1)
		sem <- struct{}{} // semaphore取得（ブロック）

		go func(entry *model.FilmEntry) {
			defer wg.Done()
			defer func() { <-sem }() // semaphore解放

			detailURL := e.client.FilmURL(entry.Slug)
			doc, err := e.client.FetchDocument(ctx, detailURL)
			if err != nil {
				e.logger.Warn("作品詳細の取得に失敗しました",
					slog.String("slug", entry.Slug),
					slog.String("error", err.Error()),
				)
				return
			}

			detail := e.extractor.ParseFilmDetail(doc)
			if detail.Year > 0 {
				entry.Year = detail.Year
			}
			if entry.Title == "" && detail.Title != "" {
				entry.Title = detail.Title
			}
		}(&films[i])
	}

	wg.Wait()
}
