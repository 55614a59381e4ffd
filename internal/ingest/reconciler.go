// Package ingest はスクレイプ結果のストアへの取り込みを提供する。
package ingest

import (
	"context"
	"log/slog"

	"github.com/praxede/cinepool/internal/model"
	"github.com/praxede/cinepool/internal/repository"
	"github.com/praxede/cinepool/internal/security"
)

// IngestMetrics は取り込み系メトリクスの記録インターフェース。
type IngestMetrics interface {
	RecordRatingsUpserted(count int)
	RecordMoviesUpserted(count int)
	RecordStoreFailure()
}

// Reconciler は1アカウント分のスクレイプ結果を3つの独立した操作で永続化する。
// 評価・カタログ・ブックマークの順に、それぞれ1回のバッチラウンドトリップで
// 実行し、1つの失敗が残りの操作を妨げない（ベストエフォート）。
type Reconciler struct {
	ratings   repository.RatingRepository
	movies    repository.MovieRepository
	accounts  repository.AccountRepository
	sanitizer security.TextSanitizerService
	logger    *slog.Logger
	metrics   IngestMetrics
}

// NewReconciler はReconcilerの新しいインスタンスを生成する。
func NewReconciler(
	ratings repository.RatingRepository,
	movies repository.MovieRepository,
	accounts repository.AccountRepository,
	sanitizer security.TextSanitizerService,
	logger *slog.Logger,
	metrics IngestMetrics,
) *Reconciler {
	return &Reconciler{
		ratings:   ratings,
		movies:    movies,
		accounts:  accounts,
		sanitizer: sanitizer,
		logger:    logger,
		metrics:   metrics,
	}
}

// Ingest はAccountResultをストアへ取り込み、件数サマリーを返す。
//
// 評価行は評価済みエントリのみ。カタログ行は未評価を含む全エントリから
// 作られ、rating_amountの増分には「この実行で実際に挿入された」評価だけを
// 数える。再実行では評価挿入が0件になるため、カタログのカウンタも
// 二重加算されない。ブックマークは常に最新の走査結果で上書きされる。
//
// 各操作の失敗はログとサマリーに記録されるだけで、エラーは返さない。
// 部分的に取り込まれたアカウントは同じ走査の再実行で回復できる。
func (r *Reconciler) Ingest(ctx context.Context, result *model.AccountResult) *model.IngestSummary {
	summary := &model.IngestSummary{AccountID: result.AccountID}

	// 操作1: 評価行のバッチ挿入（既存ペアはDO NOTHINGで無視される）
	ratingRows := r.buildRatingRows(result)
	summary.RatingsTotal = len(ratingRows)

	insertedSlugs := make(map[string]struct{})
	inserted, err := r.ratings.UpsertBatch(ctx, ratingRows)
	if err != nil {
		r.recordFailure(summary, "ratings", result.AccountID, err)
	} else {
		summary.RatingsNew = len(inserted)
		r.metrics.RecordRatingsUpserted(len(inserted))
		for _, slug := range inserted {
			insertedSlugs[slug] = struct{}{}
		}
	}

	// 操作2: 映画カタログのマージ
	movieRows := r.buildMovieRows(result, insertedSlugs)
	upserted, err := r.movies.UpsertBatch(ctx, movieRows)
	if err != nil {
		r.recordFailure(summary, "movies", result.AccountID, err)
	} else {
		summary.MoviesUpserted = upserted
		r.metrics.RecordMoviesUpserted(upserted)
	}

	// 操作3: ブックマークのlast-write-wins上書き
	bookmark := &model.AccountBookmark{
		AccountID:   result.AccountID,
		DisplayName: r.sanitizer.Clean(result.DisplayName),
		LastPage:    result.LastPage,
	}
	if err := r.accounts.Upsert(ctx, bookmark); err != nil {
		r.recordFailure(summary, "bookmark", result.AccountID, err)
	} else {
		summary.BookmarkSaved = true
	}

	r.logger.Info("アカウントの取り込みが完了しました",
		slog.String("account_id", result.AccountID),
		slog.Int("ratings_total", summary.RatingsTotal),
		slog.Int("ratings_new", summary.RatingsNew),
		slog.Int("movies_upserted", summary.MoviesUpserted),
		slog.Bool("bookmark_saved", summary.BookmarkSaved),
		slog.Int("store_errors", len(summary.Errors)),
	)

	return summary
}

// buildRatingRows は評価済みエントリをratingsテーブルの行へ変換する。
func (r *Reconciler) buildRatingRows(result *model.AccountResult) []model.RatingRow {
	rows := make([]model.RatingRow, 0, len(result.Films))
	for i := range result.Films {
		film := &result.Films[i]
		if !film.Rated() {
			continue
		}
		rows = append(rows, model.RatingRow{
			UserID:  result.AccountID,
			MovieID: film.Slug,
			Rating:  *film.Rating,
			Liked:   film.Liked,
		})
	}
	return rows
}

// buildMovieRows は全エントリをmoviesテーブルの行へ変換する。
// 同一スラッグの重複はマージし、フィールドは最初の非空値を採用する。
// rating_amountの増分はinsertedSlugsに含まれるスラッグについて1とする。
// 評価の挿入は(ユーザー, スラッグ)ごとに最大1行のため、重複エントリが
// あっても増分を重ねて数えることはない。タイトルは保存前にサニタイズされる。
func (r *Reconciler) buildMovieRows(result *model.AccountResult, insertedSlugs map[string]struct{}) []model.MovieRow {
	rows := make([]model.MovieRow, 0, len(result.Films))
	index := make(map[string]int, len(result.Films))

	for i := range result.Films {
		film := &result.Films[i]

		if pos, ok := index[film.Slug]; ok {
			row := &rows[pos]
			if row.Title == "" {
				row.Title = r.sanitizer.Clean(film.Title)
			}
			if row.PosterLink == "" {
				row.PosterLink = film.PosterLink
			}
			if row.Year == 0 {
				row.Year = film.Year
			}
			continue
		}

		contribution := 0
		if _, ok := insertedSlugs[film.Slug]; ok {
			contribution = 1
		}

		index[film.Slug] = len(rows)
		rows = append(rows, model.MovieRow{
			MovieID:      film.Slug,
			Title:        r.sanitizer.Clean(film.Title),
			PosterLink:   film.PosterLink,
			Year:         film.Year,
			RatingAmount: contribution,
		})
	}

	return rows
}

// recordFailure はストア操作の失敗をログ・メトリクス・サマリーへ記録する。
func (r *Reconciler) recordFailure(summary *model.IngestSummary, operation, accountID string, err error) {
	r.logger.Error("ストア操作に失敗しました",
		slog.String("operation", operation),
		slog.String("account_id", accountID),
		slog.String("error", err.Error()),
	)
	r.metrics.RecordStoreFailure()
	summary.Errors = append(summary.Errors, operation+": "+err.Error())
}
