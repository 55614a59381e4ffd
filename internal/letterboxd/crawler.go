package letterboxd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/praxede/cinepool/internal/model"
)

// Crawler は1アカウント分のレーティングページ走査を行う。
// ページは1から順に取得し、先読みはしない。ページ内の作品順と
// ページ順がそのまま結果の並びになる。
type Crawler struct {
	client    *Client
	extractor *Extractor
	logger    *slog.Logger
	maxPages  int
}

// NewCrawler はCrawlerの新しいインスタンスを生成する。
// maxPagesが0以下の場合はデフォルト値50を使用する。
func NewCrawler(client *Client, extractor *Extractor, logger *slog.Logger, maxPages int) *Crawler {
	if maxPages <= 0 {
		maxPages = 50
	}
	return &Crawler{
		client:    client,
		extractor: extractor,
		logger:    logger,
		maxPages:  maxPages,
	}
}

// Crawl は指定アカウントのレーティングページを順に走査してAccountResultを返す。
//
// 終端条件:
//   - グリッドなし/空グリッドのページに到達（LastPage = 直前のページ）
//   - 2ページ目以降の取得失敗（警告を残し、そこまでの結果を保持）
//   - maxPagesに到達
//
// 1ページ目の取得に失敗した場合のみエラーを返す。アカウントについて
// 何も分かっていないため、呼び出し側は取り込みを行わずスキップできる。
// 1ページ目が空だった場合はLastPage = 0の空結果を返す（これは有効な結果）。
// 表示名は走査の1ページ目から解決し、追加のリクエストは行わない。
func (c *Crawler) Crawl(ctx context.Context, accountID string) (*model.AccountResult, error) {
	result := &model.AccountResult{AccountID: accountID}

	for page := 1; page <= c.maxPages; page++ {
		pageURL := c.client.PageURL(accountID, page)

		doc, err := c.client.FetchDocument(ctx, pageURL)
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("1ページ目の取得に失敗しました: %w", err)
			}
			c.logger.Warn("ページ取得に失敗したため走査を打ち切ります",
				slog.String("account_id", accountID),
				slog.Int("page", page),
				slog.String("error", err.Error()),
			)
			break
		}

		if page == 1 {
			result.DisplayName = c.extractor.ExtractDisplayName(doc)
		}

		films, state := c.extractor.ExtractFilms(doc, page)
		if state != GridFilms {
			c.logger.Info("作品グリッドが尽きたため走査を終了します",
				slog.String("account_id", accountID),
				slog.Int("page", page),
				slog.String("grid_state", state.String()),
			)
			break
		}

		result.Films = append(result.Films, films...)
		result.LastPage = page
	}

	return result, nil
}
