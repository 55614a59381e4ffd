// Package letterboxd はレーティングカタログサイトからのページ取得と抽出を提供する。
// クローラー、抽出器、公開年の補完、RSSアクティビティプローブを含む。
package letterboxd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"github.com/praxede/cinepool/internal/model"
	"github.com/praxede/cinepool/internal/security"
)

// FetchMetrics はフェッチ系メトリクスの記録インターフェース。
type FetchMetrics interface {
	RecordPageFetched()
	RecordFetchFailure()
	RecordHTTPStatus(statusCode int)
	RecordFetchLatency(duration time.Duration)
}

// ClientConfig はClientの生成パラメータ。
type ClientConfig struct {
	BaseURL     string
	UserAgent   string
	Timeout     time.Duration
	MaxBodySize int64
	// RPS はリクエストレートの上限。0以下で無制限。
	RPS float64
}

// Client はカタログサイトへのHTTPアクセスを担う。
// 1つの共有HTTPクライアント（コネクションプール）をスクレイプラン全体で
// 使い回し、レートリミッタで対象サイトへの礼儀を保つ。
type Client struct {
	http        *http.Client
	baseURL     string
	userAgent   string
	maxBodySize int64
	limiter     *rate.Limiter
	logger      *slog.Logger
	metrics     FetchMetrics
}

// NewClient はClientの新しいインスタンスを生成する。
// cfg.BaseURLはフェッチガードで事前検証され、生成されるHTTPクライアントは
// そのホスト以外へのリクエストを拒否する。
func NewClient(
	guard security.FetchGuardService,
	cfg ClientConfig,
	logger *slog.Logger,
	metrics FetchMetrics,
) (*Client, error) {
	if err := guard.ValidateScrapeBase(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("スクレイプ基点URLの検証に失敗しました: %w", err)
	}

	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("スクレイプ基点URLの解析に失敗しました: %w", err)
	}

	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = 5 * 1024 * 1024
	}

	var limiter *rate.Limiter
	if cfg.RPS > 0 {
		burst := int(2 * cfg.RPS)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}

	return &Client{
		http:        guard.NewSafeClient(cfg.Timeout, parsed.Hostname()),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:   cfg.UserAgent,
		maxBodySize: cfg.MaxBodySize,
		limiter:     limiter,
		logger:      logger,
		metrics:     metrics,
	}, nil
}

// PageURL は指定アカウントのレーティング一覧ページのURLを返す。
// 並び順は評価日の古い順で固定する。走査途中にページ構成が入れ替わる
// 度合いを最小にするため。
func (c *Client) PageURL(accountID string, page int) string {
	return fmt.Sprintf("%s/%s/films/by/date-earliest/page/%d/", c.baseURL, url.PathEscape(accountID), page)
}

// FilmURL は作品詳細ページのURLを返す。
func (c *Client) FilmURL(slug string) string {
	return fmt.Sprintf("%s/film/%s/", c.baseURL, url.PathEscape(slug))
}

// FeedURL はアカウントの公開RSSフィードのURLを返す。
func (c *Client) FeedURL(accountID string) string {
	return fmt.Sprintf("%s/%s/rss/", c.baseURL, url.PathEscape(accountID))
}

// FetchDocument は1ページを取得してgoqueryドキュメントとして返す。
// レスポンスは文字コードを判定してUTF-8へ変換してからパースされる。
// あらゆる失敗はmodel.FetchErrorに集約される。
func (c *Client) FetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	resp, err := c.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, c.maxBodySize)
	reader, err := charset.NewReader(limited, resp.Header.Get("Content-Type"))
	if err != nil {
		c.metrics.RecordFetchFailure()
		return nil, model.NewFetchError(pageURL, resp.StatusCode, fmt.Errorf("文字コードの判定に失敗: %w", err))
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		c.metrics.RecordFetchFailure()
		return nil, model.NewFetchError(pageURL, resp.StatusCode, fmt.Errorf("HTMLのパースに失敗: %w", err))
	}

	c.metrics.RecordPageFetched()
	return doc, nil
}

// get はレートリミッタを通して1リクエストを実行する。
// 200以外のステータスはボディを閉じてFetchErrorとして返す。
// 成功時は呼び出し側がresp.Bodyを閉じる。
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, model.NewFetchError(rawURL, 0, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, model.NewFetchError(rawURL, 0, err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordFetchFailure()
		return nil, model.NewFetchError(rawURL, 0, err)
	}

	c.metrics.RecordHTTPStatus(resp.StatusCode)
	c.metrics.RecordFetchLatency(time.Since(start))

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		c.metrics.RecordFetchFailure()
		return nil, model.NewFetchError(rawURL, resp.StatusCode, nil)
	}

	return resp, nil
}
