// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// フェッチ層・取り込み層・バッチランナーから利用する。
type MetricsCollector interface {
	RecordPageFetched()
	RecordFetchFailure()
	RecordHTTPStatus(statusCode int)
	RecordFetchLatency(duration time.Duration)
	RecordFilmsScraped(count int)
	RecordRatingsUpserted(count int)
	RecordMoviesUpserted(count int)
	RecordStoreFailure()
	RecordAccountProcessed()
	RecordAccountFailure()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	pagesFetched    prometheus.Counter
	fetchFail       prometheus.Counter
	httpStatus      *prometheus.CounterVec
	fetchLatency    prometheus.Histogram
	filmsScraped    prometheus.Counter
	ratingsUpserted prometheus.Counter
	moviesUpserted  prometheus.Counter
	storeFail       prometheus.Counter
	accountsDone    prometheus.Counter
	accountFail     prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		pagesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinepool_pages_fetched_total",
			Help: "取得に成功したページの合計数",
		}),
		fetchFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinepool_fetch_fail_total",
			Help: "ページ取得失敗の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cinepool_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cinepool_fetch_latency_seconds",
			Help:    "ページ取得のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		filmsScraped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinepool_films_scraped_total",
			Help: "抽出された作品エントリの合計数",
		}),
		ratingsUpserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinepool_ratings_upserted_total",
			Help: "新規に挿入された評価行の合計数",
		}),
		moviesUpserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinepool_movies_upserted_total",
			Help: "マージされた映画カタログ行の合計数",
		}),
		storeFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinepool_store_fail_total",
			Help: "ストア操作失敗の合計数",
		}),
		accountsDone: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinepool_accounts_processed_total",
			Help: "処理が完了したアカウントの合計数",
		}),
		accountFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinepool_account_fail_total",
			Help: "走査に失敗したアカウントの合計数",
		}),
	}

	reg.MustRegister(
		c.pagesFetched,
		c.fetchFail,
		c.httpStatus,
		c.fetchLatency,
		c.filmsScraped,
		c.ratingsUpserted,
		c.moviesUpserted,
		c.storeFail,
		c.accountsDone,
		c.accountFail,
	)

	return c
}

// RecordPageFetched はページ取得成功を記録する。
func (c *Collector) RecordPageFetched() {
	c.pagesFetched.Inc()
}

// RecordFetchFailure はページ取得失敗を記録する。
func (c *Collector) RecordFetchFailure() {
	c.fetchFail.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordFetchLatency はページ取得のレイテンシを記録する。
func (c *Collector) RecordFetchLatency(duration time.Duration) {
	c.fetchLatency.Observe(duration.Seconds())
}

// RecordFilmsScraped は抽出された作品数を記録する。
func (c *Collector) RecordFilmsScraped(count int) {
	c.filmsScraped.Add(float64(count))
}

// RecordRatingsUpserted は新規挿入された評価行数を記録する。
func (c *Collector) RecordRatingsUpserted(count int) {
	c.ratingsUpserted.Add(float64(count))
}

// RecordMoviesUpserted はマージされたカタログ行数を記録する。
func (c *Collector) RecordMoviesUpserted(count int) {
	c.moviesUpserted.Add(float64(count))
}

// RecordStoreFailure はストア操作の失敗を記録する。
func (c *Collector) RecordStoreFailure() {
	c.storeFail.Inc()
}

// RecordAccountProcessed はアカウント処理の完了を記録する。
func (c *Collector) RecordAccountProcessed() {
	c.accountsDone.Inc()
}

// RecordAccountFailure はアカウント走査の失敗を記録する。
func (c *Collector) RecordAccountFailure() {
	c.accountFail.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
