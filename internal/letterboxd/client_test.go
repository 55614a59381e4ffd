package letterboxd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/praxede/cinepool/internal/model"
)

// --- テスト用ヘルパー ---

// newTestLogger はテスト用のloggerを生成する。
func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// stubFetchGuard はFetchGuardServiceのテスト用スタブ。
// 本物のガードはループバックアドレスをブロックするため、
// httptestサーバーに向けるテストでは素のHTTPクライアントを返す。
type stubFetchGuard struct {
	validateErr error
}

func (g *stubFetchGuard) NewSafeClient(timeout time.Duration, _ ...string) *http.Client {
	return &http.Client{Timeout: timeout}
}

func (g *stubFetchGuard) ValidateScrapeBase(_ string) error {
	return g.validateErr
}

// countingMetrics はFetchMetricsのテスト用実装。呼び出し回数を数えるだけ。
// Enricherのテストでは複数goroutineから呼ばれるためmutexで保護する。
type countingMetrics struct {
	mu        sync.Mutex
	pages     int
	failures  int
	statuses  []int
	latencies int
}

func (m *countingMetrics) RecordPageFetched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages++
}

func (m *countingMetrics) RecordFetchFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

func (m *countingMetrics) RecordHTTPStatus(statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, statusCode)
}

func (m *countingMetrics) RecordFetchLatency(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencies++
}

func (m *countingMetrics) snapshot() (pages, failures int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pages, m.failures
}

// newTestClient は指定ベースURLを向くClientを生成する。
func newTestClient(t *testing.T, baseURL string) (*Client, *countingMetrics) {
	t.Helper()
	var buf bytes.Buffer
	metrics := &countingMetrics{}
	client, err := NewClient(&stubFetchGuard{}, ClientConfig{
		BaseURL:   baseURL,
		UserAgent: "cinepool-test/1.0",
		Timeout:   5 * time.Second,
	}, newTestLogger(&buf), metrics)
	if err != nil {
		t.Fatalf("NewClient に失敗した: %v", err)
	}
	return client, metrics
}

// --- クライアントのテスト ---

func TestNewClient_BlockedBaseURL_ReturnsError(t *testing.T) {
	var buf bytes.Buffer
	guard := &stubFetchGuard{validateErr: errors.New("blocked host")}

	_, err := NewClient(guard, ClientConfig{
		BaseURL:   "http://localhost",
		UserAgent: "cinepool-test/1.0",
		Timeout:   time.Second,
	}, newTestLogger(&buf), &countingMetrics{})

	if err == nil {
		t.Fatal("ブロック対象のベースURLでエラーが返らなかった")
	}
}

// ページURLは評価日の古い順の一覧を指すこと。
func TestClient_PageURL_Format(t *testing.T) {
	client, _ := newTestClient(t, "https://example.com")

	got := client.PageURL("ada", 3)
	want := "https://example.com/ada/films/by/date-earliest/page/3/"
	if got != want {
		t.Errorf("PageURL = %q, want %q", got, want)
	}
}

func TestClient_FilmURL_Format(t *testing.T) {
	client, _ := newTestClient(t, "https://example.com/")

	got := client.FilmURL("the-godfather")
	want := "https://example.com/film/the-godfather/"
	if got != want {
		t.Errorf("FilmURL = %q, want %q", got, want)
	}
}

func TestClient_FeedURL_Format(t *testing.T) {
	client, _ := newTestClient(t, "https://example.com")

	got := client.FeedURL("ada")
	want := "https://example.com/ada/rss/"
	if got != want {
		t.Errorf("FeedURL = %q, want %q", got, want)
	}
}

func TestClient_FetchDocument_SetsUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, "<html><body><p>ok</p></body></html>")
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)

	_, err := client.FetchDocument(context.Background(), server.URL+"/ada/films/by/date-earliest/page/1/")
	if err != nil {
		t.Fatalf("FetchDocument に失敗した: %v", err)
	}
	if gotUA != "cinepool-test/1.0" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "cinepool-test/1.0")
	}
}

func TestClient_FetchDocument_Success_RecordsMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body></body></html>")
	}))
	defer server.Close()

	client, metrics := newTestClient(t, server.URL)

	if _, err := client.FetchDocument(context.Background(), server.URL+"/page"); err != nil {
		t.Fatalf("FetchDocument に失敗した: %v", err)
	}

	pages, failures := metrics.snapshot()
	if pages != 1 {
		t.Errorf("RecordPageFetched の回数 = %d, want 1", pages)
	}
	if failures != 0 {
		t.Errorf("RecordFetchFailure の回数 = %d, want 0", failures)
	}
}

func TestClient_FetchDocument_Non200_ReturnsFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, metrics := newTestClient(t, server.URL)

	_, err := client.FetchDocument(context.Background(), server.URL+"/missing")
	if err == nil {
		t.Fatal("404レスポンスでエラーが返らなかった")
	}

	var fetchErr *model.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("FetchError ではないエラーが返った: %v", err)
	}
	if fetchErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want %d", fetchErr.StatusCode, http.StatusNotFound)
	}

	_, failures := metrics.snapshot()
	if failures != 1 {
		t.Errorf("RecordFetchFailure の回数 = %d, want 1", failures)
	}
}

func TestClient_FetchDocument_ConnectionError_ReturnsFetchError(t *testing.T) {
	// サーバーを即座に閉じて接続エラーを発生させる
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	client, _ := newTestClient(t, serverURL)

	_, err := client.FetchDocument(context.Background(), serverURL+"/page")
	if err == nil {
		t.Fatal("接続エラーでエラーが返らなかった")
	}

	var fetchErr *model.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("FetchError ではないエラーが返った: %v", err)
	}
	if fetchErr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0", fetchErr.StatusCode)
	}
}

// レートリミッタ設定時もリクエストは成功すること。
func TestClient_FetchDocument_WithRateLimiter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body></body></html>")
	}))
	defer server.Close()

	var buf bytes.Buffer
	client, err := NewClient(&stubFetchGuard{}, ClientConfig{
		BaseURL:   server.URL,
		UserAgent: "cinepool-test/1.0",
		Timeout:   5 * time.Second,
		RPS:       100,
	}, newTestLogger(&buf), &countingMetrics{})
	if err != nil {
		t.Fatalf("NewClient に失敗した: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := client.FetchDocument(context.Background(), server.URL+"/page"); err != nil {
			t.Fatalf("FetchDocument に失敗した: %v", err)
		}
	}
}
