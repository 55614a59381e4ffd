package scrape

import (
	"sync"
	"time"
)

// AccountReport は1アカウント分の処理結果サマリー。
type AccountReport struct {
	AccountID      string
	DisplayName    string
	FilmsScraped   int
	RatedCount     int
	LastPage       int
	RatingsNew     int
	MoviesUpserted int
	Skipped        bool // アクティビティプローブで変更なしと判定された
	Failed         bool
	Error          string
	Duration       time.Duration
}

// RunReport は1回のスクレイプラン全体の結果。
// 全goroutineの合流後は変更されない。
type RunReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Accounts   []AccountReport
}

// FailedCount は失敗したアカウント数を返す。
func (r *RunReport) FailedCount() int {
	count := 0
	for i := range r.Accounts {
		if r.Accounts[i].Failed {
			count++
		}
	}
	return count
}

// SkippedCount はスキップされたアカウント数を返す。
func (r *RunReport) SkippedCount() int {
	count := 0
	for i := range r.Accounts {
		if r.Accounts[i].Skipped {
			count++
		}
	}
	return count
}

// TotalFilms は抽出された作品数の合計を返す。
func (r *RunReport) TotalFilms() int {
	total := 0
	for i := range r.Accounts {
		total += r.Accounts[i].FilmsScraped
	}
	return total
}

// AllFailed は全アカウントが失敗したかを返す。アカウントが0件の場合はfalse。
func (r *RunReport) AllFailed() bool {
	if len(r.Accounts) == 0 {
		return false
	}
	return r.FailedCount() == len(r.Accounts)
}

// StatusBoard は最新のRunReportを保持する。
// スクレイプワーカーが書き込み、ダッシュボードハンドラーが読み出す。
type StatusBoard struct {
	mu     sync.RWMutex
	latest *RunReport
}

// NewStatusBoard はStatusBoardの新しいインスタンスを生成する。
func NewStatusBoard() *StatusBoard {
	return &StatusBoard{}
}

// Publish は完了したランのレポートを掲示する。
func (b *StatusBoard) Publish(report *RunReport) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latest = report
}

// Latest は最後に掲示されたレポートを返す。未掲示の場合はnil。
// 返されるレポートは掲示後に変更されないため、呼び出し側はそのまま読んでよい。
func (b *StatusBoard) Latest() *RunReport {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.latest
}
