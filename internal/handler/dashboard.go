package handler

import (
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/praxede/cinepool/internal/worker/scrape"
)

// ReportSource は直近のスクレイプランのレポート取得インターフェース。
type ReportSource interface {
	Latest() *scrape.RunReport
}

// newDashboardHandler は直近のランをチャートで可視化するハンドラーを生成する。
// まだ完了したランがない場合は案内メッセージだけを返す。
func newDashboardHandler(reports ReportSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		var report *scrape.RunReport
		if reports != nil {
			report = reports.Latest()
		}
		if report == nil {
			fmt.Fprint(w, `<html><body><p>No completed scrape runs yet.</p></body></html>`)
			return
		}

		// アカウント別の抽出作品数
		bar := charts.NewBar()
		bar.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{
				Title:    "Films scraped per account",
				Subtitle: "run " + report.RunID,
			}),
			charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		)

		var accounts []string
		var scraped []opts.BarData
		var newRatings []opts.BarData
		for i := range report.Accounts {
			account := &report.Accounts[i]
			accounts = append(accounts, account.AccountID)
			scraped = append(scraped, opts.BarData{Value: account.FilmsScraped})
			newRatings = append(newRatings, opts.BarData{Value: account.RatingsNew})
		}
		bar.SetXAxis(accounts).
			AddSeries("Films", scraped).
			AddSeries("New ratings", newRatings)

		// 処理結果の内訳
		pie := charts.NewPie()
		pie.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{Title: "Account outcomes"}),
			charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		)

		succeeded := len(report.Accounts) - report.FailedCount() - report.SkippedCount()
		pie.AddSeries("Accounts", []opts.PieData{
			{Name: "Succeeded", Value: succeeded},
			{Name: "Failed", Value: report.FailedCount()},
			{Name: "Skipped", Value: report.SkippedCount()},
		})

		bar.Render(w)
		pie.Render(w)
	}
}
