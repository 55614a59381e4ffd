package letterboxd

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/praxede/cinepool/internal/model"
)

// GridState はレーティングページの抽出結果の分類。
// ページネーションの終端判定はこの3値だけで行う。
type GridState int

const (
	// GridFilms は1件以上の作品を抽出できた状態。
	GridFilms GridState = iota
	// GridMissing は作品グリッド自体が存在しない状態（最終ページ超過）。
	GridMissing
	// GridEmpty はグリッドはあるが解釈可能な作品がない状態。
	GridEmpty
)

// String はログ出力用の表現を返す。
func (s GridState) String() string {
	switch s {
	case GridFilms:
		return "films"
	case GridMissing:
		return "missing"
	case GridEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Extractor はレーティングページと作品詳細ページからのレコード抽出を行う。
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor はExtractorの新しいインスタンスを生成する。
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// ExtractFilms はレーティング一覧ページから作品エントリを抽出する。
// スラッグ属性を持たない作品はログを残してスキップされ、ページの残りの
// 抽出は継続する。抽出できた作品が1件もない場合、グリッドの有無に応じて
// GridMissing / GridEmpty を返し、いずれも走査の終端を意味する。
func (e *Extractor) ExtractFilms(doc *goquery.Document, page int) ([]model.FilmEntry, GridState) {
	grid := doc.Find("ul.grid.-p70").First()
	if grid.Length() == 0 {
		return nil, GridMissing
	}

	var films []model.FilmEntry
	grid.Find("li.griditem").Each(func(_ int, item *goquery.Selection) {
		component := item.Find("div.react-component").First()

		slug := strings.TrimSpace(component.AttrOr("data-item-slug", ""))
		if slug == "" {
			e.logger.Warn("スラッグのない作品をスキップします",
				slog.Int("page", page),
				slog.String("item_name", component.AttrOr("data-item-name", "")),
			)
			return
		}

		entry := model.FilmEntry{
			Slug:       slug,
			Title:      strings.TrimSpace(component.AttrOr("data-item-name", "")),
			PosterLink: strings.TrimSpace(item.Find("img").First().AttrOr("src", "")),
			Page:       page,
		}

		viewing := item.Find("p.poster-viewingdata").First()
		entry.Rating = StarsToScore(viewing.Find("span.rating").First().Text())
		entry.Liked = viewing.Find("span.like").HasClass("liked-micro")

		films = append(films, entry)
	})

	if len(films) == 0 {
		return nil, GridEmpty
	}

	return films, GridFilms
}

// ExtractDisplayName はプロフィールナビゲーションから表示名を抽出する。
// 要素が見つからない場合は空文字列を返す。エラーにはしない。
func (e *Extractor) ExtractDisplayName(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("nav.profile-navigation h1.title-3").First().Text())
}

// ParseFilmDetail は作品詳細ページから公開年と正規タイトルを抽出する。
// 見つからないフィールドはゼロ値のまま返す。
func (e *Extractor) ParseFilmDetail(doc *goquery.Document) model.FilmDetail {
	masthead := doc.Find("section.production-masthead").First()

	detail := model.FilmDetail{
		Title: strings.TrimSpace(masthead.Find("span.name").First().Text()),
	}

	yearText := strings.TrimSpace(masthead.Find(".releasedate a").First().Text())
	if year, err := strconv.Atoi(yearText); err == nil {
		detail.Year = year
	}

	return detail
}
