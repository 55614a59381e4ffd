// Package model はドメインモデルを定義する。
package model

import "time"

// AccountResult は1アカウント分のスクレイプ成果物を表す。
// Filmsはページ順（ページ内は出現順）で並ぶ。
// DisplayNameは空文字列で「取得できなかった」を表す。
type AccountResult struct {
	AccountID   string
	DisplayName string
	Films       []FilmEntry
	LastPage    int // 正常に取り込めた最後のページ番号。1ページ目が空なら0。
}

// RatedCount は評価値を持つエントリ数を返す。
func (r *AccountResult) RatedCount() int {
	count := 0
	for i := range r.Films {
		if r.Films[i].Rated() {
			count++
		}
	}
	return count
}

// AccountBookmark はuser_poolテーブルの1行、すなわちアカウントごとの
// スクレイプ進捗ブックマークを表す。last-write-winsで上書き保存される。
type AccountBookmark struct {
	AccountID   string
	DisplayName string // 空文字列はNULLとして保存される。
	LastPage    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IngestSummary は1アカウント分の永続化結果を表す。
// 3つのストア操作は独立にベストエフォートで実行されるため、
// 一部が失敗しても残りの件数は有効である。
type IngestSummary struct {
	AccountID      string
	RatingsTotal   int // バッチに含まれた評価行数
	RatingsNew     int // 実際に挿入された評価行数
	MoviesUpserted int
	BookmarkSaved  bool
	Errors         []string // 失敗した操作のエラーメッセージ
}

// Failed はいずれかのストア操作が失敗したかを返す。
func (s *IngestSummary) Failed() bool {
	return len(s.Errors) > 0
}
