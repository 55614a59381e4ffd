// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/praxede/cinepool/internal/model"
)

// RatingRepository は評価データの永続化インターフェース。
type RatingRepository interface {
	// UpsertBatch は評価行を1回のバッチ挿入で保存する。
	// 既存の(user_id, movie_id)ペアはON CONFLICT DO NOTHINGで無視されるため、
	// 同一バッチの再実行は冪等となる。
	// 戻り値は実際に挿入された行のmovie_id一覧。rowsが空の場合は何もしない。
	UpsertBatch(ctx context.Context, rows []model.RatingRow) ([]string, error)
}

// MovieRepository は映画カタログの永続化インターフェース。
type MovieRepository interface {
	// UpsertBatch はカタログ行を1回のバッチでマージする。
	// 新規スラッグは挿入し、既存スラッグはrating_amountを加算、
	// 記述系カラム（title, poster_link, release_year）は既存値がNULLの
	// 場合のみ埋める。非NULLの既存値がNULLに巻き戻ることはない。
	// rowsに同一movie_idを複数含めてはならない（呼び出し側でマージする）。
	// 戻り値は処理された行数。rowsが空の場合は何もしない。
	UpsertBatch(ctx context.Context, rows []model.MovieRow) (int, error)
}

// AccountRepository はアカウントブックマークの永続化インターフェース。
type AccountRepository interface {
	// Upsert はブックマークをlast-write-winsで保存する。
	// username・last_page_scrapedは無条件に上書きされ、updated_atが更新される。
	Upsert(ctx context.Context, bookmark *model.AccountBookmark) error

	// FindByID は指定アカウントのブックマークを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, accountID string) (*model.AccountBookmark, error)
}
