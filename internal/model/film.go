// Package model はドメインモデルを定義する。
package model

// FilmEntry はレーティングページから抽出した1作品分のレコードを表す。
// Ratingはnilで「未評価」を表す（0は有効な評価値として区別する）。
// Title・PosterLink・Yearは空文字列/0で「未取得」を表す。
type FilmEntry struct {
	Slug       string
	Title      string
	PosterLink string
	Rating     *int // 半星単位のスコア（0〜10）。nilは未評価。
	Liked      bool
	Year       int // 公開年。0は未取得。
	Page       int // 抽出元のページ番号（1始まり）。
}

// Rated はエントリが評価値を持つかを返す。
func (e *FilmEntry) Rated() bool {
	return e.Rating != nil
}

// RatingRow はratingsテーブルへ挿入する1行を表す。
// ReconcilerがFilmEntryから評価済みエントリのみを変換して生成する。
type RatingRow struct {
	UserID  string
	MovieID string
	Rating  int
	Liked   bool
}

// MovieRow はmoviesテーブルへアップサートする1行を表す。
// Title・PosterLinkは空文字列、Yearは0でNULLとして保存される。
// RatingAmountはこのバッチが持ち込む評価件数の増分（0または1）。
type MovieRow struct {
	MovieID      string
	Title        string
	PosterLink   string
	Year         int
	RatingAmount int
}

// FilmDetail は作品詳細ページから抽出した補完情報を表す。
type FilmDetail struct {
	Title string
	Year  int
}
