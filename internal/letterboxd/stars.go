package letterboxd

const (
	fullStarGlyph = '★' // U+2605
	halfStarGlyph = '½' // U+00BD
)

// StarsToScore は星グリフ列を半星単位のスコア（0〜10）へ変換する。
// ★1つを2、½を1として加算する。グリフが1つもない場合はnil（未評価）を返す。
// マークアップの乱れに備え、★は5個・½は1個までしか数えず、
// 合計も10を上限とする。
func StarsToScore(glyphs string) *int {
	full, half := 0, 0
	for _, r := range glyphs {
		switch r {
		case fullStarGlyph:
			full++
		case halfStarGlyph:
			half++
		}
	}

	if full == 0 && half == 0 {
		return nil
	}

	if full > 5 {
		full = 5
	}
	if half > 1 {
		half = 1
	}

	score := full*2 + half
	if score > 10 {
		score = 10
	}

	return &score
}
