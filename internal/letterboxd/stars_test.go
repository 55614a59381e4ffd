package letterboxd

import "testing"

// 星グリフからスコアへの変換テーブル。nilは未評価を意味する。
func TestStarsToScore(t *testing.T) {
	tests := []struct {
		name   string
		glyphs string
		want   *int
	}{
		{name: "半星のみ", glyphs: "½", want: intPtr(1)},
		{name: "星1つ", glyphs: "★", want: intPtr(2)},
		{name: "星2つ半", glyphs: "★★½", want: intPtr(5)},
		{name: "星3つ半", glyphs: "★★★½", want: intPtr(7)},
		{name: "星5つ", glyphs: "★★★★★", want: intPtr(10)},
		{name: "空文字列は未評価", glyphs: "", want: nil},
		{name: "グリフ以外のみは未評価", glyphs: "  \n ", want: nil},
		{name: "前後の空白は無視", glyphs: " ★★ ", want: intPtr(4)},
		{name: "星6つは5つに丸める", glyphs: "★★★★★★", want: intPtr(10)},
		{name: "半星2つは1つに丸める", glyphs: "½½", want: intPtr(1)},
		{name: "星5つ半は10に丸める", glyphs: "★★★★★½", want: intPtr(10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StarsToScore(tt.glyphs)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("StarsToScore(%q) = %d, want nil", tt.glyphs, *got)
			case tt.want != nil && got == nil:
				t.Errorf("StarsToScore(%q) = nil, want %d", tt.glyphs, *tt.want)
			case tt.want != nil && got != nil && *got != *tt.want:
				t.Errorf("StarsToScore(%q) = %d, want %d", tt.glyphs, *got, *tt.want)
			}
		})
	}
}

func intPtr(v int) *int {
	return &v
}
