// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService はスクレイプで取得した表示名や作品タイトルを
// 保存前にサニタイズする。これらはプレーンテキストとして扱うため、
// bluemondayのStrictPolicyで全タグを除去する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService はプレーンテキスト項目のサニタイズ機能のインターフェースを定義する。
// スクレイプ結果の保存前に使用される。
type TextSanitizerService interface {
	// Clean は入力から全HTMLタグを除去し、整形済みのプレーンテキストを返す。
	// StrictPolicyがエスケープしたエンティティは復元するため、
	// "AT&T" のようなタイトルがそのまま保持される。
	// 前後の空白は除去される。空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Clean(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyはいかなるタグも許可しない。scriptやimgの混入した
// 表示名・タイトルはテキスト部分だけが残る。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Clean は入力から全HTMLタグを除去し、整形済みのプレーンテキストを返す。
func (s *textSanitizer) Clean(raw string) string {
	if raw == "" {
		return ""
	}
	stripped := s.policy.Sanitize(raw)
	// StrictPolicyは & < > 等をエンティティにエスケープして返すため、
	// プレーンテキストとして保存する前に復元する。
	return strings.TrimSpace(html.UnescapeString(stripped))
}

var _ TextSanitizerService = (*textSanitizer)(nil)
