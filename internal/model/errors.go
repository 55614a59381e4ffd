// Package model はドメインモデルを定義する。
package model

import "fmt"

// FetchError はページ取得の失敗を表す。
// HTTPステータス異常・ネットワークエラー・タイムアウト・デコード失敗を
// すべてこの型に集約し、呼び出し側はerrors.Asで判別できる。
// StatusCodeはレスポンスを受け取れなかった場合0となる。
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

// Error はerrorインターフェースを実装する。
func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch failed: %s (status %d)", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch failed: %s: %v", e.URL, e.Err)
}

// Unwrap はラップされた原因エラーを返す。
func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError はFetchErrorを生成する。
func NewFetchError(url string, statusCode int, err error) *FetchError {
	return &FetchError{
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}
