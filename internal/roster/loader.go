// Package roster はスクレイプ対象アカウントの名簿読み込みを提供する。
package roster

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
)

// accountIDPattern は有効なアカウントIDの形式。
// 対象サイトのユーザー名規則（英数字とアンダースコア、2〜15文字）に合わせる。
var accountIDPattern = regexp.MustCompile(`^[A-Za-z0-9_]{2,15}$`)

// headerNames はCSVのヘッダー行として認識する列名（小文字で比較）。
var headerNames = []string{"user_id", "userid", "userids", "username", "account", "account_id"}

// Load はスクレイプ対象のアカウントID一覧を解決する。
//
// argsが指定されていればそれをそのまま名簿として使い、ファイルは読まない。
// それ以外はpathのCSVを読む。ヘッダー行に既知の列名があればその列を、
// なければ先頭列を使う。BOM付きファイルにも対応する。
//
// 形式の不正なIDは警告を残してスキップし、読み込みは続行する（fail-soft）。
// 重複は最初の出現だけを残す。有効なIDが1件もなければエラーを返す。
func Load(path string, args []string, logger *slog.Logger) ([]string, error) {
	if len(args) > 0 {
		return normalize(args, logger)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("名簿ファイルを開けませんでした: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(stripBOM(f))
	reader.FieldsPerRecord = -1 // 行ごとの列数の揺れを許容する

	var raw []string
	column := 0
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Warn("CSV行の読み込みに失敗したためスキップします",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			continue
		}
		if len(record) == 0 {
			continue
		}

		if first {
			first = false
			if col, ok := headerColumn(record); ok {
				column = col
				continue // ヘッダー行はデータではない
			}
		}

		if column < len(record) {
			raw = append(raw, record[column])
		}
	}

	accounts, err := normalize(raw, logger)
	if err != nil {
		return nil, fmt.Errorf("名簿ファイルから有効なアカウントを読み込めませんでした: %s", path)
	}
	return accounts, nil
}

// headerColumn は先頭行から既知のヘッダー列を探す。
func headerColumn(record []string) (int, bool) {
	for i, cell := range record {
		name := strings.ToLower(strings.TrimSpace(cell))
		for _, header := range headerNames {
			if name == header {
				return i, true
			}
		}
	}
	return 0, false
}

// normalize はID一覧の検証・重複除去を行う。入力順は保たれる。
func normalize(raw []string, logger *slog.Logger) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	accounts := make([]string, 0, len(raw))

	for _, value := range raw {
		id := strings.TrimSpace(value)
		if id == "" {
			continue
		}
		if !accountIDPattern.MatchString(id) {
			logger.Warn("形式の不正なアカウントIDをスキップします",
				slog.String("account_id", id),
			)
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		accounts = append(accounts, id)
	}

	if len(accounts) == 0 {
		return nil, errors.New("有効なアカウントIDが1件もありません")
	}
	return accounts, nil
}

// stripBOM は先頭のBOMを取り除いたReaderを返す。
func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	c, _, err := br.ReadRune()
	if err != nil {
		return br
	}
	if c != '\uFEFF' {
		br.UnreadRune()
	}
	return br
}
