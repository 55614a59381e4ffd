package letterboxd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mmcdole/gofeed"
)

// LatestActivity はアカウントのRSSフィードから最新アクティビティの時刻を返す。
// フィードにエントリがない場合は(nil, nil)を返す。
// 走査をスキップできるかの事前判定に使うもので、結果はあくまで参考値として扱う。
func (c *Client) LatestActivity(ctx context.Context, accountID string) (*time.Time, error) {
	feedURL := c.FeedURL(accountID)

	resp, err := c.get(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	parser := gofeed.NewParser()
	feed, err := parser.Parse(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("フィードの解析に失敗しました: %w", err)
	}

	var latest *time.Time
	for _, item := range feed.Items {
		published := item.PublishedParsed
		if published == nil {
			published = item.UpdatedParsed
		}
		if published == nil {
			continue
		}
		if latest == nil || published.After(*latest) {
			t := *published
			latest = &t
		}
	}

	return latest, nil
}
