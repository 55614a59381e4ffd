package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/praxede/cinepool/internal/model"
)

// PostgresAccountRepo はPostgreSQLを使用したアカウントブックマークリポジトリ。
type PostgresAccountRepo struct {
	db *sql.DB
}

// NewPostgresAccountRepo はPostgresAccountRepoを生成する。
func NewPostgresAccountRepo(db *sql.DB) *PostgresAccountRepo {
	return &PostgresAccountRepo{db: db}
}

// Upsert はブックマークをlast-write-winsで保存する。
func (r *PostgresAccountRepo) Upsert(ctx context.Context, bookmark *model.AccountBookmark) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_pool (user_id, username, last_page_scraped, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (user_id) DO UPDATE SET
		     username          = EXCLUDED.username,
		     last_page_scraped = EXCLUDED.last_page_scraped,
		     updated_at        = now()`,
		bookmark.AccountID, nullString(bookmark.DisplayName), bookmark.LastPage,
	)
	if err != nil {
		return fmt.Errorf("ブックマークの保存に失敗しました: %w", err)
	}

	return nil
}

// FindByID は指定アカウントのブックマークを取得する。見つからない場合はnilを返す。
func (r *PostgresAccountRepo) FindByID(ctx context.Context, accountID string) (*model.AccountBookmark, error) {
	bookmark := &model.AccountBookmark{}
	var username sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, username, last_page_scraped, created_at, updated_at
		 FROM user_pool WHERE user_id = $1`,
		accountID,
	).Scan(
		&bookmark.AccountID, &username, &bookmark.LastPage,
		&bookmark.CreatedAt, &bookmark.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ブックマークの取得に失敗しました: %w", err)
	}

	bookmark.DisplayName = nullStringValue(username)

	return bookmark, nil
}

var _ AccountRepository = (*PostgresAccountRepo)(nil)
