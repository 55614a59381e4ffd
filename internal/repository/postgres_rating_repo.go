package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/praxede/cinepool/internal/model"
)

// PostgresRatingRepo はPostgreSQLを使用した評価リポジトリ。
type PostgresRatingRepo struct {
	db *sql.DB
}

// NewPostgresRatingRepo はPostgresRatingRepoを生成する。
func NewPostgresRatingRepo(db *sql.DB) *PostgresRatingRepo {
	return &PostgresRatingRepo{db: db}
}

// UpsertBatch は評価行を1回のバッチ挿入で保存する。
// unnestで配列をほどいて1往復で挿入し、RETURNINGで新規挿入分の
// movie_idを回収する。既存ペアとの衝突はDO NOTHINGで無視される。
func (r *PostgresRatingRepo) UpsertBatch(ctx context.Context, rows []model.RatingRow) ([]string, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	userIDs := make([]string, len(rows))
	ratings := make([]int64, len(rows))
	likes := make([]bool, len(rows))
	movieIDs := make([]string, len(rows))
	for i, row := range rows {
		userIDs[i] = row.UserID
		ratings[i] = int64(row.Rating)
		likes[i] = row.Liked
		movieIDs[i] = row.MovieID
	}

	result, err := r.db.QueryContext(ctx,
		`INSERT INTO ratings (user_id, rating, liked, movie_id)
		 SELECT t.user_id, t.rating, t.liked, t.movie_id
		 FROM unnest($1::text[], $2::smallint[], $3::boolean[], $4::text[])
		      AS t(user_id, rating, liked, movie_id)
		 ON CONFLICT (user_id, movie_id) DO NOTHING
		 RETURNING movie_id`,
		pq.Array(userIDs), pq.Array(ratings), pq.Array(likes), pq.Array(movieIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("評価のバッチ挿入に失敗しました: %w", err)
	}
	defer result.Close()

	var inserted []string
	for result.Next() {
		var movieID string
		if err := result.Scan(&movieID); err != nil {
			return nil, fmt.Errorf("挿入結果の読み取りに失敗しました: %w", err)
		}
		inserted = append(inserted, movieID)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("挿入結果の走査に失敗しました: %w", err)
	}

	return inserted, nil
}

var _ RatingRepository = (*PostgresRatingRepo)(nil)
