package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/praxede/cinepool/internal/model"
)

// PostgresMovieRepo はPostgreSQLを使用した映画カタログリポジトリ。
type PostgresMovieRepo struct {
	db *sql.DB
}

// NewPostgresMovieRepo はPostgresMovieRepoを生成する。
func NewPostgresMovieRepo(db *sql.DB) *PostgresMovieRepo {
	return &PostgresMovieRepo{db: db}
}

// UpsertBatch はカタログ行を1回のバッチでマージする。
// ON CONFLICT DO UPDATEは同一ステートメント内の重複movie_idを許さないため、
// 呼び出し側が事前に行をマージしていることが前提となる。
func (r *PostgresMovieRepo) UpsertBatch(ctx context.Context, rows []model.MovieRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	movieIDs := make([]string, len(rows))
	titles := make([]sql.NullString, len(rows))
	posters := make([]sql.NullString, len(rows))
	years := make([]sql.NullInt64, len(rows))
	amounts := make([]int64, len(rows))
	for i, row := range rows {
		movieIDs[i] = row.MovieID
		titles[i] = nullString(row.Title)
		posters[i] = nullString(row.PosterLink)
		years[i] = nullInt(row.Year)
		amounts[i] = int64(row.RatingAmount)
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO movies (movie_id, title, poster_link, release_year, rating_amount)
		 SELECT t.movie_id, t.title, t.poster_link, t.release_year, t.rating_amount
		 FROM unnest($1::text[], $2::text[], $3::text[], $4::integer[], $5::integer[])
		      AS t(movie_id, title, poster_link, release_year, rating_amount)
		 ON CONFLICT (movie_id) DO UPDATE SET
		     rating_amount = movies.rating_amount + EXCLUDED.rating_amount,
		     title         = COALESCE(movies.title, EXCLUDED.title),
		     poster_link   = COALESCE(movies.poster_link, EXCLUDED.poster_link),
		     release_year  = COALESCE(movies.release_year, EXCLUDED.release_year)`,
		pq.Array(movieIDs), pq.Array(titles), pq.Array(posters), pq.Array(years), pq.Array(amounts),
	)
	if err != nil {
		return 0, fmt.Errorf("カタログのバッチマージに失敗しました: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("マージ行数の取得に失敗しました: %w", err)
	}

	return int(affected), nil
}

// nullString は空文字列をNULLへ変換する。
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullStringValue はsql.NullStringから文字列を取得する。
func nullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// nullInt は0をNULLへ変換する。公開年の0は「未取得」を意味する。
func nullInt(v int) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(v), Valid: true}
}

var _ MovieRepository = (*PostgresMovieRepo)(nil)
