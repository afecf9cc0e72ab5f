package model

import "time"

// NewsPost はデモ用 newsPosts テーブルの行。
type NewsPost struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Text        string    `db:"text" json:"text"`
	CreatedDate time.Time `db:"created_date" json:"created_date"`
}

// Video はデモ用 videos テーブルの行。
type Video struct {
	ID       int64  `db:"id" json:"id"`
	Title    string `db:"title" json:"title"`
	Views    int64  `db:"views" json:"views"`
	Category string `db:"category" json:"category"`
}

// CategoryViews はカテゴリ別の再生数合計。
type CategoryViews struct {
	Category   string `db:"category" json:"category"`
	TotalViews int64  `db:"total_views" json:"total_views"`
}
