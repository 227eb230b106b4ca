package models

import "time"

type Post struct {
	ID          int64     `db:"id" json:"id"`
	PhotoPath   string    `db:"photo_path" json:"photo_path"`
	Heading     string    `db:"heading" json:"heading"`
	Caption     string    `db:"caption" json:"caption"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	IsPublished bool      `db:"is_published" json:"is_published"`
}
