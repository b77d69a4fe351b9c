package model

import "time"

// Review is one user's verdict on one book. At most one row exists per
// (user, book) pair; submitting again mutates the existing row.
type Review struct {
	ID     int64 `json:"id" db:"id"`
	UserID int64 `json:"user_id" db:"user_id"`
	BookID int64 `json:"book_id" db:"book_id"`

	Rating  int    `json:"rating" db:"rating"`
	Comment string `json:"comment" db:"comment"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
