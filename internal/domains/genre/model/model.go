package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Genre is a catalog category. Membership lives in the book_genres index
// together with the denormalized book fields the listing path sorts and
// filters on.
type Genre struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Error codes
const (
	ErrCodeGenreNotFound   = "GENRE001"
	ErrCodeGenreNameExists = "GENRE002"
	ErrCodeAlreadyAssigned = "GENRE003"
)

var (
	ErrGenreNotFound   = errors.New("genre not found")
	ErrGenreNameExists = errors.New("a genre with this name already exists")
	ErrAlreadyAssigned = errors.New("book is already assigned to this genre")
)

const maxGenreNameLength = 100

type CreateGenreRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r CreateGenreRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, maxGenreNameLength)),
		validation.Field(&r.Description, validation.Length(0, 1000)),
	)
}

type UpdateGenreRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (r UpdateGenreRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(1, maxGenreNameLength)),
		validation.Field(&r.Description, validation.Length(0, 1000)),
	)
}

// AssignGenreRequest attaches a book to a genre.
type AssignGenreRequest struct {
	BookID  int64 `json:"book_id"`
	GenreID int64 `json:"genre_id"`
}

func (r AssignGenreRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BookID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.GenreID, validation.Required, validation.Min(int64(1))),
	)
}
