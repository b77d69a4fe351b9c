package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	bookModel "book-review-backend/internal/domains/book/model"
	"book-review-backend/internal/domains/genre/model"
)

// GenreRepository manages genres and the book membership index.
type GenreRepository interface {
	List(ctx context.Context) ([]model.Genre, error)
	GetByID(ctx context.Context, id int64) (*model.Genre, error)
	Create(ctx context.Context, genre *model.Genre) error
	Update(ctx context.Context, genre *model.Genre) error
	Delete(ctx context.Context, id int64) error

	AssignToBook(ctx context.Context, bookID, genreID, assignedBy int64) error
	RemoveFromBook(ctx context.Context, bookID, genreID int64) error
}

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================

type postgresGenreRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresGenreRepository(pool *pgxpool.Pool) GenreRepository {
	return &postgresGenreRepository{pool: pool}
}

func (r *postgresGenreRepository) List(ctx context.Context) ([]model.Genre, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, created_at FROM genres ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query genres: %w", err)
	}
	defer rows.Close()

	var genres []model.Genre
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query genres: %w", err)
	}

	return genres, nil
}

func (r *postgresGenreRepository) GetByID(ctx context.Context, id int64) (*model.Genre, error) {
	var g model.Genre
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, created_at FROM genres WHERE id = $1`, id,
	).Scan(&g.ID, &g.Name, &g.Description, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrGenreNotFound
		}
		return nil, fmt.Errorf("failed to get genre: %w", err)
	}
	return &g, nil
}

func (r *postgresGenreRepository) Create(ctx context.Context, genre *model.Genre) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO genres (name, description) VALUES ($1, $2) RETURNING id, created_at`,
		genre.Name, genre.Description,
	).Scan(&genre.ID, &genre.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrGenreNameExists
		}
		return fmt.Errorf("failed to create genre: %w", err)
	}
	return nil
}

func (r *postgresGenreRepository) Update(ctx context.Context, genre *model.Genre) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE genres SET name = $1, description = $2 WHERE id = $3`,
		genre.Name, genre.Description, genre.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrGenreNameExists
		}
		return fmt.Errorf("failed to update genre: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrGenreNotFound
	}
	return nil
}

// Delete removes a genre and, through the FK cascade, its membership
// index rows.
func (r *postgresGenreRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM genres WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete genre: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrGenreNotFound
	}
	return nil
}

// =====================================================
// MEMBERSHIP
// =====================================================

// AssignToBook inserts a membership index row, copying the denormalized
// book fields in the same statement so the shadow copy is exact at commit.
func (r *postgresGenreRepository) AssignToBook(ctx context.Context, bookID, genreID, assignedBy int64) error {
	query := `
		INSERT INTO book_genres (
			book_id, genre_id, title, is_deleted,
			average_rating, review_count,
			publication_year, publication_year_is_null,
			assigned_by
		)
		SELECT b.id, $2, b.title, b.is_deleted,
		       b.average_rating, b.review_count,
		       b.publication_year, b.publication_year_is_null,
		       $3
		FROM books b
		WHERE b.id = $1
		ON CONFLICT (book_id, genre_id) DO NOTHING
	`

	result, err := r.pool.Exec(ctx, query, bookID, genreID, assignedBy)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return model.ErrGenreNotFound
		}
		return fmt.Errorf("failed to assign genre: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Either the book does not exist or the pair is already present.
		var exists bool
		err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`, bookID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to assign genre: %w", err)
		}
		if !exists {
			return bookModel.ErrBookNotFound
		}
		return model.ErrAlreadyAssigned
	}

	return nil
}

func (r *postgresGenreRepository) RemoveFromBook(ctx context.Context, bookID, genreID int64) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM book_genres WHERE book_id = $1 AND genre_id = $2`,
		bookID, genreID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove genre assignment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrGenreNotFound
	}
	return nil
}
