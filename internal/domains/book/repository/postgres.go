package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"book-review-backend/internal/domains/book/model"
	"book-review-backend/pkg/database"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================

type postgresBookRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresBookRepository(pool *pgxpool.Pool) BookRepository {
	return &postgresBookRepository{pool: pool}
}

// =====================================================
// LIST (two-pass keyset pagination)
// =====================================================

type listResult struct {
	items []model.BookSummary
	total int64
}

// List resolves the page in two passes inside one repeatable-read
// read-only transaction, so the cursor located in pass one and the rows
// fetched in pass two come from the same snapshot. Pass one scans only
// the sort-key columns at the requested offset; pass two fetches full
// rows bounded by the keyset predicate with no offset at all.
func (r *postgresBookRepository) List(ctx context.Context, req model.ListBooksRequest) ([]model.BookSummary, int64, error) {
	target := targetFor(req)
	keys := expandSortKeys(req.Sort, target)

	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

	result, err := database.WithTransactionResultOpts(ctx, r.pool, opts, func(tx pgx.Tx) (listResult, error) {
		return r.listInTx(ctx, tx, req, target, keys)
	})
	if err != nil {
		return nil, 0, err
	}

	return result.items, result.total, nil
}

// listInTx is the body of List, carved out so the orchestration can run
// against any transaction.
func (r *postgresBookRepository) listInTx(ctx context.Context, tx pgx.Tx, req model.ListBooksRequest, target queryTarget, keys []sortKey) (listResult, error) {
	total, err := r.countMatching(ctx, tx, req, target)
	if err != nil {
		return listResult{}, err
	}

	var cursor []interface{}
	if req.Page > 0 {
		cursor, err = r.locateCursor(ctx, tx, req, target, keys)
		if err != nil {
			return listResult{}, err
		}
		// Offset past the last row: the page is empty, not an error.
		if cursor == nil {
			return listResult{items: []model.BookSummary{}, total: total}, nil
		}
	}

	items, err := r.fetchPage(ctx, tx, req, target, keys, cursor)
	if err != nil {
		return listResult{}, err
	}

	return listResult{items: items, total: total}, nil
}

// locateCursor runs the narrow pass-one query and returns the sort-key
// values of the first row of the page, or nil when the offset overshoots
// the result set. The raw driver values are handed back verbatim as
// arguments of the pass-two predicate.
func (r *postgresBookRepository) locateCursor(ctx context.Context, tx pgx.Tx, req model.ListBooksRequest, target queryTarget, keys []sortKey) ([]interface{}, error) {
	query, args := buildCursorQuery(req, target, keys, req.Page*req.Size)

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("cursor query failed: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("cursor query failed: %w", err)
		}
		return nil, nil
	}

	values, err := rows.Values()
	if err != nil {
		return nil, fmt.Errorf("failed to read cursor row: %w", err)
	}

	return values, nil
}

func (r *postgresBookRepository) fetchPage(ctx context.Context, tx pgx.Tx, req model.ListBooksRequest, target queryTarget, keys []sortKey, cursor []interface{}) ([]model.BookSummary, error) {
	query, args := buildPageQuery(req, target, keys, cursor, req.Size)

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("page query failed: %w", err)
	}
	defer rows.Close()

	items := make([]model.BookSummary, 0, req.Size)
	for rows.Next() {
		var item model.BookSummary
		if err := rows.Scan(&item.ID, &item.Title, &item.AverageRating, &item.ReviewCount, &item.PublicationYear); err != nil {
			return nil, fmt.Errorf("failed to scan book row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("page query failed: %w", err)
	}

	return items, nil
}

// countMatching returns the total for the listing metadata. Unfiltered
// listings read the precomputed counter; a live count is the fallback
// when the counter row has not been seeded yet.
func (r *postgresBookRepository) countMatching(ctx context.Context, tx pgx.Tx, req model.ListBooksRequest, target queryTarget) (int64, error) {
	if !req.HasFilters() {
		var total int64
		err := tx.QueryRow(ctx,
			`SELECT current_count FROM book_counts WHERE count_name = $1`,
			model.CountActiveBooks,
		).Scan(&total)
		if err == nil {
			return total, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("failed to read book count: %w", err)
		}
	}

	query, args := buildCountQuery(req, target)

	var total int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count query failed: %w", err)
	}

	return total, nil
}

// =====================================================
// READ
// =====================================================

const bookColumns = `id, title, isbn, publication_year, publication_year_is_null,
		average_rating, review_count, is_deleted, created_at, updated_at`

func scanBook(row pgx.Row) (*model.Book, error) {
	var b model.Book
	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.ISBN,
		&b.PublicationYear,
		&b.PublicationYearIsNull,
		&b.AverageRating,
		&b.ReviewCount,
		&b.IsDeleted,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to scan book: %w", err)
	}
	return &b, nil
}

func (r *postgresBookRepository) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books
		WHERE id = $1 AND is_deleted = false
	`
	return scanBook(r.pool.QueryRow(ctx, query, id))
}

func (r *postgresBookRepository) GetGenres(ctx context.Context, bookID int64) ([]model.GenreRef, error) {
	query := `
		SELECT g.id, g.name
		FROM book_genres bg
		JOIN genres g ON g.id = bg.genre_id
		WHERE bg.book_id = $1
		ORDER BY g.name ASC
	`

	rows, err := r.pool.Query(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to query book genres: %w", err)
	}
	defer rows.Close()

	var genres []model.GenreRef
	for rows.Next() {
		var g model.GenreRef
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query book genres: %w", err)
	}

	return genres, nil
}

func (r *postgresBookRepository) GetRecentReviews(ctx context.Context, bookID int64, limit int) ([]model.ReviewHighlight, error) {
	query := `
		SELECT id, user_id, rating, comment, created_at
		FROM reviews
		WHERE book_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, bookID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent reviews: %w", err)
	}
	defer rows.Close()

	var reviews []model.ReviewHighlight
	for rows.Next() {
		var rv model.ReviewHighlight
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query recent reviews: %w", err)
	}

	return reviews, nil
}

// =====================================================
// WRITE
// =====================================================

func (r *postgresBookRepository) Create(ctx context.Context, book *model.Book, genreIDs []int64, assignedBy int64) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		book.PublicationYearIsNull = book.PublicationYear == nil

		query := `
			INSERT INTO books (title, isbn, publication_year, publication_year_is_null)
			VALUES ($1, $2, $3, $4)
			RETURNING id, average_rating, review_count, created_at, updated_at
		`

		err := tx.QueryRow(ctx, query,
			book.Title, book.ISBN, book.PublicationYear, book.PublicationYearIsNull,
		).Scan(&book.ID, &book.AverageRating, &book.ReviewCount, &book.CreatedAt, &book.UpdatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return model.ErrISBNExists
			}
			return fmt.Errorf("failed to create book: %w", err)
		}

		for _, genreID := range genreIDs {
			if err := insertMembershipTx(ctx, tx, book, genreID, assignedBy); err != nil {
				return err
			}
		}

		return nil
	})
}

// insertMembershipTx creates one membership index row with the shadow
// fields copied from the book.
func insertMembershipTx(ctx context.Context, tx pgx.Tx, book *model.Book, genreID, assignedBy int64) error {
	query := `
		INSERT INTO book_genres (
			book_id, genre_id, title, is_deleted,
			average_rating, review_count,
			publication_year, publication_year_is_null,
			assigned_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (book_id, genre_id) DO NOTHING
	`

	_, err := tx.Exec(ctx, query,
		book.ID, genreID, book.Title, book.IsDeleted,
		book.AverageRating, book.ReviewCount,
		book.PublicationYear, book.PublicationYearIsNull,
		assignedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return model.ErrGenreNotFound
		}
		return fmt.Errorf("failed to assign genre %d: %w", genreID, err)
	}

	return nil
}

// Update rewrites the mutable book fields and refreshes every membership
// index row in the same transaction, keeping the shadow copies exact at
// commit.
func (r *postgresBookRepository) Update(ctx context.Context, book *model.Book) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		book.PublicationYearIsNull = book.PublicationYear == nil

		query := `
			UPDATE books
			SET title = $1, isbn = $2,
			    publication_year = $3, publication_year_is_null = $4,
			    updated_at = NOW()
			WHERE id = $5 AND is_deleted = false
		`

		result, err := tx.Exec(ctx, query,
			book.Title, book.ISBN, book.PublicationYear, book.PublicationYearIsNull, book.ID,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return model.ErrISBNExists
			}
			return fmt.Errorf("failed to update book: %w", err)
		}
		if result.RowsAffected() == 0 {
			return model.ErrBookNotFound
		}

		_, err = tx.Exec(ctx, `
			UPDATE book_genres
			SET title = $1, publication_year = $2, publication_year_is_null = $3
			WHERE book_id = $4
		`, book.Title, book.PublicationYear, book.PublicationYearIsNull, book.ID)
		if err != nil {
			return fmt.Errorf("failed to refresh genre index: %w", err)
		}

		return nil
	})
}

func (r *postgresBookRepository) SoftDelete(ctx context.Context, id int64) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			UPDATE books
			SET is_deleted = true, updated_at = NOW()
			WHERE id = $1 AND is_deleted = false
		`, id)
		if err != nil {
			return fmt.Errorf("failed to delete book: %w", err)
		}
		if result.RowsAffected() == 0 {
			return model.ErrBookNotFound
		}

		_, err = tx.Exec(ctx,
			`UPDATE book_genres SET is_deleted = true WHERE book_id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to refresh genre index: %w", err)
		}

		return nil
	})
}

// =====================================================
// RATING AGGREGATE
// =====================================================

func (r *postgresBookRepository) GetByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books
		WHERE id = $1 AND is_deleted = false
		FOR UPDATE
	`
	return scanBook(tx.QueryRow(ctx, query, id))
}

func (r *postgresBookRepository) UpdateRatingTx(ctx context.Context, tx pgx.Tx, bookID int64, avg decimal.Decimal, count int) error {
	result, err := tx.Exec(ctx, `
		UPDATE books
		SET average_rating = $1, review_count = $2, updated_at = NOW()
		WHERE id = $3
	`, avg, count, bookID)
	if err != nil {
		return fmt.Errorf("failed to update rating: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}

	_, err = tx.Exec(ctx, `
		UPDATE book_genres
		SET average_rating = $1, review_count = $2
		WHERE book_id = $3
	`, avg, count, bookID)
	if err != nil {
		return fmt.Errorf("failed to refresh genre index: %w", err)
	}

	return nil
}

// =====================================================
// COUNTERS AND REPAIR
// =====================================================

func (r *postgresBookRepository) GetActiveBookCount(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT current_count FROM book_counts WHERE count_name = $1`,
		model.CountActiveBooks,
	).Scan(&total)
	if err == nil {
		return total, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to read book count: %w", err)
	}

	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM books WHERE is_deleted = false`,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count query failed: %w", err)
	}

	return total, nil
}

// RefreshActiveBookCount recomputes the precomputed counter. Called from
// the worker on a schedule and after create/delete, never from the
// listing path.
func (r *postgresBookRepository) RefreshActiveBookCount(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO book_counts (count_name, current_count)
		SELECT $1, COUNT(*) FROM books WHERE is_deleted = false
		ON CONFLICT (count_name) DO UPDATE SET current_count = EXCLUDED.current_count
	`, model.CountActiveBooks)
	if err != nil {
		return fmt.Errorf("failed to refresh book count: %w", err)
	}
	return nil
}

// RebuildRating recomputes a book's aggregate from the full review set.
// The incremental path keeps aggregates exact on its own; this is the
// repair tool for data touched outside the service.
func (r *postgresBookRepository) RebuildRating(ctx context.Context, bookID int64) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := r.GetByIDForUpdateTx(ctx, tx, bookID); err != nil {
			return err
		}

		var count int
		var avg decimal.Decimal
		err := tx.QueryRow(ctx, `
			SELECT COUNT(*), COALESCE(AVG(rating), 0)
			FROM reviews
			WHERE book_id = $1
		`, bookID).Scan(&count, &avg)
		if err != nil {
			return fmt.Errorf("failed to recompute rating: %w", err)
		}

		return r.UpdateRatingTx(ctx, tx, bookID, avg.Round(2), count)
	})
}
