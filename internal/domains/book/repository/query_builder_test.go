package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-review-backend/internal/domains/book/model"
)

func listReq(mutate func(*model.ListBooksRequest)) model.ListBooksRequest {
	req := model.ListBooksRequest{
		Sort: model.DefaultSort(),
		Page: 0,
		Size: 20,
	}
	if mutate != nil {
		mutate(&req)
	}
	return req
}

// =====================================================
// TABLE ROUTING
// =====================================================

func TestTargetFor(t *testing.T) {
	assert.Equal(t, targetBooks, targetFor(listReq(nil)))

	genreID := int64(7)
	withGenre := listReq(func(r *model.ListBooksRequest) { r.GenreID = &genreID })
	assert.Equal(t, targetBookGenres, targetFor(withGenre))

	// A search term alone does not move the query off the books table.
	withSearch := listReq(func(r *model.ListBooksRequest) { r.Search = "dune" })
	assert.Equal(t, targetBooks, targetFor(withSearch))
}

// =====================================================
// SORT KEY EXPANSION
// =====================================================

func TestExpandSortKeys_DefaultSort(t *testing.T) {
	keys := expandSortKeys(model.DefaultSort(), targetBooks)

	require.Len(t, keys, 2)
	assert.Equal(t, sortKey{column: "average_rating", desc: true}, keys[0])
	assert.Equal(t, sortKey{column: "id"}, keys[1])
}

func TestExpandSortKeys_EmptySortFallsBackToDefault(t *testing.T) {
	keys := expandSortKeys(nil, targetBooks)

	require.Len(t, keys, 2)
	assert.Equal(t, "average_rating", keys[0].column)
	assert.True(t, keys[0].desc)
}

func TestExpandSortKeys_PublicationYearExpandsToTwoKeys(t *testing.T) {
	orders := []model.SortOrder{{Field: model.SortByPublicationYear, Direction: model.SortDesc}}
	keys := expandSortKeys(orders, targetBooks)

	require.Len(t, keys, 3)
	// The is-null flag always sorts ascending so absent years land last,
	// regardless of the requested year direction.
	assert.Equal(t, sortKey{column: "publication_year_is_null"}, keys[0])
	assert.Equal(t, sortKey{column: "publication_year", desc: true}, keys[1])
	assert.Equal(t, sortKey{column: "id"}, keys[2])

	orders[0].Direction = model.SortAsc
	keys = expandSortKeys(orders, targetBooks)
	assert.Equal(t, sortKey{column: "publication_year_is_null"}, keys[0])
	assert.Equal(t, sortKey{column: "publication_year"}, keys[1])
}

func TestExpandSortKeys_IDTieBreakUsesTargetColumn(t *testing.T) {
	orders := []model.SortOrder{{Field: model.SortByTitle, Direction: model.SortAsc}}

	keys := expandSortKeys(orders, targetBooks)
	assert.Equal(t, "id", keys[len(keys)-1].column)

	keys = expandSortKeys(orders, targetBookGenres)
	assert.Equal(t, "book_id", keys[len(keys)-1].column)
}

func TestExpandSortKeys_CreatedAtDegradesOnGenreIndex(t *testing.T) {
	orders := []model.SortOrder{{Field: model.SortByCreatedAt, Direction: model.SortAsc}}

	keys := expandSortKeys(orders, targetBooks)
	assert.Equal(t, sortKey{column: "created_at"}, keys[0])

	// The membership index has no copy of the book's created_at, so the
	// sort falls back to the default there.
	keys = expandSortKeys(orders, targetBookGenres)
	assert.Equal(t, sortKey{column: "average_rating", desc: true}, keys[0])
}

func TestOrderByClause(t *testing.T) {
	keys := []sortKey{
		{column: "title"},
		{column: "average_rating", desc: true},
		{column: "id"},
	}
	assert.Equal(t, "ORDER BY title ASC, average_rating DESC, id ASC", orderByClause(keys))
}

// =====================================================
// FILTERS
// =====================================================

func TestFilterConditions_BooksTable(t *testing.T) {
	conditions, args, next := filterConditions(listReq(nil), targetBooks, 1)

	assert.Equal(t, []string{"is_deleted = false"}, conditions)
	assert.Empty(t, args)
	assert.Equal(t, 1, next)
}

func TestFilterConditions_GenreAndSearch(t *testing.T) {
	genreID := int64(3)
	req := listReq(func(r *model.ListBooksRequest) {
		r.GenreID = &genreID
		r.Search = "war"
	})

	conditions, args, next := filterConditions(req, targetBookGenres, 1)

	require.Len(t, conditions, 3)
	assert.Equal(t, "is_deleted = false", conditions[0])
	assert.Equal(t, "genre_id = $1", conditions[1])
	assert.Equal(t, "title LIKE $2", conditions[2])
	assert.Equal(t, []interface{}{genreID, "war%"}, args)
	assert.Equal(t, 3, next)
}

func TestLikePrefix_EscapesMetacharacters(t *testing.T) {
	assert.Equal(t, `100\% true%`, likePrefix("100% true"))
	assert.Equal(t, `so\_so%`, likePrefix("so_so"))
	assert.Equal(t, `back\\slash%`, likePrefix(`back\slash`))
}

// =====================================================
// KEYSET PREDICATE
// =====================================================

func TestKeysetCondition_SingleKeyPlusID(t *testing.T) {
	keys := []sortKey{
		{column: "average_rating", desc: true},
		{column: "id"},
	}
	cursor := []interface{}{"4.50", int64(42)}

	cond, args, next := keysetCondition(keys, cursor, 1)

	assert.Equal(t,
		"((average_rating < $1) OR "+
			"(average_rating IS NOT DISTINCT FROM $2 AND id >= $3))",
		cond)
	assert.Equal(t, []interface{}{"4.50", "4.50", int64(42)}, args)
	assert.Equal(t, 4, next)
}

func TestKeysetCondition_AscendingUsesGreaterThan(t *testing.T) {
	keys := []sortKey{
		{column: "title"},
		{column: "id"},
	}
	cursor := []interface{}{"Dune", int64(7)}

	cond, _, _ := keysetCondition(keys, cursor, 1)

	assert.Equal(t,
		"((title > $1) OR "+
			"(title IS NOT DISTINCT FROM $2 AND id >= $3))",
		cond)
}

func TestKeysetCondition_PublicationYearThreeKeys(t *testing.T) {
	keys := []sortKey{
		{column: "publication_year_is_null"},
		{column: "publication_year", desc: true},
		{column: "id"},
	}
	cursor := []interface{}{false, 1999, int64(10)}

	cond, args, _ := keysetCondition(keys, cursor, 1)

	assert.Equal(t,
		"((publication_year_is_null > $1) OR "+
			"(publication_year_is_null IS NOT DISTINCT FROM $2 AND publication_year < $3) OR "+
			"(publication_year_is_null IS NOT DISTINCT FROM $4 AND publication_year IS NOT DISTINCT FROM $5 AND id >= $6))",
		cond)
	assert.Equal(t, []interface{}{false, false, 1999, false, 1999, int64(10)}, args)
}

func TestKeysetCondition_NullCursorYearStillMatchesTies(t *testing.T) {
	// A cursor row without a publication year carries NULL; the equality
	// arms must use null-safe comparison or the id disjunct could never
	// match rows tied with the cursor.
	keys := []sortKey{
		{column: "publication_year_is_null"},
		{column: "publication_year"},
		{column: "id"},
	}
	cursor := []interface{}{true, nil, int64(3)}

	cond, args, _ := keysetCondition(keys, cursor, 1)

	assert.Contains(t, cond, "publication_year IS NOT DISTINCT FROM $5 AND id >= $6")
	assert.Nil(t, args[4])
}

// =====================================================
// FULL QUERIES
// =====================================================

func TestBuildCursorQuery(t *testing.T) {
	req := listReq(func(r *model.ListBooksRequest) {
		r.Page = 2
		r.Size = 10
	})
	keys := expandSortKeys(req.Sort, targetBooks)

	query, args := buildCursorQuery(req, targetBooks, keys, req.Page*req.Size)

	assert.Equal(t,
		"SELECT average_rating, id FROM books WHERE is_deleted = false "+
			"ORDER BY average_rating DESC, id ASC OFFSET $1 LIMIT 1",
		query)
	assert.Equal(t, []interface{}{20}, args)
}

func TestBuildPageQuery_FirstPageHasNoKeysetPredicate(t *testing.T) {
	req := listReq(nil)
	keys := expandSortKeys(req.Sort, targetBooks)

	query, args := buildPageQuery(req, targetBooks, keys, nil, req.Size)

	assert.Equal(t,
		"SELECT id, title, average_rating, review_count, publication_year "+
			"FROM books WHERE is_deleted = false "+
			"ORDER BY average_rating DESC, id ASC LIMIT $1",
		query)
	assert.Equal(t, []interface{}{20}, args)
}

func TestBuildPageQuery_WithCursorOnGenreIndex(t *testing.T) {
	genreID := int64(5)
	req := listReq(func(r *model.ListBooksRequest) {
		r.GenreID = &genreID
		r.Sort = []model.SortOrder{{Field: model.SortByTitle, Direction: model.SortAsc}}
		r.Page = 1
		r.Size = 10
	})
	keys := expandSortKeys(req.Sort, targetBookGenres)
	cursor := []interface{}{"Moby Dick", int64(31)}

	query, args := buildPageQuery(req, targetBookGenres, keys, cursor, req.Size)

	assert.Equal(t,
		"SELECT book_id AS id, title, average_rating, review_count, publication_year "+
			"FROM book_genres WHERE is_deleted = false AND genre_id = $1 AND "+
			"((title > $2) OR (title IS NOT DISTINCT FROM $3 AND book_id >= $4)) "+
			"ORDER BY title ASC, book_id ASC LIMIT $5",
		query)
	assert.Equal(t, []interface{}{genreID, "Moby Dick", "Moby Dick", int64(31), 10}, args)
}

func TestBuildCountQuery(t *testing.T) {
	genreID := int64(9)
	req := listReq(func(r *model.ListBooksRequest) {
		r.GenreID = &genreID
		r.Search = "the"
	})

	query, args := buildCountQuery(req, targetBookGenres)

	assert.Equal(t,
		"SELECT COUNT(*) FROM book_genres WHERE is_deleted = false AND genre_id = $1 AND title LIKE $2",
		query)
	assert.Equal(t, []interface{}{genreID, "the%"}, args)
}
