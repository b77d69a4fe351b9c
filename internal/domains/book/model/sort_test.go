package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSortParams_Empty(t *testing.T) {
	assert.Equal(t, DefaultSort(), ParseSortParams(nil))
	assert.Equal(t, DefaultSort(), ParseSortParams([]string{}))
}

func TestParseSortParams_SingleField(t *testing.T) {
	orders := ParseSortParams([]string{"title,asc"})

	require.Len(t, orders, 1)
	assert.Equal(t, SortByTitle, orders[0].Field)
	assert.Equal(t, SortAsc, orders[0].Direction)
}

func TestParseSortParams_MissingDirectionDefaultsToAscending(t *testing.T) {
	orders := ParseSortParams([]string{"publicationYear"})

	require.Len(t, orders, 1)
	assert.Equal(t, SortByPublicationYear, orders[0].Field)
	assert.True(t, orders[0].Ascending())
}

func TestParseSortParams_MultiKey(t *testing.T) {
	orders := ParseSortParams([]string{"averageRating,desc", "title,asc"})

	require.Len(t, orders, 2)
	assert.Equal(t, SortByAverageRating, orders[0].Field)
	assert.Equal(t, SortDesc, orders[0].Direction)
	assert.Equal(t, SortByTitle, orders[1].Field)
}

func TestParseSortParams_UnknownFieldDegradesWholeSpec(t *testing.T) {
	// One bad field poisons the whole specification, same as sending
	// nothing; partial application would silently reorder results.
	orders := ParseSortParams([]string{"title,asc", "price,desc"})
	assert.Equal(t, DefaultSort(), orders)
}

func TestParseSortParams_UnknownDirectionMeansAscending(t *testing.T) {
	orders := ParseSortParams([]string{"title,sideways"})

	require.Len(t, orders, 1)
	assert.True(t, orders[0].Ascending())
}

func TestDefaultSort(t *testing.T) {
	orders := DefaultSort()

	require.Len(t, orders, 1)
	assert.Equal(t, SortByAverageRating, orders[0].Field)
	assert.Equal(t, SortDesc, orders[0].Direction)
}

func TestListBooksRequestValidate(t *testing.T) {
	valid := ListBooksRequest{Size: 20}
	assert.NoError(t, valid.Validate())

	negativePage := ListBooksRequest{Page: -1, Size: 20}
	assert.Error(t, negativePage.Validate())

	oversized := ListBooksRequest{Size: MaxPageSize + 1}
	assert.Error(t, oversized.Validate())

	zeroSize := ListBooksRequest{}
	assert.Error(t, zeroSize.Validate())
}

func TestListBooksRequestHasFilters(t *testing.T) {
	assert.False(t, ListBooksRequest{Size: 20}.HasFilters())

	genreID := int64(1)
	assert.True(t, ListBooksRequest{Size: 20, GenreID: &genreID}.HasFilters())
	assert.True(t, ListBooksRequest{Size: 20, Search: "dune"}.HasFilters())

	authorID := int64(2)
	assert.True(t, ListBooksRequest{Size: 20, AuthorID: &authorID}.HasFilters())
}
