package repository

import (
	"fmt"
	"strings"

	"book-review-backend/internal/domains/book/model"
)

// queryTarget picks the cheapest table for the active filter combination:
// plain listings scan books directly, genre-filtered listings scan the
// denormalized membership index and never touch books at all.
type queryTarget int

const (
	targetBooks queryTarget = iota
	targetBookGenres
)

func targetFor(req model.ListBooksRequest) queryTarget {
	if req.GenreID != nil {
		return targetBookGenres
	}
	return targetBooks
}

func (t queryTarget) table() string {
	if t == targetBookGenres {
		return "book_genres"
	}
	return "books"
}

func (t queryTarget) idColumn() string {
	if t == targetBookGenres {
		return "book_id"
	}
	return "id"
}

// sortKey is one physical ORDER BY column after lowering the
// caller-visible sort specification onto the active table.
type sortKey struct {
	column string
	desc   bool
}

// expandSortKeys lowers sort orders to physical columns. publicationYear
// becomes two keys (the is-null flag ascending, then the year in the
// requested direction) so absent years always land after present ones.
// createdAt only exists on books; on the membership index, whose own
// created_at is the tagging time, it degrades to the default sort. The
// identity column is always appended ascending as the final tie-break.
func expandSortKeys(orders []model.SortOrder, target queryTarget) []sortKey {
	keys := make([]sortKey, 0, len(orders)*2+1)

	for _, o := range orders {
		switch o.Field {
		case model.SortByTitle:
			keys = append(keys, sortKey{column: "title", desc: !o.Ascending()})
		case model.SortByAverageRating:
			keys = append(keys, sortKey{column: "average_rating", desc: !o.Ascending()})
		case model.SortByPublicationYear:
			keys = append(keys,
				sortKey{column: "publication_year_is_null"},
				sortKey{column: "publication_year", desc: !o.Ascending()},
			)
		case model.SortByCreatedAt:
			if target == targetBookGenres {
				keys = append(keys, sortKey{column: "average_rating", desc: true})
			} else {
				keys = append(keys, sortKey{column: "created_at", desc: !o.Ascending()})
			}
		}
	}

	if len(keys) == 0 {
		keys = append(keys, sortKey{column: "average_rating", desc: true})
	}

	return append(keys, sortKey{column: target.idColumn()})
}

func orderByClause(keys []sortKey) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		dir := "ASC"
		if k.desc {
			dir = "DESC"
		}
		parts[i] = k.column + " " + dir
	}
	return "ORDER BY " + strings.Join(parts, ", ")
}

// filterConditions builds the WHERE conditions for the active table.
// Soft-deleted books are always excluded; on the membership index the
// denormalized is_deleted copy serves the same purpose without a join.
// The author filter is accepted upstream but contributes no predicate yet.
func filterConditions(req model.ListBooksRequest, target queryTarget, argIndex int) ([]string, []interface{}, int) {
	conditions := []string{"is_deleted = false"}
	args := []interface{}{}

	if target == targetBookGenres {
		conditions = append(conditions, fmt.Sprintf("genre_id = $%d", argIndex))
		args = append(args, *req.GenreID)
		argIndex++
	}

	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("title LIKE $%d", argIndex))
		args = append(args, likePrefix(req.Search))
		argIndex++
	}

	return conditions, args, argIndex
}

// likePrefix turns a search term into a starts-with LIKE pattern,
// escaping the pattern metacharacters in the term itself.
func likePrefix(term string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
	return escaped + "%"
}

// keysetCondition expresses "ordered no earlier than the cursor row" as a
// disjunction of conjunctions over the sort keys: for each key one
// disjunct fixes every earlier key with null-safe equality and compares
// the key itself strictly in its sort direction; the final disjunct pins
// all visible keys and takes id >= cursor id, so the cursor row itself is
// included. IS NOT DISTINCT FROM keeps the equality arms valid when the
// cursor carries a NULL publication year.
func keysetCondition(keys []sortKey, cursor []interface{}, argIndex int) (string, []interface{}, int) {
	var disjuncts []string
	var args []interface{}

	for i, key := range keys {
		var conjuncts []string

		for j := 0; j < i; j++ {
			conjuncts = append(conjuncts, fmt.Sprintf("%s IS NOT DISTINCT FROM $%d", keys[j].column, argIndex))
			args = append(args, cursor[j])
			argIndex++
		}

		op := ">"
		if key.desc {
			op = "<"
		}
		if i == len(keys)-1 {
			// id: unique, always ascending, inclusive.
			op = ">="
		}

		conjuncts = append(conjuncts, fmt.Sprintf("%s %s $%d", key.column, op, argIndex))
		args = append(args, cursor[i])
		argIndex++

		disjuncts = append(disjuncts, "("+strings.Join(conjuncts, " AND ")+")")
	}

	return "(" + strings.Join(disjuncts, " OR ") + ")", args, argIndex
}

// buildCursorQuery is pass one of the planner: a narrow row fetch of only
// the sort-key columns at OFFSET page*size, cheap because of its tiny row
// width even though the offset scan is still linear.
func buildCursorQuery(req model.ListBooksRequest, target queryTarget, keys []sortKey, offset int) (string, []interface{}) {
	columns := make([]string, len(keys))
	for i, k := range keys {
		columns[i] = k.column
	}

	conditions, args, argIndex := filterConditions(req, target, 1)

	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s %s OFFSET $%d LIMIT 1",
		strings.Join(columns, ", "),
		target.table(),
		strings.Join(conditions, " AND "),
		orderByClause(keys),
		argIndex,
	)
	args = append(args, offset)

	return query, args
}

// buildPageQuery is pass two: the full-width fetch constrained by the
// keyset predicate instead of a row offset. A nil cursor (first page)
// omits the predicate.
func buildPageQuery(req model.ListBooksRequest, target queryTarget, keys []sortKey, cursor []interface{}, limit int) (string, []interface{}) {
	selectList := "id, title, average_rating, review_count, publication_year"
	if target == targetBookGenres {
		selectList = "book_id AS id, title, average_rating, review_count, publication_year"
	}

	conditions, args, argIndex := filterConditions(req, target, 1)

	if cursor != nil {
		cond, cursorArgs, next := keysetCondition(keys, cursor, argIndex)
		conditions = append(conditions, cond)
		args = append(args, cursorArgs...)
		argIndex = next
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s %s LIMIT $%d",
		selectList,
		target.table(),
		strings.Join(conditions, " AND "),
		orderByClause(keys),
		argIndex,
	)
	args = append(args, limit)

	return query, args
}

// buildCountQuery counts the filtered population on the active table.
// Callers skip it entirely for unfiltered listings and read the
// precomputed counter instead.
func buildCountQuery(req model.ListBooksRequest, target queryTarget) (string, []interface{}) {
	conditions, args, _ := filterConditions(req, target, 1)

	query := fmt.Sprintf(
		"SELECT COUNT(*) FROM %s WHERE %s",
		target.table(),
		strings.Join(conditions, " AND "),
	)

	return query, args
}
