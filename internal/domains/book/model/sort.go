package model

import "strings"

// SortField names the caller-visible sort keys of the listing endpoint.
type SortField string

const (
	SortByTitle           SortField = "title"
	SortByAverageRating   SortField = "averageRating"
	SortByPublicationYear SortField = "publicationYear"
	SortByCreatedAt       SortField = "createdAt"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortOrder is one (field, direction) entry of a sort specification.
type SortOrder struct {
	Field     SortField
	Direction SortDirection
}

func (o SortOrder) Ascending() bool { return o.Direction != SortDesc }

// DefaultSort is average rating descending; the id tie-break is appended
// by the query builder, never by callers.
func DefaultSort() []SortOrder {
	return []SortOrder{{Field: SortByAverageRating, Direction: SortDesc}}
}

// ParseSortParams parses "field,direction" query values ("title,asc").
// A missing or unknown direction means ascending. Unknown field names are
// not an error: the whole specification degrades to the default sort, the
// same way an empty specification does.
func ParseSortParams(params []string) []SortOrder {
	var orders []SortOrder
	for _, p := range params {
		field, dir, _ := strings.Cut(p, ",")

		var order SortOrder
		switch SortField(strings.TrimSpace(field)) {
		case SortByTitle:
			order.Field = SortByTitle
		case SortByAverageRating:
			order.Field = SortByAverageRating
		case SortByPublicationYear:
			order.Field = SortByPublicationYear
		case SortByCreatedAt:
			order.Field = SortByCreatedAt
		default:
			return DefaultSort()
		}

		if strings.EqualFold(strings.TrimSpace(dir), string(SortDesc)) {
			order.Direction = SortDesc
		} else {
			order.Direction = SortAsc
		}
		orders = append(orders, order)
	}

	if len(orders) == 0 {
		return DefaultSort()
	}
	return orders
}
