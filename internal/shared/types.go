package shared

// Task types routed through asynq.
const (
	TypeRefreshBookCounts = "book:refresh_counts"
	TypeRebuildBookRating = "book:rebuild_rating"
)

// Queue names.
const (
	QueueBook    = "book"
	QueueDefault = "default"
)
