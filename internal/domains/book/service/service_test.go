package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-review-backend/internal/domains/book/model"
)

// =====================================================
// FAKES
// =====================================================

type fakeBookRepo struct {
	books map[int64]*model.Book

	listReq   *model.ListBooksRequest
	listItems []model.BookSummary
	listTotal int64

	getByIDCalls int
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{books: map[int64]*model.Book{}}
}

func (f *fakeBookRepo) List(ctx context.Context, req model.ListBooksRequest) ([]model.BookSummary, int64, error) {
	f.listReq = &req
	return f.listItems, f.listTotal, nil
}

func (f *fakeBookRepo) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	f.getByIDCalls++
	b, ok := f.books[id]
	if !ok {
		return nil, model.ErrBookNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookRepo) GetGenres(ctx context.Context, bookID int64) ([]model.GenreRef, error) {
	return []model.GenreRef{{ID: 1, Name: "Fiction"}}, nil
}

func (f *fakeBookRepo) GetRecentReviews(ctx context.Context, bookID int64, limit int) ([]model.ReviewHighlight, error) {
	return nil, nil
}

func (f *fakeBookRepo) Create(ctx context.Context, book *model.Book, genreIDs []int64, assignedBy int64) error {
	book.ID = int64(len(f.books) + 1)
	book.CreatedAt = time.Now()
	book.UpdatedAt = book.CreatedAt
	copied := *book
	f.books[book.ID] = &copied
	return nil
}

func (f *fakeBookRepo) Update(ctx context.Context, book *model.Book) error {
	if _, ok := f.books[book.ID]; !ok {
		return model.ErrBookNotFound
	}
	copied := *book
	f.books[book.ID] = &copied
	return nil
}

func (f *fakeBookRepo) SoftDelete(ctx context.Context, id int64) error {
	b, ok := f.books[id]
	if !ok || b.IsDeleted {
		return model.ErrBookNotFound
	}
	b.IsDeleted = true
	return nil
}

func (f *fakeBookRepo) GetByIDForUpdateTx(context.Context, pgx.Tx, int64) (*model.Book, error) {
	panic("not used")
}
func (f *fakeBookRepo) UpdateRatingTx(context.Context, pgx.Tx, int64, decimal.Decimal, int) error {
	panic("not used")
}
func (f *fakeBookRepo) GetActiveBookCount(context.Context) (int64, error) { panic("not used") }
func (f *fakeBookRepo) RefreshActiveBookCount(context.Context) error      { panic("not used") }
func (f *fakeBookRepo) RebuildRating(context.Context, int64) error        { panic("not used") }

type fakeCache struct {
	store   map[string][]byte
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: map[string][]byte{}}
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := f.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.store[key] = raw
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.store, k)
	}
	f.deleted = append(f.deleted, keys...)
	return nil
}

func (f *fakeCache) DeletePattern(ctx context.Context, pattern string) error { return nil }
func (f *fakeCache) Ping(ctx context.Context) error                          { return nil }

type fakeEnqueuer struct {
	countRefreshes int
	rebuilds       []int64
}

func (f *fakeEnqueuer) RefreshBookCounts(ctx context.Context) error {
	f.countRefreshes++
	return nil
}

func (f *fakeEnqueuer) RebuildBookRating(ctx context.Context, bookID int64) error {
	f.rebuilds = append(f.rebuilds, bookID)
	return nil
}

func newTestService() (BookService, *fakeBookRepo, *fakeCache, *fakeEnqueuer) {
	repo := newFakeBookRepo()
	c := newFakeCache()
	q := &fakeEnqueuer{}
	return NewBookService(repo, c, q), repo, c, q
}

// =====================================================
// LISTING
// =====================================================

func TestListBooks_AppliesDefaults(t *testing.T) {
	svc, repo, _, _ := newTestService()

	_, _, err := svc.ListBooks(context.Background(), model.ListBooksRequest{})
	require.NoError(t, err)

	require.NotNil(t, repo.listReq)
	assert.Equal(t, model.DefaultPageSize, repo.listReq.Size)
	assert.Equal(t, model.DefaultSort(), repo.listReq.Sort)
}

func TestListBooks_KeepsExplicitParameters(t *testing.T) {
	svc, repo, _, _ := newTestService()

	req := model.ListBooksRequest{
		Search: "dune",
		Sort:   []model.SortOrder{{Field: model.SortByTitle, Direction: model.SortAsc}},
		Page:   3,
		Size:   50,
	}
	_, _, err := svc.ListBooks(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, req, *repo.listReq)
}

func TestListBooks_RejectsOversizedPage(t *testing.T) {
	svc, repo, _, _ := newTestService()

	_, _, err := svc.ListBooks(context.Background(), model.ListBooksRequest{Size: model.MaxPageSize + 1})
	assert.Error(t, err)
	assert.Nil(t, repo.listReq)
}

// =====================================================
// DETAIL
// =====================================================

func TestGetBookDetail_CachesResult(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.books[1] = &model.Book{ID: 1, Title: "Dune", AverageRating: decimal.RequireFromString("4.50"), ReviewCount: 2}

	first, err := svc.GetBookDetail(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 1, repo.getByIDCalls)

	second, err := svc.GetBookDetail(context.Background(), 1)
	require.NoError(t, err)

	// Second read served from cache.
	assert.Equal(t, 1, repo.getByIDCalls)
	assert.Equal(t, first.Title, second.Title)
	assert.True(t, first.AverageRating.Equal(second.AverageRating))
}

func TestGetBookDetail_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.GetBookDetail(context.Background(), 404)
	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

// =====================================================
// MUTATIONS
// =====================================================

func TestCreateBook_SchedulesCountRefresh(t *testing.T) {
	svc, repo, _, q := newTestService()

	book, err := svc.CreateBook(context.Background(), model.CreateBookRequest{Title: "Dune"}, 1)
	require.NoError(t, err)

	assert.NotZero(t, book.ID)
	assert.Len(t, repo.books, 1)
	assert.Equal(t, 1, q.countRefreshes)
}

func TestCreateBook_RejectsEmptyTitle(t *testing.T) {
	svc, _, _, q := newTestService()

	_, err := svc.CreateBook(context.Background(), model.CreateBookRequest{}, 1)
	assert.Error(t, err)
	assert.Zero(t, q.countRefreshes)
}

func TestUpdateBook_ClearPublicationYear(t *testing.T) {
	svc, repo, _, _ := newTestService()
	year := 1965
	repo.books[1] = &model.Book{ID: 1, Title: "Dune", PublicationYear: &year}

	updated, err := svc.UpdateBook(context.Background(), 1, model.UpdateBookRequest{ClearPublicationYear: true})
	require.NoError(t, err)

	assert.Nil(t, updated.PublicationYear)
	assert.Nil(t, repo.books[1].PublicationYear)
}

func TestUpdateBook_InvalidatesDetailCache(t *testing.T) {
	svc, repo, c, _ := newTestService()
	repo.books[1] = &model.Book{ID: 1, Title: "Dune"}

	_, err := svc.GetBookDetail(context.Background(), 1)
	require.NoError(t, err)

	title := "Dune (revised)"
	_, err = svc.UpdateBook(context.Background(), 1, model.UpdateBookRequest{Title: &title})
	require.NoError(t, err)

	assert.Contains(t, c.deleted, model.DetailCacheKey(1))

	detail, err := svc.GetBookDetail(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, title, detail.Title)
}

func TestDeleteBook_SchedulesCountRefreshAndInvalidates(t *testing.T) {
	svc, repo, c, q := newTestService()
	repo.books[1] = &model.Book{ID: 1, Title: "Dune"}

	require.NoError(t, svc.DeleteBook(context.Background(), 1))

	assert.True(t, repo.books[1].IsDeleted)
	assert.Equal(t, 1, q.countRefreshes)
	assert.Contains(t, c.deleted, model.DetailCacheKey(1))
}

func TestDeleteBook_NotFound(t *testing.T) {
	svc, _, _, q := newTestService()

	err := svc.DeleteBook(context.Background(), 404)
	assert.ErrorIs(t, err, model.ErrBookNotFound)
	assert.Zero(t, q.countRefreshes)
}

func TestRebuildBookRating_SchedulesRecountAndInvalidates(t *testing.T) {
	svc, repo, c, q := newTestService()
	repo.books[7] = &model.Book{ID: 7, Title: "Dune"}

	require.NoError(t, svc.RebuildBookRating(context.Background(), 7))

	assert.Equal(t, []int64{7}, q.rebuilds)
	assert.Contains(t, c.deleted, model.DetailCacheKey(7))
}

func TestRebuildBookRating_NotFound(t *testing.T) {
	svc, _, _, q := newTestService()

	err := svc.RebuildBookRating(context.Background(), 404)
	assert.ErrorIs(t, err, model.ErrBookNotFound)
	assert.Empty(t, q.rebuilds)
}
