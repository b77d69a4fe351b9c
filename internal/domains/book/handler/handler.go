package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"book-review-backend/internal/domains/book/model"
	"book-review-backend/internal/domains/book/service"
	"book-review-backend/internal/shared/middleware"
	"book-review-backend/internal/shared/response"
)

// =====================================================
// BOOK HANDLER
// =====================================================

type BookHandler struct {
	bookService service.BookService
}

func NewBookHandler(bookService service.BookService) *BookHandler {
	return &BookHandler{bookService: bookService}
}

// =====================================================
// HELPERS
// =====================================================

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid book ID")
		return 0, false
	}
	return id, true
}

func parseOptionalInt64(c *gin.Context, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		response.BadRequest(c, "invalid "+name+" parameter")
		return nil, false
	}
	return &v, true
}

func mapBookError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrBookNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, model.ErrGenreNotFound):
		response.ErrorResponse(c, http.StatusBadRequest, model.ErrCodeGenreNotFound, err.Error())
	case errors.Is(err, model.ErrISBNExists):
		response.ErrorResponse(c, http.StatusConflict, model.ErrCodeISBNExists, err.Error())
	default:
		response.Unexpected(c, err)
	}
}

// =====================================================
// PUBLIC ENDPOINTS
// =====================================================

// ListBooks lists catalog entries with filters, multi-key sort and
// pagination.
// GET /api/v1/books?genre_id=&author_id=&search=&sort=field,dir&page=&size=
func (h *BookHandler) ListBooks(c *gin.Context) {
	genreID, ok := parseOptionalInt64(c, "genre_id")
	if !ok {
		return
	}
	authorID, ok := parseOptionalInt64(c, "author_id")
	if !ok {
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		response.BadRequest(c, "invalid page parameter")
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(model.DefaultPageSize)))
	if err != nil || size < 1 {
		response.BadRequest(c, "invalid size parameter")
		return
	}

	req := model.ListBooksRequest{
		GenreID:  genreID,
		AuthorID: authorID,
		Search:   c.Query("search"),
		Sort:     model.ParseSortParams(c.QueryArray("sort")),
		Page:     page,
		Size:     size,
	}

	books, total, err := h.bookService.ListBooks(c.Request.Context(), req)
	if err != nil {
		var validationErrs validation.Errors
		if errors.As(err, &validationErrs) {
			response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request", validationErrs)
			return
		}
		mapBookError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, books, &response.Meta{
		Page:  req.Page,
		Size:  req.Size,
		Total: total,
	})
}

// GetBook returns the detail payload for one book.
// GET /api/v1/books/:id
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	detail, err := h.bookService.GetBookDetail(c.Request.Context(), id)
	if err != nil {
		mapBookError(c, err)
		return
	}

	response.Success(c, http.StatusOK, detail)
}

// =====================================================
// ADMIN ENDPOINTS
// =====================================================

// CreateBook creates a catalog entry.
// POST /api/v1/admin/books
func (h *BookHandler) CreateBook(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	book, err := h.bookService.CreateBook(c.Request.Context(), req, userID)
	if err != nil {
		var validationErrs validation.Errors
		if errors.As(err, &validationErrs) {
			response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request", validationErrs)
			return
		}
		mapBookError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, book)
}

// UpdateBook mutates title, ISBN or publication year.
// PUT /api/v1/admin/books/:id
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req model.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	book, err := h.bookService.UpdateBook(c.Request.Context(), id, req)
	if err != nil {
		var validationErrs validation.Errors
		if errors.As(err, &validationErrs) {
			response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request", validationErrs)
			return
		}
		mapBookError(c, err)
		return
	}

	response.Success(c, http.StatusOK, book)
}

// RebuildRating queues a recount of a book's rating aggregate from its
// review rows, the repair path when the stored aggregate is suspect.
// POST /api/v1/admin/books/:id/rating/rebuild
func (h *BookHandler) RebuildRating(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.bookService.RebuildBookRating(c.Request.Context(), id); err != nil {
		mapBookError(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"scheduled": true})
}

// DeleteBook soft-deletes a book; it disappears from listings and detail
// reads but its reviews stay on record.
// DELETE /api/v1/admin/books/:id
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.bookService.DeleteBook(c.Request.Context(), id); err != nil {
		mapBookError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
