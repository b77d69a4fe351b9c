package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	bookModel "book-review-backend/internal/domains/book/model"
	"book-review-backend/internal/domains/genre/model"
	"book-review-backend/internal/domains/genre/service"
	"book-review-backend/internal/shared/middleware"
	"book-review-backend/internal/shared/response"
)

// =====================================================
// GENRE HANDLER
// =====================================================

type GenreHandler struct {
	genreService service.GenreService
}

func NewGenreHandler(genreService service.GenreService) *GenreHandler {
	return &GenreHandler{genreService: genreService}
}

func mapGenreError(c *gin.Context, err error) {
	var validationErrs validation.Errors
	switch {
	case errors.As(err, &validationErrs):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request", validationErrs)
	case errors.Is(err, model.ErrGenreNotFound):
		response.ErrorResponse(c, http.StatusNotFound, model.ErrCodeGenreNotFound, err.Error())
	case errors.Is(err, model.ErrGenreNameExists):
		response.ErrorResponse(c, http.StatusConflict, model.ErrCodeGenreNameExists, err.Error())
	case errors.Is(err, model.ErrAlreadyAssigned):
		response.ErrorResponse(c, http.StatusConflict, model.ErrCodeAlreadyAssigned, err.Error())
	case errors.Is(err, bookModel.ErrBookNotFound):
		response.NotFound(c, err.Error())
	default:
		response.Unexpected(c, err)
	}
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// ListGenres lists all genres.
// GET /api/v1/genres
func (h *GenreHandler) ListGenres(c *gin.Context) {
	genres, err := h.genreService.ListGenres(c.Request.Context())
	if err != nil {
		mapGenreError(c, err)
		return
	}
	response.Success(c, http.StatusOK, genres)
}

// GetGenre returns one genre.
// GET /api/v1/genres/:id
func (h *GenreHandler) GetGenre(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	genre, err := h.genreService.GetGenre(c.Request.Context(), id)
	if err != nil {
		mapGenreError(c, err)
		return
	}
	response.Success(c, http.StatusOK, genre)
}

// CreateGenre creates a genre.
// POST /api/v1/admin/genres
func (h *GenreHandler) CreateGenre(c *gin.Context) {
	var req model.CreateGenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	genre, err := h.genreService.CreateGenre(c.Request.Context(), req)
	if err != nil {
		mapGenreError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, genre)
}

// UpdateGenre renames a genre or edits its description.
// PUT /api/v1/admin/genres/:id
func (h *GenreHandler) UpdateGenre(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateGenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	genre, err := h.genreService.UpdateGenre(c.Request.Context(), id, req)
	if err != nil {
		mapGenreError(c, err)
		return
	}
	response.Success(c, http.StatusOK, genre)
}

// DeleteGenre removes a genre and its book assignments.
// DELETE /api/v1/admin/genres/:id
func (h *GenreHandler) DeleteGenre(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.genreService.DeleteGenre(c.Request.Context(), id); err != nil {
		mapGenreError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// AssignToBook attaches a book to a genre.
// POST /api/v1/admin/genres/assignments
func (h *GenreHandler) AssignToBook(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.AssignGenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.genreService.AssignToBook(c.Request.Context(), req, userID); err != nil {
		mapGenreError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"assigned": true})
}

// RemoveFromBook detaches a book from a genre.
// DELETE /api/v1/admin/genres/:id/books/:bookId
func (h *GenreHandler) RemoveFromBook(c *gin.Context) {
	genreID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	if err := h.genreService.RemoveFromBook(c.Request.Context(), bookID, genreID); err != nil {
		mapGenreError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": true})
}
