package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	bookModel "book-review-backend/internal/domains/book/model"
	"book-review-backend/internal/domains/review/model"
	"book-review-backend/internal/domains/review/service"
	"book-review-backend/internal/shared/middleware"
	"book-review-backend/internal/shared/response"
)

// =====================================================
// REVIEW HANDLER
// =====================================================

type ReviewHandler struct {
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

func mapReviewError(c *gin.Context, err error) {
	var validationErrs validation.Errors
	switch {
	case errors.As(err, &validationErrs):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request", validationErrs)
	case errors.Is(err, model.ErrReviewNotFound):
		response.ErrorResponse(c, http.StatusNotFound, model.ErrCodeReviewNotFound, err.Error())
	case errors.Is(err, model.ErrNotReviewOwner):
		response.ErrorResponse(c, http.StatusForbidden, model.ErrCodeNotReviewOwner, err.Error())
	case errors.Is(err, bookModel.ErrBookNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, bookModel.ErrInvariantViolation):
		// A bug signal, not a client problem. Log loudly and hide the
		// detail behind a generic 500.
		log.Error().Err(err).Msg("rating aggregate invariant violation")
		response.ErrorResponse(c, http.StatusInternalServerError, bookModel.ErrCodeInvariantViolation, "internal error")
	default:
		response.Unexpected(c, err)
	}
}

// SubmitReview creates the caller's review of a book, or replaces it when
// one already exists.
// POST /api/v1/reviews
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	review, err := h.reviewService.SubmitReview(c.Request.Context(), userID, req)
	if err != nil {
		mapReviewError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, review)
}

// UpdateReview edits the caller's review.
// PUT /api/v1/reviews/:id
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	reviewID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || reviewID <= 0 {
		response.BadRequest(c, "invalid review ID")
		return
	}

	var req model.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), userID, reviewID, req)
	if err != nil {
		mapReviewError(c, err)
		return
	}

	response.Success(c, http.StatusOK, review)
}

// DeleteReview removes a review; admins may remove anyone's.
// DELETE /api/v1/reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	reviewID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || reviewID <= 0 {
		response.BadRequest(c, "invalid review ID")
		return
	}

	isAdmin := c.GetString("role") == "admin"

	if err := h.reviewService.DeleteReview(c.Request.Context(), userID, reviewID, isAdmin); err != nil {
		mapReviewError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GetMyReview returns the caller's review of a book.
// GET /api/v1/books/:id/reviews/me
func (h *ReviewHandler) GetMyReview(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	bookID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || bookID <= 0 {
		response.BadRequest(c, "invalid book ID")
		return
	}

	review, err := h.reviewService.GetUserReview(c.Request.Context(), userID, bookID)
	if err != nil {
		mapReviewError(c, err)
		return
	}

	response.Success(c, http.StatusOK, review)
}

// ListBookReviews pages through a book's reviews, newest first.
// GET /api/v1/books/:id/reviews
func (h *ReviewHandler) ListBookReviews(c *gin.Context) {
	bookID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || bookID <= 0 {
		response.BadRequest(c, "invalid book ID")
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

	req := model.ListReviewsRequest{BookID: bookID, Page: page, Size: size}

	reviews, total, err := h.reviewService.ListBookReviews(c.Request.Context(), req)
	if err != nil {
		mapReviewError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, reviews, &response.Meta{
		Page:  page,
		Size:  size,
		Total: total,
	})
}
