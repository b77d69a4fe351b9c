package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"book-review-backend/internal/shared/middleware"
	"book-review-backend/pkg/container"
)

// SetupRouter wires the HTTP surface: public catalog reads, authenticated
// review writes, admin catalog management.
func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	router.GET("/health", func(ctx *gin.Context) {
		status := http.StatusOK
		checks := gin.H{"database": "ok", "cache": "ok"}

		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if err := c.Cache.Ping(ctx.Request.Context()); err != nil {
			checks["cache"] = err.Error()
		}

		ctx.JSON(status, gin.H{
			"status":  http.StatusText(status),
			"version": c.Config.App.Version,
			"checks":  checks,
		})
	})

	v1 := router.Group("/api/v1")

	// Public catalog reads.
	v1.GET("/books", c.BookHandler.ListBooks)
	v1.GET("/books/:id", c.BookHandler.GetBook)
	v1.GET("/books/:id/reviews", c.ReviewHandler.ListBookReviews)
	v1.GET("/genres", c.GenreHandler.ListGenres)
	v1.GET("/genres/:id", c.GenreHandler.GetGenre)

	// Review writes require authentication.
	authed := v1.Group("")
	authed.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		authed.GET("/books/:id/reviews/me", c.ReviewHandler.GetMyReview)
		authed.POST("/reviews", c.ReviewHandler.SubmitReview)
		authed.PUT("/reviews/:id", c.ReviewHandler.UpdateReview)
		authed.DELETE("/reviews/:id", c.ReviewHandler.DeleteReview)
	}

	// Catalog management is admin only.
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(c.JWTManager), middleware.AdminMiddleware())
	{
		admin.POST("/books", c.BookHandler.CreateBook)
		admin.PUT("/books/:id", c.BookHandler.UpdateBook)
		admin.DELETE("/books/:id", c.BookHandler.DeleteBook)
		admin.POST("/books/:id/rating/rebuild", c.BookHandler.RebuildRating)

		admin.POST("/genres", c.GenreHandler.CreateGenre)
		admin.PUT("/genres/:id", c.GenreHandler.UpdateGenre)
		admin.DELETE("/genres/:id", c.GenreHandler.DeleteGenre)

		admin.POST("/genres/assignments", c.GenreHandler.AssignToBook)
		admin.DELETE("/genres/:id/books/:bookId", c.GenreHandler.RemoveFromBook)
	}

	return router
}
