// Package server exposes the catalog over HTTP with gin.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"storefront/catalog/internal/domain"
	"storefront/catalog/internal/repository"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Catalog is implemented by *service.CatalogService.
type Catalog interface {
	ListItems(ctx context.Context, filter domain.Filter) ([]domain.Item, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetItem(ctx context.Context, id int64) (*domain.Item, error)
	Ping(ctx context.Context) error
}

type CatalogHandler struct {
	catalog Catalog
}

func NewCatalogHandler(catalog Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/categories", h.ListCategories)
	router.GET("/items", h.ListItems)
	router.GET("/items/:id", h.GetItem)
	router.GET("/ping", h.Ping)
}

// ListItems handles GET /items?category=&search=
func (h *CatalogHandler) ListItems(c *gin.Context) {
	filter := domain.Filter{
		Category: strings.TrimSpace(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("search")),
	}

	items, err := h.catalog.ListItems(c.Request.Context(), filter)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to list items")
		return
	}

	c.JSON(http.StatusOK, domain.ItemList{Items: items, Count: len(items)})
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to list categories")
		return
	}

	c.JSON(http.StatusOK, domain.CategoryList{Categories: categories, Count: len(categories)})
}

func (h *CatalogHandler) GetItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		errorResponse(c, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.catalog.GetItem(c.Request.Context(), id)
	switch {
	case errors.Is(err, repository.ErrItemNotFound):
		errorResponse(c, http.StatusNotFound, "item not found")
		return
	case err != nil:
		log.Errorf("❌ Failed to get item %d: %v", id, err)
		errorResponse(c, http.StatusInternalServerError, "failed to get item")
		return
	}

	c.JSON(http.StatusOK, item)
}

// Ping answers 503 when the database cannot be reached.
func (h *CatalogHandler) Ping(c *gin.Context) {
	if err := h.catalog.Ping(c.Request.Context()); err != nil {
		log.Warnf("⚠️ Ping failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, domain.PingStatus{
			Status:    "error",
			Message:   err.Error(),
			Connected: false,
		})
		return
	}

	c.JSON(http.StatusOK, domain.PingStatus{
		Status:    "success",
		Message:   "database connection OK",
		Connected: true,
	})
}

func errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
