package http

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/goosegrocer/backend/internal/domain"
	"github.com/goosegrocer/backend/internal/usecase"
)

// DealLister reads active flyer deals for the deals endpoint.
type DealLister interface {
	ActiveDeals(ctx context.Context, now time.Time) ([]domain.Product, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	comparisons *usecase.ComparisonService
	deals       *usecase.DealService
	catalog     domain.CatalogRepository
	dealLister  DealLister
}

// NewHandler creates a new HTTP handler
func NewHandler(comparisons *usecase.ComparisonService, deals *usecase.DealService, catalog domain.CatalogRepository, dealLister DealLister) *Handler {
	return &Handler{
		comparisons: comparisons,
		deals:       deals,
		catalog:     catalog,
		dealLister:  dealLister,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "goosegrocer-backend",
		"version": "1.0.0",
	})
}

type compareRequest struct {
	Input    string   `json:"input" binding:"required"`
	Mode     string   `json:"mode"`
	Servings int      `json:"servings"`
	Stores   []string `json:"stores"`
}

// Compare runs one price comparison request
func (h *Handler) Compare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "input is required"})
		return
	}

	mode := domain.InputMode(req.Mode)
	if mode == "" {
		mode = domain.ModeList
	}
	if mode != domain.ModeList && mode != domain.ModeMeal {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be 'list' or 'meal'"})
		return
	}

	stores := make([]domain.Store, 0, len(req.Stores))
	for _, s := range req.Stores {
		stores = append(stores, domain.Store(s))
	}

	report, err := h.comparisons.Compare(c.Request.Context(), req.Input, mode, req.Servings, stores)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

type ingestFlyerRequest struct {
	Store     string `json:"store" binding:"required"`
	Image     string `json:"image" binding:"required"`
	MediaType string `json:"mediaType"`
}

// IngestFlyer accepts a base64-encoded flyer image and writes the
// extracted deals into the catalog
func (h *Handler) IngestFlyer(c *gin.Context) {
	var req ingestFlyerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "store and image are required"})
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image must be base64 encoded"})
		return
	}

	mediaType := req.MediaType
	if mediaType == "" {
		mediaType = "image/png"
	}

	deals, err := h.deals.IngestFlyer(c.Request.Context(), image, mediaType, domain.Store(req.Store))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"store": req.Store,
		"count": len(deals),
		"deals": deals,
	})
}

// ListProducts returns catalog rows, optionally filtered by query and store
func (h *Handler) ListProducts(c *gin.Context) {
	query := c.Query("q")
	var store *domain.Store
	if s := c.Query("store"); s != "" {
		st := domain.Store(s)
		if !domain.ValidStore(st) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown store"})
			return
		}
		store = &st
	}

	var (
		products []domain.Product
		err      error
	)
	if query == "" && store == nil {
		products, err = h.catalog.GetAllProducts(c.Request.Context())
	} else {
		products, err = h.catalog.SearchProducts(c.Request.Context(), query, store)
	}
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(products), "products": products})
}

// ListDeals returns flyer deals still inside their validity window
func (h *Handler) ListDeals(c *gin.Context) {
	deals, err := h.dealLister.ActiveDeals(c.Request.Context(), time.Now())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(deals), "deals": deals})
}

// writeError maps domain errors to HTTP responses. Catalog unavailability
// is the one retryable hard failure; everything else degrades earlier in
// the pipeline.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request parameters"})
	case errors.Is(err, domain.ErrCatalogUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "catalog unavailable, please retry",
			"retry": true,
		})
	case errors.Is(err, domain.ErrAIUnavailable), errors.Is(err, domain.ErrNormalization):
		c.JSON(http.StatusBadGateway, gin.H{"error": "ai service failed to process the request"})
	default:
		zap.L().Error("unhandled request error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
