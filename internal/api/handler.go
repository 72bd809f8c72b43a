// internal/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "nomad-directory/internal/common/errors"
	"nomad-directory/internal/common/logger"
	"nomad-directory/internal/common/validation"
	"nomad-directory/internal/models"
	"nomad-directory/internal/search/orchestrator"
	"nomad-directory/internal/search/sorting"
)

const (
	maxBodyBytes = 1 << 20
	readyTimeout = 2 * time.Second
)

// Searcher runs one search request.
type Searcher interface {
	Execute(ctx context.Context, input *orchestrator.Input) (*orchestrator.Output, error)
}

// Pinger reports whether the listing data source is reachable.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

type Handler struct {
	searcher  Searcher
	source    Pinger
	validator *validation.Validator
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(searcher Searcher, source Pinger, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"component": "http"})
	return &Handler{
		searcher:  searcher,
		source:    source,
		validator: validator,
		errors:    apperrors.NewErrorHandler(log),
		logger:    log,
	}
}

// Search handles POST /api/search.
func (h *Handler) Search(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		h.errors.HandleHTTPError(c, apperrors.NewValidationError("request body could not be read: "+err.Error()))
		return
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		body = []byte("{}")
	}

	if result := h.validator.ValidateBytes(body); !result.Valid {
		h.errors.HandleHTTPError(c, apperrors.NewValidationError(result.Summary()))
		return
	}

	var input orchestrator.Input
	if err := json.Unmarshal(body, &input); err != nil {
		h.errors.HandleHTTPError(c, apperrors.NewInvalidFilterFormatError(err))
		return
	}

	h.respond(c, &input)
}

// ListListings handles GET /api/listings, the query-string form of search.
func (h *Handler) ListListings(c *gin.Context) {
	input, err := parseListingQuery(c)
	if err != nil {
		h.errors.HandleHTTPError(c, err)
		return
	}
	h.respond(c, input)
}

func (h *Handler) respond(c *gin.Context, input *orchestrator.Input) {
	out, err := h.searcher.Execute(c.Request.Context(), input)
	if err != nil {
		h.errors.HandleHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// SortOptions handles GET /api/sort-options.
func (h *Handler) SortOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"options": sorting.Options()})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready pings the data source.
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	if err := h.source.Ping(ctx); err != nil {
		h.logger.Warn("readiness check failed", map[string]interface{}{
			"source": h.source.Name(),
			"error":  err.Error(),
		})
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"source": h.source.Name(),
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "source": h.source.Name()})
}

func parseListingQuery(c *gin.Context) (*orchestrator.Input, error) {
	input := &orchestrator.Input{Query: c.Query("q")}
	filters := &models.ListingFilters{
		Category: c.Query("category"),
		Location: c.Query("city"),
		EcoTags:  c.QueryArray("ecoTag"),
	}

	var err error
	if filters.MinRating, err = optionalFloat(c, "minRating"); err != nil {
		return nil, err
	}
	if v := c.Query("maxPrice"); v != "" {
		filters.MaxPriceRange = v
	}
	if !filters.IsEmpty() {
		input.Filters = filters
	}

	if input.Limit, err = optionalInt(c, "limit"); err != nil {
		return nil, err
	}
	if input.Page, err = optionalInt(c, "page"); err != nil {
		return nil, err
	}
	if raw, ok := c.GetQuery("offset"); ok {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperrors.NewValidationError("offset must be an integer")
		}
		input.Offset = &offset
	}

	if field := c.Query("sort"); field != "" {
		direction := models.SortDirection(c.Query("direction"))
		if direction == "" {
			direction = defaultDirection(models.SortField(field))
		}
		input.Sort = &models.SortOption{Field: models.SortField(field), Direction: direction}
	}

	lat, err := optionalFloat(c, "lat")
	if err != nil {
		return nil, err
	}
	lng, err := optionalFloat(c, "lng")
	if err != nil {
		return nil, err
	}
	switch {
	case lat != nil && lng != nil:
		if *lat < -90 || *lat > 90 || *lng < -180 || *lng > 180 {
			return nil, apperrors.NewValidationError("lat/lng out of range")
		}
		input.Origin = &models.Coordinates{Lat: *lat, Lng: *lng}
	case lat != nil || lng != nil:
		return nil, apperrors.NewValidationError("lat and lng must be given together")
	}

	return input, nil
}

// defaultDirection picks the first catalog direction for field, so ?sort=rating
// means "Highest rated".
func defaultDirection(field models.SortField) models.SortDirection {
	for _, opt := range sorting.Options() {
		if opt.Field == field {
			return opt.Direction
		}
	}
	return models.SortAsc
}

func optionalInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewValidationError(name + " must be an integer")
	}
	return v, nil
}

func optionalFloat(c *gin.Context, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.NewValidationError(name + " must be a number")
	}
	return &v, nil
}

var errNoRoute = errors.New("route not found")
