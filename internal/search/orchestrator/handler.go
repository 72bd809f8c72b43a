// internal/search/orchestrator/handler.go
package orchestrator

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	apperrors "nomad-directory/internal/common/errors"
	"nomad-directory/internal/common/logger"
	"nomad-directory/internal/common/metrics"
	"nomad-directory/internal/models"
	"nomad-directory/internal/search/combinator"
	"nomad-directory/internal/search/pagination"
	"nomad-directory/internal/search/sorting"
)

const (
	ComponentName = "search-orchestrator"

	slowSearchThreshold = 500 * time.Millisecond
)

var ErrNilInput = errors.New("input cannot be nil")

type Handler struct {
	config   *Config
	source   CandidateSource
	logger   logger.Logger
	tracer   trace.Tracer
	recorder Recorder
}

type Option func(*Handler)

func WithTracer(t trace.Tracer) Option {
	return func(h *Handler) {
		if t != nil {
			h.tracer = t
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(h *Handler) { h.recorder = r }
}

func NewHandler(config *Config, source CandidateSource, log logger.Logger, opts ...Option) *Handler {
	h := &Handler{
		config: config.withDefaults(),
		source: source,
		logger: log.WithFields(map[string]interface{}{"component": ComponentName}),
		tracer: noop.NewTracerProvider().Tracer(ComponentName),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type searchPlan struct {
	query  string
	page   int
	limit  int
	offset int
	sort   *models.SortOption
}

// Execute runs fetch, text match, filter, sort and paginate for one request.
// Fetch failures are reported once and never retried.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()
	ctx, span := h.tracer.Start(ctx, "search.execute")
	defer span.End()

	out, matched, err := h.execute(ctx, input)
	outcome := outcomeOf(err)

	metrics.SearchRequests.WithLabelValues(outcome).Inc()
	if h.recorder != nil {
		h.recorder.RecordSearch(ctx, outcome, time.Since(start), matched)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		fields := map[string]interface{}{"outcome": outcome, "error": err.Error()}
		if apperrors.IsValidation(err) {
			h.logger.Warn("search rejected", fields)
		} else {
			h.logger.Error("search failed", fields)
		}
		return nil, err
	}

	duration := time.Since(start)
	metrics.SearchMatchedListings.Observe(float64(matched))
	span.SetAttributes(attribute.Int("search.matched", matched))
	h.logger.Info("search completed", map[string]interface{}{
		"matched":    matched,
		"returned":   len(out.Results),
		"page":       out.Pagination.Page,
		"limit":      out.Pagination.Limit,
		"durationMs": duration.Milliseconds(),
	})
	if duration > slowSearchThreshold {
		h.logger.Warn("search exceeded latency threshold", map[string]interface{}{
			"durationMs": duration.Milliseconds(),
		})
	}
	return out, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, int, error) {
	if input == nil {
		return nil, 0, apperrors.NewValidationError(ErrNilInput.Error())
	}

	p, err := h.plan(input)
	if err != nil {
		return nil, 0, err
	}

	candidates, err := h.fetch(ctx, input)
	if err != nil {
		return nil, 0, err
	}

	results := h.match(ctx, candidates, p.query, input)

	if p.sort != nil {
		stageDone := h.stage(ctx, "sort")
		sorting.Sort(results, *p.sort)
		stageDone()
	}

	var out Output
	if input.Offset != nil {
		out = pagination.AssembleOffset(results, p.offset, p.limit)
	} else {
		out = pagination.Assemble(results, p.page, p.limit)
	}
	return &out, len(results), nil
}

// plan validates everything that does not need data, so bad requests never
// reach the data source.
func (h *Handler) plan(input *Input) (*searchPlan, error) {
	p := &searchPlan{page: input.Page, limit: input.Limit}

	if p.page < 1 {
		p.page = 1
	}
	switch {
	case p.limit < 0:
		return nil, apperrors.NewInvalidPaginationError("limit must not be negative")
	case p.limit == 0:
		p.limit = h.config.DefaultLimit
	case p.limit > h.config.MaxLimit:
		p.limit = h.config.MaxLimit
	}
	if input.Offset != nil {
		if *input.Offset < 0 {
			return nil, apperrors.NewInvalidPaginationError("offset must not be negative")
		}
		p.offset = *input.Offset
	}

	if err := models.ValidateFilters(input.Filters); err != nil {
		return nil, apperrors.NewInvalidFilterFormatError(err)
	}

	p.query = normalizeQuery(input.Query)
	if p.query == "" && input.Filters != nil {
		p.query = normalizeQuery(input.Filters.SearchQuery)
	}

	switch {
	case input.Sort != nil:
		opt, err := sorting.Lookup(input.Sort.Field, input.Sort.Direction)
		if err != nil {
			return nil, err
		}
		p.sort = &opt
	case p.query != "":
		opt, _ := sorting.Lookup(models.SortRelevance, models.SortDesc)
		p.sort = &opt
	}
	return p, nil
}

func (h *Handler) fetch(ctx context.Context, input *Input) ([]models.Listing, error) {
	stageDone := h.stage(ctx, "fetch")
	defer stageDone()

	fetchCtx, cancel := context.WithTimeout(ctx, h.config.FetchTimeout)
	defer cancel()

	query := models.CandidateQuery{Limit: h.config.CandidateLimit}
	if input.Filters != nil {
		query.Category = input.Filters.Category
	}

	source := h.source.Name()
	listings, err := h.source.FetchCandidates(fetchCtx, query)
	if err != nil {
		metrics.CandidateFetches.WithLabelValues(source, "error").Inc()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
			return nil, apperrors.NewUpstreamTimeoutError(source, h.config.FetchTimeout)
		}
		if _, ok := apperrors.AsStandardError(err); ok {
			return nil, err
		}
		return nil, apperrors.NewUpstreamFetchFailedError(source, err)
	}
	metrics.CandidateFetches.WithLabelValues(source, "success").Inc()

	if query.Limit > 0 && len(listings) >= query.Limit {
		metrics.CandidateTruncations.WithLabelValues(source).Inc()
		h.logger.Warn("candidate limit reached, results may be incomplete", map[string]interface{}{
			"source":          source,
			"candidate_limit": query.Limit,
		})
	}

	h.logger.Debug("candidates fetched", map[string]interface{}{
		"source": source,
		"count":  len(listings),
	})
	return listings, nil
}

// match applies the free-text query and the structured filters, and attaches
// the per-request ranking keys.
func (h *Handler) match(ctx context.Context, candidates []models.Listing, query string, input *Input) []models.SearchResult {
	stageDone := h.stage(ctx, "filter")
	defer stageDone()

	results := make([]models.SearchResult, 0, len(candidates))
	for i := range candidates {
		listing := &candidates[i]

		var relevance *float64
		if query != "" {
			score, ok := textScore(listing, query)
			if !ok {
				continue
			}
			relevance = &score
		}
		if !combinator.MatchesFilters(listing, input.Filters) {
			continue
		}

		result := models.SearchResult{Listing: *listing, Relevance: relevance}
		if input.Origin != nil && listing.Coordinates != nil {
			d := distanceKm(*input.Origin, *listing.Coordinates)
			result.DistanceKm = &d
		}
		results = append(results, result)
	}
	return results
}

func (h *Handler) stage(ctx context.Context, name string) func() {
	start := time.Now()
	_, span := h.tracer.Start(ctx, "search."+name)
	return func() {
		metrics.SearchStageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		span.End()
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	if apperrors.IsValidation(err) {
		return "validation_error"
	}
	if apperrors.IsCode(err, apperrors.ErrCodeUpstreamTimeout) {
		return "timeout"
	}
	return "upstream_error"
}
