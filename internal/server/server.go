// Package server exposes the catalog resolver and favorites over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
	"github.com/Sternrassler/catalog-explorer/pkg/client"
	"github.com/Sternrassler/catalog-explorer/pkg/favorites"
	"github.com/Sternrassler/catalog-explorer/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// statusClientClosedRequest is reported when the caller went away mid-resolution.
const statusClientClosedRequest = 499

// Catalog is the read side the API serves. *resolver.Resolver implements it.
type Catalog interface {
	Resolve(ctx context.Context, d catalog.QueryDescriptor) (catalog.ResultPage, error)
	Detail(ctx context.Context, idOrName string) (*catalog.EntityDetail, error)
	Summaries(ctx context.Context, ids []int) ([]catalog.EntitySummary, error)
}

// TypeLister lists entity types. *client.Client implements it.
type TypeLister interface {
	ListTypes(ctx context.Context) ([]string, error)
}

// Server serves the catalog API over HTTP.
type Server struct {
	catalog   Catalog
	types     TypeLister
	favorites *favorites.Store
	logger    zerolog.Logger
}

// New creates a server backed by the resolver, the type lister and the favorites store.
func New(cat Catalog, types TypeLister, favs *favorites.Store, logger zerolog.Logger) *Server {
	return &Server{
		catalog:   cat,
		types:     types,
		favorites: favs,
		logger:    logger.With().Str("component", "http").Logger(),
	}
}

// SetupRouter builds the gin engine with all routes registered.
func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", s.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api/v1")
	api.GET("/pokemon", s.ListPokemon)
	api.GET("/pokemon/:idOrName", s.GetPokemon)
	api.GET("/types", s.ListTypes)
	api.GET("/favorites", s.ListFavorites)
	api.GET("/favorites/:id", s.GetFavorite)
	api.POST("/favorites/:id/toggle", s.ToggleFavorite)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Starting catalog API server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down catalog API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Health answers liveness checks.
func (s *Server) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// ListPokemon resolves a query descriptor taken from q, type, sort and page.
func (s *Server) ListPokemon(c *gin.Context) {
	d := catalog.QueryDescriptor{
		Text: c.Query("q"),
		Type: c.Query("type"),
		Sort: catalog.SortKey(c.Query("sort")),
	}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "page must be an integer"})
			return
		}
		d.Page = page
	}

	page, err := s.catalog.Resolve(c.Request.Context(), d)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetPokemon returns the detail record for an id or name.
func (s *Server) GetPokemon(c *gin.Context) {
	detail, err := s.catalog.Detail(c.Request.Context(), c.Param("idOrName"))
	if err != nil {
		if client.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// ListTypes returns the upstream type names.
func (s *Server) ListTypes(c *gin.Context) {
	types, err := s.types.ListTypes(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

// ListFavorites returns the favorite ids and their summaries.
func (s *Server) ListFavorites(c *gin.Context) {
	ids := s.favorites.List()
	items, err := s.catalog.Summaries(c.Request.Context(), ids)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ids": ids, "items": items})
}

// GetFavorite reports whether an id is a favorite.
func (s *Server) GetFavorite(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "favorite": s.favorites.IsFavorite(id)})
}

// ToggleFavorite flips an id in the favorites and persists the set.
func (s *Server) ToggleFavorite(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	favorite, err := s.favorites.Toggle(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, favorites.ErrInvalidID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.logger.Error().Err(err).Int("id", id).Msg("Failed to persist favorites")
		c.JSON(http.StatusInternalServerError, gin.H{"id": id, "favorite": favorite, "error": "Failed to save favorites"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "favorite": favorite})
}

func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return 0, false
	}
	return id, true
}

// writeError maps resolver and client errors onto HTTP responses.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case client.IsCancelled(err):
		c.AbortWithStatus(statusClientClosedRequest)
	case errors.Is(err, catalog.ErrInvalidDescriptor), errors.Is(err, client.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if _, ok := client.IsUpstream(err); ok {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "retryable": true})
			return
		}
		s.logger.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	}
}
