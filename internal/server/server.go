package server

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/recipio/recipio/internal/recipe"
)

// Extractor is the URL-to-recipe pipeline as the HTTP layer sees it.
type Extractor interface {
	Extract(ctx context.Context, url string) (*recipe.Recipe, error)
}

// RecipeStore is the persistence collaborator. The HTTP layer only wraps it.
type RecipeStore interface {
	Insert(ctx context.Context, r *recipe.Recipe) (*recipe.Recipe, error)
	FindByID(ctx context.Context, id string) (*recipe.Recipe, error)
	FindByUserID(ctx context.Context, userID string) ([]*recipe.Recipe, error)
	Update(ctx context.Context, id string, fields map[string]any) (*recipe.Recipe, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Server exposes the extraction pipeline and recipe CRUD over HTTP.
type Server struct {
	Pipeline Extractor
	Store    RecipeStore
	// AuthToken is the opaque bearer token required by /api/extract-recipe.
	// Empty disables that endpoint's authentication.
	AuthToken string
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.POST("/parse", s.parse)
	r.GET("/recipes", s.listRecipes)
	r.GET("/recipes/:id", s.getRecipe)
	r.POST("/recipes/save", s.saveRecipe)

	api := r.Group("/api")
	api.GET("/health", s.health)
	api.POST("/extract-recipe", s.authRequired(), s.parse)
	api.GET("/recipes", s.listRecipes)
	api.POST("/recipes", s.saveRecipe)
	api.GET("/recipes/:id", s.getRecipe)
	api.PUT("/recipes/:id", s.updateRecipe)
	api.DELETE("/recipes/:id", s.deleteRecipe)

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request handled")
	}
}

// authRequired checks the opaque bearer token. Identity semantics live
// upstream; this only gates access.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.AuthToken == "" {
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token != s.AuthToken {
			c.AbortWithStatusJSON(401, gin.H{"detail": "unauthorized"})
			return
		}
		c.Next()
	}
}
