package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/recipio/recipio/internal/recipe"
	"github.com/recipio/recipio/internal/store"
)

type urlInput struct {
	URL string `json:"url" binding:"required"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parse runs the extraction pipeline for one URL. Propagated pipeline
// failures surface as 400 with a descriptive message; masked web failures
// already arrive as a usable placeholder record.
func (s *Server) parse(c *gin.Context) {
	var in urlInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "url is required"})
		return
	}
	rec, err := s.Pipeline.Extract(c.Request.Context(), in.URL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) listRecipes(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "user_id is required"})
		return
	}
	recs, err := s.Store.FindByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (s *Server) getRecipe(c *gin.Context) {
	rec, err := s.Store.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "recipe not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) saveRecipe(c *gin.Context) {
	var rec recipe.Recipe
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid recipe payload"})
		return
	}
	recipe.ApplyDefaults(&rec)
	saved, err := s.Store.Insert(c.Request.Context(), &rec)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (s *Server) updateRecipe(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid update payload"})
		return
	}
	rec, err := s.Store.Update(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "recipe not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) deleteRecipe(c *gin.Context) {
	deleted, err := s.Store.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"detail": "recipe not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
