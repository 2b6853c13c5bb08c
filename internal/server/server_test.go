package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipio/recipio/internal/pipeline"
	"github.com/recipio/recipio/internal/recipe"
	"github.com/recipio/recipio/internal/store"
	"github.com/recipio/recipio/internal/webpage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeExtractor struct {
	rec *recipe.Recipe
	err error
}

func (f *fakeExtractor) Extract(_ context.Context, url string) (*recipe.Recipe, error) {
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.rec
	cp.SourceURL = url
	return &cp, nil
}

type fakeStore struct {
	byID map[string]*recipe.Recipe
}

func (f *fakeStore) Insert(_ context.Context, r *recipe.Recipe) (*recipe.Recipe, error) {
	cp := *r
	cp.ID = "abc123"
	return &cp, nil
}

func (f *fakeStore) FindByID(_ context.Context, id string) (*recipe.Recipe, error) {
	if r, ok := f.byID[id]; ok {
		return r, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) FindByUserID(_ context.Context, userID string) ([]*recipe.Recipe, error) {
	var out []*recipe.Recipe
	for _, r := range f.byID {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, id string, fields map[string]any) (*recipe.Recipe, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if title, ok := fields["title"].(string); ok {
		r.Title = title
	}
	return r, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

func testRecipe() *recipe.Recipe {
	r := &recipe.Recipe{Title: "Pasta", UserID: "u1", Ingredients: []string{"pasta"}, Steps: []string{"boil"}}
	recipe.ApplyDefaults(r)
	return r
}

func jsonDecode(resp *http.Response, v any) error {
	return json.NewDecoder(resp.Body).Decode(v)
}

func newTestServer(t *testing.T, s *Server) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return srv
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &Server{Pipeline: &fakeExtractor{rec: testRecipe()}, Store: &fakeStore{}})
	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestParse_Success(t *testing.T) {
	srv := newTestServer(t, &Server{Pipeline: &fakeExtractor{rec: testRecipe()}, Store: &fakeStore{}})
	resp, err := http.Post(srv.URL+"/parse", "application/json", strings.NewReader(`{"url":"https://example.com/r"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestParse_MissingURL(t *testing.T) {
	srv := newTestServer(t, &Server{Pipeline: &fakeExtractor{rec: testRecipe()}, Store: &fakeStore{}})
	resp, err := http.Post(srv.URL+"/parse", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestParse_PipelineFailure(t *testing.T) {
	srv := newTestServer(t, &Server{Pipeline: &fakeExtractor{err: errors.New("transcription failed")}, Store: &fakeStore{}})
	resp, err := http.Post(srv.URL+"/parse", "application/json", strings.NewReader(`{"url":"https://www.instagram.com/reel/x/"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

type failingWeb struct{}

func (failingWeb) Extract(context.Context, string) (*webpage.Content, error) {
	return nil, errors.New("connection refused")
}

type staticRecipes struct{}

func (staticRecipes) Extract(context.Context, string) (*recipe.Recipe, error) {
	return testRecipe(), nil
}

// A web-page fetch that dies with a network error still answers HTTP 200
// with a placeholder record pointing back at the input URL.
func TestParse_WebFailureStillSucceeds(t *testing.T) {
	p := &pipeline.Pipeline{Web: failingWeb{}, Recipes: staticRecipes{}}
	srv := newTestServer(t, &Server{Pipeline: p, Store: &fakeStore{}})

	resp, err := http.Post(srv.URL+"/parse", "application/json", strings.NewReader(`{"url":"https://down.example/recipe"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rec recipe.Recipe
	require.NoError(t, jsonDecode(resp, &rec))
	assert.Equal(t, pipeline.PlaceholderTitle, rec.Title)
	assert.Equal(t, "https://down.example/recipe", rec.SourceURL)
	assert.Empty(t, rec.Ingredients)
}

func TestRecipes_CRUD(t *testing.T) {
	st := &fakeStore{byID: map[string]*recipe.Recipe{"r1": testRecipe()}}
	srv := newTestServer(t, &Server{Pipeline: &fakeExtractor{rec: testRecipe()}, Store: st})

	resp, err := http.Get(srv.URL + "/recipes?user_id=u1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/recipes")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "user_id is required")

	resp, err = http.Get(srv.URL + "/recipes/r1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/recipes/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/recipes/save", "application/json", strings.NewReader(`{"title":"Soup","user_id":"u1"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/recipes/r1", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestExtractRecipe_AuthRequired(t *testing.T) {
	s := &Server{Pipeline: &fakeExtractor{rec: testRecipe()}, Store: &fakeStore{}, AuthToken: "secret"}
	srv := newTestServer(t, s)

	resp, err := http.Post(srv.URL+"/api/extract-recipe", "application/json", strings.NewReader(`{"url":"https://example.com"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/extract-recipe", strings.NewReader(`{"url":"https://example.com"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
