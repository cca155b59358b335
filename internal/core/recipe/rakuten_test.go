package recipe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kondate-planner/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRakuten(t *testing.T, handler http.HandlerFunc) *RakutenClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRakutenClient(config.RecipeProviderConfig{
		AppID:   "test-app",
		BaseURL: srv.URL,
		Hits:    10,
		Timeout: 2 * time.Second,
	})
}

func TestRakutenSearchByCategory(t *testing.T) {
	client := newTestRakuten(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, categoryRankingPath, r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "test-app", q.Get("applicationId"))
		assert.Equal(t, "10-277", q.Get("categoryId"))
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, rankingElements, q.Get("elements"))
		assert.Equal(t, "10", q.Get("hits"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":[
			{"recipeTitle":"鶏の照り焼き","recipeUrl":"https://recipe.rakuten.co.jp/recipe/1/","recipeMaterial":["鶏もも肉","醤油"],"recipeCost":"300円前後"},
			{"recipeTitle":"親子丼","recipeMaterial":["鶏肉","卵"]}
		]}`))
	})

	recipes, err := client.SearchByCategory(context.Background(), " 10-277 ")
	require.NoError(t, err)
	assert.Equal(t, []Candidate{
		{Title: "鶏の照り焼き", URL: "https://recipe.rakuten.co.jp/recipe/1/", Ingredients: []string{"鶏もも肉", "醤油"}, Cost: "300円前後"},
		{Title: "親子丼", Ingredients: []string{"鶏肉", "卵"}},
	}, recipes)
}

func TestRakutenNon2xxIsError(t *testing.T) {
	client := newTestRakuten(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"wrong_parameter"}`, http.StatusBadRequest)
	})

	_, err := client.SearchByCategory(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestRakutenInvalidBody(t *testing.T) {
	client := newTestRakuten(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	})

	_, err := client.SearchByCategory(context.Background(), "30")
	assert.Error(t, err)
}

func TestRakutenHonorsContext(t *testing.T) {
	client := newTestRakuten(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.SearchByCategory(ctx, "30")
	assert.Error(t, err)
}
