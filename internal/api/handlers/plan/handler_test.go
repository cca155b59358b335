package plan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"kondate-planner/internal/api/middleware"
	planModel "kondate-planner/internal/core/plan"
	"kondate-planner/internal/core/planner"
	"kondate-planner/internal/core/presenter"
	"kondate-planner/internal/core/queue"
	"kondate-planner/internal/core/session"
	"kondate-planner/internal/core/store"
	"kondate-planner/internal/infrastructure/config"
	"kondate-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	mu     sync.Mutex
	calls  []planner.Request
	result *planner.Result
	err    error
}

func (f *fakeGenerator) Generate(_ context.Context, req planner.Request) (*planner.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if req.OnProgress != nil {
		req.OnProgress(planner.StageDone, 100)
	}
	return f.result, f.err
}

func (f *fakeGenerator) last(t *testing.T) planner.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.calls)
	return f.calls[len(f.calls)-1]
}

func samplePlan() planModel.MealPlan {
	return planModel.MealPlan{Days: []planModel.DayPlan{
		{Date: "2024-03-01", Meals: []planModel.SlotEntry{
			{Slot: "朝食", Entry: planModel.DailyMealEntry{Recipe: "1.目玉焼き", Reason: "簡単", Materials: "卵", URL: "https://example.com/1", Calories: "300kcal"}},
			{Slot: "夕食", Entry: planModel.DailyMealEntry{Recipe: "2.肉じゃが", Reason: "定番", Materials: "じゃがいも, 牛肉", URL: "https://example.com/2"}},
		}},
	}}
}

func sampleResult() *planner.Result {
	return &planner.Result{
		Plan:    samplePlan(),
		Summary: planModel.MaterialsSummary{"卵 2個"},
		Debug:   planner.DebugInfo{CategoryIDs: "30,31", RecipeCount: 2},
	}
}

type testEnv struct {
	engine   *gin.Engine
	gen      *fakeGenerator
	registry *session.Registry
	saveDir  string
}

func newEnv(t *testing.T, q Submitter) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	saveDir := t.TempDir()
	cfg := &config.Config{
		Planner: config.PlannerConfig{
			MealTypes:   []string{"朝食", "昼食", "夕食"},
			RiceRatio:   50,
			BreadRatio:  25,
			NoodleRatio: 25,
		},
		Storage: config.StorageConfig{SaveDir: saveDir},
	}

	gen := &fakeGenerator{result: sampleResult()}
	h := NewHandler(gen, q, cfg)
	h.now = func() time.Time { return time.Date(2024, 3, 1, 15, 4, 5, 0, time.Local) }

	registry := session.NewRegistry(10, time.Hour)
	r := gin.New()
	r.GET("/help", Help)
	g := r.Group("", middleware.Session(registry))
	g.POST("/plans/generate", h.Generate)
	g.GET("/plans/current", h.Current)
	g.DELETE("/plans/current", h.Reset)
	g.POST("/plans/load", h.Load)
	g.POST("/plans/save", h.Save)
	g.GET("/plans/report", h.Report)
	g.GET("/view", h.View)
	g.POST("/view/grid", h.ShowGrid)
	g.POST("/view/detail", h.ShowDetail)

	return &testEnv{engine: r, gen: gen, registry: registry, saveDir: saveDir}
}

func (e *testEnv) do(method, path, sessionID, contentType string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if sessionID != "" {
		req.Header.Set(middleware.SessionHeader, sessionID)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) postJSON(path, sessionID, body string) *httptest.ResponseRecorder {
	return e.do(http.MethodPost, path, sessionID, "application/json", []byte(body))
}

func (e *testEnv) state(t *testing.T, id string) *session.State {
	st, ok := e.registry.Get(id)
	require.True(t, ok)
	return st
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestGenerateStoresPlanInSession(t *testing.T) {
	env := newEnv(t, nil)

	w := env.postJSON("/plans/generate", "", `{"request":"和食中心","start_date":"2024-03-04","meal_types":["朝食","夕食"],"ratios":{"rice":80,"bread":10,"noodle":10}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	id := w.Header().Get(middleware.SessionHeader)
	require.NotEmpty(t, id)

	var resp GenerateResponse
	decode(t, w, &resp)
	assert.Equal(t, id, resp.SessionID)
	assert.Equal(t, samplePlan(), resp.MealPlan)
	assert.Equal(t, "30,31", resp.Debug.CategoryIDs)
	assert.Equal(t, presenter.PageGrid, resp.Page.Kind)

	req := env.gen.last(t)
	assert.Equal(t, "和食中心", req.UserRequest)
	assert.Equal(t, []string{"朝食", "夕食"}, req.MealTypes)
	assert.Equal(t, planner.Ratios{Rice: 80, Bread: 10, Noodle: 10}, req.Ratios)
	assert.Equal(t, "2024-03-04", req.StartDate.Format(dateLayout))

	snap := env.state(t, id).Snapshot()
	assert.True(t, snap.HasPlan)
	require.NotNil(t, snap.Debug)
	assert.Equal(t, 2, snap.Debug.RecipeCount)
}

func TestGenerateAppliesDefaults(t *testing.T) {
	env := newEnv(t, nil)

	w := env.postJSON("/plans/generate", "", `{"request":"簡単なもの"}`)
	require.Equal(t, http.StatusOK, w.Code)

	req := env.gen.last(t)
	assert.Equal(t, []string{"朝食", "昼食", "夕食"}, req.MealTypes)
	assert.Equal(t, planner.Ratios{Rice: 50, Bread: 25, Noodle: 25}, req.Ratios)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local), req.StartDate)
}

func TestGenerateKeepsExplicitEmptyMealTypes(t *testing.T) {
	env := newEnv(t, nil)

	w := env.postJSON("/plans/generate", "", `{"request":"簡単なもの","meal_types":[]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, env.gen.last(t).MealTypes)
}

func TestGenerateRejectsBadInput(t *testing.T) {
	env := newEnv(t, nil)

	w := env.postJSON("/plans/generate", "", `{"request":"和食","start_date":"03/04/2024"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "YYYY-MM-DD")

	w = env.postJSON("/plans/generate", "", `{"request":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), common.ErrCodeInvalidRequest)

	assert.Empty(t, env.gen.calls)
}

func TestGenerateNoRecipesRecordsDebugAndKeepsPlan(t *testing.T) {
	env := newEnv(t, nil)

	w := env.postJSON("/plans/generate", "", `{"request":"和食"}`)
	require.Equal(t, http.StatusOK, w.Code)
	id := w.Header().Get(middleware.SessionHeader)

	env.gen.result = &planner.Result{Debug: planner.DebugInfo{CategoryIDs: "99", Attempted: []string{"99"}}}
	env.gen.err = common.ErrNoRecipes

	w = env.postJSON("/plans/generate", id, `{"request":"存在しない料理"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp GenerateErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, common.ErrCodeNoRecipes, resp.Code)
	assert.Equal(t, common.ErrNoRecipes.Message, resp.Message)
	require.NotNil(t, resp.Debug)
	assert.Equal(t, "99", resp.Debug.CategoryIDs)

	snap := env.state(t, id).Snapshot()
	assert.Equal(t, samplePlan(), snap.Plan)
	require.NotNil(t, snap.Debug)
	assert.Equal(t, "99", snap.Debug.CategoryIDs)
}

func TestGenerateUpstreamFailure(t *testing.T) {
	env := newEnv(t, nil)
	env.gen.result = nil
	env.gen.err = common.ErrUpstreamUnavailable.Wrap(errors.New("recommend: boom"))

	w := env.postJSON("/plans/generate", "", `{"request":"和食"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), common.ErrCodeUpstreamUnavailable)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestGenerateThroughQueue(t *testing.T) {
	q := queue.NewManager(config.QueueConfig{Workers: 1, MaxSize: 2})
	defer q.Close()
	env := newEnv(t, q)

	w := env.postJSON("/plans/generate", "", `{"request":"和食"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, q.GetQueueStatus().ProcessedCount)
}

func TestGenerateQueueClosed(t *testing.T) {
	q := queue.NewManager(config.QueueConfig{Workers: 1, MaxSize: 1})
	q.Close()
	env := newEnv(t, q)

	w := env.postJSON("/plans/generate", "", `{"request":"和食"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCurrentAndReset(t *testing.T) {
	env := newEnv(t, nil)

	w := env.do(http.MethodGet, "/plans/current", "", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), common.ErrCodeNoPlan)

	w = env.postJSON("/plans/generate", "", `{"request":"和食"}`)
	id := w.Header().Get(middleware.SessionHeader)

	w = env.do(http.MethodGet, "/plans/current", id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snap session.Snapshot
	decode(t, w, &snap)
	assert.True(t, snap.HasPlan)
	assert.Equal(t, planModel.MaterialsSummary{"卵 2個"}, snap.Summary)

	w = env.do(http.MethodDelete, "/plans/current", id, "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(http.MethodGet, "/plans/current", id, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoadRawJSON(t *testing.T) {
	env := newEnv(t, nil)
	doc, err := store.Serialize(samplePlan(), planModel.MaterialsSummary{"卵 2個"})
	require.NoError(t, err)

	w := env.do(http.MethodPost, "/plans/load", "", "application/json", doc)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	snap := env.state(t, w.Header().Get(middleware.SessionHeader)).Snapshot()
	assert.Equal(t, samplePlan(), snap.Plan)
	assert.Equal(t, presenter.GridSelector(), snap.View)
}

func TestLoadMultipart(t *testing.T) {
	env := newEnv(t, nil)
	doc, err := store.Serialize(samplePlan(), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "meal_plan.json")
	require.NoError(t, err)
	_, err = fw.Write(doc)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := env.do(http.MethodPost, "/plans/load", "", mw.FormDataContentType(), buf.Bytes())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, env.state(t, w.Header().Get(middleware.SessionHeader)).Snapshot().HasPlan)
}

func TestLoadMalformedKeepsPlan(t *testing.T) {
	env := newEnv(t, nil)
	w := env.postJSON("/plans/generate", "", `{"request":"和食"}`)
	id := w.Header().Get(middleware.SessionHeader)

	for _, body := range []string{`{"meal_plan":[]}`, `not json`, `{"meal_plan":{"d":{"朝食":{"recipe":"x"}}},"materials_summary":[]}`} {
		w = env.do(http.MethodPost, "/plans/load", id, "application/json", []byte(body))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, body)
		assert.Contains(t, w.Body.String(), common.ErrCodeMalformedDocument)
	}

	assert.Equal(t, samplePlan(), env.state(t, id).Snapshot().Plan)
}

func TestSaveWritesFiles(t *testing.T) {
	env := newEnv(t, nil)

	w := env.postJSON("/plans/save", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.postJSON("/plans/generate", "", `{"request":"和食"}`)
	id := w.Header().Get(middleware.SessionHeader)

	w = env.postJSON("/plans/save", id, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var files store.SavedFiles
	decode(t, w, &files)
	assert.Contains(t, files.JSONPath, "meal_plan_20240301_150405.json")

	p, summary, err := store.LoadFile(files.JSONPath)
	require.NoError(t, err)
	assert.Equal(t, samplePlan(), p)
	assert.Equal(t, planModel.MaterialsSummary{"卵 2個"}, summary)

	_, err = os.Stat(files.HTMLPath)
	assert.NoError(t, err)
}

func TestReport(t *testing.T) {
	env := newEnv(t, nil)
	w := env.postJSON("/plans/generate", "", `{"request":"和食"}`)
	id := w.Header().Get(middleware.SessionHeader)

	w = env.do(http.MethodGet, "/plans/report", id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "2.肉じゃが")
}

func TestViewNavigation(t *testing.T) {
	env := newEnv(t, nil)

	w := env.do(http.MethodGet, "/view", "", "", nil)
	var page presenter.Page
	decode(t, w, &page)
	assert.Equal(t, presenter.PageEmpty, page.Kind)

	w = env.postJSON("/plans/generate", "", `{"request":"和食"}`)
	id := w.Header().Get(middleware.SessionHeader)

	w = env.postJSON("/view/detail", id, `{"date":"2024-03-01","slot":"夕食"}`)
	require.Equal(t, http.StatusOK, w.Code)
	page = presenter.Page{}
	decode(t, w, &page)
	require.Equal(t, presenter.PageDetail, page.Kind)
	assert.Equal(t, "2.肉じゃが", page.Detail.Entry.Recipe)

	w = env.postJSON("/view/detail", id, `{"date":"2024-03-01","slot":"昼食"}`)
	page = presenter.Page{}
	decode(t, w, &page)
	require.Equal(t, presenter.PageNotFound, page.Kind)
	assert.Equal(t, "2024-03-01の昼食の情報が見つかりません。", page.NotFound.Message)

	w = env.do(http.MethodGet, "/view", id, "", nil)
	page = presenter.Page{}
	decode(t, w, &page)
	assert.Equal(t, presenter.PageNotFound, page.Kind)

	w = env.postJSON("/view/grid", id, "")
	page = presenter.Page{}
	decode(t, w, &page)
	require.Equal(t, presenter.PageGrid, page.Kind)
	assert.Len(t, page.Grid.Days, 1)

	w = env.postJSON("/view/detail", id, `{"date":"2024-03-01"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHelp(t *testing.T) {
	env := newEnv(t, nil)
	w := env.do(http.MethodGet, "/help", "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp HelpResponse
	decode(t, w, &resp)
	assert.Equal(t, "使い方", resp.Title)
	assert.Len(t, resp.Steps, 10)
}
