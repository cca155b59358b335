package plan

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"kondate-planner/internal/api/middleware"
	"kondate-planner/internal/core/planner"
	"kondate-planner/internal/core/queue"
	"kondate-planner/internal/core/session"
	"kondate-planner/internal/core/store"
	"kondate-planner/internal/infrastructure/config"
	"kondate-planner/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// Generator 獻立生成
type Generator interface {
	Generate(ctx context.Context, req planner.Request) (*planner.Result, error)
}

// Submitter 將工作排入隊列並等待結果
type Submitter interface {
	Submit(ctx context.Context, task queue.Task) (interface{}, error)
}

// Handler 獻立相關 API
type Handler struct {
	generator Generator
	queue     Submitter
	defaults  config.PlannerConfig
	saveDir   string
	debug     bool
	now       func() time.Time
}

// NewHandler 創建處理器；queue 為 nil 時直接在請求 goroutine 中生成
func NewHandler(generator Generator, q Submitter, cfg *config.Config) *Handler {
	return &Handler{
		generator: generator,
		queue:     q,
		defaults:  cfg.Planner,
		saveDir:   cfg.Storage.SaveDir,
		debug:     cfg.App.Debug,
		now:       time.Now,
	}
}

// classify 將隊列與逾時錯誤歸入預定義錯誤；已分類的錯誤保持原樣
func classify(err error) error {
	var ce *common.CustomError
	if errors.As(err, &ce) {
		return err
	}
	switch {
	case errors.Is(err, queue.ErrQueueFull), errors.Is(err, queue.ErrClosed):
		return common.ErrServiceUnavailable.Wrap(err)
	case errors.Is(err, context.DeadlineExceeded):
		return common.ErrGatewayTimeout.Wrap(err)
	}
	return err
}

func (h *Handler) errorResponse(c *gin.Context, err error) (int, common.ErrorResponse) {
	err = classify(err)
	status, resp := common.NewErrorResponse(err, h.debug)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	return status, resp
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status, resp := h.errorResponse(c, err)
	c.AbortWithStatusJSON(status, resp)
}

func state(c *gin.Context) *session.State {
	st, ok := middleware.StateFrom(c)
	if !ok {
		// 未掛 Session 中間件時給一個臨時狀態
		return session.NewState()
	}
	return st
}

// toRequest 補上預設值並轉為 planner.Request；必要欄位的檢查交給 planner
func (h *Handler) toRequest(req GenerateRequest) (planner.Request, error) {
	out := planner.Request{
		UserRequest: req.Request,
		MealTypes:   req.MealTypes,
		Profile:     req.Profile,
		Ratios: planner.Ratios{
			Rice:   h.defaults.RiceRatio,
			Bread:  h.defaults.BreadRatio,
			Noodle: h.defaults.NoodleRatio,
		},
	}
	if req.MealTypes == nil {
		out.MealTypes = h.defaults.MealTypes
	}
	if req.Ratios != nil {
		out.Ratios = planner.Ratios{Rice: req.Ratios.Rice, Bread: req.Ratios.Bread, Noodle: req.Ratios.Noodle}
	}

	start := strings.TrimSpace(req.StartDate)
	if start == "" {
		now := h.now()
		out.StartDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return out, nil
	}
	d, err := time.ParseInLocation(dateLayout, start, time.Local)
	if err != nil {
		return out, common.NewValidationError("開始日は YYYY-MM-DD 形式で指定してください")
	}
	out.StartDate = d
	return out, nil
}

// Generate 生成一週間分の獻立
func (h *Handler) Generate(c *gin.Context) {
	sessionID := c.GetString(middleware.SessionIDKey)
	reqID := requestid.Get(c)

	var body GenerateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", reqID),
		)
		h.respondError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	req, err := h.toRequest(body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	req.OnProgress = func(stage string, percent int) {
		common.LogDebug("Generation progress",
			zap.String("session_id", sessionID),
			zap.String("stage", stage),
			zap.Int("percent", percent),
		)
	}

	common.LogInfo("開始生成獻立",
		zap.String("request_id", reqID),
		zap.String("session_id", sessionID),
		zap.Strings("meal_types", req.MealTypes),
		zap.String("start_date", planner.FormatStartDate(req.StartDate)),
	)

	result, err := h.run(c.Request.Context(), req)
	st := state(c)
	if err != nil {
		resp := GenerateErrorResponse{}
		if result != nil {
			st.RecordDebug(&result.Debug)
			resp.Debug = &result.Debug
		}
		status, errResp := h.errorResponse(c, err)
		resp.ErrorResponse = errResp
		common.LogWarn("獻立生成失敗",
			zap.Error(err),
			zap.String("request_id", reqID),
			zap.Int("status", status),
		)
		c.AbortWithStatusJSON(status, resp)
		return
	}

	st.Replace(result.Plan, result.Summary, &result.Debug)

	common.LogInfo("獻立生成成功",
		zap.String("request_id", reqID),
		zap.Int("days", len(result.Plan.Days)),
		zap.Int("recipes", result.Debug.RecipeCount),
		zap.Int64("duration_ms", result.Debug.DurationMS),
	)

	c.JSON(http.StatusOK, GenerateResponse{
		SessionID: sessionID,
		MealPlan:  result.Plan,
		Summary:   result.Summary,
		Debug:     result.Debug,
		Page:      st.Page(),
	})
}

func (h *Handler) run(ctx context.Context, req planner.Request) (*planner.Result, error) {
	if h.queue == nil {
		return h.generator.Generate(ctx, req)
	}
	v, err := h.queue.Submit(ctx, func(ctx context.Context) (interface{}, error) {
		return h.generator.Generate(ctx, req)
	})
	result, _ := v.(*planner.Result)
	return result, err
}

// Current 目前的獻立
func (h *Handler) Current(c *gin.Context) {
	snap := state(c).Snapshot()
	if !snap.HasPlan {
		h.respondError(c, common.ErrNoPlan)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Reset 清除目前的獻立
func (h *Handler) Reset(c *gin.Context) {
	state(c).Reset()
	c.Status(http.StatusNoContent)
}

// Load 讀入存檔；接受 multipart 的 file 欄位或原始 JSON body。失敗時保留目前的獻立。
func (h *Handler) Load(c *gin.Context) {
	data, err := readDocument(c)
	if err != nil {
		h.respondError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	st := state(c)
	if err := st.Load(data); err != nil {
		common.LogWarn("讀入獻立失敗",
			zap.Error(err),
			zap.String("session_id", c.GetString(middleware.SessionIDKey)),
		)
		h.respondError(c, err)
		return
	}

	snap := st.Snapshot()
	common.LogInfo("獻立已讀入",
		zap.String("session_id", c.GetString(middleware.SessionIDKey)),
		zap.Int("days", len(snap.Plan.Days)),
	)
	c.JSON(http.StatusOK, snap)
}

func readDocument(c *gin.Context) ([]byte, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, err
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	return io.ReadAll(c.Request.Body)
}

// Save 將目前的獻立寫入存檔目錄（JSON 與 HTML 報告）
func (h *Handler) Save(c *gin.Context) {
	snap := state(c).Snapshot()
	if !snap.HasPlan {
		h.respondError(c, common.ErrNoPlan)
		return
	}

	files, err := store.SaveToDir(h.saveDir, snap.Plan, snap.Summary, h.now())
	if err != nil {
		h.respondError(c, err)
		return
	}

	common.LogInfo("獻立已保存",
		zap.String("json_path", files.JSONPath),
		zap.String("html_path", files.HTMLPath),
	)
	c.JSON(http.StatusCreated, files)
}

// Report 以 HTML 報告輸出目前的獻立
func (h *Handler) Report(c *gin.Context) {
	snap := state(c).Snapshot()
	if !snap.HasPlan {
		h.respondError(c, common.ErrNoPlan)
		return
	}

	page, err := store.RenderReportBytes(snap.Plan, snap.Summary)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// View 依目前的檢視選擇渲染頁面
func (h *Handler) View(c *gin.Context) {
	c.JSON(http.StatusOK, state(c).Page())
}

// ShowGrid 回到カレンダー
func (h *Handler) ShowGrid(c *gin.Context) {
	st := state(c)
	st.ShowGrid()
	c.JSON(http.StatusOK, st.Page())
}

// ShowDetail 切換到指定日期與食事的明細
func (h *Handler) ShowDetail(c *gin.Context) {
	var req DetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}
	st := state(c)
	st.ShowDetail(req.Date, req.Slot)
	c.JSON(http.StatusOK, st.Page())
}
