package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"kondate-planner/internal/infrastructure/config"
	"kondate-planner/internal/pkg/common"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull 隊列已滿
	ErrQueueFull = errors.New("queue is full")
	// ErrClosed 隊列管理器已關閉
	ErrClosed = errors.New("queue manager is closed")
)

// Task 一個排隊執行的工作
type Task func(ctx context.Context) (interface{}, error)

// Request 隊列請求
type Request struct {
	Context context.Context
	Task    Task
	Result  chan Result
}

// Result 處理結果
type Result struct {
	Value interface{}
	Error error
}

// Status 隊列狀態
type Status struct {
	QueueLength    int   `json:"queue_length"`
	Running        int64 `json:"running"`
	ProcessedCount int64 `json:"processed_count"`
	FailedCount    int64 `json:"failed_count"`
	MaxQueueSize   int   `json:"max_queue_size"`
	Workers        int   `json:"workers"`
}

// Manager 隊列管理器：固定數量的 worker 依序處理請求
type Manager struct {
	cfg       config.QueueConfig
	queue     chan *Request
	done      chan struct{}
	wg        sync.WaitGroup
	closeMu   sync.RWMutex
	closed    bool
	running   atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
}

// NewManager 創建新的隊列管理器並啟動 worker
func NewManager(cfg config.QueueConfig) *Manager {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxSize < 0 {
		cfg.MaxSize = 0
	}
	m := &Manager{
		cfg:   cfg,
		queue: make(chan *Request, cfg.MaxSize),
		done:  make(chan struct{}),
	}
	for i := 0; i < cfg.Workers; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}
	common.LogInfo("隊列管理器已啟動",
		zap.Int("workers", cfg.Workers),
		zap.Int("max_queue_size", cfg.MaxSize),
	)
	return m
}

func (m *Manager) worker(id int) {
	defer m.wg.Done()
	for {
		select {
		case <-m.done:
			return
		case req := <-m.queue:
			m.process(id, req)
		}
	}
}

func (m *Manager) process(id int, req *Request) {
	// 呼叫端已放棄的請求不再執行
	if err := req.Context.Err(); err != nil {
		req.Result <- Result{Error: err}
		return
	}

	m.running.Add(1)
	defer m.running.Add(-1)

	value, err := req.Task(req.Context)
	if err != nil {
		m.failed.Add(1)
	}
	m.processed.Add(1)
	common.LogDebug("Request processed",
		zap.Int("worker", id),
		zap.Bool("failed", err != nil),
	)
	req.Result <- Result{Value: value, Error: err}
}

// Enqueue 將請求加入隊列；隊列已滿時立即返回 ErrQueueFull
func (m *Manager) Enqueue(ctx context.Context, task Task) (<-chan Result, error) {
	req := &Request{
		Context: ctx,
		Task:    task,
		Result:  make(chan Result, 1),
	}

	m.closeMu.RLock()
	defer m.closeMu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}

	select {
	case m.queue <- req:
		common.LogDebug("Request enqueued",
			zap.Int("queue_length", len(m.queue)),
			zap.Int("max_queue_size", m.cfg.MaxSize),
		)
		return req.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		return nil, ErrQueueFull
	}
}

// Submit 加入隊列並等待結果
func (m *Manager) Submit(ctx context.Context, task Task) (interface{}, error) {
	result, err := m.Enqueue(ctx, task)
	if err != nil {
		return nil, err
	}
	select {
	case r := <-result:
		return r.Value, r.Error
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		QueueLength:    len(m.queue),
		Running:        m.running.Load(),
		ProcessedCount: m.processed.Load(),
		FailedCount:    m.failed.Load(),
		MaxQueueSize:   m.cfg.MaxSize,
		Workers:        m.cfg.Workers,
	}
}

// Close 停止接受請求並等待 worker 結束；排隊中的請求以 ErrClosed 回覆
func (m *Manager) Close() {
	m.closeMu.Lock()
	if m.closed {
		m.closeMu.Unlock()
		return
	}
	m.closed = true
	close(m.done)
	m.closeMu.Unlock()

	m.wg.Wait()
	for {
		select {
		case req := <-m.queue:
			req.Result <- Result{Error: ErrClosed}
		default:
			return
		}
	}
}
