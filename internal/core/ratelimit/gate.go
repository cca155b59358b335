package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Clock 時間來源，測試時可替換成虛擬時鐘
type Clock interface {
	Now() time.Time
	// SleepUntil 阻塞到 t 或 ctx 結束
	SleepUntil(ctx context.Context, t time.Time) error
}

// SystemClock 使用真實時間
type SystemClock struct{}

// Now 目前時間
func (SystemClock) Now() time.Time { return time.Now() }

// SleepUntil 等待到指定時間
func (SystemClock) SleepUntil(ctx context.Context, t time.Time) error {
	d := time.Until(t)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Gate 以 token bucket 控制呼叫的開始時間。
// burst 為 1 時，任兩次 Wait 返回的時間點至少相隔 interval。
type Gate struct {
	mu       sync.Mutex
	limiter  *rate.Limiter
	clock    Clock
	interval time.Duration
}

// NewGate 創建每 interval 放行一次的閘門
func NewGate(interval time.Duration, clock Clock) *Gate {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Gate{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		clock:    clock,
		interval: interval,
	}
}

// NewRPSGate 依每秒請求數建立閘門，rps <= 0 時返回 nil（不限流）
func NewRPSGate(rps float64) *Gate {
	if rps <= 0 {
		return nil
	}
	return NewGate(time.Duration(float64(time.Second)/rps), nil)
}

// Interval 最小間隔
func (g *Gate) Interval() time.Duration {
	if g == nil {
		return 0
	}
	return g.interval
}

// Wait 預約下一個時段並等待到該時段開始。
// ctx 在等待中結束時會歸還預約，不佔用後續呼叫的時段。
func (g *Gate) Wait(ctx context.Context) error {
	if g == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	now := g.clock.Now()
	r := g.limiter.ReserveN(now, 1)
	if !r.OK() {
		g.mu.Unlock()
		return fmt.Errorf("ratelimit: reservation rejected")
	}
	delay := r.DelayFrom(now)
	g.mu.Unlock()

	if delay <= 0 {
		return nil
	}
	if err := g.clock.SleepUntil(ctx, now.Add(delay)); err != nil {
		g.mu.Lock()
		r.CancelAt(g.clock.Now())
		g.mu.Unlock()
		return err
	}
	return nil
}
