package ratelimit

import (
	"context"
	"sync"
	"time"
)

// maxTrackedKeys を超えたら期限切れのウィンドウを掃除します。
// 掃除は interval ごとに高々1回です。
const maxTrackedKeys = 10000

type window struct {
	count     int64
	lastReset time.Time
}

// MemoryLimiter はプロセス内のカウンタで制限する Limiter 実装です。
// インスタンス間でカウントは共有されません。
type MemoryLimiter struct {
	limit    int
	interval time.Duration

	mu        sync.Mutex
	windows   map[string]*window
	lastSweep time.Time
	now       func() time.Time
}

var _ Limiter = (*MemoryLimiter)(nil)

// NewMemoryLimiter は新しいMemoryLimiterのインスタンスを生成します。
// limitやintervalが0以下の場合は既定値を使用します。
func NewMemoryLimiter(limit int, interval time.Duration) *MemoryLimiter {
	limit, interval = normalize(limit, interval)
	return &MemoryLimiter{
		limit:    limit,
		interval: interval,
		windows:  make(map[string]*window),
		now:      time.Now,
	}
}

// Allow はキーのカウントを1つ進め、上限を超えていれば拒否します。待機はしません。
func (m *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok {
		if len(m.windows) >= maxTrackedKeys && now.Sub(m.lastSweep) >= m.interval {
			m.sweep(now)
		}
		w = &window{lastReset: now}
		m.windows[key] = w
	}
	// interval を過ぎたらカウントリセット
	if now.Sub(w.lastReset) >= m.interval {
		w.count = 0
		w.lastReset = now
	}

	w.count++
	return decide(w.count, m.limit, m.interval-now.Sub(w.lastReset)), nil
}

func (m *MemoryLimiter) sweep(now time.Time) {
	m.lastSweep = now
	for k, w := range m.windows {
		if now.Sub(w.lastReset) >= m.interval {
			delete(m.windows, k)
		}
	}
}
