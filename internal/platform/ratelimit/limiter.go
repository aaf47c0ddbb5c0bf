// Package ratelimit は共有APIキーのクォータを守るためのクライアント単位のリクエスト制限を提供します。
//
// 固定ウィンドウ方式で、Redisが使える場合は複数インスタンス間でカウントを共有し、
// 使えない場合はプロセス内のカウンタで代替します。
package ratelimit

import (
	"context"
	"time"
)

const (
	// DefaultLimit はウィンドウあたりの既定リクエスト上限です。
	DefaultLimit = 30
	// DefaultWindow は既定のウィンドウ幅です。
	DefaultWindow = time.Minute
)

// Decision は1リクエストに対する判定結果です。
type Decision struct {
	Allowed    bool          // 通過可否
	Limit      int           // ウィンドウあたりの上限
	Remaining  int           // ウィンドウ内の残り回数
	RetryAfter time.Duration // 拒否時、次のウィンドウまでの待ち時間
}

// Limiter はキー単位でリクエストの可否を判定します。
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

func decide(count int64, limit int, retryAfter time.Duration) Decision {
	d := Decision{Allowed: count <= int64(limit), Limit: limit}
	if d.Allowed {
		d.Remaining = limit - int(count)
		return d
	}
	d.RetryAfter = retryAfter
	return d
}

func normalize(limit int, window time.Duration) (int, time.Duration) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return limit, window
}
