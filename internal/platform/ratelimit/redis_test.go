package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
)

func TestNewRedisLimiter_Defaults(t *testing.T) {
	t.Parallel()

	rdb, _ := redismock.NewClientMock()
	r := NewRedisLimiter(rdb, 0, 0, "")

	if r.limit != DefaultLimit || r.window != DefaultWindow || r.namespace != DefaultNamespace {
		t.Errorf("unexpected defaults: limit=%d window=%v namespace=%q", r.limit, r.window, r.namespace)
	}
}

// TestRedisLimiter_FirstRequest は最初のリクエストでカウンタに有効期限が設定されることを検証します。
func TestRedisLimiter_FirstRequest(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	r := NewRedisLimiter(rdb, 3, time.Minute, "")

	mock.ExpectIncr("ratelimit:ip:1.2.3.4").SetVal(1)
	mock.ExpectExpire("ratelimit:ip:1.2.3.4", time.Minute).SetVal(true)

	d, err := r.Allow(context.Background(), "ip:1.2.3.4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Allowed || d.Remaining != 2 || d.Limit != 3 {
		t.Errorf("unexpected decision: %+v", d)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// TestRedisLimiter_WithinLimit は2回目以降は有効期限を再設定しないことを検証します。
func TestRedisLimiter_WithinLimit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	r := NewRedisLimiter(rdb, 3, time.Minute, "plantid")

	mock.ExpectIncr("plantid:client:garden_app").SetVal(3)

	d, err := r.Allow(context.Background(), "client:garden app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Allowed || d.Remaining != 0 {
		t.Errorf("unexpected decision: %+v", d)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// TestRedisLimiter_OverLimit は上限超過時に残りTTLがRetryAfterになることを検証します。
func TestRedisLimiter_OverLimit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	r := NewRedisLimiter(rdb, 3, time.Minute, "")

	mock.ExpectIncr("ratelimit:ip:1.2.3.4").SetVal(4)
	mock.ExpectTTL("ratelimit:ip:1.2.3.4").SetVal(25 * time.Second)

	d, err := r.Allow(context.Background(), "ip:1.2.3.4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Allowed {
		t.Error("expected request to be rejected")
	}
	if d.RetryAfter != 25*time.Second {
		t.Errorf("expected retry after 25s, got %v", d.RetryAfter)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// TestRedisLimiter_OverLimitWithoutExpiry は有効期限が失われたカウンタに期限を付け直すことを検証します。
func TestRedisLimiter_OverLimitWithoutExpiry(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	r := NewRedisLimiter(rdb, 3, time.Minute, "")

	mock.ExpectIncr("ratelimit:ip:1.2.3.4").SetVal(9)
	mock.ExpectTTL("ratelimit:ip:1.2.3.4").SetVal(-1)
	mock.ExpectExpire("ratelimit:ip:1.2.3.4", time.Minute).SetVal(true)

	d, err := r.Allow(context.Background(), "ip:1.2.3.4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Allowed || d.RetryAfter != time.Minute {
		t.Errorf("unexpected decision: %+v", d)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// TestRedisLimiter_Error はRedisのエラーが呼び出し元に返されることを検証します。
func TestRedisLimiter_Error(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	r := NewRedisLimiter(rdb, 3, time.Minute, "")

	redisErr := errors.New("connection refused")
	mock.ExpectIncr("ratelimit:ip:1.2.3.4").SetErr(redisErr)

	_, err := r.Allow(context.Background(), "ip:1.2.3.4")
	if !errors.Is(err, redisErr) {
		t.Fatalf("expected wrapped redis error, got %v", err)
	}
}
